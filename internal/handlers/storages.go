package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/services"
	"github.com/stowagehq/stowage/pkg/response"
)

// StorageHandler exposes HTTP endpoints for managing storages.
type StorageHandler struct {
	svc     *services.StorageService
	folders *services.FolderService
}

// NewStorageHandler constructs a storage handler.
func NewStorageHandler(svc *services.StorageService, folders *services.FolderService) *StorageHandler {
	return &StorageHandler{svc: svc, folders: folders}
}

// List returns every storage ordered by name.
func (h *StorageHandler) List(c *gin.Context) {
	storages, err := h.svc.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, storages)
}

// Get returns one storage.
func (h *StorageHandler) Get(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	storage, err := h.svc.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, storage)
}

// Create registers a new storage.
func (h *StorageHandler) Create(c *gin.Context) {
	var payload storagePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	storage, err := h.svc.Create(requestContext(c), payload.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, storage)
}

// Update modifies storage metadata.
func (h *StorageHandler) Update(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var payload storagePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	storage, err := h.svc.Update(requestContext(c), id, payload.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, storage)
}

// Delete removes a storage and, via cascade, its folders.
func (h *StorageHandler) Delete(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.svc.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// RootFolders lists the top-level folders of one storage.
func (h *StorageHandler) RootFolders(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	folders, err := h.folders.RootFolders(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folders)
}

// AllFolders lists one page over every folder of a storage.
func (h *StorageHandler) AllFolders(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", services.DefaultPerPage)

	folders, total, err := h.folders.ListByStorage(requestContext(c), id, page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, folders, &response.Meta{
		Page:    page,
		PerPage: perPage,
		Total:   total,
	})
}

type storagePayload struct {
	Name        string  `json:"name" validate:"max=200"`
	Description *string `json:"description"`
}

func (p storagePayload) toInput() services.StorageInput {
	return services.StorageInput{
		Name:        p.Name,
		Description: p.Description,
	}
}
