package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/services"
	"github.com/stowagehq/stowage/pkg/response"
)

// FolderHandler exposes HTTP endpoints for the folder hierarchy.
type FolderHandler struct {
	svc *services.FolderService
}

// NewFolderHandler constructs a folder handler.
func NewFolderHandler(svc *services.FolderService) *FolderHandler {
	return &FolderHandler{svc: svc}
}

// List returns one page over every folder, newest first.
func (h *FolderHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", services.DefaultPerPage)

	folders, total, err := h.svc.ListAll(requestContext(c), page, perPage)
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

// Recent returns the most recently created folders.
func (h *FolderHandler) Recent(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 10)

	folders, err := h.svc.Recent(requestContext(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folders)
}

// Marked returns every favorite folder.
func (h *FolderHandler) Marked(c *gin.Context) {
	folders, err := h.svc.Marked(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folders)
}

// Search matches folders by name or description substring.
func (h *FolderHandler) Search(c *gin.Context) {
	folders, err := h.svc.Search(requestContext(c), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folders)
}

// Get returns a single folder.
func (h *FolderHandler) Get(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	folder, err := h.svc.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folder)
}

// Children returns the direct sub-folders of a folder.
func (h *FolderHandler) Children(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	folders, err := h.svc.SubFolders(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folders)
}

// Create registers a new folder.
func (h *FolderHandler) Create(c *gin.Context) {
	var payload createFolderPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	folder, err := h.svc.Create(requestContext(c), payload.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, folder)
}

// Update modifies folder name, description, or favorite flag.
func (h *FolderHandler) Update(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var payload updateFolderPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	folder, err := h.svc.Update(requestContext(c), id, payload.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folder)
}

// Delete removes a folder together with its subtree.
func (h *FolderHandler) Delete(c *gin.Context) {
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

// Move re-parents a folder within its storage.
func (h *FolderHandler) Move(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var payload moveFolderPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	folder, err := h.svc.Move(requestContext(c), id, payload.ParentFolderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folder)
}

// Copy duplicates a folder under the target parent.
func (h *FolderHandler) Copy(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var payload copyFolderPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	folder, err := h.svc.Copy(requestContext(c), id, payload.ParentFolderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, folder)
}

// MoveToStorage re-homes a batch of folders into another storage.
func (h *FolderHandler) MoveToStorage(c *gin.Context) {
	var payload moveToStoragePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.svc.MoveToStorage(requestContext(c), payload.FolderIDs, payload.StorageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"moved": len(payload.FolderIDs)})
}

// SetMarked flips the favorite flag on a batch of folders.
func (h *FolderHandler) SetMarked(c *gin.Context) {
	var payload setMarkedPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.svc.SetMarked(requestContext(c), payload.FolderIDs, payload.Marked); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": len(payload.FolderIDs)})
}

type createFolderPayload struct {
	Name           string  `json:"name" validate:"required,max=200"`
	Description    *string `json:"description"`
	StorageID      int64   `json:"storageId" validate:"required,gt=0"`
	ParentFolderID *int64  `json:"parentFolderId"`
	IsMarked       *bool   `json:"isMarked"`
}

func (p createFolderPayload) toInput() services.FolderInput {
	return services.FolderInput{
		Name:           p.Name,
		Description:    p.Description,
		StorageID:      p.StorageID,
		ParentFolderID: p.ParentFolderID,
		IsMarked:       p.IsMarked,
	}
}

type updateFolderPayload struct {
	Name        string  `json:"name" validate:"max=200"`
	Description *string `json:"description"`
	IsMarked    *bool   `json:"isMarked"`
}

func (p updateFolderPayload) toInput() services.FolderInput {
	return services.FolderInput{
		Name:        p.Name,
		Description: p.Description,
		IsMarked:    p.IsMarked,
	}
}

type moveFolderPayload struct {
	ParentFolderID *int64 `json:"parentFolderId"`
}

type copyFolderPayload struct {
	ParentFolderID *int64 `json:"parentFolderId"`
}

type moveToStoragePayload struct {
	FolderIDs []int64 `json:"folderIds" validate:"required,min=1,dive,gt=0"`
	StorageID int64   `json:"storageId" validate:"required,gt=0"`
}

type setMarkedPayload struct {
	FolderIDs []int64 `json:"folderIds" validate:"required,min=1,dive,gt=0"`
	Marked    bool    `json:"marked"`
}
