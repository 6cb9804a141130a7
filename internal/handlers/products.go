package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/services"
	"github.com/stowagehq/stowage/pkg/response"
)

// ProductHandler exposes HTTP endpoints for the items inside folders.
type ProductHandler struct {
	svc *services.ProductService
}

// NewProductHandler constructs a product handler.
func NewProductHandler(svc *services.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// ListByFolder returns one page of a folder's products, newest first.
func (h *ProductHandler) ListByFolder(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", services.DefaultPerPage)

	products, total, err := h.svc.ListByFolder(requestContext(c), id, page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, products, &response.Meta{
		Page:    page,
		PerPage: perPage,
		Total:   total,
	})
}

// SearchInFolder matches a folder's products by name substring.
func (h *ProductHandler) SearchInFolder(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	products, err := h.svc.SearchInFolder(requestContext(c), id, c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, products)
}

// Marked returns every favorite product.
func (h *ProductHandler) Marked(c *gin.Context) {
	products, err := h.svc.Marked(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, products)
}

// Get returns a single product.
func (h *ProductHandler) Get(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	product, err := h.svc.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// Create registers a new product inside a folder.
func (h *ProductHandler) Create(c *gin.Context) {
	var payload createProductPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	product, err := h.svc.Create(requestContext(c), payload.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, product)
}

// Update modifies product name, description, or favorite flag.
func (h *ProductHandler) Update(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var payload updateProductPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	product, err := h.svc.Update(requestContext(c), id, payload.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// Delete removes a product.
func (h *ProductHandler) Delete(c *gin.Context) {
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

// SetMarked flips the favorite flag on a batch of products.
func (h *ProductHandler) SetMarked(c *gin.Context) {
	var payload setProductMarkedPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.svc.SetMarked(requestContext(c), payload.ProductIDs, payload.Marked); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": len(payload.ProductIDs)})
}

type createProductPayload struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	FolderID    int64   `json:"folderId" validate:"required,gt=0"`
	IsMarked    *bool   `json:"isMarked"`
}

func (p createProductPayload) toInput() services.ProductInput {
	return services.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		FolderID:    p.FolderID,
		IsMarked:    p.IsMarked,
	}
}

type updateProductPayload struct {
	Name        string  `json:"name" validate:"max=200"`
	Description *string `json:"description"`
	IsMarked    *bool   `json:"isMarked"`
}

func (p updateProductPayload) toInput() services.ProductInput {
	return services.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		IsMarked:    p.IsMarked,
	}
}

type setProductMarkedPayload struct {
	ProductIDs []int64 `json:"productIds" validate:"required,min=1,dive,gt=0"`
	Marked     bool    `json:"marked"`
}
