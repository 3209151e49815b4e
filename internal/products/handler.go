package products

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autostock/backend/internal/audit"
	"github.com/autostock/backend/internal/middleware"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/response"
)

// ProductRequest is the body for product create and update.
type ProductRequest struct {
	Code     string  `json:"code" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category"`
	Price    float64 `json:"price" binding:"min=0"`
	Quantity int     `json:"quantity" binding:"min=0"`
	Supplier string  `json:"supplier"`
}

// Handler handles catalog endpoints for admins and sellers.
type Handler struct {
	repo *Repository
	sink audit.Sink
}

// NewHandler creates a products handler.
func NewHandler(repo *Repository, sink audit.Sink) *Handler {
	return &Handler{repo: repo, sink: sink}
}

func (h *Handler) authorize(c *gin.Context, action scope.Action) (scope.Context, bool) {
	p := middleware.Principal(c)
	actx, decision, err := scope.Authorize(p, action, p.BusinessID)
	h.sink.Record(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return scope.Context{}, false
	}
	return actx, true
}

// List handles GET /negocio/productos and GET /vendedor/productos.
func (h *Handler) List(c *gin.Context) {
	actx, ok := h.authorize(c, scope.ActionViewCatalog)
	if !ok {
		return
	}
	list, err := h.repo.List(c.Request.Context(), *actx.BusinessID)
	if err != nil {
		response.Internal(c, "failed to list products")
		return
	}
	response.OK(c, list)
}

// GetByCode handles GET /vendedor/api/productos/:codigo, the point-of-sale
// lookup sellers use before registering a sale.
func (h *Handler) GetByCode(c *gin.Context) {
	actx, ok := h.authorize(c, scope.ActionViewCatalog)
	if !ok {
		return
	}
	product, err := h.repo.GetByCode(c.Request.Context(), *actx.BusinessID, c.Param("codigo"))
	if err != nil {
		response.Internal(c, "failed to load product")
		return
	}
	if product == nil {
		response.NotFound(c, "product not found")
		return
	}
	response.OK(c, product)
}

// Create handles POST /negocio/productos.
func (h *Handler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	actx, ok := h.authorize(c, scope.ActionManageCatalog)
	if !ok {
		return
	}
	existing, err := h.repo.GetByCode(c.Request.Context(), *actx.BusinessID, req.Code)
	if err != nil {
		response.Internal(c, "failed to create product")
		return
	}
	if existing != nil {
		response.Conflict(c, "product code already in use")
		return
	}
	product, err := h.repo.Create(c.Request.Context(), *actx.BusinessID, req.Code, req.Name, req.Category, req.Price, req.Quantity, req.Supplier)
	if err != nil {
		response.Internal(c, "failed to create product")
		return
	}
	response.Created(c, product)
}

// Update handles POST /negocio/productos/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	actx, ok := h.authorize(c, scope.ActionManageCatalog)
	if !ok {
		return
	}
	found, err := h.repo.Update(c.Request.Context(), *actx.BusinessID, id, req.Code, req.Name, req.Category, req.Price, req.Quantity, req.Supplier)
	if err != nil {
		response.Internal(c, "failed to update product")
		return
	}
	if !found {
		response.NotFound(c, "product not found")
		return
	}
	product, err := h.repo.GetByID(c.Request.Context(), *actx.BusinessID, id)
	if err != nil || product == nil {
		response.Internal(c, "failed to load product")
		return
	}
	response.OK(c, product)
}

// Delete handles POST /negocio/productos/:id/eliminar.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}
	actx, ok := h.authorize(c, scope.ActionManageCatalog)
	if !ok {
		return
	}
	found, err := h.repo.Delete(c.Request.Context(), *actx.BusinessID, id)
	if err != nil {
		response.Internal(c, "failed to delete product")
		return
	}
	if !found {
		response.NotFound(c, "product not found")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}
