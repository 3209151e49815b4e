package plans

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autostock/backend/internal/audit"
	"github.com/autostock/backend/internal/middleware"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/response"
)

// PlanRequest is the body for plan create and update.
type PlanRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" binding:"min=0"`
	DurationDays int     `json:"duration_days" binding:"required,min=1"`
}

// Handler handles the superadmin plan endpoints.
type Handler struct {
	repo *Repository
	sink audit.Sink
}

// NewHandler creates a plans handler.
func NewHandler(repo *Repository, sink audit.Sink) *Handler {
	return &Handler{repo: repo, sink: sink}
}

func (h *Handler) authorize(c *gin.Context) bool {
	p := middleware.Principal(c)
	_, decision, err := scope.Authorize(p, scope.ActionManagePlan, nil)
	h.sink.Record(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

// List handles GET /superadmin/planes.
func (h *Handler) List(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list plans")
		return
	}
	response.OK(c, list)
}

// Create handles POST /superadmin/planes.
func (h *Handler) Create(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !h.authorize(c) {
		return
	}
	plan, err := h.repo.Create(c.Request.Context(), req.Name, req.Description, req.Price, req.DurationDays)
	if err != nil {
		response.Internal(c, "failed to create plan")
		return
	}
	response.Created(c, plan)
}

// Update handles POST /superadmin/planes/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plan id")
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !h.authorize(c) {
		return
	}
	found, err := h.repo.Update(c.Request.Context(), id, req.Name, req.Description, req.Price, req.DurationDays)
	if err != nil {
		response.Internal(c, "failed to update plan")
		return
	}
	if !found {
		response.NotFound(c, "plan not found")
		return
	}
	plan, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || plan == nil {
		response.Internal(c, "failed to load plan")
		return
	}
	response.OK(c, plan)
}
