// Package users exposes the admin-facing seller management endpoints.
package users

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autostock/backend/internal/audit"
	"github.com/autostock/backend/internal/middleware"
	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/response"
)

// Directory is the slice of the user repository this handler needs.
type Directory interface {
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.UserPublic, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetActive(ctx context.Context, businessID, id uuid.UUID, active bool) (bool, error)
}

// SellerProvisioner creates the seller principal with a one-time secret.
type SellerProvisioner interface {
	CreateWithSecret(ctx context.Context, username string, role models.Role, businessID *uuid.UUID) (*models.User, string, error)
}

// CreateRequest is the body for POST /negocio/usuarios.
type CreateRequest struct {
	Username string `json:"username" binding:"required,min=3"`
}

// CreateResponse returns the new seller and their one-time secret.
type CreateResponse struct {
	User     models.UserPublic `json:"user"`
	Password string            `json:"password"`
}

// SetStateRequest is the body for POST /negocio/usuarios/:id/estado.
type SetStateRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// Handler handles the admin seller-management endpoints.
type Handler struct {
	dir         Directory
	provisioner SellerProvisioner
	sink        audit.Sink
	logger      *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(dir Directory, provisioner SellerProvisioner, sink audit.Sink, logger *zap.Logger) *Handler {
	return &Handler{dir: dir, provisioner: provisioner, sink: sink, logger: logger}
}

func (h *Handler) authorize(c *gin.Context) (scope.Context, bool) {
	p := middleware.Principal(c)
	actx, decision, err := scope.Authorize(p, scope.ActionManageUsers, p.BusinessID)
	h.sink.Record(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return scope.Context{}, false
	}
	return actx, true
}

// List handles GET /negocio/usuarios.
func (h *Handler) List(c *gin.Context) {
	actx, ok := h.authorize(c)
	if !ok {
		return
	}
	list, err := h.dir.ListByBusiness(c.Request.Context(), *actx.BusinessID)
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// Create handles POST /negocio/usuarios: a new seller in the admin's
// business. The seller's first secret is generated server-side and revealed
// exactly once in the response.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	actx, ok := h.authorize(c)
	if !ok {
		return
	}
	user, plaintext, err := h.provisioner.CreateWithSecret(c.Request.Context(), req.Username, models.RoleSeller, actx.BusinessID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("seller created",
		zap.String("user_id", user.ID.String()),
		zap.String("business_id", actx.BusinessID.String()),
	)
	c.Header("Cache-Control", "no-store")
	response.Created(c, CreateResponse{User: user.ToPublic(), Password: plaintext})
}

// SetState handles POST /negocio/usuarios/:id/estado: activate or deactivate
// a seller. A user id from another business reads as not found. Admins cannot
// deactivate themselves.
func (h *Handler) SetState(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req SetStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	actx, ok := h.authorize(c)
	if !ok {
		return
	}
	if id == actx.Principal.ID {
		response.BadRequest(c, "cannot change own state")
		return
	}
	target, err := h.dir.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if target == nil || target.BusinessID == nil || *target.BusinessID != *actx.BusinessID || target.Role != models.RoleSeller {
		response.NotFound(c, "user not found")
		return
	}
	found, err := h.dir.SetActive(c.Request.Context(), *actx.BusinessID, id, *req.Active)
	if err != nil {
		response.Internal(c, "failed to update user")
		return
	}
	if !found {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, gin.H{"active": *req.Active})
}
