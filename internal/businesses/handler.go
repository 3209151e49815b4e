package businesses

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autostock/backend/internal/audit"
	"github.com/autostock/backend/internal/middleware"
	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/plans"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/response"
)

// AdminProvisioner creates the business admin principal with a one-time secret.
type AdminProvisioner interface {
	CreateWithSecret(ctx context.Context, username string, role models.Role, businessID *uuid.UUID) (*models.User, string, error)
}

// CreateRequest is the body for POST /superadmin/negocios.
type CreateRequest struct {
	Name          string    `json:"name" binding:"required"`
	OwnerName     string    `json:"owner_name" binding:"required"`
	PlanID        uuid.UUID `json:"plan_id" binding:"required"`
	AdminUsername string    `json:"admin_username" binding:"required"`
}

// CreateResponse returns the new tenant and its admin's one-time secret.
type CreateResponse struct {
	Business      models.Business   `json:"business"`
	Admin         models.UserPublic `json:"admin"`
	AdminPassword string            `json:"admin_password"`
}

// Handler handles the superadmin tenant-management endpoints.
type Handler struct {
	repo        *Repository
	plans       *plans.Repository
	provisioner AdminProvisioner
	users       UserLister
	sink        audit.Sink
	logger      *zap.Logger
}

// UserLister lists a tenant's users and counts platform users.
type UserLister interface {
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.UserPublic, error)
	CountAll(ctx context.Context) (int, error)
}

// NewHandler creates a businesses handler.
func NewHandler(repo *Repository, planRepo *plans.Repository, provisioner AdminProvisioner, users UserLister, sink audit.Sink, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, plans: planRepo, provisioner: provisioner, users: users, sink: sink, logger: logger}
}

func (h *Handler) authorize(c *gin.Context, action scope.Action, target *uuid.UUID) (scope.Context, bool) {
	p := middleware.Principal(c)
	actx, decision, err := scope.Authorize(p, action, target)
	h.sink.Record(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return scope.Context{}, false
	}
	return actx, true
}

// Create handles POST /superadmin/negocios: a new tenant plus its admin. The
// admin's first secret is generated server-side and revealed exactly once.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, ok := h.authorize(c, scope.ActionManageTenant, nil); !ok {
		return
	}

	plan, err := h.plans.GetByID(c.Request.Context(), req.PlanID)
	if err != nil {
		response.Internal(c, "failed to load plan")
		return
	}
	if plan == nil {
		response.BadRequest(c, "plan not found")
		return
	}

	expiresAt := time.Now().UTC().AddDate(0, 0, plan.DurationDays)
	business, err := h.repo.Create(c.Request.Context(), req.Name, req.OwnerName, plan.ID, expiresAt)
	if err != nil {
		response.Internal(c, "failed to create business")
		return
	}

	admin, plaintext, err := h.provisioner.CreateWithSecret(c.Request.Context(), req.AdminUsername, models.RoleAdmin, &business.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logger.Info("business created",
		zap.String("business_id", business.ID.String()),
		zap.String("admin_id", admin.ID.String()),
	)
	c.Header("Cache-Control", "no-store")
	response.Created(c, CreateResponse{Business: *business, Admin: admin.ToPublic(), AdminPassword: plaintext})
}

// List handles GET /superadmin/negocios.
func (h *Handler) List(c *gin.Context) {
	if _, ok := h.authorize(c, scope.ActionManageTenant, nil); !ok {
		return
	}
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list businesses")
		return
	}
	response.OK(c, list)
}

// Get handles GET /superadmin/negocios/:id with the tenant's users.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid business id")
		return
	}
	if _, ok := h.authorize(c, scope.ActionManageTenant, &id); !ok {
		return
	}
	business, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load business")
		return
	}
	if business == nil {
		response.NotFound(c, "business not found")
		return
	}
	users, err := h.users.ListByBusiness(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, gin.H{"business": business, "users": users})
}

// SetStateRequest is the body for POST /superadmin/negocios/:id/estado.
type SetStateRequest struct {
	State models.SubscriptionState `json:"state" binding:"required"`
}

// SetState handles subscription state changes. Suspended and expired tenants
// drop out of notification polling immediately.
func (h *Handler) SetState(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid business id")
		return
	}
	var req SetStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	switch req.State {
	case models.SubscriptionActive, models.SubscriptionSuspended, models.SubscriptionExpired:
	default:
		response.BadRequest(c, "invalid subscription state")
		return
	}
	if _, ok := h.authorize(c, scope.ActionManageTenant, &id); !ok {
		return
	}
	found, err := h.repo.SetSubscriptionState(c.Request.Context(), id, req.State)
	if err != nil {
		response.Internal(c, "failed to update state")
		return
	}
	if !found {
		response.NotFound(c, "business not found")
		return
	}
	response.OK(c, gin.H{"state": req.State})
}

// Metrics handles GET /superadmin/metricas: platform-wide counts only.
func (h *Handler) Metrics(c *gin.Context) {
	if _, ok := h.authorize(c, scope.ActionViewGlobalMetrics, nil); !ok {
		return
	}
	total, active, err := h.repo.Counts(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load metrics")
		return
	}
	users, err := h.users.CountAll(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load metrics")
		return
	}
	response.OK(c, gin.H{"businesses": total, "active_businesses": active, "users": users})
}
