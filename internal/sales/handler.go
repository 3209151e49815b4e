package sales

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autostock/backend/internal/audit"
	"github.com/autostock/backend/internal/middleware"
	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/response"
)

// Alerter records the sale alert addressed to the business admin.
type Alerter interface {
	Create(ctx context.Context, n *models.Notification) error
}

// RegisterRequest is the body for POST /vendedor/ventas.
type RegisterRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// Handler handles sale endpoints for sellers and admins.
type Handler struct {
	repo    *Repository
	alerter Alerter
	sink    audit.Sink
	logger  *zap.Logger
}

// NewHandler creates a sales handler.
func NewHandler(repo *Repository, alerter Alerter, sink audit.Sink, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, alerter: alerter, sink: sink, logger: logger}
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

// Register handles POST /vendedor/ventas. A successful sale also queues the
// admin-facing alert; a failed alert does not undo the sale.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	actx, ok := h.authorize(c, scope.ActionRegisterSale)
	if !ok {
		return
	}

	sale, product, err := h.repo.Register(c.Request.Context(), *actx.BusinessID, actx.Principal.ID, req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	alert := &models.Notification{
		BusinessID: sale.BusinessID,
		SellerID:   sale.SellerID,
		ProductID:  sale.ProductID,
		Quantity:   sale.Quantity,
		Message:    fmt.Sprintf("%s vendió %d x %s", actx.Principal.Username, sale.Quantity, product.Name),
	}
	if err := h.alerter.Create(c.Request.Context(), alert); err != nil {
		h.logger.Error("sale alert not recorded",
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err),
		)
	}

	h.logger.Info("sale registered",
		zap.String("sale_id", sale.ID.String()),
		zap.String("seller_id", sale.SellerID.String()),
	)
	response.Created(c, sale)
}

// ListMine handles GET /vendedor/ventas: the seller's own sales.
func (h *Handler) ListMine(c *gin.Context) {
	actx, ok := h.authorize(c, scope.ActionViewSales)
	if !ok {
		return
	}
	list, err := h.repo.ListBySeller(c.Request.Context(), *actx.BusinessID, actx.Principal.ID)
	if err != nil {
		response.Internal(c, "failed to list sales")
		return
	}
	response.OK(c, list)
}

// ListBusiness handles GET /negocio/ventas: every sale in the admin's business.
func (h *Handler) ListBusiness(c *gin.Context) {
	actx, ok := h.authorize(c, scope.ActionViewSales)
	if !ok {
		return
	}
	list, err := h.repo.ListByBusiness(c.Request.Context(), *actx.BusinessID)
	if err != nil {
		response.Internal(c, "failed to list sales")
		return
	}
	response.OK(c, list)
}
