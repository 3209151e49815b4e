package credentials

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autostock/backend/internal/audit"
	"github.com/autostock/backend/internal/middleware"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/response"
)

// ResetResponse carries the one-time plaintext. It is returned exactly once
// and must never be written to logs, database, or cache.
type ResetResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Plaintext string    `json:"plaintext_secret"`
}

// Handler handles credential reset endpoints.
type Handler struct {
	store  *Store
	sink   audit.Sink
	logger *zap.Logger
}

// NewHandler creates a credentials handler.
func NewHandler(store *Store, sink audit.Sink, logger *zap.Logger) *Handler {
	return &Handler{store: store, sink: sink, logger: logger}
}

// ResetAdmin handles POST /superadmin/reset-password/:user_id.
func (h *Handler) ResetAdmin(c *gin.Context) {
	h.reset(c, scope.ActionResetAdminPassword)
}

// ResetSeller handles POST /negocio/reset-password/:user_id.
func (h *Handler) ResetSeller(c *gin.Context) {
	h.reset(c, scope.ActionResetSellerPassword)
}

func (h *Handler) reset(c *gin.Context, action scope.Action) {
	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	p := middleware.Principal(c)
	actx, decision, err := scope.Authorize(p, action, p.BusinessID)
	h.sink.Record(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return
	}

	plaintext, err := h.store.Reset(c.Request.Context(), actx, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The plaintext must not survive anywhere but this response body.
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	h.logger.Info("credential reset",
		zap.String("actor", p.ID.String()),
		zap.String("target", targetID.String()),
	)
	response.OK(c, ResetResponse{UserID: targetID, Plaintext: plaintext})
}
