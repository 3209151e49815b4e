package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autostock/backend/internal/audit"
	"github.com/autostock/backend/internal/middleware"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/response"
)

// Handler handles notification HTTP endpoints.
type Handler struct {
	service *Service
	sink    audit.Sink
}

// NewHandler creates a notifications handler.
func NewHandler(service *Service, sink audit.Sink) *Handler {
	return &Handler{service: service, sink: sink}
}

// Poll handles GET /negocio/api/notificaciones. The body is a bare JSON
// array; each returned item has been atomically surfaced.
func (h *Handler) Poll(c *gin.Context) {
	p := middleware.Principal(c)
	actx, decision, err := scope.Authorize(p, scope.ActionViewNotifications, p.BusinessID)
	h.sink.Record(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return
	}

	views, err := h.service.Poll(c.Request.Context(), actx)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// List handles GET /negocio/notificaciones: full ledger plus badge count.
func (h *Handler) List(c *gin.Context) {
	p := middleware.Principal(c)
	actx, decision, err := scope.Authorize(p, scope.ActionViewNotifications, p.BusinessID)
	h.sink.Record(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return
	}

	list, unread, err := h.service.List(c.Request.Context(), actx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"notifications": list, "unread": unread})
}

// Acknowledge handles POST /negocio/notificaciones/:id/marcar-leida.
func (h *Handler) Acknowledge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}

	p := middleware.Principal(c)
	actx, decision, err := scope.Authorize(p, scope.ActionAcknowledgeNotification, p.BusinessID)
	h.sink.Record(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Acknowledge(c.Request.Context(), actx, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"acknowledged": true})
}

// AcknowledgeAll handles POST /negocio/notificaciones/marcar-todas-leidas.
// The router cannot register a literal segment next to :id, so this is bound
// to the param route and matched on the literal here.
func (h *Handler) AcknowledgeAll(c *gin.Context) {
	if id := c.Param("id"); id != "" && id != "marcar-todas-leidas" {
		response.NotFound(c, "not found")
		return
	}
	p := middleware.Principal(c)
	actx, decision, err := scope.Authorize(p, scope.ActionAcknowledgeNotification, p.BusinessID)
	h.sink.Record(c.Request.Context(), decision)
	if err != nil {
		response.Error(c, err)
		return
	}

	affected, err := h.service.AcknowledgeAll(c.Request.Context(), actx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"affected": affected})
}
