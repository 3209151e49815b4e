package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autostock/backend/internal/audit"
	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/scope"
)

func newTestRouter(f *fixture, p scope.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(f.svc, audit.NopSink{})

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(scope.ContextPrincipal, p) })
	router.GET("/negocio/api/notificaciones", handler.Poll)
	router.GET("/negocio/notificaciones", handler.List)
	router.POST("/negocio/notificaciones/:id/marcar-leida", handler.Acknowledge)
	router.POST("/negocio/notificaciones/:id", handler.AcknowledgeAll)
	return router
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestPollEndpointReturnsBareArray(t *testing.T) {
	f := newFixture(t)
	f.create(t, "ana vendió 1 x Bujía")
	router := newTestRouter(f, f.actor.Principal)

	w := doRequest(router, http.MethodGet, "/negocio/api/notificaciones")
	require.Equal(t, http.StatusOK, w.Code)

	var views []models.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "ana vendió 1 x Bujía", views[0].Message)
	assert.False(t, views[0].Read)
}

func TestPollEndpointEmptyArrayWhenNothingDue(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, f.actor.Principal)

	w := doRequest(router, http.MethodGet, "/negocio/api/notificaciones")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestPollEndpointForbiddenForSeller(t *testing.T) {
	f := newFixture(t)
	seller := scope.Principal{ID: uuid.New(), Role: models.RoleSeller, BusinessID: &f.biz, Active: true}
	router := newTestRouter(f, seller)

	w := doRequest(router, http.MethodGet, "/negocio/api/notificaciones")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAcknowledgeEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "venta")
	router := newTestRouter(f, f.actor.Principal)

	w := doRequest(router, http.MethodPost, "/negocio/notificaciones/"+id.String()+"/marcar-leida")
	assert.Equal(t, http.StatusOK, w.Code)

	// Idempotent second acknowledge.
	w = doRequest(router, http.MethodPost, "/negocio/notificaciones/"+id.String()+"/marcar-leida")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAcknowledgeEndpointNotFound(t *testing.T) {
	f := newFixture(t)
	otherBiz := uuid.New()
	foreign := &models.Notification{BusinessID: otherBiz, SellerID: uuid.New(), ProductID: uuid.New(), Quantity: 1, Message: "ajena"}
	require.NoError(t, f.store.Insert(context.Background(), foreign))
	router := newTestRouter(f, f.actor.Principal)

	w := doRequest(router, http.MethodPost, "/negocio/notificaciones/"+uuid.NewString()+"/marcar-leida")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Cross-tenant reads exactly like nonexistent.
	w = doRequest(router, http.MethodPost, "/negocio/notificaciones/"+foreign.ID.String()+"/marcar-leida")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAcknowledgeAllEndpoint(t *testing.T) {
	f := newFixture(t)
	f.create(t, "uno")
	f.create(t, "dos")
	router := newTestRouter(f, f.actor.Principal)

	w := doRequest(router, http.MethodPost, "/negocio/notificaciones/marcar-todas-leidas")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Affected int64 `json:"affected"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(2), body.Data.Affected)
}

func TestAcknowledgeAllEndpointRejectsOtherLiterals(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f, f.actor.Principal)

	w := doRequest(router, http.MethodPost, "/negocio/notificaciones/cualquier-otra-cosa")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
