package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/response"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Verifier checks a candidate secret against the stored credential.
type Verifier interface {
	Verify(ctx context.Context, principalID uuid.UUID, candidate string) bool
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo     *Repository
	jwt      *JWTService
	verifier Verifier
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, verifier Verifier, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, verifier: verifier, logger: logger}
}

// Login handles POST /auth/login. Unknown usernames, wrong passwords, and
// inactive accounts all produce the same rejection.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		response.Internal(c, "login failed")
		return
	}

	targetID := uuid.Nil
	if user != nil {
		targetID = user.ID
	}
	if !h.verifier.Verify(c.Request.Context(), targetID, req.Password) || user == nil || !user.Active {
		response.Unauthorized(c, "invalid username or password")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	h.logger.Info("login", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Me handles GET /api/me.
func (h *Handler) Me(c *gin.Context) {
	p, _ := c.MustGet(scope.ContextPrincipal).(scope.Principal)
	user, err := h.repo.GetByID(c.Request.Context(), p.ID)
	if err != nil || user == nil {
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, user.ToPublic())
}
