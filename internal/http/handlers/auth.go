package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ilpslab/authhub/internal/auth"
	"github.com/ilpslab/authhub/internal/config"
	"github.com/ilpslab/authhub/internal/domain/user"
	"github.com/ilpslab/authhub/internal/http/middlewares"
	"github.com/ilpslab/authhub/internal/service"
)

// AuthOrchestrator is the slice of the auth service these handlers need.
type AuthOrchestrator interface {
	Register(ctx context.Context, name, email, password string) (user.User, error)
	Authenticate(ctx context.Context, name, password string) (service.Token, error)
	Authorize(ctx context.Context, tokenStr string) (user.Identity, error)
}

type AuthHandler struct {
	svc AuthOrchestrator
}

func NewAuthHandler(svc AuthOrchestrator) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=8,max=40"`
}

type LoginRequest struct {
	Name     string `form:"name" binding:"required,max=255"`
	Password string `form:"password" binding:"required,min=8,max=40"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// timeout covers the bcrypt hash cost
	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	u, err := h.svc.Register(cctx, req.Name, req.Email, req.Password)

	if err != nil {
		var vErr *service.ValidationError

		switch {
		case errors.As(err, &vErr):
			RespondBadRequest(ctx, "validation_failed", "Invalid registration data", gin.H{
				"field":  vErr.Field,
				"reason": vErr.Reason,
			})
		case errors.Is(err, user.ErrAlreadyExists):
			RespondBadRequest(ctx, "already_exists", "User with this data already created.", nil)
		default:
			RespondInternal(ctx, "Could not register user")
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "User registered successfully",
		"user_uuid": u.ID,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindQuery(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	token, err := h.svc.Authenticate(cctx, req.Name, req.Password)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrIdentificationFailed):
			RespondNotFound(ctx, "User identification failed.")
		case errors.Is(err, service.ErrAuthenticationFailed):
			RespondBadRequest(ctx, "authentication_failed", "User authentication failed.", nil)
		default:
			RespondInternal(ctx, "Could not authenticate user")
		}
		return
	}

	ctx.JSON(http.StatusOK, token)
}

func (h *AuthHandler) Verify(ctx *gin.Context) {
	raw := middlewares.BearerToken(ctx)

	if raw == "" {
		RespondUnauthorized(ctx, "unauthorized", "Missing or invalid Authorization header")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	ident, err := h.svc.Authorize(cctx, raw)

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			RespondUnauthorized(ctx, "invalid_token", "Access token is invalid.")
		case errors.Is(err, service.ErrAccountUnavailable):
			RespondUnauthorized(ctx, "account_unavailable", "Account disabled or does not exist.")
		default:
			RespondInternal(ctx, "Could not verify access token")
		}
		return
	}

	ctx.JSON(http.StatusOK, ident)
}
