package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ilpslab/authhub/internal/config"
	"github.com/ilpslab/authhub/internal/domain/user"
)

type UserDirectory interface {
	List(ctx context.Context, limit, offset int) ([]user.User, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateFlags(ctx context.Context, id string, upd user.FlagUpdate) (user.User, error)
}

type UsersHandler struct {
	users UserDirectory
}

func NewUsersHandler(users UserDirectory) *UsersHandler {
	return &UsersHandler{users: users}
}

type paginationQuery struct {
	Page int `form:"page,default=1" binding:"min=1"`
	Size int `form:"size,default=10" binding:"min=1,max=100"`
}

// UserResponse is the public user representation: no password hash, ever.
type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsAdmin    bool   `json:"is_admin"`
	IsDisabled bool   `json:"is_disabled"`
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsAdmin:    u.IsAdmin,
		IsDisabled: u.IsDisabled,
	}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	var pg paginationQuery

	if !BindQuery(ctx, &pg) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	offset := (pg.Page - 1) * pg.Size

	users, err := h.users.List(cctx, pg.Size, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	total, err := h.users.Count(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	items := make([]UserResponse, 0, len(users))

	for _, u := range users {
		items = append(items, toUserResponse(u))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"page":  pg.Page,
		"size":  pg.Size,
		"total": total,
	})
}

func (h *UsersHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("uuid")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "invalid_request", "Invalid user UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, toUserResponse(u))
}

// UpdateFlags flips the administrative booleans on a user. Admin-only;
// this is the path that disables an account.
func (h *UsersHandler) UpdateFlags(ctx *gin.Context) {
	id := ctx.Param("uuid")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "invalid_request", "Invalid user UUID", nil)
		return
	}

	var upd user.FlagUpdate

	if !BindJSON(ctx, &upd) {
		return
	}

	if upd.IsAdmin == nil && upd.IsDisabled == nil {
		RespondBadRequest(ctx, "invalid_request", "Nothing to update", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	u, err := h.users.UpdateFlags(cctx, id, upd)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, toUserResponse(u))
}
