package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ilpslab/authhub/internal/domain/user"
	"github.com/ilpslab/authhub/internal/http/handlers"
)

type fakeUserDirectory struct {
	listFn   func(ctx context.Context, limit, offset int) ([]user.User, error)
	countFn  func(ctx context.Context) (int, error)
	getFn    func(ctx context.Context, id string) (user.User, error)
	updateFn func(ctx context.Context, id string, upd user.FlagUpdate) (user.User, error)
}

func (f *fakeUserDirectory) List(ctx context.Context, limit, offset int) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx, limit, offset)
	}
	return []user.User{}, nil
}

func (f *fakeUserDirectory) Count(ctx context.Context) (int, error) {
	if f.countFn != nil {
		return f.countFn(ctx)
	}
	return 0, nil
}

func (f *fakeUserDirectory) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserDirectory) UpdateFlags(ctx context.Context, id string, upd user.FlagUpdate) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, upd)
	}
	return user.User{}, user.ErrNotFound
}

func newUsersRouter(dir handlers.UserDirectory) *gin.Engine {
	r := gin.New()
	h := handlers.NewUsersHandler(dir)

	r.GET("/users", h.List)
	r.GET("/users/:uuid", h.GetByID)
	r.PATCH("/users/:uuid", h.UpdateFlags)

	return r
}

func TestListUsers_Pagination(t *testing.T) {
	var gotLimit, gotOffset int

	dir := &fakeUserDirectory{
		listFn: func(ctx context.Context, limit, offset int) ([]user.User, error) {
			gotLimit, gotOffset = limit, offset
			return []user.User{
				{ID: uuid.NewString(), Name: "alice", Email: "alice@x.com"},
				{ID: uuid.NewString(), Name: "bob", Email: "bob@x.com"},
			}, nil
		},
		countFn: func(ctx context.Context) (int, error) { return 42, nil },
	}

	w := doJSON(t, newUsersRouter(dir), http.MethodGet, "/users?page=3&size=5", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	if gotLimit != 5 || gotOffset != 10 {
		t.Fatalf("expected limit=5 offset=10, got limit=%d offset=%d", gotLimit, gotOffset)
	}

	var resp struct {
		Items []handlers.UserResponse `json:"items"`
		Page  int                     `json:"page"`
		Size  int                     `json:"size"`
		Total int                     `json:"total"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(resp.Items) != 2 || resp.Page != 3 || resp.Size != 5 || resp.Total != 42 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestListUsers_RejectsBadPagination(t *testing.T) {
	w := doJSON(t, newUsersRouter(&fakeUserDirectory{}), http.MethodGet, "/users?page=0&size=500", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetUser_Found(t *testing.T) {
	id := uuid.NewString()

	dir := &fakeUserDirectory{
		getFn: func(ctx context.Context, got string) (user.User, error) {
			if got != id {
				t.Fatalf("unexpected id %q", got)
			}
			return user.User{ID: id, Name: "alice", Email: "alice@x.com"}, nil
		},
	}

	w := doJSON(t, newUsersRouter(dir), http.MethodGet, "/users/"+id, "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestGetUser_NotFound(t *testing.T) {
	w := doJSON(t, newUsersRouter(&fakeUserDirectory{}), http.MethodGet, "/users/"+uuid.NewString(), "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetUser_InvalidUUID(t *testing.T) {
	w := doJSON(t, newUsersRouter(&fakeUserDirectory{}), http.MethodGet, "/users/not-a-uuid", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpdateFlags_DisableUser(t *testing.T) {
	id := uuid.NewString()

	dir := &fakeUserDirectory{
		updateFn: func(ctx context.Context, got string, upd user.FlagUpdate) (user.User, error) {
			if upd.IsDisabled == nil || !*upd.IsDisabled {
				t.Fatalf("expected is_disabled=true, got %+v", upd)
			}
			if upd.IsAdmin != nil {
				t.Fatalf("is_admin must stay untouched")
			}
			return user.User{ID: got, Name: "alice", IsDisabled: true}, nil
		},
	}

	w := doJSON(t, newUsersRouter(dir), http.MethodPatch, "/users/"+id, `{"is_disabled":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestUpdateFlags_EmptyBody(t *testing.T) {
	w := doJSON(t, newUsersRouter(&fakeUserDirectory{}), http.MethodPatch, "/users/"+uuid.NewString(), `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}
