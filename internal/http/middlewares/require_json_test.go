package middlewares_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ilpslab/authhub/internal/http/middlewares"
)

func newBodyRouter(limit int64) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(limit))

	r.POST("/register", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusCreated)
	})
	r.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func post(r *gin.Engine, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRequireJSON(t *testing.T) {
	r := newBodyRouter(1 << 10)

	tests := []struct {
		contentType string
		want        int
	}{
		{"application/json", http.StatusCreated},
		{"application/json; charset=utf-8", http.StatusCreated},
		{"text/plain", http.StatusUnsupportedMediaType},
		{"", http.StatusUnsupportedMediaType},
	}

	for _, tc := range tests {
		if w := post(r, tc.contentType, `{}`); w.Code != tc.want {
			t.Fatalf("content type %q: got status %d, want %d", tc.contentType, w.Code, tc.want)
		}
	}
}

func TestRequireJSON_SkipsQueryOnlyRoutes(t *testing.T) {
	r := newBodyRouter(1 << 10)

	req := httptest.NewRequest(http.MethodGet, "/login?name=alice", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := newBodyRouter(16)

	if w := post(r, "application/json", `{"n":"a"}`); w.Code != http.StatusCreated {
		t.Fatalf("small body: got status %d, want %d", w.Code, http.StatusCreated)
	}

	oversized := `{"name":"` + strings.Repeat("a", 64) + `"}`

	if w := post(r, "application/json", oversized); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body: got status %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}
