package api_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/batchmates/batchmates/internal/api"
	"github.com/batchmates/batchmates/internal/models"
)

func newFullRouter(t *testing.T) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return api.NewRouter(ctx, &api.RouterDeps{
		Log: testLogger(),
		DB:  &mockHealthChecker{},
		Profiles: &mockProfileService{
			count: 1,
			listFn: func(context.Context, int) ([]models.Profile, error) {
				return []models.Profile{{Name: "Alice"}}, nil
			},
		},
		Neighbors:   &mockNeighborService{},
		Explore:     &mockExploreService{},
		CORSOrigins: []string{"http://localhost:3000"},
		Version:     "test",
		RateLimit:   1000,
		RateBurst:   1000,
	})
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	r := newFullRouter(t)

	tests := []struct {
		path string
		want int
	}{
		{path: "/api/v1/health", want: http.StatusOK},
		{path: "/api/v1/ready", want: http.StatusOK},
		{path: "/api/v1/profiles", want: http.StatusOK},
		{path: "/metrics", want: http.StatusOK},
		{path: "/api/v1/nope", want: http.StatusNotFound},
	}

	for _, tc := range tests {
		w := doRequest(r, http.MethodGet, tc.path, "")
		if w.Code != tc.want {
			t.Errorf("GET %s = %d, want %d", tc.path, w.Code, tc.want)
		}
	}
}

func TestRouter_SetsRequestIDAndSecurityHeaders(t *testing.T) {
	t.Parallel()

	w := doRequest(newFullRouter(t), http.MethodGet, "/api/v1/health", "")

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected nosniff header")
	}
}

func TestRouter_RejectsOversizedBody(t *testing.T) {
	t.Parallel()

	body := `{"id":"` + strings.Repeat("a", 70<<10) + `","kind":"person"}`
	w := doRequest(newFullRouter(t), http.MethodPost, "/api/v1/explore/sessions", body)
	assertStatus(t, w, http.StatusRequestEntityTooLarge)
}
