package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/batchmates/batchmates/internal/api"
	"github.com/batchmates/batchmates/internal/models"
)

func newProfileRouter(svc api.ProfileService) *gin.Engine {
	r := gin.New()
	r.GET("/profiles", api.NewProfileHandler(svc, testLogger()).List)

	return r
}

func TestProfileList_OK(t *testing.T) {
	t.Parallel()

	var gotLimit int
	svc := &mockProfileService{
		listFn: func(_ context.Context, limit int) ([]models.Profile, error) {
			gotLimit = limit

			return []models.Profile{{Name: "Alice"}, {Name: "Bob"}}, nil
		},
	}

	w := doRequest(newProfileRouter(svc), http.MethodGet, "/profiles?limit=2", "")
	assertStatus(t, w, http.StatusOK)

	var profiles []models.Profile
	if status := decodeEnvelope(t, w, &profiles); status != http.StatusOK {
		t.Errorf("envelope status = %d, want 200", status)
	}

	if len(profiles) != 2 || profiles[0].Name != "Alice" {
		t.Errorf("unexpected profiles %+v", profiles)
	}

	if gotLimit != 2 {
		t.Errorf("limit = %d, want 2", gotLimit)
	}
}

func TestProfileList_DefaultLimit(t *testing.T) {
	t.Parallel()

	gotLimit := -1
	svc := &mockProfileService{
		listFn: func(_ context.Context, limit int) ([]models.Profile, error) {
			gotLimit = limit

			return []models.Profile{}, nil
		},
	}

	w := doRequest(newProfileRouter(svc), http.MethodGet, "/profiles", "")
	assertStatus(t, w, http.StatusOK)

	if gotLimit != 0 {
		t.Errorf("limit = %d, want 0 so the service applies its default", gotLimit)
	}
}

func TestProfileList_InvalidLimit(t *testing.T) {
	t.Parallel()

	svc := &mockProfileService{
		listFn: func(_ context.Context, limit int) ([]models.Profile, error) {
			return nil, models.ErrInvalidLimit
		},
	}

	for _, q := range []string{"abc", "0", "101", "-5"} {
		w := doRequest(newProfileRouter(svc), http.MethodGet, "/profiles?limit="+q, "")
		assertStatus(t, w, http.StatusBadRequest)
	}
}

func TestProfileList_Unavailable(t *testing.T) {
	t.Parallel()

	svc := &mockProfileService{
		listFn: func(context.Context, int) ([]models.Profile, error) {
			return nil, models.ErrProfilesUnavailable
		},
	}

	w := doRequest(newProfileRouter(svc), http.MethodGet, "/profiles", "")
	assertStatus(t, w, http.StatusServiceUnavailable)

	if body := decodeError(t, w); body.Code != api.ErrCodeUnavailable {
		t.Errorf("code = %q, want %q", body.Code, api.ErrCodeUnavailable)
	}
}
