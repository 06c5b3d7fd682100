package service

import (
	"context"
	"errors"
	"testing"

	"github.com/batchmates/batchmates/internal/models"
)

func TestProfileService_ListProfiles(t *testing.T) {
	profiles := make([]models.Profile, 120)
	for i := range profiles {
		profiles[i].Name = "p"
	}

	svc := NewProfileService(&mockProfileSource{profiles: profiles}, testLogger())

	tests := []struct {
		name    string
		limit   int
		wantLen int
		wantErr error
	}{
		{name: "default", limit: 0, wantLen: 50},
		{name: "explicit", limit: 5, wantLen: 5},
		{name: "max", limit: 100, wantLen: 100},
		{name: "too large", limit: 101, wantErr: models.ErrInvalidLimit},
		{name: "negative", limit: -1, wantErr: models.ErrInvalidLimit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.ListProfiles(context.Background(), tc.limit)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.wantLen {
				t.Errorf("got %d profiles, want %d", len(got), tc.wantLen)
			}
		})
	}
}

func TestProfileService_Unavailable(t *testing.T) {
	svc := NewProfileService(&mockProfileSource{err: models.ErrProfilesUnavailable}, testLogger())

	if _, err := svc.ListProfiles(context.Background(), 10); !errors.Is(err, models.ErrProfilesUnavailable) {
		t.Errorf("expected ErrProfilesUnavailable, got %v", err)
	}
}
