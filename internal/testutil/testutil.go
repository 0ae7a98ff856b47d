// Package testutil holds shared test fixtures.
package testutil

import (
	"testing"

	"github.com/moore-mac/vehicle-rental-manager/internal/fleet"
	"github.com/moore-mac/vehicle-rental-manager/internal/models"
	"github.com/moore-mac/vehicle-rental-manager/internal/storage"
)

// Repository creates a loaded repository over a fresh temp data dir.
func Repository(t *testing.T) *fleet.Repository {
	t.Helper()
	store, err := storage.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewDir: %v", err)
	}
	repo := fleet.NewRepository(store)
	if err := repo.Load(); err != nil {
		t.Fatalf("repo.Load: %v", err)
	}
	return repo
}

// Vehicle builds a minimal valid vehicle for tests.
func Vehicle(vrm string) models.Vehicle {
	return models.Vehicle{
		ID:       "veh-" + vrm,
		Make:     "Ford",
		Model:    "Focus",
		Colour:   "Blue",
		VRM:      vrm,
		Category: "Standard",
		DayRate:  "45.50",
		Status:   models.StatusAvailable,
		Branch:   "Main Branch",
	}
}
