package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:         uuid.New(),
		Email:      email,
		Password:   "pw",
		AgencyName: "agency",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Project {
	tb.Helper()
	p := &types.Project{
		ID:     uuid.New(),
		Name:   "project",
		UserID: userID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

// SeedExperiment creates a running experiment with two zero-counter
// variations named "A" and "B".
func SeedExperiment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID) *types.Experiment {
	tb.Helper()
	e := &types.Experiment{
		ID:        uuid.New(),
		Name:      "experiment",
		Status:    types.ExperimentRunning,
		UserID:    userID,
		ProjectID: projectID,
		Variations: datatypes.NewJSONSlice([]types.Variation{
			{ID: uuid.New(), Name: "A"},
			{ID: uuid.New(), Name: "B"},
		}),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed experiment: %v", err)
	}
	return e
}

// UniqueEmail avoids collisions on the shared test database for tests that
// commit instead of running inside a rolled-back transaction.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}
