package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/data/repos"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/data/repos/testutil"
	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/apierr"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/clockutil"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/services"
)

func newExperimentService(t *testing.T, tx *gorm.DB) services.ExperimentService {
	t.Helper()
	log := testutil.Logger(t)
	return services.NewExperimentService(
		tx,
		log,
		repos.NewExperimentRepo(tx, log),
		repos.NewProjectRepo(tx, log),
		repos.NewDailyStatRepo(tx, log),
	)
}

func strptr(s string) *string { return &s }

func TestCreateExperiment(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	user := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("create"))
	project := testutil.SeedProject(t, ctx, tx, user.ID)

	exp, err := svc.Create(ctx, user.ID, services.CreateExperimentInput{
		Name:           "headline test",
		ProjectID:      project.ID,
		VariationNames: []string{"control", "bold"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if exp.Status != types.ExperimentRunning {
		t.Fatalf("expected new experiment to be running, got %s", exp.Status)
	}
	if len(exp.Variations) != 2 {
		t.Fatalf("expected 2 variations, got %d", len(exp.Variations))
	}
	for _, v := range exp.Variations {
		if v.ID == uuid.Nil || v.Trials != 0 || v.Successes != 0 {
			t.Fatalf("expected fresh variation with id and zero counters, got %+v", v)
		}
	}
}

func TestCreateExperimentValidation(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	user := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("val"))
	project := testutil.SeedProject(t, ctx, tx, user.ID)

	cases := []struct {
		name  string
		input services.CreateExperimentInput
		code  string
	}{
		{"missing name", services.CreateExperimentInput{ProjectID: project.ID, VariationNames: []string{"a", "b"}}, "missing_name"},
		{"one variation", services.CreateExperimentInput{Name: "x", ProjectID: project.ID, VariationNames: []string{"a"}}, "too_few_variations"},
		{"duplicate names", services.CreateExperimentInput{Name: "x", ProjectID: project.ID, VariationNames: []string{"a", "a"}}, "duplicate_variation_name"},
		{"blank name", services.CreateExperimentInput{Name: "x", ProjectID: project.ID, VariationNames: []string{"a", "  "}}, "empty_variation_name"},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, user.ID, tc.input)
		if _, code := apierr.StatusOf(err); code != tc.code {
			t.Fatalf("%s: expected code %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestCreateExperimentNotProjectOwner(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("owner"))
	intruder := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("intruder"))
	project := testutil.SeedProject(t, ctx, tx, owner.ID)

	_, err := svc.Create(ctx, intruder.ID, services.CreateExperimentInput{
		Name:           "x",
		ProjectID:      project.ID,
		VariationNames: []string{"a", "b"},
	})
	if status, _ := apierr.StatusOf(err); status != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

// seedExperimentWithCounters stores an experiment whose variations carry
// non-zero counters, plus a daily stat row per variation.
func seedExperimentWithCounters(t *testing.T, ctx context.Context, tx *gorm.DB, userID, projectID uuid.UUID) (*types.Experiment, repos.DailyStatRepo) {
	t.Helper()
	log := testutil.Logger(t)
	statRepo := repos.NewDailyStatRepo(tx, log)

	exp := &types.Experiment{
		ID:        uuid.New(),
		Name:      "seeded",
		Status:    types.ExperimentRunning,
		UserID:    userID,
		ProjectID: projectID,
		Variations: datatypes.NewJSONSlice([]types.Variation{
			{ID: uuid.New(), Name: "A", Trials: 10, Successes: 3},
			{ID: uuid.New(), Name: "C", Trials: 4, Successes: 1},
		}),
	}
	if err := tx.WithContext(ctx).Create(exp).Error; err != nil {
		t.Fatalf("seed experiment: %v", err)
	}
	date := clockutil.StartOfDayUTC(time.Now())
	for _, v := range exp.Variations {
		err := statRepo.IncrementUpsert(ctx, tx, &types.DailyStat{
			UserID: userID, ProjectID: projectID, ExperimentID: exp.ID,
			VariationID: v.ID, VariationName: v.Name, Date: date,
			Trials: v.Trials, Successes: v.Successes,
		})
		if err != nil {
			t.Fatalf("seed stat: %v", err)
		}
	}
	return exp, statRepo
}

func TestUpdateReconcilesVariations(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	user := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("recon"))
	project := testutil.SeedProject(t, ctx, tx, user.ID)
	exp, statRepo := seedExperimentWithCounters(t, ctx, tx, user.ID, project.ID)
	v1 := exp.Variations[0]
	v2 := exp.Variations[1]

	// Rename v1 to "B", drop v2, add a brand new "D".
	updated, err := svc.Update(ctx, user.ID, exp.ID, services.UpdateExperimentInput{
		Variations: []services.VariationInput{
			{ID: &v1.ID, Name: "B"},
			{Name: "D"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(updated.Variations) != 2 {
		t.Fatalf("expected 2 variations, got %d", len(updated.Variations))
	}
	renamed := updated.Variations[0]
	if renamed.ID != v1.ID || renamed.Name != "B" || renamed.Trials != 10 || renamed.Successes != 3 {
		t.Fatalf("rename must keep id and counters, got %+v", renamed)
	}
	added := updated.Variations[1]
	if added.Name != "D" || added.ID == uuid.Nil || added.ID == v1.ID || added.ID == v2.ID {
		t.Fatalf("new variation must get a fresh id, got %+v", added)
	}
	if added.Trials != 0 || added.Successes != 0 {
		t.Fatalf("new variation must start at zero, got %+v", added)
	}

	// v2's stat rows are gone, v1's survive.
	stats, err := statRepo.GetByExperimentID(ctx, tx, exp.ID)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if len(stats) != 1 || stats[0].VariationID != v1.ID {
		t.Fatalf("expected only v1 stats to remain, got %+v", stats)
	}
}

func TestUpdateMatchesByNameWhenIDMissing(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	user := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("byname"))
	project := testutil.SeedProject(t, ctx, tx, user.ID)
	exp, _ := seedExperimentWithCounters(t, ctx, tx, user.ID, project.ID)
	v1 := exp.Variations[0]

	updated, err := svc.Update(ctx, user.ID, exp.ID, services.UpdateExperimentInput{
		Variations: []services.VariationInput{
			{Name: "A"},
			{Name: "C"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Variations[0].ID != v1.ID || updated.Variations[0].Trials != 10 {
		t.Fatalf("name match must adopt existing variation, got %+v", updated.Variations[0])
	}
}

func TestUpdateRename(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	user := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("rename"))
	project := testutil.SeedProject(t, ctx, tx, user.ID)
	exp := testutil.SeedExperiment(t, ctx, tx, user.ID, project.ID)

	updated, err := svc.Update(ctx, user.ID, exp.ID, services.UpdateExperimentInput{Name: strptr("  fresh name  ")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "fresh name" {
		t.Fatalf("expected trimmed rename, got %q", updated.Name)
	}
}

func TestUpdateNothingToUpdate(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	user := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("noop"))
	project := testutil.SeedProject(t, ctx, tx, user.ID)
	exp := testutil.SeedExperiment(t, ctx, tx, user.ID, project.ID)

	_, err := svc.Update(ctx, user.ID, exp.ID, services.UpdateExperimentInput{})
	if _, code := apierr.StatusOf(err); code != "nothing_to_update" {
		t.Fatalf("expected nothing_to_update, got %v", err)
	}
}

func TestUpdateValidationBeforeMutation(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	user := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("prevalidate"))
	project := testutil.SeedProject(t, ctx, tx, user.ID)
	exp := testutil.SeedExperiment(t, ctx, tx, user.ID, project.ID)

	_, err := svc.Update(ctx, user.ID, exp.ID, services.UpdateExperimentInput{
		Name: strptr("new"),
		Variations: []services.VariationInput{
			{Name: "dup"}, {Name: "dup"},
		},
	})
	if _, code := apierr.StatusOf(err); code != "duplicate_variation_name" {
		t.Fatalf("expected duplicate_variation_name, got %v", err)
	}

	// The rename must not have been applied.
	reloaded, gerr := svc.GetForOwner(ctx, user.ID, exp.ID)
	if gerr != nil {
		t.Fatalf("reload: %v", gerr)
	}
	if reloaded.Name != exp.Name {
		t.Fatalf("failed update must not mutate, name became %q", reloaded.Name)
	}
}

func TestUpdateOwnership(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("updowner"))
	intruder := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("updintruder"))
	project := testutil.SeedProject(t, ctx, tx, owner.ID)
	exp := testutil.SeedExperiment(t, ctx, tx, owner.ID, project.ID)

	_, err := svc.Update(ctx, intruder.ID, exp.ID, services.UpdateExperimentInput{Name: strptr("stolen")})
	if status, _ := apierr.StatusOf(err); status != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestGetStatsRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newExperimentService(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("statowner"))
	intruder := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("statintruder"))
	project := testutil.SeedProject(t, ctx, tx, owner.ID)
	exp, _ := seedExperimentWithCounters(t, ctx, tx, owner.ID, project.ID)

	if _, err := svc.GetStats(ctx, owner.ID, exp.ID); err != nil {
		t.Fatalf("owner stats: %v", err)
	}
	_, err := svc.GetStats(ctx, intruder.ID, exp.ID)
	if status, _ := apierr.StatusOf(err); status != http.StatusForbidden {
		t.Fatalf("expected 403 for intruder, got %v", err)
	}
}
