package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/data/repos"
	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/apierr"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type CreateExperimentInput struct {
	Name           string
	ProjectID      uuid.UUID
	VariationNames []string
}

// VariationInput is the normalized form of a client-submitted variation.
// Clients either reference an existing variation by id (possibly renaming it)
// or submit a bare name; the optional ID captures both shapes.
type VariationInput struct {
	ID   *uuid.UUID
	Name string
}

type UpdateExperimentInput struct {
	Name       *string
	Variations []VariationInput
}

type ExperimentService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateExperimentInput) (*types.Experiment, error)
	GetForOwner(ctx context.Context, ownerID, experimentID uuid.UUID) (*types.Experiment, error)
	ListByProject(ctx context.Context, ownerID, projectID uuid.UUID) ([]*types.Experiment, error)
	GetStats(ctx context.Context, ownerID, experimentID uuid.UUID) ([]*types.DailyStat, error)
	// Update applies a rename and/or a reconciled variation list atomically,
	// deleting daily stats of removed variations in the same transaction.
	Update(ctx context.Context, ownerID, experimentID uuid.UUID, input UpdateExperimentInput) (*types.Experiment, error)
}

type experimentService struct {
	db             *gorm.DB
	log            *logger.Logger
	experimentRepo repos.ExperimentRepo
	projectRepo    repos.ProjectRepo
	dailyStatRepo  repos.DailyStatRepo
}

func NewExperimentService(
	db *gorm.DB,
	log *logger.Logger,
	experimentRepo repos.ExperimentRepo,
	projectRepo repos.ProjectRepo,
	dailyStatRepo repos.DailyStatRepo,
) ExperimentService {
	return &experimentService{
		db:             db,
		log:            log.With("service", "ExperimentService"),
		experimentRepo: experimentRepo,
		projectRepo:    projectRepo,
		dailyStatRepo:  dailyStatRepo,
	}
}

func (es *experimentService) Create(ctx context.Context, ownerID uuid.UUID, input CreateExperimentInput) (*types.Experiment, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apierr.Validation("missing_name", "experiment name is required")
	}
	if err := validateVariationNames(input.VariationNames); err != nil {
		return nil, err
	}

	project, err := es.projectRepo.GetByID(ctx, nil, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, apierr.NotFound("project_not_found", "project not found")
	}
	if project.UserID != ownerID {
		return nil, apierr.Forbidden("not_project_owner", "not authorized for this project")
	}

	variations := make([]types.Variation, 0, len(input.VariationNames))
	for _, n := range input.VariationNames {
		variations = append(variations, types.Variation{
			ID:   uuid.New(),
			Name: strings.TrimSpace(n),
		})
	}

	experiment := &types.Experiment{
		ID:         uuid.New(),
		Name:       name,
		Status:     types.ExperimentRunning,
		UserID:     ownerID,
		ProjectID:  input.ProjectID,
		Variations: datatypes.NewJSONSlice(variations),
	}
	if _, err := es.experimentRepo.Create(ctx, nil, experiment); err != nil {
		return nil, fmt.Errorf("create experiment: %w", err)
	}
	return experiment, nil
}

func (es *experimentService) GetForOwner(ctx context.Context, ownerID, experimentID uuid.UUID) (*types.Experiment, error) {
	return es.loadOwned(ctx, ownerID, experimentID)
}

func (es *experimentService) ListByProject(ctx context.Context, ownerID, projectID uuid.UUID) ([]*types.Experiment, error) {
	project, err := es.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, apierr.NotFound("project_not_found", "project not found")
	}
	if project.UserID != ownerID {
		return nil, apierr.Forbidden("not_project_owner", "not authorized for this project")
	}
	experiments, err := es.experimentRepo.GetByProjectID(ctx, nil, projectID)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	return experiments, nil
}

func (es *experimentService) GetStats(ctx context.Context, ownerID, experimentID uuid.UUID) ([]*types.DailyStat, error) {
	if _, err := es.loadOwned(ctx, ownerID, experimentID); err != nil {
		return nil, err
	}
	stats, err := es.dailyStatRepo.GetByExperimentID(ctx, nil, experimentID)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}

func (es *experimentService) Update(ctx context.Context, ownerID, experimentID uuid.UUID, input UpdateExperimentInput) (*types.Experiment, error) {
	if input.Name == nil && input.Variations == nil {
		return nil, apierr.Validation("nothing_to_update", "provide name and/or variations")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, apierr.Validation("missing_name", "experiment name must not be empty")
	}
	if input.Variations != nil {
		names := make([]string, 0, len(input.Variations))
		for _, v := range input.Variations {
			names = append(names, v.Name)
		}
		if err := validateVariationNames(names); err != nil {
			return nil, err
		}
	}

	experiment, err := es.loadOwned(ctx, ownerID, experimentID)
	if err != nil {
		return nil, err
	}

	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Name != nil {
			experiment.Name = strings.TrimSpace(*input.Name)
		}
		if input.Variations != nil {
			reconciled, removedIDs := reconcileVariations(experiment.Variations, input.Variations)
			experiment.Variations = datatypes.NewJSONSlice(reconciled)
			if len(removedIDs) > 0 {
				deleted, derr := es.dailyStatRepo.DeleteByExperimentAndVariationIDs(ctx, tx, experiment.ID, removedIDs)
				if derr != nil {
					return fmt.Errorf("delete orphaned daily stats: %w", derr)
				}
				es.log.Info("removed variations during update",
					"experiment_id", experiment.ID,
					"removed_variations", len(removedIDs),
					"deleted_stat_rows", deleted,
				)
			}
		}
		return es.experimentRepo.Save(ctx, tx, experiment)
	})
	if err != nil {
		return nil, err
	}
	return experiment, nil
}

func (es *experimentService) loadOwned(ctx context.Context, ownerID, experimentID uuid.UUID) (*types.Experiment, error) {
	experiment, err := es.experimentRepo.GetByID(ctx, nil, experimentID)
	if err != nil {
		return nil, fmt.Errorf("load experiment: %w", err)
	}
	if experiment == nil {
		return nil, apierr.NotFound("experiment_not_found", "experiment not found")
	}
	if experiment.UserID != ownerID {
		return nil, apierr.Forbidden("not_experiment_owner", "not authorized for this experiment")
	}
	return experiment, nil
}

func validateVariationNames(names []string) error {
	if len(names) < 2 {
		return apierr.Validation("too_few_variations", "experiment must have at least 2 variations")
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return apierr.Validation("empty_variation_name", "variation names must not be empty")
		}
		if _, dup := seen[trimmed]; dup {
			return apierr.Validation("duplicate_variation_name", "variation name %q appears more than once", trimmed)
		}
		seen[trimmed] = struct{}{}
	}
	return nil
}

// reconcileVariations merges a submitted variation list against the stored
// one. An id match is authoritative (the client may be renaming); a name
// match adopts the existing variation; anything else is brand new with zero
// counters. Stored variations matched by neither rule are removed and their
// ids returned for stat cleanup.
func reconcileVariations(existing []types.Variation, submitted []VariationInput) ([]types.Variation, []uuid.UUID) {
	byID := make(map[uuid.UUID]types.Variation, len(existing))
	byName := make(map[string]types.Variation, len(existing))
	for _, v := range existing {
		byID[v.ID] = v
		byName[v.Name] = v
	}

	retained := make(map[uuid.UUID]struct{}, len(existing))
	out := make([]types.Variation, 0, len(submitted))

	for _, in := range submitted {
		name := strings.TrimSpace(in.Name)
		if in.ID != nil {
			if ex, ok := byID[*in.ID]; ok {
				if name != "" {
					ex.Name = name
				}
				out = append(out, ex)
				retained[ex.ID] = struct{}{}
				continue
			}
		}
		if ex, ok := byName[name]; ok {
			out = append(out, ex)
			retained[ex.ID] = struct{}{}
			continue
		}
		out = append(out, types.Variation{ID: uuid.New(), Name: name})
	}

	var removed []uuid.UUID
	for _, v := range existing {
		if _, ok := retained[v.ID]; !ok {
			removed = append(removed, v.ID)
		}
	}
	return out, removed
}
