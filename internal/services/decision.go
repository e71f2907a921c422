package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/clients/classifier"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/data/repos"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/decision"
	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/apierr"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/clockutil"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type DecisionResult struct {
	Decision string `json:"decision"`
	Cached   bool   `json:"cached,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// DecisionService is the engine behind the public agent endpoints: it picks
// the variation a visitor sees and records conversion feedback.
//
// Known quirk carried over from the original system: a cached decision does
// not record a trial, so trials slightly undercount page views within a cache
// window. Only the computation that populated the cache incremented counters.
type DecisionService interface {
	Decide(ctx context.Context, experimentID uuid.UUID, forceFresh bool) (*DecisionResult, error)
	RecordFeedback(ctx context.Context, experimentID uuid.UUID, variationName string) error
}

type decisionService struct {
	db             *gorm.DB
	log            *logger.Logger
	experimentRepo repos.ExperimentRepo
	dailyStatRepo  repos.DailyStatRepo
	cache          decision.Cache
	classifier     classifier.Client
	clock          clockutil.Clock
}

func NewDecisionService(
	db *gorm.DB,
	log *logger.Logger,
	experimentRepo repos.ExperimentRepo,
	dailyStatRepo repos.DailyStatRepo,
	cache decision.Cache,
	classifierClient classifier.Client,
	clock clockutil.Clock,
) DecisionService {
	if clock == nil {
		clock = clockutil.System()
	}
	return &decisionService{
		db:             db,
		log:            log.With("service", "DecisionService"),
		experimentRepo: experimentRepo,
		dailyStatRepo:  dailyStatRepo,
		cache:          cache,
		classifier:     classifierClient,
		clock:          clock,
	}
}

func (ds *decisionService) Decide(ctx context.Context, experimentID uuid.UUID, forceFresh bool) (*DecisionResult, error) {
	experiment, err := ds.experimentRepo.GetByID(ctx, nil, experimentID)
	if err != nil {
		return nil, fmt.Errorf("load experiment: %w", err)
	}
	if experiment == nil {
		return nil, apierr.NotFound("experiment_not_found", "experiment not found")
	}

	// Paused and ended experiments always show the default variation and
	// leave counters and cache untouched.
	if experiment.Status != types.ExperimentRunning {
		dv, derr := experiment.DefaultVariation()
		if derr != nil {
			return nil, apierr.Internal("experiment_corrupt", derr)
		}
		return &DecisionResult{Decision: dv.Name}, nil
	}

	result, err := ds.decide(ctx, experiment, forceFresh)
	if err == nil {
		return result, nil
	}

	// The experiment existed at the top of the request, so the embedded
	// script gets a usable answer no matter what broke in between. Re-fetch
	// for the freshest variation list; fall back to the copy already loaded.
	ds.log.Error("decision failed, degrading to default variation", "experiment_id", experimentID, "error", err)
	if fresh, ferr := ds.experimentRepo.GetByID(ctx, nil, experimentID); ferr == nil && fresh != nil {
		experiment = fresh
	}
	dv, derr := experiment.DefaultVariation()
	if derr != nil {
		return nil, apierr.Internal("experiment_corrupt", derr)
	}
	return &DecisionResult{Decision: dv.Name, Warning: "degraded"}, nil
}

func (ds *decisionService) decide(ctx context.Context, experiment *types.Experiment, forceFresh bool) (*DecisionResult, error) {
	if !forceFresh {
		if cached, ok := ds.cache.Get(ctx, experiment.ID); ok {
			return &DecisionResult{Decision: cached, Cached: true}, nil
		}
	}

	winner := ""
	if ds.classifier != nil && ds.classifier.Configured() {
		name, err := ds.classifier.Decide(ctx, experiment.Variations)
		switch {
		case err == nil:
			winner = name
		case errors.Is(err, classifier.ErrRateLimited):
			ds.log.Warn("classifier rate limited, using local fallback", "experiment_id", experiment.ID)
		default:
			ds.log.Warn("classifier unavailable, using local fallback", "experiment_id", experiment.ID, "error", err)
		}
	}
	if winner == "" {
		name, err := decision.Choose(experiment.Variations)
		if err != nil {
			return nil, err
		}
		winner = name
	}

	if idx := experiment.FindVariation(winner); idx >= 0 {
		err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			experiment.Variations[idx].Trials++
			if serr := ds.experimentRepo.Save(ctx, tx, experiment); serr != nil {
				return fmt.Errorf("save trial counter: %w", serr)
			}
			return ds.recordDaily(ctx, tx, experiment, experiment.Variations[idx], 1, 0)
		})
		if err != nil {
			return nil, err
		}
	} else {
		// The classifier answered with a name we do not know. The visitor
		// still gets that answer, but no counter moves for it.
		ds.log.Warn("decision winner not in variation list, skipping counters",
			"experiment_id", experiment.ID, "winner", winner)
	}

	ds.cache.Set(ctx, experiment.ID, winner)
	return &DecisionResult{Decision: winner}, nil
}

func (ds *decisionService) RecordFeedback(ctx context.Context, experimentID uuid.UUID, variationName string) error {
	variationName = strings.TrimSpace(variationName)
	if variationName == "" {
		return apierr.Validation("missing_variation_name", "variationName is required")
	}

	experiment, err := ds.experimentRepo.GetByID(ctx, nil, experimentID)
	if err != nil {
		return fmt.Errorf("load experiment: %w", err)
	}
	if experiment == nil {
		return apierr.NotFound("experiment_not_found", "experiment not found")
	}

	idx := experiment.FindVariation(variationName)
	if idx < 0 {
		return apierr.NotFound("variation_not_found", "variation not found in experiment")
	}

	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		experiment.Variations[idx].Successes++
		if serr := ds.experimentRepo.Save(ctx, tx, experiment); serr != nil {
			return fmt.Errorf("save success counter: %w", serr)
		}
		return ds.recordDaily(ctx, tx, experiment, experiment.Variations[idx], 0, 1)
	})
}

func (ds *decisionService) recordDaily(ctx context.Context, tx *gorm.DB, experiment *types.Experiment, variation types.Variation, trials, successes int64) error {
	row := &types.DailyStat{
		UserID:        experiment.UserID,
		ProjectID:     experiment.ProjectID,
		ExperimentID:  experiment.ID,
		VariationID:   variation.ID,
		VariationName: variation.Name,
		Date:          clockutil.StartOfDayUTC(ds.clock.Now()),
		Trials:        trials,
		Successes:     successes,
	}
	if err := ds.dailyStatRepo.IncrementUpsert(ctx, tx, row); err != nil {
		return fmt.Errorf("upsert daily stat: %w", err)
	}
	return nil
}
