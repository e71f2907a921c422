package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExperimentStatus string

const (
	ExperimentRunning ExperimentStatus = "running"
	ExperimentPaused  ExperimentStatus = "paused"
	ExperimentEnded   ExperimentStatus = "ended"
)

// ErrNoVariations indicates an experiment row with an empty variation list.
// Creation and update both enforce >= 2 variations, so hitting this means the
// stored data is broken and the caller should fail loudly.
var ErrNoVariations = errors.New("experiment has no variations")

// Variation is one arm of an experiment. Variations live inside the
// experiment row as a JSON document column and are replaced wholesale on
// update; they have no lifecycle of their own.
type Variation struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Trials    int64     `json:"trials"`
	Successes int64     `json:"successes"`
}

type Experiment struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string           `gorm:"not null;column:name" json:"name"`
	Status    ExperimentStatus `gorm:"not null;default:running;column:status" json:"status"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	ProjectID uuid.UUID        `gorm:"type:uuid;not null;index;column:project_id" json:"project_id"`

	Variations datatypes.JSONSlice[Variation] `gorm:"not null;column:variations" json:"variations"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Experiment) TableName() string { return "experiment" }

// DefaultVariation is the single accessor for the "show something sensible"
// answer used by every degraded path: paused/ended experiments, unconfigured
// or failing classifier, and top-level decision recovery.
func (e *Experiment) DefaultVariation() (Variation, error) {
	if e == nil || len(e.Variations) == 0 {
		return Variation{}, ErrNoVariations
	}
	return e.Variations[0], nil
}

// FindVariation returns the index of the named variation, or -1.
// Names are matched case-sensitively.
func (e *Experiment) FindVariation(name string) int {
	if e == nil {
		return -1
	}
	for i := range e.Variations {
		if e.Variations[i].Name == name {
			return i
		}
	}
	return -1
}
