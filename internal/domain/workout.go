package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Modality is the category of exercise.
type Modality string

const (
	ModalityRun         Modality = "RUN"
	ModalityBike        Modality = "BIKE"
	ModalitySpinning    Modality = "SPINNING"
	ModalitySwim        Modality = "SWIM"
	ModalityWalk        Modality = "WALK"
	ModalityHike        Modality = "HIKE"
	ModalityInlineSkate Modality = "INLINE_SKATE"
	ModalityElliptical  Modality = "ELLIPTICAL"
	ModalityStrength    Modality = "STRENGTH"
	ModalityYoga        Modality = "YOGA"
	ModalityOther       Modality = "OTHER"
)

// Modalities lists every known modality in display order.
var Modalities = []Modality{
	ModalityRun, ModalityBike, ModalitySpinning, ModalitySwim, ModalityWalk, ModalityHike,
	ModalityInlineSkate, ModalityElliptical, ModalityStrength, ModalityYoga, ModalityOther,
}

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	for _, known := range Modalities {
		if m == known {
			return true
		}
	}
	return false
}

// WorkoutType describes the purpose of a session.
type WorkoutType string

const (
	WorkoutTypeBase       WorkoutType = "BASE"
	WorkoutTypeTempo      WorkoutType = "TEMPO"
	WorkoutTypeIntervals  WorkoutType = "INTERVALS"
	WorkoutTypeLong       WorkoutType = "LONG"
	WorkoutTypeRace       WorkoutType = "RACE"
	WorkoutTypeRecovery   WorkoutType = "RECOVERY"
	WorkoutTypeCrossTrain WorkoutType = "CROSSTRAIN"
)

var WorkoutTypes = []WorkoutType{
	WorkoutTypeBase, WorkoutTypeTempo, WorkoutTypeIntervals, WorkoutTypeLong,
	WorkoutTypeRace, WorkoutTypeRecovery, WorkoutTypeCrossTrain,
}

// Valid reports whether t is one of the known workout types.
func (t WorkoutType) Valid() bool {
	for _, known := range WorkoutTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DefaultWorkoutType is the type assumed for a modality when none is chosen:
// runs default to base miles, everything else counts as cross-training.
func DefaultWorkoutType(m Modality) WorkoutType {
	if m == ModalityRun {
		return WorkoutTypeBase
	}
	return WorkoutTypeCrossTrain
}

// Workout is a single logged exercise session.
// Distances are in miles and elevation in feet.
type Workout struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                primitive.ObjectID `bson:"userId" json:"userId"`
	StartTime             time.Time          `bson:"startTime" json:"startTime"`
	ActiveDurationSeconds int                `bson:"activeDurationSeconds" json:"activeDurationSeconds"`
	Distance              *float64           `bson:"distance,omitempty" json:"distance,omitempty"`
	Elevation             *float64           `bson:"elevation,omitempty" json:"elevation,omitempty"`
	PaceSecPerMile        *float64           `bson:"paceSecPerMile,omitempty" json:"paceSecPerMile,omitempty"`
	AvgHeartRate          *float64           `bson:"avgHeartRate,omitempty" json:"avgHeartRate,omitempty"`
	Modality              Modality           `bson:"modality" json:"modality"`
	WorkoutType           WorkoutType        `bson:"workoutType" json:"workoutType"`
	Description           string             `bson:"description" json:"description"`
	Location              string             `bson:"location,omitempty" json:"location,omitempty"`
	Listening             string             `bson:"listening,omitempty" json:"listening,omitempty"`
	PersonalFeelings      string             `bson:"personalFeelings,omitempty" json:"personalFeelings,omitempty"`
	StrengthExercises     string             `bson:"strengthExercises,omitempty" json:"strengthExercises,omitempty"`
	RatingEnergy          *int               `bson:"ratingEnergy,omitempty" json:"ratingEnergy,omitempty"`
	RatingDifficulty      *int               `bson:"ratingDifficulty,omitempty" json:"ratingDifficulty,omitempty"`
	RatingGeneral         *int               `bson:"ratingGeneral,omitempty" json:"ratingGeneral,omitempty"`
	FitbitLogID           string             `bson:"fitbitLogId,omitempty" json:"fitbitLogId,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutFilter narrows a workout listing. Zero values mean "no constraint".
type WorkoutFilter struct {
	Modality    Modality
	WorkoutType WorkoutType
	From        *time.Time // inclusive
	To          *time.Time // exclusive
	SortBy      string
	Descending  bool
	Limit       int64
}

// Sortable workout fields, keyed by their JSON/BSON name.
var WorkoutSortFields = map[string]bool{
	"startTime":             true,
	"distance":              true,
	"paceSecPerMile":        true,
	"activeDurationSeconds": true,
	"avgHeartRate":          true,
	"elevation":             true,
}
