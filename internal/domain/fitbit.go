package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FitbitToken is the persisted OAuth token for a Fitbit connection.
type FitbitToken struct {
	AccessToken  string    `bson:"accessToken" json:"-"`
	RefreshToken string    `bson:"refreshToken" json:"-"`
	TokenType    string    `bson:"tokenType" json:"tokenType"`
	Expiry       time.Time `bson:"expiry" json:"expiry"`
	Scope        string    `bson:"scope,omitempty" json:"scope,omitempty"`
}

// FitbitAccount links a user to their Fitbit account. At most one per user.
type FitbitAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	FitbitUserID string             `bson:"fitbitUserId" json:"fitbitUserId"`
	Token        FitbitToken        `bson:"token" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Activity is a Fitbit activity-log entry mapped into the workout shape.
// It is never persisted; importing one creates a Workout.
type Activity struct {
	LogID                 string    `json:"logId"`
	ActivityName          string    `json:"activityName"`
	Modality              Modality  `json:"modality"`
	StartTime             time.Time `json:"startTime"`
	ActiveDurationSeconds int       `json:"activeDurationSeconds"`
	Distance              *float64  `json:"distance,omitempty"`
	ElevationGain         *float64  `json:"elevationGain,omitempty"`
	PaceSecPerMile        *float64  `json:"paceSecPerMile,omitempty"`
	AverageHeartRate      *float64  `json:"averageHeartRate,omitempty"`
	Calories              int       `json:"calories"`
	Steps                 int       `json:"steps"`
	IsImported            bool      `json:"isImported"`
}

// IsWorkout reports whether the activity looks like a real training session
// rather than auto-detected movement.
func (a Activity) IsWorkout() bool {
	return a.Modality != ModalityOther && a.ActiveDurationSeconds > 60
}
