package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Export stores metadata about a CSV export of a user's workouts.
// The file itself resides in S3.
type Export struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	S3ObjectKey  string             `bson:"s3ObjectKey" json:"-"` // internal use
	FileName     string             `bson:"fileName" json:"fileName"`
	ContentType  string             `bson:"contentType" json:"contentType"`
	Size         int64              `bson:"size" json:"size"`
	WorkoutCount int                `bson:"workoutCount" json:"workoutCount"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
