// internal/repository/mongo/workout_repo.go
package mongo

import (
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout. A second workout with the same Fitbit log id
// for the same user is rejected with repository.ErrDuplicate.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout requires userId")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListByUser returns the user's workouts matching filter. An empty result is an empty slice.
func (r *mongoWorkoutRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, filter domain.WorkoutFilter) ([]domain.Workout, error) {
	query := bson.M{"userId": userID}
	if filter.Modality != "" {
		query["modality"] = filter.Modality
	}
	if filter.WorkoutType != "" {
		query["workoutType"] = filter.WorkoutType
	}
	if filter.From != nil || filter.To != nil {
		window := bson.M{}
		if filter.From != nil {
			window["$gte"] = *filter.From
		}
		if filter.To != nil {
			window["$lt"] = *filter.To
		}
		query["startTime"] = window
	}

	sortField := filter.SortBy
	if sortField == "" {
		sortField = "startTime"
	}
	direction := 1
	if filter.Descending {
		direction = -1
	}
	// _id as tie-breaker keeps paging stable
	findOptions := options.Find().SetSort(bson.D{{Key: sortField, Value: direction}, {Key: "_id", Value: direction}})
	if filter.Limit > 0 {
		findOptions.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// FitbitLogIDs reports which of logIDs are already stored for the user.
func (r *mongoWorkoutRepository) FitbitLogIDs(ctx context.Context, userID primitive.ObjectID, logIDs []string) (map[string]bool, error) {
	found := make(map[string]bool, len(logIDs))
	if len(logIDs) == 0 {
		return found, nil
	}

	filter := bson.M{"userId": userID, "fitbitLogId": bson.M{"$in": logIDs}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"fitbitLogId": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			FitbitLogID string `bson:"fitbitLogId"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		found[row.FitbitLogID] = true
	}
	return found, cursor.Err()
}

// CountOwned counts how many of ids belong to the user.
func (r *mongoWorkoutRepository) CountOwned(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID, "_id": bson.M{"$in": ids}})
}

// Delete removes a workout owned by userID.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	if id == primitive.NilObjectID || userID == primitive.NilObjectID {
		return errors.New("workout ID and user ID are required for deletion")
	}

	// Filter ensures the workout exists AND belongs to the user.
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteMany removes the given workouts owned by userID and returns how many were deleted.
func (r *mongoWorkoutRepository) DeleteMany(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID, "_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteAllForUser removes every workout of the user.
func (r *mongoWorkoutRepository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startTime", Value: -1}},
		},
		{
			// One workout per imported Fitbit activity, per user.
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "fitbitLogId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"fitbitLogId": bson.M{"$exists": true}}),
		},
	}
	_, err := db.Collection(workoutCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
