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

const fitbitAccountCollectionName = "fitbit_accounts"

type mongoFitbitAccountRepository struct {
	collection *mongo.Collection
}

// NewMongoFitbitAccountRepository creates a FitbitAccount repository backed by MongoDB.
func NewMongoFitbitAccountRepository(db *mongo.Database) repository.FitbitAccountRepository {
	return &mongoFitbitAccountRepository{
		collection: db.Collection(fitbitAccountCollectionName),
	}
}

func (r *mongoFitbitAccountRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.FitbitAccount, error) {
	var account domain.FitbitAccount
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Upsert stores the account keyed by user id, keeping the original creation time.
// account is refreshed from the stored document, including ID and CreatedAt.
func (r *mongoFitbitAccountRepository) Upsert(ctx context.Context, account *domain.FitbitAccount) error {
	if account.UserID == primitive.NilObjectID {
		return errors.New("fitbit account requires userId")
	}
	now := time.Now().UTC()
	account.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"fitbitUserId": account.FitbitUserID,
			"token":        account.Token,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored domain.FitbitAccount
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"userId": account.UserID}, update, opts).Decode(&stored); err != nil {
		return err
	}
	*account = stored
	return nil
}

func (r *mongoFitbitAccountRepository) UpdateToken(ctx context.Context, userID primitive.ObjectID, token domain.FitbitToken) error {
	update := bson.M{"$set": bson.M{"token": token, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoFitbitAccountRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureFitbitAccountIndexes enforces one account per user.
func EnsureFitbitAccountIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(fitbitAccountCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
