package mongo

import (
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestExportRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	userID := primitive.NewObjectID()

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoExportRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		export := &domain.Export{UserID: userID, S3ObjectKey: "exports/a.csv", FileName: "workouts.csv"}
		id, err := repo.Create(ctx, export)
		require.NoError(mt, err)
		assert.Equal(mt, id, export.ID)
		assert.False(mt, export.CreatedAt.IsZero())
	})

	mt.Run("create requires object key", func(mt *mtest.T) {
		repo := NewMongoExportRepository(mt.DB)
		_, err := repo.Create(ctx, &domain.Export{UserID: userID})
		assert.Error(mt, err)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewMongoExportRepository(mt.DB)
		ns := mt.DB.Name() + "." + exportCollectionName
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "userId", Value: userID},
			{Key: "s3ObjectKey", Value: "exports/a.csv"},
			{Key: "workoutCount", Value: 3},
		}))

		export, err := repo.GetByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, "exports/a.csv", export.S3ObjectKey)
		assert.Equal(mt, 3, export.WorkoutCount)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		repo := NewMongoExportRepository(mt.DB)
		ns := mt.DB.Name() + "." + exportCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMongoExportRepository(mt.DB)
		ns := mt.DB.Name() + "." + exportCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "userId", Value: userID}, {Key: "fileName", Value: "b.csv"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "userId", Value: userID}, {Key: "fileName", Value: "a.csv"}},
		))

		exports, err := repo.ListByUser(ctx, userID)
		require.NoError(mt, err)
		require.Len(mt, exports, 2)
		assert.Equal(mt, "b.csv", exports[0].FileName)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewMongoExportRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(ctx, primitive.NewObjectID(), userID)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
