package mongo

import (
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestFitbitAccountRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	userID := primitive.NewObjectID()

	mt.Run("get decodes token", func(mt *mtest.T) {
		repo := NewMongoFitbitAccountRepository(mt.DB)
		ns := mt.DB.Name() + "." + fitbitAccountCollectionName
		expiry := time.Date(2021, time.October, 7, 14, 27, 18, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "userId", Value: userID},
			{Key: "fitbitUserId", Value: "68DKXQ"},
			{Key: "token", Value: bson.D{
				{Key: "accessToken", Value: "access"},
				{Key: "refreshToken", Value: "refresh"},
				{Key: "tokenType", Value: "Bearer"},
				{Key: "expiry", Value: expiry},
			}},
		}))

		account, err := repo.GetByUserID(ctx, userID)
		require.NoError(mt, err)
		assert.Equal(mt, "68DKXQ", account.FitbitUserID)
		assert.Equal(mt, "refresh", account.Token.RefreshToken)
		assert.True(mt, expiry.Equal(account.Token.Expiry))
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := NewMongoFitbitAccountRepository(mt.DB)
		ns := mt.DB.Name() + "." + fitbitAccountCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByUserID(ctx, userID)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("upsert returns stored id and creation time", func(mt *mtest.T) {
		repo := NewMongoFitbitAccountRepository(mt.DB)
		id := primitive.NewObjectID()
		created := time.Date(2021, time.October, 1, 9, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "userId", Value: userID},
			{Key: "fitbitUserId", Value: "68DKXQ"},
			{Key: "token", Value: bson.D{{Key: "accessToken", Value: "access"}}},
			{Key: "createdAt", Value: created},
			{Key: "updatedAt", Value: created.Add(time.Hour)},
		}}))

		account := &domain.FitbitAccount{UserID: userID, FitbitUserID: "68DKXQ"}
		require.NoError(mt, repo.Upsert(ctx, account))
		assert.Equal(mt, id, account.ID)
		assert.True(mt, created.Equal(account.CreatedAt))
		assert.Equal(mt, "access", account.Token.AccessToken)
	})

	mt.Run("update token of missing account", func(mt *mtest.T) {
		repo := NewMongoFitbitAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.UpdateToken(ctx, userID, domain.FitbitToken{AccessToken: "a"})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoFitbitAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.DeleteByUserID(ctx, userID))
	})
}
