package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

	user, err := svc.Register(ctx, "Ada Runner", " Ada@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.False(t, user.ID.IsZero())

	_, err = svc.Register(ctx, "Ada Again", "ada@example.com", "another password")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, loggedIn, err := svc.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, sessionIssuer, claims.Issuer)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

	_, err := svc.Register(context.Background(), "", "not-an-email", "short")
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

	user, err := svc.Register(ctx, "Ada Runner", "ada@example.com", "correct horse")
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Runner", got.Name)
	assert.Empty(t, got.PasswordHash)

	_, err = svc.GetUser(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	assert.Panics(t, func() { NewAuthService(newFakeUserRepo(), "", time.Hour) })
}
