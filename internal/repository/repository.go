package repository

import (
	"alcyxob/runlog/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, filter domain.WorkoutFilter) ([]domain.Workout, error)
	// FitbitLogIDs returns which of the given Fitbit log ids the user has already imported.
	FitbitLogIDs(ctx context.Context, userID primitive.ObjectID, logIDs []string) (map[string]bool, error)
	CountOwned(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteMany(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
	DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// FitbitAccountRepository stores the per-user Fitbit OAuth token.
type FitbitAccountRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.FitbitAccount, error)
	// Upsert creates or replaces the user's account and reloads it from storage.
	Upsert(ctx context.Context, account *domain.FitbitAccount) error
	UpdateToken(ctx context.Context, userID primitive.ObjectID, token domain.FitbitToken) error
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// ExportRepository defines the interface for interacting with export metadata.
type ExportRepository interface {
	Create(ctx context.Context, export *domain.Export) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Export, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Export, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}
