package api

import (
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/service"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ service.AuthService = (*stubAuthService)(nil)

type stubAuthService struct {
	user *domain.User
	err  error
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return "signed-token", s.user, s.err
}

func (s *stubAuthService) GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	return s.user, s.err
}

type stubWorkoutService struct {
	workouts  []domain.Workout
	workout   *domain.Workout
	deleted   int64
	summary   *domain.WorkoutSummary
	export    *service.ExportDetails
	err       error
	lastUser  primitive.ObjectID
	lastQuery service.WorkoutQuery
	lastInput service.WorkoutInput
	lastIDs   []primitive.ObjectID
}

func (s *stubWorkoutService) ListWorkouts(ctx context.Context, userID primitive.ObjectID, q service.WorkoutQuery) ([]domain.Workout, error) {
	s.lastUser, s.lastQuery = userID, q
	return s.workouts, s.err
}

func (s *stubWorkoutService) CreateWorkout(ctx context.Context, userID primitive.ObjectID, in service.WorkoutInput) (*domain.Workout, error) {
	s.lastUser, s.lastInput = userID, in
	return s.workout, s.err
}

func (s *stubWorkoutService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	s.lastUser = userID
	return s.workout, s.err
}

func (s *stubWorkoutService) DeleteWorkouts(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	s.lastUser, s.lastIDs = userID, ids
	return s.deleted, s.err
}

func (s *stubWorkoutService) SummarizeWorkouts(ctx context.Context, userID primitive.ObjectID, q service.WorkoutQuery) (*domain.WorkoutSummary, error) {
	s.lastUser, s.lastQuery = userID, q
	return s.summary, s.err
}

func (s *stubWorkoutService) ExportWorkouts(ctx context.Context, userID primitive.ObjectID) (*service.ExportDetails, error) {
	s.lastUser = userID
	return s.export, s.err
}

func (s *stubWorkoutService) DeleteExport(ctx context.Context, userID, exportID primitive.ObjectID) error {
	s.lastUser, s.lastIDs = userID, []primitive.ObjectID{exportID}
	return s.err
}

func (s *stubWorkoutService) ListExports(ctx context.Context, userID primitive.ObjectID) ([]service.ExportDetails, error) {
	s.lastUser = userID
	if s.export == nil {
		return []service.ExportDetails{}, s.err
	}
	return []service.ExportDetails{*s.export}, s.err
}

type stubFitbitService struct {
	authURL   string
	account   *domain.FitbitAccount
	status    *service.FitbitStatus
	token     string
	items     []service.ActivityItem
	err       error
	lastQuery service.ActivityQuery
}

func (s *stubFitbitService) SignInURL(userID primitive.ObjectID) (string, error) {
	return s.authURL, s.err
}

func (s *stubFitbitService) CompleteSignIn(ctx context.Context, code, state string) (*domain.FitbitAccount, error) {
	return s.account, s.err
}

func (s *stubFitbitService) Status(ctx context.Context, userID primitive.ObjectID) (*service.FitbitStatus, error) {
	return s.status, s.err
}

func (s *stubFitbitService) SignOut(ctx context.Context, userID primitive.ObjectID) error {
	return s.err
}

func (s *stubFitbitService) AccessToken(ctx context.Context, userID primitive.ObjectID) (string, error) {
	return s.token, s.err
}

func (s *stubFitbitService) ListActivities(ctx context.Context, userID primitive.ObjectID, q service.ActivityQuery) ([]service.ActivityItem, error) {
	s.lastQuery = q
	return s.items, s.err
}
