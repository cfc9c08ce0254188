package service

import (
	"alcyxob/runlog/internal/config"
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/fitbit"
	"alcyxob/runlog/internal/repository"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	stateIssuer         = "runlog/fitbit-state"
	defaultActivityPage = 20
	maxActivityPage     = 100
	fitbitDateLayout    = "2006-01-02"
)

// FitbitStatus reports whether the user has linked a Fitbit account.
type FitbitStatus struct {
	Connected bool   `json:"connected"`
	FitbitID  string `json:"fitbitId,omitempty"`
}

// ActivityQuery holds the raw activity-list query parameters.
type ActivityQuery struct {
	BeforeDate      string
	AfterDate       string
	Sort            string
	Limit           string
	Offset          string
	HideNonWorkouts string
}

// ActivityItem is an activity plus the workout body that would import it.
type ActivityItem struct {
	domain.Activity
	Draft fitbit.Draft `json:"draft"`
}

type FitbitService interface {
	// SignInURL returns the Fitbit authorize URL for the user.
	SignInURL(userID primitive.ObjectID) (string, error)
	// CompleteSignIn exchanges the authorization code and stores the account.
	CompleteSignIn(ctx context.Context, code, state string) (*domain.FitbitAccount, error)
	Status(ctx context.Context, userID primitive.ObjectID) (*FitbitStatus, error)
	SignOut(ctx context.Context, userID primitive.ObjectID) error
	// AccessToken returns a usable access token, refreshing it first when it is about to expire.
	AccessToken(ctx context.Context, userID primitive.ObjectID) (string, error)
	ListActivities(ctx context.Context, userID primitive.ObjectID, query ActivityQuery) ([]ActivityItem, error)
}

type fitbitService struct {
	client       fitbit.Client
	accountRepo  repository.FitbitAccountRepository
	workoutRepo  repository.WorkoutRepository
	stateSecret  []byte
	stateTTL     time.Duration
	expiryWindow time.Duration
	logger       logrus.FieldLogger
	now          func() time.Time
}

// NewFitbitService wires the Fitbit client to account and workout storage.
// OAuth state tokens are signed with stateSecret.
func NewFitbitService(
	client fitbit.Client,
	accountRepo repository.FitbitAccountRepository,
	workoutRepo repository.WorkoutRepository,
	stateSecret string,
	cfg config.FitbitConfig,
	logger logrus.FieldLogger,
) FitbitService {
	if stateSecret == "" {
		panic("fitbit state secret cannot be empty")
	}
	stateTTL := cfg.StateExpiration
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	return &fitbitService{
		client:       client,
		accountRepo:  accountRepo,
		workoutRepo:  workoutRepo,
		stateSecret:  []byte(stateSecret),
		stateTTL:     stateTTL,
		expiryWindow: cfg.ExpiryWindow,
		logger:       logger.WithField("service", "fitbit"),
		now:          time.Now,
	}
}

// stateClaims ties an authorization round trip to the user who started it.
type stateClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *fitbitService) signState(userID primitive.ObjectID) (string, error) {
	now := s.now()
	claims := &stateClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.stateSecret)
}

func (s *fitbitService) parseState(state string) (primitive.ObjectID, error) {
	claims := &stateClaims{}
	// expiry is checked against s.now below
	parser := jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}
	token, err := parser.ParseWithClaims(state, claims, func(token *jwt.Token) (interface{}, error) {
		return s.stateSecret, nil
	})
	if err != nil || !token.Valid || claims.Issuer != stateIssuer || !claims.VerifyExpiresAt(s.now(), true) {
		return primitive.NilObjectID, ErrInvalidState
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidState
	}
	return userID, nil
}

func (s *fitbitService) SignInURL(userID primitive.ObjectID) (string, error) {
	state, err := s.signState(userID)
	if err != nil {
		return "", err
	}
	return s.client.AuthCodeURL(state), nil
}

func (s *fitbitService) CompleteSignIn(ctx context.Context, code, state string) (*domain.FitbitAccount, error) {
	problems := fieldErrors{}
	if code == "" {
		problems.add("code", msgRequired)
	}
	if state == "" {
		problems.add("state", msgRequired)
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	userID, err := s.parseState(state)
	if err != nil {
		return nil, err
	}

	grant, err := s.client.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFitbitUpstream, err)
	}

	account := &domain.FitbitAccount{
		UserID:       userID,
		FitbitUserID: grant.FitbitUserID,
		Token:        grant.Token,
	}
	if err := s.accountRepo.Upsert(ctx, account); err != nil {
		s.logger.WithError(err).WithField("user_id", userID.Hex()).Error("failed to store fitbit account")
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID.Hex(), "fitbit_id": grant.FitbitUserID}).Info("fitbit account linked")
	return account, nil
}

func (s *fitbitService) account(ctx context.Context, userID primitive.ObjectID) (*domain.FitbitAccount, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFitbitNotConnected
		}
		return nil, err
	}
	return account, nil
}

func (s *fitbitService) Status(ctx context.Context, userID primitive.ObjectID) (*FitbitStatus, error) {
	account, err := s.account(ctx, userID)
	if errors.Is(err, ErrFitbitNotConnected) {
		return &FitbitStatus{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &FitbitStatus{Connected: true, FitbitID: account.FitbitUserID}, nil
}

func (s *fitbitService) SignOut(ctx context.Context, userID primitive.ObjectID) error {
	account, err := s.account(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.client.Revoke(ctx, account.Token); err != nil {
		// the stored token is removed either way
		s.logger.WithError(err).WithField("user_id", userID.Hex()).Warn("failed to revoke fitbit token")
	}

	if err := s.accountRepo.DeleteByUserID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFitbitNotConnected
		}
		return err
	}
	return nil
}

func (s *fitbitService) AccessToken(ctx context.Context, userID primitive.ObjectID) (string, error) {
	account, err := s.account(ctx, userID)
	if err != nil {
		return "", err
	}
	if !fitbit.Expiring(account.Token, s.now(), s.expiryWindow) {
		return account.Token.AccessToken, nil
	}

	log := s.logger.WithField("user_id", userID.Hex())
	token, err := s.client.Refresh(ctx, account.Token)
	if err != nil {
		log.WithError(err).Error("fitbit token refresh failed")
		return "", ErrFitbitRefresh
	}
	if err := s.accountRepo.UpdateToken(ctx, userID, token); err != nil {
		log.WithError(err).Error("failed to persist refreshed fitbit token")
		return "", err
	}
	log.Debug("fitbit token refreshed")
	return token.AccessToken, nil
}

func (q ActivityQuery) params(now time.Time) (fitbit.ListParams, bool, error) {
	problems := fieldErrors{}
	params := fitbit.ListParams{Limit: defaultActivityPage}

	validDate := func(field, value string) {
		if _, err := time.Parse(fitbitDateLayout, value); err != nil {
			problems.add(field, msgInvalidDate)
		}
	}
	switch {
	case q.BeforeDate != "" && q.AfterDate != "":
		problems.add("afterDate", "Use either beforeDate or afterDate")
	case q.AfterDate != "":
		validDate("afterDate", q.AfterDate)
		params.AfterDate = q.AfterDate
		params.Sort = "asc"
	case q.BeforeDate != "":
		validDate("beforeDate", q.BeforeDate)
		params.BeforeDate = q.BeforeDate
		params.Sort = "desc"
	default:
		params.BeforeDate = now.AddDate(0, 0, 1).Format(fitbitDateLayout)
		params.Sort = "desc"
	}

	// Fitbit pairs beforeDate with desc and afterDate with asc.
	if q.Sort != "" && q.Sort != params.Sort {
		problems.add("sort", "Must be desc with beforeDate and asc with afterDate")
	}

	if q.Limit != "" {
		n, err := strconv.Atoi(q.Limit)
		if err != nil || n < 1 || n > maxActivityPage {
			problems.add("limit", "Must be an integer from 1 to 100")
		} else {
			params.Limit = n
		}
	}
	if q.Offset != "" {
		n, err := strconv.Atoi(q.Offset)
		if err != nil || n < 0 {
			problems.add("offset", "Must be a non-negative integer")
		} else {
			params.Offset = n
		}
	}

	hide := false
	if q.HideNonWorkouts != "" {
		b, err := strconv.ParseBool(q.HideNonWorkouts)
		if err != nil {
			problems.add("hideNonWorkouts", msgInvalidValue)
		}
		hide = b
	}

	return params, hide, problems.err()
}

func (s *fitbitService) ListActivities(ctx context.Context, userID primitive.ObjectID, query ActivityQuery) ([]ActivityItem, error) {
	params, hideNonWorkouts, err := query.params(s.now().UTC())
	if err != nil {
		return nil, err
	}

	accessToken, err := s.AccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	activities, err := s.client.ListActivities(ctx, accessToken, params)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID.Hex()).Error("failed to list fitbit activities")
		return nil, fmt.Errorf("%w: %v", ErrFitbitUpstream, err)
	}

	logIDs := make([]string, 0, len(activities))
	for _, a := range activities {
		logIDs = append(logIDs, a.LogID)
	}
	imported, err := s.workoutRepo.FitbitLogIDs(ctx, userID, logIDs)
	if err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(activities))
	for _, a := range activities {
		if hideNonWorkouts && !a.IsWorkout() {
			continue
		}
		a.IsImported = imported[a.LogID]
		items = append(items, ActivityItem{Activity: a, Draft: fitbit.DraftFromActivity(a)})
	}
	return items, nil
}
