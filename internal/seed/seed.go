// Package seed fills a user's log with demo workouts for local development.
package seed

import (
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/repository"
	"alcyxob/runlog/internal/service"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Config controls a seeding run.
type Config struct {
	Email    string
	Name     string
	Password string
	Count    int
	Days     int
	Seed     int64
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Name:  "Demo Runner",
		Count: 16,
		Days:  21,
	}
}

// Seeder replaces a user's workouts with generated ones.
type Seeder struct {
	auth     service.AuthService
	users    repository.UserRepository
	workouts repository.WorkoutRepository
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewSeeder(auth service.AuthService, users repository.UserRepository, workouts repository.WorkoutRepository, logger logrus.FieldLogger) *Seeder {
	return &Seeder{
		auth:     auth,
		users:    users,
		workouts: workouts,
		logger:   logger,
		now:      time.Now,
	}
}

// Run removes every workout of the user with cfg.Email and inserts cfg.Count
// new ones. The user is registered first when it does not exist yet.
func (s *Seeder) Run(ctx context.Context, cfg Config) ([]domain.Workout, error) {
	if cfg.Email == "" {
		return nil, errors.New("seed: email is required")
	}
	if cfg.Count < 0 || cfg.Days < 1 {
		return nil, fmt.Errorf("seed: invalid count %d or days %d", cfg.Count, cfg.Days)
	}

	user, err := s.user(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "email": user.Email})

	removed, err := s.workouts.DeleteAllForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("seed: removing workouts: %w", err)
	}
	log.WithField("removed", removed).Info("removed existing workouts")

	rng, seed := NewRNG(cfg.Seed)
	log.WithField("seed", seed).Debug("using random seed")

	generated := Workouts(rng, user.ID, s.now(), cfg.Count, cfg.Days)
	for i := range generated {
		if _, err := s.workouts.Create(ctx, &generated[i]); err != nil {
			return nil, fmt.Errorf("seed: creating workout %d: %w", i, err)
		}
	}
	log.WithField("created", len(generated)).Info("seeded workouts")
	return generated, nil
}

func (s *Seeder) user(ctx context.Context, cfg Config) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, cfg.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("seed: looking up user: %w", err)
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("seed: user %s does not exist and no password was given", cfg.Email)
	}

	user, err = s.auth.Register(ctx, cfg.Name, cfg.Email, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("seed: registering user: %w", err)
	}
	s.logger.WithField("email", user.Email).Info("registered seed user")
	return user, nil
}
