package service

import (
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/observability"
	"alcyxob/runlog/internal/repository"
	"alcyxob/runlog/internal/storage"
	"alcyxob/runlog/internal/units"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const exportContentType = "text/csv"

// ExportDetails is an export together with a temporary download link.
type ExportDetails struct {
	domain.Export
	DownloadURL string `json:"downloadUrl"`
}

type WorkoutService interface {
	ListWorkouts(ctx context.Context, userID primitive.ObjectID, query WorkoutQuery) ([]domain.Workout, error)
	CreateWorkout(ctx context.Context, userID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error)
	// DeleteWorkout removes one workout and returns it.
	DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	// DeleteWorkouts removes several workouts. Either all belong to the user or nothing is deleted.
	DeleteWorkouts(ctx context.Context, userID primitive.ObjectID, workoutIDs []primitive.ObjectID) (int64, error)
	SummarizeWorkouts(ctx context.Context, userID primitive.ObjectID, query WorkoutQuery) (*domain.WorkoutSummary, error)

	ExportWorkouts(ctx context.Context, userID primitive.ObjectID) (*ExportDetails, error)
	ListExports(ctx context.Context, userID primitive.ObjectID) ([]ExportDetails, error)
	// DeleteExport removes the stored file and its metadata.
	DeleteExport(ctx context.Context, userID, exportID primitive.ObjectID) error
}

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	exportRepo  repository.ExportRepository
	fileStorage storage.FileStorage
	logger      logrus.FieldLogger
	now         func() time.Time
}

// NewWorkoutService creates a new workout service.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	exportRepo repository.ExportRepository,
	fileStorage storage.FileStorage,
	logger logrus.FieldLogger,
) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		exportRepo:  exportRepo,
		fileStorage: fileStorage,
		logger:      logger.WithField("service", "workouts"),
		now:         time.Now,
	}
}

func (s *workoutService) ListWorkouts(ctx context.Context, userID primitive.ObjectID, query WorkoutQuery) ([]domain.Workout, error) {
	filter, err := query.Filter()
	if err != nil {
		return nil, err
	}
	return s.workoutRepo.ListByUser(ctx, userID, filter)
}

func (s *workoutService) CreateWorkout(ctx context.Context, userID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error) {
	workout, err := input.Validate(userID)
	if err != nil {
		return nil, err
	}

	id, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateImport
		}
		s.logger.WithError(err).WithField("user_id", userID.Hex()).Error("failed to create workout")
		return nil, err
	}
	workout.ID = id

	observability.RecordWorkoutCreated(workout.FitbitLogID != "")
	return workout, nil
}

func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrForbidden
	}

	if err := s.workoutRepo.Delete(ctx, workoutID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound // deleted concurrently
		}
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) DeleteWorkouts(ctx context.Context, userID primitive.ObjectID, workoutIDs []primitive.ObjectID) (int64, error) {
	if len(workoutIDs) == 0 {
		return 0, &ValidationError{Fields: map[string]string{"workoutIds": msgRequired}}
	}

	seen := make(map[primitive.ObjectID]bool, len(workoutIDs))
	ids := make([]primitive.ObjectID, 0, len(workoutIDs))
	for _, id := range workoutIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	owned, err := s.workoutRepo.CountOwned(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	if owned != int64(len(ids)) {
		return 0, ErrForbidden
	}

	return s.workoutRepo.DeleteMany(ctx, userID, ids)
}

func (s *workoutService) SummarizeWorkouts(ctx context.Context, userID primitive.ObjectID, query WorkoutQuery) (*domain.WorkoutSummary, error) {
	filter, err := query.Filter()
	if err != nil {
		return nil, err
	}
	// summaries always cover the whole range, oldest first
	filter.SortBy = "startTime"
	filter.Descending = false
	filter.Limit = 0

	workouts, err := s.workoutRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return summarize(workouts), nil
}

func summarize(workouts []domain.Workout) *domain.WorkoutSummary {
	summary := &domain.WorkoutSummary{
		Weeks:      []domain.WeeklyTotals{},
		Modalities: []domain.ModalityTotals{},
	}

	weeks := map[time.Time]*domain.WeeklyTotals{}
	modalities := map[domain.Modality]*domain.ModalityTotals{}
	for _, w := range workouts {
		summary.Totals.Add(w)

		start := units.WeekStart(w.StartTime.UTC())
		week, ok := weeks[start]
		if !ok {
			year, num := start.ISOWeek()
			week = &domain.WeeklyTotals{WeekStart: start, Year: year, Week: num}
			weeks[start] = week
		}
		week.Add(w)

		mt, ok := modalities[w.Modality]
		if !ok {
			mt = &domain.ModalityTotals{Modality: w.Modality}
			modalities[w.Modality] = mt
		}
		mt.Add(w)
	}

	for _, week := range weeks {
		summary.Weeks = append(summary.Weeks, *week)
	}
	sort.Slice(summary.Weeks, func(i, j int) bool {
		return summary.Weeks[i].WeekStart.Before(summary.Weeks[j].WeekStart)
	})
	for _, m := range domain.Modalities {
		if mt, ok := modalities[m]; ok {
			summary.Modalities = append(summary.Modalities, *mt)
		}
	}
	return summary
}

func (s *workoutService) ExportWorkouts(ctx context.Context, userID primitive.ObjectID) (*ExportDetails, error) {
	workouts, err := s.workoutRepo.ListByUser(ctx, userID, domain.WorkoutFilter{SortBy: "startTime"})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeWorkoutsCSV(&buf, workouts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	now := s.now().UTC()
	fileName := fmt.Sprintf("workouts-%s.csv", now.Format("20060102-150405"))
	objectKey := path.Join("exports", userID.Hex(), uuid.NewString()+".csv")
	log := s.logger.WithFields(logrus.Fields{"user_id": userID.Hex(), "key": objectKey})

	size := int64(buf.Len())
	if err := s.fileStorage.PutObject(ctx, objectKey, exportContentType, &buf, size); err != nil {
		log.WithError(err).Error("failed to upload export")
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	export := &domain.Export{
		UserID:       userID,
		S3ObjectKey:  objectKey,
		FileName:     fileName,
		ContentType:  exportContentType,
		Size:         size,
		WorkoutCount: len(workouts),
	}
	if _, err := s.exportRepo.Create(ctx, export); err != nil {
		log.WithError(err).Error("failed to store export metadata")
		return nil, err
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	log.WithField("workouts", len(workouts)).Info("exported workouts")
	return &ExportDetails{Export: *export, DownloadURL: url}, nil
}

func (s *workoutService) ListExports(ctx context.Context, userID primitive.ObjectID) ([]ExportDetails, error) {
	exports, err := s.exportRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]ExportDetails, 0, len(exports))
	for _, export := range exports {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, export.S3ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		details = append(details, ExportDetails{Export: export, DownloadURL: url})
	}
	return details, nil
}

func (s *workoutService) DeleteExport(ctx context.Context, userID, exportID primitive.ObjectID) error {
	export, err := s.exportRepo.GetByID(ctx, exportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExportNotFound
		}
		return err
	}
	if export.UserID != userID {
		return ErrForbidden
	}

	if err := s.fileStorage.DeleteObject(ctx, export.S3ObjectKey); err != nil {
		s.logger.WithError(err).WithField("key", export.S3ObjectKey).Error("failed to delete export object")
		return err
	}
	if err := s.exportRepo.Delete(ctx, exportID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExportNotFound
		}
		return err
	}
	return nil
}

var csvHeader = []string{
	"date", "modality", "type", "description", "distance", "elevation", "pace", "duration",
	"avg_heart_rate", "rating_energy", "rating_difficulty", "rating_general", "fitbit_log_id",
}

func writeWorkoutsCSV(buf *bytes.Buffer, workouts []domain.Workout) error {
	w := csv.NewWriter(buf)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, workout := range workouts {
		pace := ""
		if workout.PaceSecPerMile != nil {
			pace = units.PaceFromSecondsPerMile(*workout.PaceSecPerMile)
		}
		record := []string{
			workout.StartTime.UTC().Format(time.RFC3339),
			units.TitleCase(string(workout.Modality)),
			units.TitleCase(string(workout.WorkoutType)),
			workout.Description,
			formatFloat(workout.Distance),
			formatFloat(workout.Elevation),
			pace,
			units.DurationFromSeconds(float64(workout.ActiveDurationSeconds)),
			formatFloat(workout.AvgHeartRate),
			formatInt(workout.RatingEnergy),
			formatInt(workout.RatingDifficulty),
			formatInt(workout.RatingGeneral),
			workout.FitbitLogID,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
