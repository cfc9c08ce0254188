package service

import (
	"alcyxob/runlog/internal/domain"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutInput is the body of a create-workout request. Numbers are decoded
// loosely and checked by Validate so every bad field can be reported at once.
type WorkoutInput struct {
	Description           string   `json:"description"`
	ActiveDurationSeconds *float64 `json:"activeDurationSeconds"`
	StartTime             string   `json:"startTime"`
	Distance              *float64 `json:"distance"`
	Elevation             *float64 `json:"elevation"`
	PaceSecPerMile        *float64 `json:"paceSecPerMile"`
	AvgHeartRate          *float64 `json:"avgHeartRate"`
	Modality              string   `json:"modality"`
	WorkoutType           string   `json:"workoutType"`
	Location              string   `json:"location"`
	Listening             string   `json:"listening"`
	PersonalFeelings      string   `json:"personalFeelings"`
	StrengthExercises     string   `json:"strengthExercises"`
	RatingEnergy          *float64 `json:"ratingEnergy"`
	RatingDifficulty      *float64 `json:"ratingDifficulty"`
	RatingGeneral         *float64 `json:"ratingGeneral"`
	FitbitLogID           string   `json:"fitbitLogId"`
}

const (
	minDescriptionLength = 10
	maxDurationSeconds   = 7 * 24 * 60 * 60
	msgRequired          = "Required"
	msgInvalidValue      = "Invalid value"
	msgInvalidDate       = "Invalid date"
)

var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseStartTime(s string) (time.Time, bool) {
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Validate checks the input and converts it into a workout owned by userID.
func (in WorkoutInput) Validate(userID primitive.ObjectID) (*domain.Workout, error) {
	problems := fieldErrors{}

	description := strings.TrimSpace(in.Description)
	switch {
	case description == "":
		problems.add("description", msgRequired)
	case len([]rune(description)) < minDescriptionLength:
		problems.add("description", "Must be at least 10 characters")
	}

	duration := 0
	if in.ActiveDurationSeconds == nil {
		problems.add("activeDurationSeconds", msgRequired)
	} else {
		// checked after rounding, the stored value is whole seconds
		rounded := math.Round(*in.ActiveDurationSeconds)
		switch {
		case math.IsNaN(rounded) || rounded <= 1:
			problems.add("activeDurationSeconds", "Must be greater than 1")
		case rounded > maxDurationSeconds:
			problems.add("activeDurationSeconds", "Must be at most one week")
		default:
			duration = int(rounded)
		}
	}

	var start time.Time
	if strings.TrimSpace(in.StartTime) == "" {
		problems.add("startTime", msgRequired)
	} else if t, ok := parseStartTime(strings.TrimSpace(in.StartTime)); ok {
		start = t
	} else {
		problems.add("startTime", msgInvalidDate)
	}

	modality := domain.Modality(in.Modality)
	if in.Modality == "" {
		problems.add("modality", msgRequired)
	} else if !modality.Valid() {
		problems.add("modality", msgInvalidValue)
	}
	workoutType := domain.WorkoutType(in.WorkoutType)
	if in.WorkoutType == "" {
		problems.add("workoutType", msgRequired)
	} else if !workoutType.Valid() {
		problems.add("workoutType", msgInvalidValue)
	}

	// elevation may be negative (net descent)
	for field, v := range map[string]*float64{
		"distance":       in.Distance,
		"paceSecPerMile": in.PaceSecPerMile,
	} {
		if v != nil && (*v < 0 || math.IsNaN(*v)) {
			problems.add(field, "Must not be negative")
		}
	}
	if in.AvgHeartRate != nil && *in.AvgHeartRate <= 0 {
		problems.add("avgHeartRate", "Must be greater than 0")
	}

	ratings := map[string]*float64{
		"ratingEnergy":     in.RatingEnergy,
		"ratingDifficulty": in.RatingDifficulty,
		"ratingGeneral":    in.RatingGeneral,
	}
	for field, v := range ratings {
		if v != nil && !validRating(*v) {
			problems.add(field, "Must be an integer from 1 to 5")
		}
	}

	if err := problems.err(); err != nil {
		return nil, err
	}

	return &domain.Workout{
		UserID:                userID,
		StartTime:             start,
		ActiveDurationSeconds: duration,
		Distance:              in.Distance,
		Elevation:             in.Elevation,
		PaceSecPerMile:        in.PaceSecPerMile,
		AvgHeartRate:          in.AvgHeartRate,
		Modality:              modality,
		WorkoutType:           workoutType,
		Description:           description,
		Location:              strings.TrimSpace(in.Location),
		Listening:             strings.TrimSpace(in.Listening),
		PersonalFeelings:      strings.TrimSpace(in.PersonalFeelings),
		StrengthExercises:     strings.TrimSpace(in.StrengthExercises),
		RatingEnergy:          ratingPtr(in.RatingEnergy),
		RatingDifficulty:      ratingPtr(in.RatingDifficulty),
		RatingGeneral:         ratingPtr(in.RatingGeneral),
		FitbitLogID:           strings.TrimSpace(in.FitbitLogID),
	}, nil
}

func validRating(v float64) bool {
	return v == math.Trunc(v) && v >= 1 && v <= 5
}

func ratingPtr(v *float64) *int {
	if v == nil {
		return nil
	}
	r := int(*v)
	return &r
}

// WorkoutQuery holds the raw list/summary query parameters.
type WorkoutQuery struct {
	Modality    string
	WorkoutType string
	From        string
	To          string
	Sort        string
	Order       string
	Limit       string
}

const maxListLimit = 1000

// Filter validates the query. A date-only "to" includes that whole day.
func (q WorkoutQuery) Filter() (domain.WorkoutFilter, error) {
	problems := fieldErrors{}
	filter := domain.WorkoutFilter{SortBy: "startTime", Descending: true}

	if q.Modality != "" {
		if m := domain.Modality(strings.ToUpper(q.Modality)); m.Valid() {
			filter.Modality = m
		} else {
			problems.add("modality", msgInvalidValue)
		}
	}
	if q.WorkoutType != "" {
		if wt := domain.WorkoutType(strings.ToUpper(q.WorkoutType)); wt.Valid() {
			filter.WorkoutType = wt
		} else {
			problems.add("workoutType", msgInvalidValue)
		}
	}

	if q.From != "" {
		if t, ok := parseStartTime(q.From); ok {
			filter.From = &t
		} else {
			problems.add("from", msgInvalidDate)
		}
	}
	if q.To != "" {
		if t, ok := parseStartTime(q.To); ok {
			if len(q.To) == len("2006-01-02") {
				t = t.AddDate(0, 0, 1)
			}
			filter.To = &t
		} else {
			problems.add("to", msgInvalidDate)
		}
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		problems.add("to", "Must be after from")
	}

	if q.Sort != "" {
		if domain.WorkoutSortFields[q.Sort] {
			filter.SortBy = q.Sort
		} else {
			problems.add("sort", msgInvalidValue)
		}
	}
	switch strings.ToLower(q.Order) {
	case "", "desc":
	case "asc":
		filter.Descending = false
	default:
		problems.add("order", msgInvalidValue)
	}

	if q.Limit != "" {
		n, err := strconv.ParseInt(q.Limit, 10, 64)
		if err != nil || n < 1 || n > maxListLimit {
			problems.add("limit", "Must be an integer from 1 to 1000")
		} else {
			filter.Limit = n
		}
	}

	return filter, problems.err()
}
