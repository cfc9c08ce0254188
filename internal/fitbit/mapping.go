package fitbit

import (
	"alcyxob/runlog/internal/domain"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"
)

// rawActivity is one entry of activities/list.json as returned with
// Accept-Language en_US (miles, feet, seconds per mile).
type rawActivity struct {
	LogID            json.Number `json:"logId"`
	ActivityName     string      `json:"activityName"`
	ActiveDuration   int64       `json:"activeDuration"` // milliseconds
	Distance         *float64    `json:"distance"`
	ElevationGain    *float64    `json:"elevationGain"`
	Pace             *float64    `json:"pace"`
	AverageHeartRate *float64    `json:"averageHeartRate"`
	Calories         int         `json:"calories"`
	Steps            int         `json:"steps"`
	StartTime        string      `json:"startTime"`
}

var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

func parseStartTime(s string) (time.Time, error) {
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unparseable startTime " + s)
}

func (r rawActivity) toActivity() (domain.Activity, error) {
	if r.LogID == "" {
		return domain.Activity{}, errors.New("missing logId")
	}
	start, err := parseStartTime(r.StartTime)
	if err != nil {
		return domain.Activity{}, err
	}

	a := domain.Activity{
		LogID:                 r.LogID.String(),
		ActivityName:          r.ActivityName,
		Modality:              ModalityFromActivityName(r.ActivityName),
		StartTime:             start,
		ActiveDurationSeconds: int(math.Round(float64(r.ActiveDuration) / 1000)),
		Distance:              r.Distance,
		ElevationGain:         r.ElevationGain,
		AverageHeartRate:      r.AverageHeartRate,
		Calories:              r.Calories,
		Steps:                 r.Steps,
	}
	switch {
	case r.Pace != nil && *r.Pace > 0:
		a.PaceSecPerMile = r.Pace
	case r.Distance != nil && *r.Distance > 0 && a.ActiveDurationSeconds > 0:
		pace := float64(a.ActiveDurationSeconds) / *r.Distance
		a.PaceSecPerMile = &pace
	}
	return a, nil
}

var modalityByActivityName = map[string]domain.Modality{
	"run":          domain.ModalityRun,
	"treadmill":    domain.ModalityRun,
	"bike":         domain.ModalityBike,
	"outdoor bike": domain.ModalityBike,
	"spinning":     domain.ModalitySpinning,
	"swim":         domain.ModalitySwim,
	"walk":         domain.ModalityWalk,
	"hike":         domain.ModalityHike,
	"elliptical":   domain.ModalityElliptical,
	"weights":      domain.ModalityStrength,
	"yoga":         domain.ModalityYoga,
}

// ModalityFromActivityName maps a Fitbit activity name to a modality.
// Unknown names map to OTHER.
func ModalityFromActivityName(name string) domain.Modality {
	if m, ok := modalityByActivityName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m
	}
	return domain.ModalityOther
}

// Draft is a new-workout body prefilled from an activity.
type Draft struct {
	Description           string             `json:"description"`
	Modality              domain.Modality    `json:"modality"`
	WorkoutType           domain.WorkoutType `json:"workoutType"`
	StartTime             time.Time          `json:"startTime"`
	ActiveDurationSeconds int                `json:"activeDurationSeconds"`
	Distance              *float64           `json:"distance,omitempty"`
	Elevation             *float64           `json:"elevation,omitempty"`
	PaceSecPerMile        *float64           `json:"paceSecPerMile,omitempty"`
	AvgHeartRate          *float64           `json:"avgHeartRate,omitempty"`
	FitbitLogID           string             `json:"fitbitLogId"`
}

const importedDescription = "Imported from fitbit"

// DraftFromActivity builds the workout body used to import a.
func DraftFromActivity(a domain.Activity) Draft {
	d := Draft{
		Description:           importedDescription,
		Modality:              a.Modality,
		WorkoutType:           domain.DefaultWorkoutType(a.Modality),
		StartTime:             a.StartTime,
		ActiveDurationSeconds: a.ActiveDurationSeconds,
		Elevation:             a.ElevationGain,
		PaceSecPerMile:        a.PaceSecPerMile,
		FitbitLogID:           a.LogID,
	}
	if a.Distance != nil {
		rounded := math.Round(*a.Distance*100) / 100
		d.Distance = &rounded
	}
	if a.AverageHeartRate != nil && *a.AverageHeartRate > 0 {
		d.AvgHeartRate = a.AverageHeartRate
	}
	return d
}
