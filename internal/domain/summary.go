package domain

import "time"

// WorkoutTotals aggregates a group of workouts.
type WorkoutTotals struct {
	Count                int      `json:"count"`
	Distance             float64  `json:"distance"`
	DurationSeconds      int      `json:"durationSeconds"`
	Elevation            float64  `json:"elevation"`
	AvgPaceSecPerMile    *float64 `json:"avgPaceSecPerMile,omitempty"`
	AvgHeartRate         *float64 `json:"avgHeartRate,omitempty"`
	distanceDuration     int      // duration of workouts that recorded a distance
	distanceWithDuration float64  // their distance
	heartRateSum         float64
	heartRateCount       int
}

// Add folds one workout into the totals.
func (t *WorkoutTotals) Add(w Workout) {
	t.Count++
	t.DurationSeconds += w.ActiveDurationSeconds
	if w.Elevation != nil {
		t.Elevation += *w.Elevation
	}
	if w.Distance != nil {
		t.Distance += *w.Distance
		if *w.Distance > 0 {
			t.distanceDuration += w.ActiveDurationSeconds
			t.distanceWithDuration += *w.Distance
		}
	}
	if w.AvgHeartRate != nil && *w.AvgHeartRate > 0 {
		t.heartRateSum += *w.AvgHeartRate
		t.heartRateCount++
	}

	if t.distanceWithDuration > 0 {
		pace := float64(t.distanceDuration) / t.distanceWithDuration
		t.AvgPaceSecPerMile = &pace
	}
	if t.heartRateCount > 0 {
		hr := t.heartRateSum / float64(t.heartRateCount)
		t.AvgHeartRate = &hr
	}
}

// WeeklyTotals are the totals for one Monday-start week.
type WeeklyTotals struct {
	WeekStart time.Time `json:"weekStart"`
	Year      int       `json:"year"`
	Week      int       `json:"week"` // ISO week number
	WorkoutTotals
}

// ModalityTotals are the totals for one modality.
type ModalityTotals struct {
	Modality Modality `json:"modality"`
	WorkoutTotals
}

// WorkoutSummary is the derived, non-persisted aggregate view of a workout history.
type WorkoutSummary struct {
	Totals     WorkoutTotals    `json:"totals"`
	Weeks      []WeeklyTotals   `json:"weeks"`
	Modalities []ModalityTotals `json:"modalities"`
}
