package seed

import (
	"alcyxob/runlog/internal/domain"
	"math"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// runWeight is how many extra times RUN is entered into the modality draw.
const runWeight = 4

var (
	descriptions = []string{
		"Easy miles along the river path",
		"Hill repeats on the north loop",
		"Progression run with a fast finish",
		"Shakeout before the weekend",
		"Track session with the club",
		"Steady effort on rolling trails",
	}
	locations = []string{"Riverside Park", "Oak Street", "Lakeshore Trail", "Maple Avenue", "High School Track"}
	listening = []string{"Jazz", "Hip Hop", "Electronic", "Podcast", "Rock", "Nothing"}
	feelings  = []string{
		"Feeling pretty good!",
		"Lovely day",
		"Kind of worn out from last workout",
	}
	strength = []string{
		"Situps, rows, and pushups",
		"band workout",
		"myrtle workout",
	}
)

// NewRNG returns a seeded generator. A zero seed uses the current time.
func NewRNG(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// Workouts generates count random workouts for userID that started
// within the given number of days before now.
func Workouts(rng *rand.Rand, userID primitive.ObjectID, now time.Time, count, days int) []domain.Workout {
	modalities := make([]domain.Modality, 0, runWeight+len(domain.Modalities))
	for i := 0; i < runWeight; i++ {
		modalities = append(modalities, domain.ModalityRun)
	}
	modalities = append(modalities, domain.Modalities...)

	window := time.Duration(days) * 24 * time.Hour
	workouts := make([]domain.Workout, 0, count)
	for i := 0; i < count; i++ {
		modality := modalities[rng.Intn(len(modalities))]
		workoutType := domain.WorkoutTypeCrossTrain
		if modality == domain.ModalityRun {
			workoutType = domain.WorkoutTypes[rng.Intn(len(domain.WorkoutTypes))]
		}

		start := now.Add(-time.Duration(rng.Int63n(int64(window) + 1))).UTC().Truncate(time.Second)
		workouts = append(workouts, domain.Workout{
			UserID:                userID,
			StartTime:             start,
			ActiveDurationSeconds: randomInt(rng, 20*60, 70*60),
			Distance:              floatPtr(randomFloat(rng, 1, 20)),
			Elevation:             floatPtr(randomFloat(rng, 50, 1500)),
			// 6 to 13 minutes per mile
			PaceSecPerMile:    floatPtr(randomFloat(rng, 360, 780)),
			AvgHeartRate:      floatPtr(float64(randomInt(rng, 100, 130))),
			Modality:          modality,
			WorkoutType:       workoutType,
			Description:       pick(rng, descriptions),
			Location:          pick(rng, locations),
			Listening:         pick(rng, listening),
			PersonalFeelings:  pick(rng, feelings),
			StrengthExercises: pick(rng, strength),
			RatingEnergy:      intPtr(randomInt(rng, 1, 5)),
			RatingDifficulty:  intPtr(randomInt(rng, 1, 5)),
			RatingGeneral:     intPtr(randomInt(rng, 1, 5)),
		})
	}
	return workouts
}

// randomInt returns a random number in [min, max].
func randomInt(rng *rand.Rand, min, max int) int {
	return min + rng.Intn(max-min+1)
}

func randomFloat(rng *rand.Rand, min, max float64) float64 {
	return math.Round((min+rng.Float64()*(max-min))*100) / 100
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
