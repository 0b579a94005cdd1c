package analysis_test

import (
	"time"

	"github.com/jkoskela/fitsight/internal/analysis"
)

var historyStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

// sessionsWithWeights builds one session per entry, spaced gapDays apart,
// each containing a single exercise at the given weight with 8 reps and 3
// sets. Estimated 1RM is proportional to weight, so progression percentages
// equal the weight change percentages.
func sessionsWithWeights(exercise string, gapDays int, weights ...float64) []analysis.Session {
	sessions := make([]analysis.Session, 0, len(weights))
	for i, w := range weights {
		date := historyStart.AddDate(0, 0, i*gapDays)
		sessions = append(sessions, analysis.Session{
			Date:            date,
			DurationMinutes: 60,
			Exercises: []analysis.ExerciseRecord{
				{ExerciseName: exercise, Date: date, WeightKg: w, Reps: 8, Sets: 3},
			},
		})
	}
	return sessions
}

// repeatWeights returns n copies of the same weight.
func repeatWeights(w float64, n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = w
	}
	return weights
}
