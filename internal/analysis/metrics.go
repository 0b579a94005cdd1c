package analysis

import (
	"math"
	"time"
)

// repsDivisor is the Epley formula constant: 1RM = weight * (1 + reps/30).
const repsDivisor = 30.0

const hoursPerDay = 24.0

// EstimatedOneRepMax returns the Epley one-rep-max estimate for a working
// set. It returns 0 when weight or reps is non-positive; such records are
// excluded from aggregates rather than zero-filled.
func EstimatedOneRepMax(weightKg float64, reps int) float64 {
	if weightKg <= 0 || reps <= 0 {
		return 0
	}
	return weightKg * (1 + float64(reps)/repsDivisor)
}

// IntensityPercent returns the working weight as a percentage of the
// estimated one-rep max. Invalid inputs yield 0.
func IntensityPercent(weightKg float64, reps int) float64 {
	oneRM := EstimatedOneRepMax(weightKg, reps)
	if oneRM == 0 {
		return 0
	}
	return weightKg / oneRM * 100
}

// Volume returns weight x reps x sets for a record, or 0 when any component
// is non-positive.
func (r ExerciseRecord) Volume() float64 {
	if r.WeightKg <= 0 || r.Reps <= 0 || r.Sets <= 0 {
		return 0
	}
	return r.WeightKg * float64(r.Reps) * float64(r.Sets)
}

// OneRepMax returns the estimated one-rep max for the record.
func (r ExerciseRecord) OneRepMax() float64 {
	return EstimatedOneRepMax(r.WeightKg, r.Reps)
}

// Intensity returns the record's working intensity percent.
func (r ExerciseRecord) Intensity() float64 {
	return IntensityPercent(r.WeightKg, r.Reps)
}

// TotalVolume sums the volume of every valid exercise record in the session.
func (s Session) TotalVolume() float64 {
	var total float64
	for _, r := range s.Exercises {
		total += r.Volume()
	}
	return total
}

// AverageIntensity returns the mean intensity over the session's valid
// records, or 0 when the session has none.
func (s Session) AverageIntensity() float64 {
	var sum float64
	var count int
	for _, r := range s.Exercises {
		if intensity := r.Intensity(); intensity > 0 {
			sum += intensity
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// DaysBetween returns the number of days from a to b. The result is negative
// when b precedes a.
func DaysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / hoursPerDay
}

// ConsistencyScore measures how regular the day-gaps between sessions are:
// 1 for perfectly uniform gaps, approaching 0 as the gaps grow erratic.
// An empty gap list scores 0; the caller flags that as insufficient data.
func ConsistencyScore(gapsDays []float64) float64 {
	if len(gapsDays) == 0 {
		return 0
	}
	m := mean(gapsDays)
	sd := sampleStdDev(gapsDays)
	return math.Max(0, 1-sd/math.Max(m, 1))
}

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator).
// Fewer than two values yield 0.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSquares float64
	for _, v := range values {
		d := v - m
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

// percentChange returns the relative change from first to last in percent,
// guarding against a zero baseline.
func percentChange(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}
