package analysis

import (
	"sort"
	"time"
)

const (
	daysPerWeek      = 7.0
	windowSessions   = 3
	consistencyShift = 0.1
)

// Metric names used in TrendResult.Metric.
const (
	MetricOverallStrength = "overall_strength"
	MetricVolume          = "volume"
	MetricIntensity       = "intensity"
	MetricConsistency     = "consistency"
	MetricBodyComposition = "body_composition"
)

// TrendAnalyzer classifies how the user's training metrics are moving.
type TrendAnalyzer struct {
	thresholds Thresholds
}

// NewTrendAnalyzer constructs a trend analyzer with the given cut-points.
func NewTrendAnalyzer(thresholds Thresholds) *TrendAnalyzer {
	return &TrendAnalyzer{thresholds: thresholds}
}

// Analyze produces the full trend report for one user's history. The goal
// decides which direction of body-weight change counts as improvement.
func (a *TrendAnalyzer) Analyze(sessions []Session, measurements []Measurement, goal Goal) TrendReport {
	sorted := sortedByDate(sessions)
	progressions := exerciseProgressions(sorted, a.thresholds.MinExercisePoints)

	return TrendReport{
		Exercises:       a.exerciseTrends(progressions),
		OverallStrength: a.overallStrengthTrend(progressions),
		Volume:          a.sessionAggregateTrend(sorted, MetricVolume, Session.TotalVolume, a.thresholds.VolumeChangePct),
		Intensity:       a.sessionAggregateTrend(sorted, MetricIntensity, Session.AverageIntensity, a.thresholds.IntensityChangePct),
		Consistency:     a.consistencyTrend(sorted),
		BodyComposition: a.bodyCompositionTrend(measurements, goal),
	}
}

// progression is the per-exercise 1RM progression shared by the trend,
// plateau, and anomaly analyses.
type progression struct {
	name      string
	totalPct  float64
	weeklyPct float64
	samples   int
}

// exerciseProgressions computes the 1RM progression for every exercise with
// at least minPoints valid dated records. Exercises below the point
// threshold are reported with samples only so callers can mark them as
// insufficient data instead of dropping them silently.
func exerciseProgressions(sessions []Session, minPoints int) []progression {
	series := collectExerciseSeries(sessions)

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	progressions := make([]progression, 0, len(names))
	for _, name := range names {
		records := series[name]
		p := progression{name: name, samples: len(records)}
		if len(records) >= minPoints {
			p.totalPct, p.weeklyPct = progressionRates(records)
		}
		progressions = append(progressions, p)
	}
	return progressions
}

// collectExerciseSeries groups valid exercise records by exercise name,
// sorted by date. Records without a usable weight, rep count, or date are
// excluded, not zero-filled.
func collectExerciseSeries(sessions []Session) map[string][]ExerciseRecord {
	series := make(map[string][]ExerciseRecord)
	for _, sess := range sessions {
		for _, rec := range sess.Exercises {
			if rec.WeightKg <= 0 || rec.Reps <= 0 {
				continue
			}
			if rec.Date.IsZero() {
				rec.Date = sess.Date
			}
			if rec.Date.IsZero() {
				continue
			}
			series[rec.ExerciseName] = append(series[rec.ExerciseName], rec)
		}
	}
	for name := range series {
		records := series[name]
		sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
		series[name] = records
	}
	return series
}

// progressionRates returns the total and weekly 1RM improvement percentages
// for a date-sorted record series.
func progressionRates(records []ExerciseRecord) (totalPct, weeklyPct float64) {
	first := records[0]
	last := records[len(records)-1]

	totalPct = percentChange(first.OneRepMax(), last.OneRepMax())

	weeks := DaysBetween(first.Date, last.Date) / daysPerWeek
	if weeks < 1 {
		weeks = 1
	}
	weeklyPct = totalPct / weeks
	return totalPct, weeklyPct
}

// exerciseTrends classifies each exercise's progression.
func (a *TrendAnalyzer) exerciseTrends(progressions []progression) []ExerciseTrend {
	trends := make([]ExerciseTrend, 0, len(progressions))
	for _, p := range progressions {
		trend := ExerciseTrend{
			ExerciseName: p.name,
			Direction:    DirectionInsufficientData,
			SampleCount:  p.samples,
		}
		if p.samples >= a.thresholds.MinExercisePoints {
			trend.TotalImprovementPct = p.totalPct
			trend.WeeklyImprovementPct = p.weeklyPct
			trend.Direction = a.classify(p.totalPct, a.thresholds.ExerciseImprovingPct, a.thresholds.ExerciseDecliningPct)
		}
		trends = append(trends, trend)
	}
	return trends
}

// overallStrengthTrend averages the per-exercise total improvements.
// Exercises without enough points are excluded from the mean.
func (a *TrendAnalyzer) overallStrengthTrend(progressions []progression) TrendResult {
	var totals []float64
	for _, p := range progressions {
		if p.samples >= a.thresholds.MinExercisePoints {
			totals = append(totals, p.totalPct)
		}
	}
	if len(totals) == 0 {
		return TrendResult{Metric: MetricOverallStrength, Direction: DirectionInsufficientData}
	}

	avg := mean(totals)
	return TrendResult{
		Metric:       MetricOverallStrength,
		Direction:    a.classify(avg, a.thresholds.OverallImprovingPct, a.thresholds.OverallDecliningPct),
		MagnitudePct: avg,
		SampleCount:  len(totals),
	}
}

// sessionAggregateTrend compares the mean of the most recent window of
// sessions against the mean of the earliest window.
func (a *TrendAnalyzer) sessionAggregateTrend(
	sorted []Session,
	metric string,
	value func(Session) float64,
	thresholdPct float64,
) TrendResult {
	if len(sorted) < a.thresholds.MinSessionCount {
		return TrendResult{Metric: metric, Direction: DirectionInsufficientData, SampleCount: len(sorted)}
	}

	change := windowChange(sorted, value)
	return TrendResult{
		Metric:       metric,
		Direction:    a.classify(change, thresholdPct, -thresholdPct),
		MagnitudePct: change,
		SampleCount:  len(sorted),
	}
}

// consistencyTrend compares schedule regularity between the earlier and the
// more recent half of the day-gap series. The magnitude is the score change
// expressed in percentage points.
func (a *TrendAnalyzer) consistencyTrend(sorted []Session) TrendResult {
	gaps := sessionGaps(sorted)
	if len(sorted) < a.thresholds.MinSessionCount || len(gaps) < 2 {
		return TrendResult{Metric: MetricConsistency, Direction: DirectionInsufficientData, SampleCount: len(sorted)}
	}

	half := len(gaps) / 2
	earlier := ConsistencyScore(gaps[:half])
	recent := ConsistencyScore(gaps[half:])

	shift := recent - earlier
	direction := DirectionStable
	if shift > consistencyShift {
		direction = DirectionImproving
	} else if shift < -consistencyShift {
		direction = DirectionDeclining
	}

	return TrendResult{
		Metric:       MetricConsistency,
		Direction:    direction,
		MagnitudePct: shift * 100,
		SampleCount:  len(sorted),
	}
}

// bodyCompositionTrend classifies first-vs-last body weight change relative
// to the user's goal.
func (a *TrendAnalyzer) bodyCompositionTrend(measurements []Measurement, goal Goal) TrendResult {
	dated := make([]Measurement, 0, len(measurements))
	for _, m := range measurements {
		if !m.Date.IsZero() && m.WeightKg > 0 {
			dated = append(dated, m)
		}
	}
	if len(dated) < 2 {
		return TrendResult{Metric: MetricBodyComposition, Direction: DirectionInsufficientData, SampleCount: len(dated)}
	}

	sort.Slice(dated, func(i, j int) bool { return dated[i].Date.Before(dated[j].Date) })
	change := percentChange(dated[0].WeightKg, dated[len(dated)-1].WeightKg)

	return TrendResult{
		Metric:       MetricBodyComposition,
		Direction:    classifyBodyWeightChange(change, goal, a.thresholds.BodyWeightChangePct),
		MagnitudePct: change,
		SampleCount:  len(dated),
	}
}

// classifyBodyWeightChange maps a body-weight percent change onto a trend
// direction given the goal. Weight loss counts as improvement only for
// fat-loss goals; for mass-gain goals the direction is reversed, and a
// maintenance goal treats any large move as declining.
func classifyBodyWeightChange(changePct float64, goal Goal, thresholdPct float64) Direction {
	if changePct >= -thresholdPct && changePct <= thresholdPct {
		return DirectionStable
	}

	switch goal {
	case GoalMuscleGain:
		if changePct > 0 {
			return DirectionImproving
		}
		return DirectionDeclining
	case GoalMaintenance:
		return DirectionDeclining
	default:
		// Fat loss and unspecified goals: losing weight is improvement.
		if changePct < 0 {
			return DirectionImproving
		}
		return DirectionDeclining
	}
}

// classify maps a percent change onto a direction given asymmetric
// improving/declining thresholds.
func (a *TrendAnalyzer) classify(changePct, improvingPct, decliningPct float64) Direction {
	switch {
	case changePct > improvingPct:
		return DirectionImproving
	case changePct < decliningPct:
		return DirectionDeclining
	default:
		return DirectionStable
	}
}

// sortedByDate returns a date-sorted copy of the sessions. The input slice
// is never reordered; each analysis run owns its own copy.
func sortedByDate(sessions []Session) []Session {
	sorted := make([]Session, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted
}

// sessionGaps returns the day-gaps between consecutive dated sessions.
func sessionGaps(sorted []Session) []float64 {
	var gaps []float64
	var prev time.Time
	for _, sess := range sorted {
		if sess.Date.IsZero() {
			continue
		}
		if !prev.IsZero() {
			gaps = append(gaps, DaysBetween(prev, sess.Date))
		}
		prev = sess.Date
	}
	return gaps
}
