package analysis

const (
	minPlateauWeeks        = 2
	sessionsPerPlateauWeek = 3
)

// PlateauDetector finds exercises whose estimated-1RM progression has
// stalled below the configured improvement bands.
type PlateauDetector struct {
	thresholds Thresholds
}

// NewPlateauDetector constructs a plateau detector with the given cut-points.
func NewPlateauDetector(thresholds Thresholds) *PlateauDetector {
	return &PlateauDetector{thresholds: thresholds}
}

// Detect returns the full set of plateaued exercises. An exercise plateaus
// when both its total and weekly improvement fall under the thresholds over
// at least the minimum session count; exercises with fewer sessions are
// excluded, not flagged.
func (d *PlateauDetector) Detect(sessions []Session) []Plateau {
	sorted := sortedByDate(sessions)

	var plateaus []Plateau
	for _, p := range exerciseProgressions(sorted, d.thresholds.MinExercisePoints) {
		if p.samples < d.thresholds.MinPlateauSessions {
			continue
		}
		if p.totalPct >= d.thresholds.PlateauTotalPct || p.weeklyPct >= d.thresholds.PlateauWeeklyPct {
			continue
		}

		plateaus = append(plateaus, Plateau{
			ExerciseName:         p.name,
			TotalImprovementPct:  p.totalPct,
			WeeklyImprovementPct: p.weeklyPct,
			DurationWeeks:        plateauDurationWeeks(p.samples),
		})
	}
	return plateaus
}

// plateauDurationWeeks estimates how long the plateau has lasted from the
// session count, with a floor of two weeks.
func plateauDurationWeeks(sessionCount int) int {
	weeks := sessionCount / sessionsPerPlateauWeek
	if weeks < minPlateauWeeks {
		weeks = minPlateauWeeks
	}
	return weeks
}
