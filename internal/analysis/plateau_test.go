package analysis_test

import (
	"testing"

	"github.com/jkoskela/fitsight/internal/analysis"
)

func newPlateauDetector() *analysis.PlateauDetector {
	return analysis.NewPlateauDetector(analysis.DefaultThresholds())
}

func TestDetectPlateaus(t *testing.T) {
	tests := []struct {
		name        string
		weights     []float64
		gapDays     int
		wantPlateau bool
	}{
		{
			// 1% total over four weeks: 0.25%/week. Both bands undercut.
			name:        "one percent over five sessions plateaus",
			weights:     []float64{100, 100.2, 100.5, 100.8, 101},
			gapDays:     7,
			wantPlateau: true,
		},
		{
			// 3% total clears the 2% band even though it is slow.
			name:        "three percent total is not a plateau",
			weights:     []float64{100, 100.5, 101, 102, 103},
			gapDays:     7,
			wantPlateau: false,
		},
		{
			// 1% total but compressed into under a week: weekly rate 1%
			// clears the 0.5%/week band.
			name:        "slow total but fast weekly rate is not a plateau",
			weights:     []float64{100, 100.2, 100.5, 100.8, 101},
			gapDays:     1,
			wantPlateau: false,
		},
		{
			name:        "four sessions are excluded not flagged",
			weights:     []float64{100, 100, 100, 100},
			gapDays:     7,
			wantPlateau: false,
		},
		{
			name:        "healthy progression is not a plateau",
			weights:     []float64{100, 102.5, 105, 107.5, 110},
			gapDays:     7,
			wantPlateau: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := sessionsWithWeights("Bench Press", tt.gapDays, tt.weights...)
			got := newPlateauDetector().Detect(sessions)

			if tt.wantPlateau {
				if len(got) != 1 {
					t.Fatalf("got %d plateaus, want 1", len(got))
				}
				if got[0].ExerciseName != "Bench Press" {
					t.Errorf("exercise = %q, want Bench Press", got[0].ExerciseName)
				}
				return
			}
			if len(got) != 0 {
				t.Errorf("got %d plateaus, want none: %+v", len(got), got)
			}
		})
	}
}

func TestDetectPlateaus_DurationWeeks(t *testing.T) {
	tests := []struct {
		name      string
		sessions  int
		wantWeeks int
	}{
		{name: "five sessions floor at two weeks", sessions: 5, wantWeeks: 2},
		{name: "twelve sessions span four weeks", sessions: 12, wantWeeks: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := sessionsWithWeights("Bench Press", 3, repeatWeights(100, tt.sessions)...)
			got := newPlateauDetector().Detect(sessions)

			if len(got) != 1 {
				t.Fatalf("got %d plateaus, want 1", len(got))
			}
			if got[0].DurationWeeks != tt.wantWeeks {
				t.Errorf("duration = %d weeks, want %d", got[0].DurationWeeks, tt.wantWeeks)
			}
		})
	}
}
