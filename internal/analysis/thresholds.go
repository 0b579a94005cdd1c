package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds collects every cut-point used by the analyzers. The values are
// injected at construction so none of them live as literals inside the
// detection logic. DefaultThresholds matches the documented behavior; a
// deployment can override individual values from a YAML file.
type Thresholds struct {
	// Per-exercise strength trend classification.
	ExerciseImprovingPct float64 `yaml:"exercise_improving_pct"`
	ExerciseDecliningPct float64 `yaml:"exercise_declining_pct"`
	// Aggregate strength trend classification.
	OverallImprovingPct float64 `yaml:"overall_improving_pct"`
	OverallDecliningPct float64 `yaml:"overall_declining_pct"`
	// Session-aggregate trends.
	VolumeChangePct    float64 `yaml:"volume_change_pct"`
	IntensityChangePct float64 `yaml:"intensity_change_pct"`
	// Body-composition trend.
	BodyWeightChangePct float64 `yaml:"body_weight_change_pct"`

	// Minimum record counts.
	MinExercisePoints    int `yaml:"min_exercise_points"`
	MinSessionCount      int `yaml:"min_session_count"`
	MinAnomalyPoints     int `yaml:"min_anomaly_points"`
	MinPlateauSessions   int `yaml:"min_plateau_sessions"`
	MinProgressionPoints int `yaml:"min_progression_points"`

	// Anomaly detection.
	AnomalyMediumSigma    float64 `yaml:"anomaly_medium_sigma"`
	AnomalyHighSigma      float64 `yaml:"anomaly_high_sigma"`
	ProgressionFastPct    float64 `yaml:"progression_fast_pct"`
	ProgressionDeclinePct float64 `yaml:"progression_decline_pct"`

	// Plateau detection.
	PlateauTotalPct  float64 `yaml:"plateau_total_pct"`
	PlateauWeeklyPct float64 `yaml:"plateau_weekly_pct"`

	// Risk level cut-points per variant.
	InjuryHighRisk     float64 `yaml:"injury_high_risk"`
	MonitoringHighRisk float64 `yaml:"monitoring_high_risk"`
	MediumRisk         float64 `yaml:"medium_risk"`

	// Adaptation selection.
	OverloadConsistency float64 `yaml:"overload_consistency"`
	SimplifyConsistency float64 `yaml:"simplify_consistency"`
	HighFatigueScore    float64 `yaml:"high_fatigue_score"`
}

// DefaultThresholds returns the standard cut-point configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExerciseImprovingPct: 5,
		ExerciseDecliningPct: -5,
		OverallImprovingPct:  3,
		OverallDecliningPct:  -3,
		VolumeChangePct:      10,
		IntensityChangePct:   5,
		BodyWeightChangePct:  2,

		MinExercisePoints:    3,
		MinSessionCount:      5,
		MinAnomalyPoints:     5,
		MinPlateauSessions:   5,
		MinProgressionPoints: 3,

		AnomalyMediumSigma:    2,
		AnomalyHighSigma:      3,
		ProgressionFastPct:    10,
		ProgressionDeclinePct: -5,

		PlateauTotalPct:  2,
		PlateauWeeklyPct: 0.5,

		InjuryHighRisk:     0.7,
		MonitoringHighRisk: 0.6,
		MediumRisk:         0.35,

		OverloadConsistency: 0.7,
		SimplifyConsistency: 0.4,
		HighFatigueScore:    0.6,
	}
}

// LoadThresholds reads threshold overrides from a YAML file on top of the
// defaults. Fields absent from the file keep their default values.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("read thresholds file: %w", err)
	}

	if err = yaml.Unmarshal(data, &t); err != nil {
		return Thresholds{}, fmt.Errorf("parse thresholds file: %w", err)
	}

	if err = t.validate(); err != nil {
		return Thresholds{}, fmt.Errorf("validate thresholds: %w", err)
	}

	return t, nil
}

func (t Thresholds) validate() error {
	if t.ExerciseImprovingPct <= t.ExerciseDecliningPct {
		return fmt.Errorf("exercise improving threshold %.2f must exceed declining threshold %.2f",
			t.ExerciseImprovingPct, t.ExerciseDecliningPct)
	}
	if t.AnomalyHighSigma < t.AnomalyMediumSigma {
		return fmt.Errorf("high sigma %.2f must be at least medium sigma %.2f",
			t.AnomalyHighSigma, t.AnomalyMediumSigma)
	}
	if t.MinExercisePoints < 2 {
		return fmt.Errorf("min exercise points %d must be at least 2", t.MinExercisePoints)
	}
	if t.MinProgressionPoints < 2 {
		return fmt.Errorf("min progression points %d must be at least 2", t.MinProgressionPoints)
	}
	// The aggregate trends compare the earliest and most recent windows, so
	// histories shorter than one window must stay classified as insufficient.
	if t.MinSessionCount < windowSessions {
		return fmt.Errorf("min session count %d must be at least the %d-session comparison window",
			t.MinSessionCount, windowSessions)
	}
	if t.MediumRisk <= 0 || t.InjuryHighRisk > 1 || t.MonitoringHighRisk > 1 {
		return fmt.Errorf("risk cut-points must stay within (0, 1]")
	}
	return nil
}
