// Package analysis implements the training analytics engine: trend
// classification, anomaly detection, plateau detection, risk scoring, and
// adaptation selection over historical workout and measurement records.
//
// Everything in this package is pure: given the same inputs (including the
// caller-supplied reference time) every function returns the same output.
// Missing or malformed data is never fatal; computations that lack enough
// records report DirectionInsufficientData instead of failing.
package analysis

import "time"

// ExerciseRecord is a single logged exercise within a workout session.
type ExerciseRecord struct {
	ExerciseName string    `json:"exercise_name"`
	Date         time.Time `json:"date"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	Sets         int       `json:"sets"`
}

// Session is a complete workout session. The engine never mutates sessions;
// they are owned by the caller-supplied history.
type Session struct {
	Date            time.Time        `json:"date"`
	Exercises       []ExerciseRecord `json:"exercises"`
	DurationMinutes int              `json:"duration_minutes"`
}

// Measurement is a body measurement used for the body-composition trend.
type Measurement struct {
	Date       time.Time `json:"date"`
	WeightKg   float64   `json:"weight_kg"`
	BodyFatPct *float64  `json:"body_fat_pct,omitempty"`
}

// Goal represents the user's primary training goal. It decides which
// direction of body-weight change counts as improvement.
type Goal string

// Training goal constants.
const (
	GoalFatLoss     Goal = "fat_loss"
	GoalMuscleGain  Goal = "muscle_gain"
	GoalMaintenance Goal = "maintenance"
)

// ExperienceLevel classifies how long the user has been training.
type ExperienceLevel string

// Experience level constants.
const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// Profile carries the user attributes consumed by the risk assessor.
type Profile struct {
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	Equipment       []string        `json:"equipment"`
	InjuryHistory   []string        `json:"injury_history"`
	Age             int             `json:"age"`
	HeightCm        float64         `json:"height_cm"`
	Goal            Goal            `json:"goal"`
}

// Direction classifies which way a metric is moving.
type Direction string

// Trend direction constants. DirectionInsufficientData is a first-class
// result state, not an error: it means too few records existed for the
// computation, and downstream consumers must treat it as "unknown".
const (
	DirectionImproving        Direction = "improving"
	DirectionStable           Direction = "stable"
	DirectionDeclining        Direction = "declining"
	DirectionInsufficientData Direction = "insufficient_data"
)

// TrendResult is the judgment for a single metric over the analysis window.
type TrendResult struct {
	Metric       string    `json:"metric"`
	Direction    Direction `json:"direction"`
	MagnitudePct float64   `json:"magnitude_pct"`
	SampleCount  int       `json:"sample_count"`
}

// ExerciseTrend augments TrendResult with per-exercise progression detail.
type ExerciseTrend struct {
	ExerciseName        string    `json:"exercise_name"`
	Direction           Direction `json:"direction"`
	TotalImprovementPct float64   `json:"total_improvement_pct"`
	WeeklyImprovementPct float64  `json:"weekly_improvement_pct"`
	SampleCount         int       `json:"sample_count"`
}

// TrendReport bundles every trend the analyzer produces in one run.
type TrendReport struct {
	Exercises       []ExerciseTrend `json:"exercises"`
	OverallStrength TrendResult     `json:"overall_strength"`
	Volume          TrendResult     `json:"volume"`
	Intensity       TrendResult     `json:"intensity"`
	Consistency     TrendResult     `json:"consistency"`
	BodyComposition TrendResult     `json:"body_composition"`
}

// AnomalyChannel identifies which statistical channel flagged a value.
type AnomalyChannel string

// Anomaly channel constants.
const (
	ChannelVolume      AnomalyChannel = "volume"
	ChannelIntensity   AnomalyChannel = "intensity"
	ChannelConsistency AnomalyChannel = "consistency"
	ChannelProgression AnomalyChannel = "progression"
)

// Severity grades how far outside the expected range an observation fell.
type Severity string

// Severity constants.
const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Anomaly is a single flagged observation. Ref identifies the flagged
// element: a session index for volume/intensity/consistency channels, an
// exercise name for progression anomalies.
type Anomaly struct {
	Channel      AnomalyChannel `json:"channel"`
	Severity     Severity       `json:"severity"`
	Observed     float64        `json:"observed"`
	ExpectedLow  float64        `json:"expected_low"`
	ExpectedHigh float64        `json:"expected_high"`
	Ref          string         `json:"ref"`
}

// Plateau marks an exercise whose estimated-1RM progression has stalled.
type Plateau struct {
	ExerciseName         string  `json:"exercise_name"`
	TotalImprovementPct  float64 `json:"total_improvement_pct"`
	WeeklyImprovementPct float64 `json:"weekly_improvement_pct"`
	DurationWeeks        int     `json:"duration_weeks"`
}

// RiskLevel buckets the composite risk score.
type RiskLevel string

// Risk level constants.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskVariant selects which high-risk cut-point applies. The injury variant
// is stricter about calling something high risk than the monitoring variant.
type RiskVariant string

// Risk variant constants.
const (
	VariantInjury     RiskVariant = "injury"
	VariantMonitoring RiskVariant = "monitoring"
)

// FactorScore is one independently computed risk factor.
type FactorScore struct {
	Name    string   `json:"name"`
	Score   float64  `json:"score"`
	Weight  float64  `json:"weight"`
	Reasons []string `json:"reasons,omitempty"`
}

// RiskAssessment is the composite risk judgment.
type RiskAssessment struct {
	OverallScore float64       `json:"overall_score"`
	Level        RiskLevel     `json:"level"`
	Variant      RiskVariant   `json:"variant"`
	Factors      []FactorScore `json:"factors"`
}

// Action is the discrete next-step training directive.
type Action string

// Adaptation action constants.
const (
	ActionMaintain            Action = "maintain"
	ActionProgressiveOverload Action = "progressive_overload"
	ActionBreakPlateau        Action = "break_plateau"
	ActionReduceLoad          Action = "reduce_load"
	ActionRecoveryFocus       Action = "recovery_focus"
	ActionSimplify            Action = "simplify"
)

// Phase is the periodization phase implied by the chosen action.
type Phase string

// Periodization phase constants.
const (
	PhaseAccumulation    Phase = "accumulation"
	PhaseIntensification Phase = "intensification"
	PhaseDeload          Phase = "deload"
	PhaseMaintenance     Phase = "maintenance"
)

// Strategy is the single adaptation directive emitted per analysis run.
// Deltas are relative percentage adjustments the plan-mutation step applies.
type Strategy struct {
	PrimaryAction     Action `json:"primary_action"`
	SecondaryAction   string `json:"secondary_action,omitempty"`
	IntensityDeltaPct float64 `json:"intensity_delta_pct"`
	VolumeDeltaPct    float64 `json:"volume_delta_pct"`
	Phase             Phase  `json:"phase"`
}
