package analysis

// Adaptation deltas, in percent of the current plan values.
const (
	plateauIntensityDelta  = 10
	deloadIntensityDelta   = -15
	deloadVolumeDelta      = -20
	overloadIntensityDelta = 5
	overloadVolumeDelta    = 10
	recoveryVolumeDelta    = -25
	simplifyVolumeDelta    = -30
)

// Secondary action labels.
const (
	secondaryChangeExercises = "change_exercises"
	secondaryDeloadWeek      = "deload_week"
)

// AdaptationSelector maps the analyzer outputs to one adaptation strategy.
// It is an ordered rule list, not a scored classifier: the first matching
// rule wins, and the order is part of the contract.
type AdaptationSelector struct {
	thresholds Thresholds
}

// NewAdaptationSelector constructs a selector with the given cut-points.
func NewAdaptationSelector(thresholds Thresholds) *AdaptationSelector {
	return &AdaptationSelector{thresholds: thresholds}
}

// Select picks the adaptation strategy. Consistency is the [0,1] regularity
// score of the user's recent schedule.
func (s *AdaptationSelector) Select(
	trends TrendReport,
	plateaus []Plateau,
	risk RiskAssessment,
	consistency float64,
) Strategy {
	strength := trends.OverallStrength.Direction

	switch {
	case len(plateaus) > 0:
		return withPhase(Strategy{
			PrimaryAction:     ActionBreakPlateau,
			SecondaryAction:   secondaryChangeExercises,
			IntensityDeltaPct: plateauIntensityDelta,
		})
	case strength == DirectionDeclining:
		return withPhase(Strategy{
			PrimaryAction:     ActionReduceLoad,
			SecondaryAction:   secondaryDeloadWeek,
			IntensityDeltaPct: deloadIntensityDelta,
			VolumeDeltaPct:    deloadVolumeDelta,
		})
	case strength == DirectionImproving && consistency >= s.thresholds.OverloadConsistency:
		return withPhase(Strategy{
			PrimaryAction:     ActionProgressiveOverload,
			IntensityDeltaPct: overloadIntensityDelta,
			VolumeDeltaPct:    overloadVolumeDelta,
		})
	case s.highFatigue(risk):
		return withPhase(Strategy{
			PrimaryAction:  ActionRecoveryFocus,
			VolumeDeltaPct: recoveryVolumeDelta,
		})
	case consistency < s.thresholds.SimplifyConsistency:
		return withPhase(Strategy{
			PrimaryAction:  ActionSimplify,
			VolumeDeltaPct: simplifyVolumeDelta,
		})
	default:
		return withPhase(Strategy{PrimaryAction: ActionMaintain})
	}
}

// highFatigue reports whether the risk assessment's fatigue factor crossed
// the configured indicator threshold.
func (s *AdaptationSelector) highFatigue(risk RiskAssessment) bool {
	for _, f := range risk.Factors {
		if f.Name == FactorFatigue {
			return f.Score >= s.thresholds.HighFatigueScore
		}
	}
	return false
}

// withPhase derives the periodization phase from the chosen action.
func withPhase(strategy Strategy) Strategy {
	switch strategy.PrimaryAction {
	case ActionProgressiveOverload:
		strategy.Phase = PhaseAccumulation
	case ActionBreakPlateau:
		strategy.Phase = PhaseIntensification
	case ActionRecoveryFocus:
		strategy.Phase = PhaseDeload
	default:
		strategy.Phase = PhaseMaintenance
	}
	return strategy
}
