package analysis

// Engine bundles the five analysis components behind one constructor so
// callers configure thresholds in a single place. All methods are pure and
// safe for concurrent use.
type Engine struct {
	trends    *TrendAnalyzer
	anomalies *AnomalyDetector
	plateaus  *PlateauDetector
	risk      *RiskAssessor
	selector  *AdaptationSelector
}

// NewEngine constructs an engine with the given thresholds.
func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{
		trends:    NewTrendAnalyzer(thresholds),
		anomalies: NewAnomalyDetector(thresholds),
		plateaus:  NewPlateauDetector(thresholds),
		risk:      NewRiskAssessor(thresholds),
		selector:  NewAdaptationSelector(thresholds),
	}
}

// AnalyzeTrends runs the trend analyzer.
func (e *Engine) AnalyzeTrends(sessions []Session, measurements []Measurement, goal Goal) TrendReport {
	return e.trends.Analyze(sessions, measurements, goal)
}

// DetectAnomalies runs the anomaly detector.
func (e *Engine) DetectAnomalies(sessions []Session) []Anomaly {
	return e.anomalies.Detect(sessions)
}

// DetectPlateaus runs the plateau detector.
func (e *Engine) DetectPlateaus(sessions []Session) []Plateau {
	return e.plateaus.Detect(sessions)
}

// AssessRisk runs the risk assessor.
func (e *Engine) AssessRisk(
	profile Profile,
	sessions []Session,
	measurements []Measurement,
	variant RiskVariant,
) RiskAssessment {
	return e.risk.Assess(profile, sessions, measurements, variant)
}

// SelectAdaptation runs the adaptation selector.
func (e *Engine) SelectAdaptation(
	trends TrendReport,
	plateaus []Plateau,
	risk RiskAssessment,
	consistency float64,
) Strategy {
	return e.selector.Select(trends, plateaus, risk, consistency)
}

// Consistency returns the schedule-regularity score for the session history.
// ok is false when the history has fewer than two dated sessions, in which
// case the score is 0 and callers should treat it as insufficient data.
func (e *Engine) Consistency(sessions []Session) (score float64, ok bool) {
	gaps := sessionGaps(sortedByDate(sessions))
	if len(gaps) == 0 {
		return 0, false
	}
	return ConsistencyScore(gaps), true
}
