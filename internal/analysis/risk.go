package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Risk factor names.
const (
	FactorTrainingLoad      = "training_load"
	FactorMovementPattern   = "movement_pattern"
	FactorFatigue           = "fatigue"
	FactorMuscleImbalance   = "muscle_imbalance"
	FactorProgressionRate   = "progression_rate"
	FactorEquipmentMismatch = "equipment_mismatch"
	FactorInjuryHistory     = "injury_history"
	FactorAgeFitness        = "age_fitness"
)

// Factor weights. The documented table sums to 1.10; the assessor divides
// the weighted sum by the weight total so the overall score stays in [0,1].
const (
	weightTrainingLoad      = 0.25
	weightMovementPattern   = 0.20
	weightFatigue           = 0.20
	weightMuscleImbalance   = 0.15
	weightProgressionRate   = 0.10
	weightEquipmentMismatch = 0.05
	weightInjuryHistory     = 0.15
	weightAgeFitness        = 0.10
)

// Training-load rules.
const (
	loadSpikePct          = 20
	loadSpikeScore        = 0.4
	loadElevatedPct       = 10
	loadElevatedScore     = 0.2
	highFrequencyPerWeek  = 6
	highFrequencyScore    = 0.2
)

// Movement-pattern rules.
const (
	pushPullHighRatio   = 2.0
	pushPullLowRatio    = 0.5
	pushPullSkewScore   = 0.3
	pushPullSevereRatio = 3.0
	pushPullSevereScore = 0.3
	missingLowerScore   = 0.2
)

// Fatigue rules.
const (
	shortRecoveryGapDays = 1.5
	shortRecoveryScore   = 0.4
	volumeUpIntensityDownScore = 0.3
	longSessionMinutes   = 120
	longSessionScore     = 0.2
)

// Muscle-imbalance rules.
const (
	quadHipHighRatio    = 2.0
	quadHipLowRatio     = 0.5
	quadHipSkewScore    = 0.4
	upperLowerHighRatio = 3.0
	upperLowerSkewScore = 0.3
)

// Progression-rate rules.
const (
	fastExerciseWeeklyPct = 10
	fastExerciseScore     = 0.5
	fastOverallWeeklyPct  = 7
	fastOverallScore      = 0.3
)

// Equipment-mismatch rules.
const equipmentMismatchPerExercise = 0.25

// Injury-history rules.
const injuryHistoryPerEntry = 0.3

// Age/fitness rules.
const (
	matureAge          = 50
	matureAgeScore     = 0.3
	seniorAge          = 60
	seniorAgeScore     = 0.5
	beginnerHighIntensityPct   = 85
	beginnerHighIntensityScore = 0.3
	bmiHigh            = 30
	bmiLow             = 18.5
	bmiOutOfRangeScore = 0.2
)

// RiskAssessor computes the composite injury and fatigue risk from training
// history and the user profile.
type RiskAssessor struct {
	thresholds Thresholds
}

// NewRiskAssessor constructs a risk assessor with the given cut-points.
func NewRiskAssessor(thresholds Thresholds) *RiskAssessor {
	return &RiskAssessor{thresholds: thresholds}
}

// Assess scores the eight risk factors and folds them into one level. The
// variant chooses the high-risk cut-point: the monitoring variant raises
// high risk earlier than the injury variant.
func (a *RiskAssessor) Assess(
	profile Profile,
	sessions []Session,
	measurements []Measurement,
	variant RiskVariant,
) RiskAssessment {
	sorted := sortedByDate(sessions)
	balance := movementBalanceOf(sorted)

	factors := []FactorScore{
		a.trainingLoadFactor(sorted),
		a.movementPatternFactor(balance),
		a.fatigueFactor(sorted),
		a.muscleImbalanceFactor(balance),
		a.progressionRateFactor(sorted),
		a.equipmentMismatchFactor(profile, sorted),
		a.injuryHistoryFactor(profile),
		a.ageFitnessFactor(profile, sorted, measurements),
	}

	var weightedSum, weightTotal float64
	for _, f := range factors {
		weightedSum += f.Score * f.Weight
		weightTotal += f.Weight
	}

	var overall float64
	if weightTotal > 0 {
		overall = weightedSum / weightTotal
	}

	return RiskAssessment{
		OverallScore: overall,
		Level:        a.level(overall, variant),
		Variant:      variant,
		Factors:      factors,
	}
}

// level maps the overall score onto low/medium/high for the given variant.
func (a *RiskAssessor) level(score float64, variant RiskVariant) RiskLevel {
	high := a.thresholds.InjuryHighRisk
	if variant == VariantMonitoring {
		high = a.thresholds.MonitoringHighRisk
	}

	switch {
	case score >= high:
		return RiskHigh
	case score >= a.thresholds.MediumRisk:
		return RiskMedium
	default:
		return RiskLow
	}
}

// trainingLoadFactor scores week-over-week load jumps and training frequency.
func (a *RiskAssessor) trainingLoadFactor(sorted []Session) FactorScore {
	f := FactorScore{Name: FactorTrainingLoad, Weight: weightTrainingLoad}

	weeks := weeklyLoads(sorted)
	if len(weeks) >= 2 {
		previous := weeks[len(weeks)-2]
		latest := weeks[len(weeks)-1]
		increase := percentChange(previous.volume, latest.volume)
		switch {
		case increase > loadSpikePct:
			f.add(loadSpikeScore, fmt.Sprintf("weekly load up %.0f%% week-over-week", increase))
		case increase > loadElevatedPct:
			f.add(loadElevatedScore, fmt.Sprintf("weekly load up %.0f%% week-over-week", increase))
		}

		if latest.sessions >= highFrequencyPerWeek {
			f.add(highFrequencyScore, fmt.Sprintf("%d sessions in the latest week", latest.sessions))
		}
	}

	f.clamp()
	return f
}

// movementPatternFactor scores push:pull skew and missing lower-body work.
func (a *RiskAssessor) movementPatternFactor(balance movementBalance) FactorScore {
	f := FactorScore{Name: FactorMovementPattern, Weight: weightMovementPattern}

	if balance.push > 0 && balance.pull > 0 {
		ratio := balance.push / balance.pull
		if ratio > pushPullHighRatio || ratio < pushPullLowRatio {
			f.add(pushPullSkewScore, fmt.Sprintf("push:pull ratio %.2f outside balanced range", ratio))
		}
		if ratio > pushPullSevereRatio || ratio < 1/pushPullSevereRatio {
			f.add(pushPullSevereScore, fmt.Sprintf("push:pull ratio %.2f severely skewed", ratio))
		}
	}

	upper := balance.push + balance.pull
	lower := balance.quad + balance.hip
	if upper > 0 && lower == 0 {
		f.add(missingLowerScore, "no lower-body movement recorded")
	}

	f.clamp()
	return f
}

// fatigueFactor scores insufficient recovery between sessions, volume rising
// while intensity falls, and marathon sessions.
func (a *RiskAssessor) fatigueFactor(sorted []Session) FactorScore {
	f := FactorScore{Name: FactorFatigue, Weight: weightFatigue}

	gaps := sessionGaps(sorted)
	if len(gaps) > 0 && mean(gaps) < shortRecoveryGapDays {
		f.add(shortRecoveryScore, fmt.Sprintf("average recovery gap %.1f days", mean(gaps)))
	}

	if len(sorted) >= a.thresholds.MinSessionCount {
		volumeChange := windowChange(sorted, Session.TotalVolume)
		intensityChange := windowChange(sorted, Session.AverageIntensity)
		if volumeChange > a.thresholds.VolumeChangePct && intensityChange < -a.thresholds.IntensityChangePct {
			f.add(volumeUpIntensityDownScore, "volume rising while intensity falls")
		}
	}

	var durations []float64
	for _, sess := range sorted {
		if sess.DurationMinutes > 0 {
			durations = append(durations, float64(sess.DurationMinutes))
		}
	}
	if len(durations) > 0 && mean(durations) > longSessionMinutes {
		f.add(longSessionScore, fmt.Sprintf("average session length %.0f minutes", mean(durations)))
	}

	f.clamp()
	return f
}

// muscleImbalanceFactor scores quad:hip and upper:lower volume skew.
func (a *RiskAssessor) muscleImbalanceFactor(balance movementBalance) FactorScore {
	f := FactorScore{Name: FactorMuscleImbalance, Weight: weightMuscleImbalance}

	if balance.quad > 0 && balance.hip > 0 {
		ratio := balance.quad / balance.hip
		if ratio > quadHipHighRatio || ratio < quadHipLowRatio {
			f.add(quadHipSkewScore, fmt.Sprintf("quad:hip ratio %.2f outside balanced range", ratio))
		}
	}

	upper := balance.push + balance.pull
	lower := balance.quad + balance.hip
	if upper > 0 && lower > 0 {
		ratio := upper / lower
		if ratio > upperLowerHighRatio || ratio < 1/upperLowerHighRatio {
			f.add(upperLowerSkewScore, fmt.Sprintf("upper:lower volume ratio %.2f", ratio))
		}
	}

	f.clamp()
	return f
}

// progressionRateFactor scores implausibly fast strength gains, which tend
// to precede technique breakdown or mis-recorded data.
func (a *RiskAssessor) progressionRateFactor(sorted []Session) FactorScore {
	f := FactorScore{Name: FactorProgressionRate, Weight: weightProgressionRate}

	var weeklies []float64
	for _, p := range exerciseProgressions(sorted, a.thresholds.MinExercisePoints) {
		if p.samples < a.thresholds.MinExercisePoints {
			continue
		}
		weeklies = append(weeklies, p.weeklyPct)
		if p.weeklyPct > fastExerciseWeeklyPct {
			f.add(fastExerciseScore, fmt.Sprintf("%s progressing %.1f%%/week", p.name, p.weeklyPct))
		}
	}

	if len(weeklies) > 0 && mean(weeklies) > fastOverallWeeklyPct {
		f.add(fastOverallScore, fmt.Sprintf("overall progression %.1f%%/week", mean(weeklies)))
	}

	f.clamp()
	return f
}

// equipmentMismatchFactor scores exercises whose implied equipment is absent
// from the user's profile.
func (a *RiskAssessor) equipmentMismatchFactor(profile Profile, sorted []Session) FactorScore {
	f := FactorScore{Name: FactorEquipmentMismatch, Weight: weightEquipmentMismatch}

	if len(profile.Equipment) == 0 {
		return f
	}

	available := make(map[string]bool, len(profile.Equipment))
	for _, e := range profile.Equipment {
		available[strings.ToLower(e)] = true
	}

	mismatched := make(map[string]bool)
	for _, sess := range sorted {
		for _, rec := range sess.Exercises {
			equipment := impliedEquipment(rec.ExerciseName)
			if equipment != "" && !available[equipment] {
				mismatched[rec.ExerciseName] = true
			}
		}
	}

	names := make([]string, 0, len(mismatched))
	for name := range mismatched {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.add(equipmentMismatchPerExercise, fmt.Sprintf("%s needs equipment not in profile", name))
	}

	f.clamp()
	return f
}

// injuryHistoryFactor scores each recorded past injury.
func (a *RiskAssessor) injuryHistoryFactor(profile Profile) FactorScore {
	f := FactorScore{Name: FactorInjuryHistory, Weight: weightInjuryHistory}
	for _, injury := range profile.InjuryHistory {
		f.add(injuryHistoryPerEntry, fmt.Sprintf("history of %s", injury))
	}
	f.clamp()
	return f
}

// ageFitnessFactor scores age, inexperienced high-intensity work, and BMI
// outside the healthy band. Missing measurements simply skip the BMI rule.
func (a *RiskAssessor) ageFitnessFactor(profile Profile, sorted []Session, measurements []Measurement) FactorScore {
	f := FactorScore{Name: FactorAgeFitness, Weight: weightAgeFitness}

	switch {
	case profile.Age >= seniorAge:
		f.add(seniorAgeScore, fmt.Sprintf("age %d", profile.Age))
	case profile.Age >= matureAge:
		f.add(matureAgeScore, fmt.Sprintf("age %d", profile.Age))
	}

	if profile.ExperienceLevel == ExperienceBeginner {
		intensities := sessionValues(sorted, Session.AverageIntensity)
		if len(intensities) > 0 && mean(intensities) > beginnerHighIntensityPct {
			f.add(beginnerHighIntensityScore, "beginner training at high intensity")
		}
	}

	if bmi, ok := latestBMI(profile, measurements); ok && (bmi > bmiHigh || bmi < bmiLow) {
		f.add(bmiOutOfRangeScore, fmt.Sprintf("BMI %.1f outside healthy range", bmi))
	}

	f.clamp()
	return f
}

// add accumulates a rule hit onto the factor.
func (f *FactorScore) add(score float64, reason string) {
	f.Score += score
	f.Reasons = append(f.Reasons, reason)
}

// clamp bounds the factor score to [0,1].
func (f *FactorScore) clamp() {
	f.Score = math.Min(f.Score, 1)
}

// weeklyLoad is one calendar week's training volume and session count.
type weeklyLoad struct {
	volume   float64
	sessions int
}

// weeklyLoads buckets sessions into ISO calendar weeks, ordered
// chronologically. Weeks without sessions are not materialized.
func weeklyLoads(sorted []Session) []weeklyLoad {
	type weekKey struct {
		year int
		week int
	}

	totals := make(map[weekKey]*weeklyLoad)
	var order []weekKey
	for _, sess := range sorted {
		if sess.Date.IsZero() {
			continue
		}
		year, week := sess.Date.ISOWeek()
		key := weekKey{year: year, week: week}
		if _, ok := totals[key]; !ok {
			totals[key] = &weeklyLoad{}
			order = append(order, key)
		}
		totals[key].volume += sess.TotalVolume()
		totals[key].sessions++
	}

	weeks := make([]weeklyLoad, len(order))
	for i, key := range order {
		weeks[i] = *totals[key]
	}
	return weeks
}

// windowChange compares the mean metric of the three most recent sessions
// against the three earliest, in percent.
func windowChange(sorted []Session, value func(Session) float64) float64 {
	earliest := make([]float64, 0, windowSessions)
	recent := make([]float64, 0, windowSessions)
	for i := range windowSessions {
		earliest = append(earliest, value(sorted[i]))
		recent = append(recent, value(sorted[len(sorted)-windowSessions+i]))
	}
	return percentChange(mean(earliest), mean(recent))
}

// movementBalance holds per-pattern volume totals.
type movementBalance struct {
	push float64
	pull float64
	quad float64
	hip  float64
}

// movementBalanceOf classifies every record by movement pattern and sums
// volume per pattern. Unclassifiable exercises are ignored.
func movementBalanceOf(sorted []Session) movementBalance {
	var balance movementBalance
	for _, sess := range sorted {
		for _, rec := range sess.Exercises {
			volume := rec.Volume()
			if volume == 0 {
				continue
			}
			switch classifyMovement(rec.ExerciseName) {
			case movementPush:
				balance.push += volume
			case movementPull:
				balance.pull += volume
			case movementQuad:
				balance.quad += volume
			case movementHip:
				balance.hip += volume
			}
		}
	}
	return balance
}

type movementPattern int

const (
	movementUnknown movementPattern = iota
	movementPush
	movementPull
	movementQuad
	movementHip
)

// Keyword tables for classifying exercise names into movement patterns.
// Order matters: hinge keywords are checked before pull so that deadlifts
// land in the hip-dominant bucket.
var (
	hipKeywords  = []string{"deadlift", "rdl", "hip thrust", "good morning", "swing", "bridge", "hinge"}
	quadKeywords = []string{"squat", "lunge", "leg press", "step-up", "step up", "leg extension"}
	pushKeywords = []string{"press", "push", "dip", "fly", "flye"}
	pullKeywords = []string{"row", "pull", "curl", "chin", "shrug", "pulldown"}
)

// classifyMovement maps an exercise name onto a movement pattern by keyword.
func classifyMovement(exerciseName string) movementPattern {
	name := strings.ToLower(exerciseName)
	for _, kw := range hipKeywords {
		if strings.Contains(name, kw) {
			return movementHip
		}
	}
	for _, kw := range quadKeywords {
		if strings.Contains(name, kw) {
			return movementQuad
		}
	}
	for _, kw := range pushKeywords {
		if strings.Contains(name, kw) {
			return movementPush
		}
	}
	for _, kw := range pullKeywords {
		if strings.Contains(name, kw) {
			return movementPull
		}
	}
	return movementUnknown
}

// Equipment keyword table for the mismatch factor.
var equipmentKeywords = []struct {
	keyword   string
	equipment string
}{
	{"barbell", "barbell"},
	{"dumbbell", "dumbbell"},
	{"kettlebell", "kettlebell"},
	{"cable", "cable machine"},
	{"machine", "machine"},
	{"band", "resistance band"},
}

// impliedEquipment returns the equipment an exercise name implies, or ""
// when the name carries no equipment hint.
func impliedEquipment(exerciseName string) string {
	name := strings.ToLower(exerciseName)
	for _, entry := range equipmentKeywords {
		if strings.Contains(name, entry.keyword) {
			return entry.equipment
		}
	}
	return ""
}

// latestBMI computes BMI from the most recent measurement and profile
// height. It reports false when either input is missing.
func latestBMI(profile Profile, measurements []Measurement) (float64, bool) {
	if profile.HeightCm <= 0 {
		return 0, false
	}

	var latest Measurement
	for _, m := range measurements {
		if m.WeightKg > 0 && !m.Date.IsZero() && (latest.Date.IsZero() || m.Date.After(latest.Date)) {
			latest = m
		}
	}
	if latest.Date.IsZero() {
		return 0, false
	}

	heightM := profile.HeightCm / 100
	return latest.WeightKg / (heightM * heightM), true
}
