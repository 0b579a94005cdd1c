package analysis

import (
	"math"
	"time"
)

// Overall severity aggregation constants.
const (
	severityHighBase   = 0.8
	severityMediumBase = 0.3
	severityPerFlag    = 0.1
)

// AnomalyDetector flags statistical outliers across the volume, intensity,
// consistency-gap, and weekly-progression channels.
type AnomalyDetector struct {
	thresholds Thresholds
}

// NewAnomalyDetector constructs an anomaly detector with the given cut-points.
func NewAnomalyDetector(thresholds Thresholds) *AnomalyDetector {
	return &AnomalyDetector{thresholds: thresholds}
}

// Detect returns every flagged observation in the history. The result is a
// list, not a single verdict; use OverallSeverity to aggregate it.
func (d *AnomalyDetector) Detect(sessions []Session) []Anomaly {
	sorted := sortedByDate(sessions)

	var anomalies []Anomaly
	anomalies = append(anomalies, d.sigmaChannel(ChannelVolume, sessionValues(sorted, Session.TotalVolume), sessionRefs(sorted))...)
	anomalies = append(anomalies, d.sigmaChannel(ChannelIntensity, sessionValues(sorted, Session.AverageIntensity), sessionRefs(sorted))...)
	anomalies = append(anomalies, d.consistencyChannel(sorted)...)
	anomalies = append(anomalies, d.progressionChannel(sorted)...)
	return anomalies
}

// OverallSeverity folds a list of anomalies into a single [0,1] score: 0
// with no anomalies, a high-severity base plus a step per high flag when any
// high anomaly exists, otherwise a medium base plus a step per medium flag.
func OverallSeverity(anomalies []Anomaly) float64 {
	if len(anomalies) == 0 {
		return 0
	}

	var highCount, mediumCount int
	for _, a := range anomalies {
		switch a.Severity {
		case SeverityHigh:
			highCount++
		case SeverityMedium:
			mediumCount++
		}
	}

	var severity float64
	if highCount > 0 {
		severity = severityHighBase + severityPerFlag*float64(highCount)
	} else {
		severity = severityMediumBase + severityPerFlag*float64(mediumCount)
	}
	return math.Min(severity, 1)
}

// sigmaChannel flags values whose distance from the channel mean exceeds the
// configured sigma multiples. Zero variance flags nothing: a perfectly flat
// series has no outliers.
func (d *AnomalyDetector) sigmaChannel(channel AnomalyChannel, values []float64, refs []string) []Anomaly {
	if len(values) < d.thresholds.MinAnomalyPoints {
		return nil
	}

	m := mean(values)
	sd := sampleStdDev(values)
	if sd == 0 {
		return nil
	}

	mediumBand := d.thresholds.AnomalyMediumSigma * sd
	highBand := d.thresholds.AnomalyHighSigma * sd

	var anomalies []Anomaly
	for i, v := range values {
		deviation := math.Abs(v - m)
		if deviation <= mediumBand {
			continue
		}

		severity := SeverityMedium
		if deviation > highBand {
			severity = SeverityHigh
		}
		anomalies = append(anomalies, Anomaly{
			Channel:      channel,
			Severity:     severity,
			Observed:     v,
			ExpectedLow:  m - mediumBand,
			ExpectedHigh: m + mediumBand,
			Ref:          refs[i],
		})
	}
	return anomalies
}

// consistencyChannel runs the sigma test over the day-gaps between sessions.
func (d *AnomalyDetector) consistencyChannel(sorted []Session) []Anomaly {
	gaps := sessionGaps(sorted)

	refs := make([]string, 0, len(gaps))
	var prev time.Time
	for _, sess := range sorted {
		if sess.Date.IsZero() {
			continue
		}
		if !prev.IsZero() {
			refs = append(refs, sess.Date.Format(time.DateOnly))
		}
		prev = sess.Date
	}

	return d.sigmaChannel(ChannelConsistency, gaps, refs)
}

// progressionChannel flags week-over-week 1RM progression outside the fixed
// bands: suspiciously fast improvement is medium severity (possibly
// mis-recorded data), real decline is high severity.
func (d *AnomalyDetector) progressionChannel(sorted []Session) []Anomaly {
	var anomalies []Anomaly
	for _, p := range exerciseProgressions(sorted, d.thresholds.MinProgressionPoints) {
		if p.samples < d.thresholds.MinProgressionPoints {
			continue
		}

		switch {
		case p.weeklyPct > d.thresholds.ProgressionFastPct:
			anomalies = append(anomalies, Anomaly{
				Channel:      ChannelProgression,
				Severity:     SeverityMedium,
				Observed:     p.weeklyPct,
				ExpectedLow:  d.thresholds.ProgressionDeclinePct,
				ExpectedHigh: d.thresholds.ProgressionFastPct,
				Ref:          p.name,
			})
		case p.weeklyPct < d.thresholds.ProgressionDeclinePct:
			anomalies = append(anomalies, Anomaly{
				Channel:      ChannelProgression,
				Severity:     SeverityHigh,
				Observed:     p.weeklyPct,
				ExpectedLow:  d.thresholds.ProgressionDeclinePct,
				ExpectedHigh: d.thresholds.ProgressionFastPct,
				Ref:          p.name,
			})
		}
	}
	return anomalies
}

// sessionValues extracts a per-session metric series.
func sessionValues(sorted []Session, value func(Session) float64) []float64 {
	values := make([]float64, len(sorted))
	for i, sess := range sorted {
		values[i] = value(sess)
	}
	return values
}

// sessionRefs returns the date reference for each session.
func sessionRefs(sorted []Session) []string {
	refs := make([]string, len(sorted))
	for i, sess := range sorted {
		refs[i] = sess.Date.Format(time.DateOnly)
	}
	return refs
}
