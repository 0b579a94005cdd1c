package insight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jkoskela/fitsight/internal/analysis"
	"github.com/jkoskela/fitsight/internal/errors"
	"github.com/jkoskela/fitsight/internal/sqlite"
)

const (
	// defaultWindowDays bounds how much history one report considers.
	defaultWindowDays = 180
	// batchConcurrency bounds the worker pool for cross-user batch analysis.
	batchConcurrency = 4
)

// Report is the complete analysis output for one user at one point in time.
type Report struct {
	UserID              int64                   `json:"user_id"`
	GeneratedAt         time.Time               `json:"generated_at"`
	Trends              analysis.TrendReport    `json:"trends"`
	Anomalies           []analysis.Anomaly      `json:"anomalies"`
	OverallAnomalyScore float64                 `json:"overall_anomaly_score"`
	Plateaus            []analysis.Plateau      `json:"plateaus"`
	PlateauDetected     bool                    `json:"plateau_detected"`
	Risk                analysis.RiskAssessment `json:"risk"`
	Consistency         float64                 `json:"consistency"`
	Strategy            analysis.Strategy       `json:"strategy"`
}

// Service runs the analysis engine over persisted training history.
type Service struct {
	repo       *repository
	engine     *analysis.Engine
	logger     *slog.Logger
	windowDays int
}

// NewService creates an analysis service backed by the given database.
func NewService(db *sqlite.Database, thresholds analysis.Thresholds, logger *slog.Logger) *Service {
	return &Service{
		repo:       newRepository(db, logger),
		engine:     analysis.NewEngine(thresholds),
		logger:     logger,
		windowDays: defaultWindowDays,
	}
}

// Report loads the user's history and runs the full analysis. The reference
// time now bounds the history window and stamps the report; passing the same
// now over unchanged history yields an identical report.
func (s *Service) Report(ctx context.Context, userID int64, variant analysis.RiskVariant, now time.Time) (Report, error) {
	history, err := s.loadHistory(ctx, userID, now)
	if err != nil {
		return Report{}, err
	}

	report := Report{UserID: userID, GeneratedAt: now}

	// The four detectors are independent pure computations over the same
	// immutable history, so they run concurrently.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Trends = s.engine.AnalyzeTrends(history.sessions, history.measurements, history.profile.Goal)
		return nil
	})
	g.Go(func() error {
		report.Anomalies = s.engine.DetectAnomalies(history.sessions)
		return nil
	})
	g.Go(func() error {
		report.Plateaus = s.engine.DetectPlateaus(history.sessions)
		return nil
	})
	g.Go(func() error {
		report.Risk = s.engine.AssessRisk(history.profile, history.sessions, history.measurements, variant)
		return nil
	})
	if err = g.Wait(); err != nil {
		return Report{}, fmt.Errorf("run analyzers: %w", err)
	}

	report.OverallAnomalyScore = analysis.OverallSeverity(report.Anomalies)
	report.PlateauDetected = len(report.Plateaus) > 0
	report.Consistency, _ = s.engine.Consistency(history.sessions)
	report.Strategy = s.engine.SelectAdaptation(report.Trends, report.Plateaus, report.Risk, report.Consistency)

	return report, nil
}

// Trends runs only the trend analyzer for a user.
func (s *Service) Trends(ctx context.Context, userID int64, now time.Time) (analysis.TrendReport, error) {
	history, err := s.loadHistory(ctx, userID, now)
	if err != nil {
		return analysis.TrendReport{}, err
	}
	return s.engine.AnalyzeTrends(history.sessions, history.measurements, history.profile.Goal), nil
}

// Risk runs only the risk assessor for a user.
func (s *Service) Risk(ctx context.Context, userID int64, variant analysis.RiskVariant, now time.Time) (analysis.RiskAssessment, error) {
	history, err := s.loadHistory(ctx, userID, now)
	if err != nil {
		return analysis.RiskAssessment{}, err
	}
	return s.engine.AssessRisk(history.profile, history.sessions, history.measurements, variant), nil
}

// ReportAll runs the full analysis for every known user with a bounded
// worker pool. Per-user failures abort the batch; the caller decides whether
// to retry.
func (s *Service) ReportAll(ctx context.Context, now time.Time) ([]Report, error) {
	userIDs, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	reports := make([]Report, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, userID := range userIDs {
		g.Go(func() error {
			report, reportErr := s.Report(gctx, userID, analysis.VariantMonitoring, now)
			if reportErr != nil {
				return fmt.Errorf("report user %d: %w", userID, reportErr)
			}
			reports[i] = report
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}

// LogSession stores a workout session for a user.
func (s *Service) LogSession(ctx context.Context, userID int64, session analysis.Session) error {
	if session.Date.IsZero() {
		return errors.New("session date is required")
	}
	if err := s.repo.CreateSession(ctx, userID, session); err != nil {
		return fmt.Errorf("log session: %w", err)
	}
	return nil
}

// LogMeasurement stores a body measurement for a user.
func (s *Service) LogMeasurement(ctx context.Context, userID int64, m analysis.Measurement) error {
	if m.Date.IsZero() {
		return errors.New("measurement date is required")
	}
	if m.WeightKg <= 0 {
		return errors.New("measurement weight must be positive")
	}
	if err := s.repo.CreateMeasurement(ctx, userID, m); err != nil {
		return fmt.Errorf("log measurement: %w", err)
	}
	return nil
}

// UpsertProfile stores the profile for a user.
func (s *Service) UpsertProfile(ctx context.Context, userID int64, profile analysis.Profile) error {
	if err := s.repo.UpsertProfile(ctx, userID, profile); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// ExportUserData writes the user's complete history to a SQLite file under
// basePath and returns the file path.
func (s *Service) ExportUserData(ctx context.Context, userID int64, basePath string) (string, error) {
	path, err := s.repo.db.ExportUserData(ctx, userID, basePath)
	if err != nil {
		return "", fmt.Errorf("export user data: %w", err)
	}
	return path, nil
}

// userHistory is everything one analysis run consumes.
type userHistory struct {
	sessions     []analysis.Session
	measurements []analysis.Measurement
	profile      analysis.Profile
}

// loadHistory loads the analysis window for a user. A missing profile is not
// an error: analysis proceeds with zero-value attributes and the risk
// factors that need them stay silent.
func (s *Service) loadHistory(ctx context.Context, userID int64, now time.Time) (userHistory, error) {
	since := now.AddDate(0, 0, -s.windowDays)

	sessions, err := s.repo.GetWorkouts(ctx, userID, since)
	if err != nil {
		return userHistory{}, fmt.Errorf("load workouts: %w", err)
	}
	measurements, err := s.repo.GetMeasurements(ctx, userID, since)
	if err != nil {
		return userHistory{}, fmt.Errorf("load measurements: %w", err)
	}
	profile, err := s.repo.GetUserProfile(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return userHistory{}, fmt.Errorf("load profile: %w", err)
	}

	return userHistory{sessions: sessions, measurements: measurements, profile: profile}, nil
}
