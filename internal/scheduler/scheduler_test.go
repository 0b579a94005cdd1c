package scheduler_test

import (
	"testing"
	"time"

	"github.com/jkoskela/fitsight/internal/analysis"
	"github.com/jkoskela/fitsight/internal/insight"
	"github.com/jkoskela/fitsight/internal/scheduler"
	"github.com/jkoskela/fitsight/internal/sqlite"
	"github.com/jkoskela/fitsight/internal/testhelpers"
)

func TestScheduler_RegisterAndRun(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	}()
	service := insight.NewService(db, analysis.DefaultThresholds(), logger)

	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	err = service.LogSession(ctx, 1, analysis.Session{Date: date, Exercises: []analysis.ExerciseRecord{
		{ExerciseName: "Bench Press", Date: date, WeightKg: 80, Reps: 8, Sets: 3},
	}})
	if err != nil {
		t.Fatalf("LogSession: %v", err)
	}

	s := scheduler.New(service, logger)
	if err := s.Register(ctx, "15 3 * * *"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register(ctx, "not a cron expression"); err == nil {
		t.Error("expected error for an invalid cron expression")
	}

	// The job body must survive a direct run with real data.
	s.RunNightly(ctx)

	s.Start()
	s.Stop()
}
