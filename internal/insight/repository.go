package insight

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jkoskela/fitsight/internal/analysis"
	"github.com/jkoskela/fitsight/internal/errors"
	"github.com/jkoskela/fitsight/internal/sqlite"
)

const dateFormat = time.DateOnly

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.NewSentinel("not found")

// repository persists and loads training history for the analysis service.
//
// Read methods skip malformed rows (unparsable dates, broken JSON) with a
// warning instead of failing the whole analysis: one bad record must never
// take down a report.
type repository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepository(db *sqlite.Database, logger *slog.Logger) *repository {
	return &repository{db: db, logger: logger}
}

// GetWorkouts loads all workout sessions with their exercise records for a
// user since the given date, ordered oldest first.
func (r *repository) GetWorkouts(ctx context.Context, userID int64, since time.Time) (_ []analysis.Session, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT s.id, s.workout_date, s.duration_minutes,
		       e.exercise_name, e.weight_kg, e.reps, e.sets
		FROM workout_sessions s
		         LEFT JOIN exercise_records e ON e.session_id = s.id
		WHERE s.user_id = ? AND s.workout_date >= ?
		ORDER BY s.workout_date, s.id`,
		userID, since.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("query workout sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var (
		sessions  []analysis.Session
		currentID int64 = -1
	)
	for rows.Next() {
		var (
			sessionID       int64
			dateStr         string
			durationMinutes int
			exerciseName    sql.NullString
			weightKg        sql.NullFloat64
			reps            sql.NullInt64
			sets            sql.NullInt64
		)
		if err = rows.Scan(&sessionID, &dateStr, &durationMinutes,
			&exerciseName, &weightKg, &reps, &sets); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}

		if sessionID != currentID {
			date, parseErr := time.Parse(dateFormat, dateStr)
			if parseErr != nil {
				r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping session with malformed date",
					slog.Int64("sessionID", sessionID), slog.String("date", dateStr))
				continue
			}
			sessions = append(sessions, analysis.Session{
				Date:            date,
				DurationMinutes: durationMinutes,
			})
			currentID = sessionID
		}

		// LEFT JOIN produces a null exercise for sessions without records.
		if !exerciseName.Valid {
			continue
		}
		current := &sessions[len(sessions)-1]
		current.Exercises = append(current.Exercises, analysis.ExerciseRecord{
			ExerciseName: exerciseName.String,
			Date:         current.Date,
			WeightKg:     weightKg.Float64,
			Reps:         int(reps.Int64),
			Sets:         int(sets.Int64),
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return sessions, nil
}

// GetMeasurements loads body measurements for a user since the given date,
// ordered oldest first.
func (r *repository) GetMeasurements(ctx context.Context, userID int64, since time.Time) (_ []analysis.Measurement, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT measured_on, weight_kg, body_fat_pct
		FROM body_measurements
		WHERE user_id = ? AND measured_on >= ?
		ORDER BY measured_on`,
		userID, since.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("query body measurements: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var measurements []analysis.Measurement
	for rows.Next() {
		var (
			dateStr    string
			weightKg   float64
			bodyFatPct sql.NullFloat64
		)
		if err = rows.Scan(&dateStr, &weightKg, &bodyFatPct); err != nil {
			return nil, fmt.Errorf("scan measurement row: %w", err)
		}

		date, parseErr := time.Parse(dateFormat, dateStr)
		if parseErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping measurement with malformed date",
				slog.Int64("userID", userID), slog.String("date", dateStr))
			continue
		}

		measurement := analysis.Measurement{Date: date, WeightKg: weightKg}
		if bodyFatPct.Valid {
			measurement.BodyFatPct = &bodyFatPct.Float64
		}
		measurements = append(measurements, measurement)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return measurements, nil
}

// GetUserProfile loads the profile for a user. Returns ErrNotFound when the
// user has no profile yet.
func (r *repository) GetUserProfile(ctx context.Context, userID int64) (analysis.Profile, error) {
	var (
		profile        analysis.Profile
		equipmentJSON  string
		injuriesJSON   string
		goal           string
		experienceName string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT goal, experience_level, age, height_cm, equipment, injury_history
		FROM profiles
		WHERE user_id = ?`,
		userID).Scan(&goal, &experienceName, &profile.Age, &profile.HeightCm, &equipmentJSON, &injuriesJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return analysis.Profile{}, ErrNotFound
		}
		return analysis.Profile{}, fmt.Errorf("query profile: %w", err)
	}

	profile.Goal = analysis.Goal(goal)
	profile.ExperienceLevel = analysis.ExperienceLevel(experienceName)
	profile.Equipment = r.parseStringList(ctx, userID, "equipment", equipmentJSON)
	profile.InjuryHistory = r.parseStringList(ctx, userID, "injury_history", injuriesJSON)

	return profile, nil
}

// parseStringList decodes a JSON string array column, treating broken JSON
// as an empty list with a warning.
func (r *repository) parseStringList(ctx context.Context, userID int64, column, raw string) []string {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping malformed profile column",
			slog.Int64("userID", userID), slog.String("column", column))
		return nil
	}
	return list
}

// ListUserIDs returns the IDs of all users with any logged history.
func (r *repository) ListUserIDs(ctx context.Context) (_ []int64, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, "SELECT id FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}

// CreateSession stores a workout session and its exercise records.
func (r *repository) CreateSession(ctx context.Context, userID int64, session analysis.Session) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if err = r.ensureUser(ctx, tx, userID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO workout_sessions (user_id, workout_date, duration_minutes)
		VALUES (?, ?, ?)`,
		userID, session.Date.Format(dateFormat), session.DurationMinutes)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	sessionID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}

	for _, record := range session.Exercises {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO exercise_records (session_id, exercise_name, weight_kg, reps, sets)
			VALUES (?, ?, ?, ?, ?)`,
			sessionID, record.ExerciseName, record.WeightKg, record.Reps, record.Sets); err != nil {
			return fmt.Errorf("insert exercise record: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateMeasurement stores a body measurement, replacing any existing
// measurement for the same day.
func (r *repository) CreateMeasurement(ctx context.Context, userID int64, m analysis.Measurement) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if err = r.ensureUser(ctx, tx, userID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO body_measurements (user_id, measured_on, weight_kg, body_fat_pct)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, measured_on) DO UPDATE SET weight_kg    = excluded.weight_kg,
		                                                 body_fat_pct = excluded.body_fat_pct`,
		userID, m.Date.Format(dateFormat), m.WeightKg, nullableFloat(m.BodyFatPct)); err != nil {
		return fmt.Errorf("upsert measurement: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UpsertProfile stores or replaces the profile for a user.
func (r *repository) UpsertProfile(ctx context.Context, userID int64, profile analysis.Profile) (err error) {
	equipmentJSON, err := json.Marshal(stringListOrEmpty(profile.Equipment))
	if err != nil {
		return fmt.Errorf("marshal equipment: %w", err)
	}
	injuriesJSON, err := json.Marshal(stringListOrEmpty(profile.InjuryHistory))
	if err != nil {
		return fmt.Errorf("marshal injury history: %w", err)
	}

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if err = r.ensureUser(ctx, tx, userID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, goal, experience_level, age, height_cm, equipment, injury_history, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (user_id) DO UPDATE SET goal             = excluded.goal,
		                                    experience_level = excluded.experience_level,
		                                    age              = excluded.age,
		                                    height_cm        = excluded.height_cm,
		                                    equipment        = excluded.equipment,
		                                    injury_history   = excluded.injury_history,
		                                    updated          = excluded.updated`,
		userID, string(profile.Goal), string(profile.ExperienceLevel), profile.Age, profile.HeightCm,
		string(equipmentJSON), string(injuriesJSON)); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ensureUser creates the user row on first contact.
func (r *repository) ensureUser(ctx context.Context, tx *sql.Tx, userID int64) error {
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO users (id) VALUES (?)", userID); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// stringListOrEmpty keeps JSON columns as [] instead of null.
func stringListOrEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
