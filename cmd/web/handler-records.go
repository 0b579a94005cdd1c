package main

import (
	"net/http"

	"github.com/jkoskela/fitsight/internal/analysis"
)

type exerciseRecordRequest struct {
	ExerciseName string  `json:"exercise_name"`
	WeightKg     float64 `json:"weight_kg"`
	Reps         int     `json:"reps"`
	Sets         int     `json:"sets"`
}

type workoutRequest struct {
	Date            string                  `json:"date"`
	DurationMinutes int                     `json:"duration_minutes"`
	Exercises       []exerciseRecordRequest `json:"exercises"`
}

// workoutsPOST logs a workout session for a user.
func (app *application) workoutsPOST(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.parseUserIDParam(w, r)
	if !ok {
		return
	}
	var req workoutRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "date must be in 2006-01-02 form")
		return
	}

	session := analysis.Session{Date: date, DurationMinutes: req.DurationMinutes}
	for _, e := range req.Exercises {
		session.Exercises = append(session.Exercises, analysis.ExerciseRecord{
			ExerciseName: e.ExerciseName,
			Date:         date,
			WeightKg:     e.WeightKg,
			Reps:         e.Reps,
			Sets:         e.Sets,
		})
	}

	if err = app.insightService.LogSession(r.Context(), userID, session); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, map[string]string{"status": "created"})
}

type measurementRequest struct {
	Date       string   `json:"date"`
	WeightKg   float64  `json:"weight_kg"`
	BodyFatPct *float64 `json:"body_fat_pct,omitempty"`
}

// measurementsPOST logs a body measurement for a user.
func (app *application) measurementsPOST(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.parseUserIDParam(w, r)
	if !ok {
		return
	}
	var req measurementRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "date must be in 2006-01-02 form")
		return
	}
	if req.WeightKg <= 0 {
		app.clientError(w, r, http.StatusBadRequest, "weight_kg must be positive")
		return
	}

	measurement := analysis.Measurement{Date: date, WeightKg: req.WeightKg, BodyFatPct: req.BodyFatPct}
	if err = app.insightService.LogMeasurement(r.Context(), userID, measurement); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, map[string]string{"status": "created"})
}

// profilePUT stores or replaces the profile for a user.
func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.parseUserIDParam(w, r)
	if !ok {
		return
	}
	var profile analysis.Profile
	if !app.readJSON(w, r, &profile) {
		return
	}

	switch profile.Goal {
	case analysis.GoalFatLoss, analysis.GoalMuscleGain, analysis.GoalMaintenance:
	default:
		app.clientError(w, r, http.StatusBadRequest, "unknown goal: "+string(profile.Goal))
		return
	}
	switch profile.ExperienceLevel {
	case analysis.ExperienceBeginner, analysis.ExperienceIntermediate, analysis.ExperienceAdvanced:
	default:
		app.clientError(w, r, http.StatusBadRequest, "unknown experience level: "+string(profile.ExperienceLevel))
		return
	}

	if err := app.insightService.UpsertProfile(r.Context(), userID, profile); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}
