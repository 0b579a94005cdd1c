package main

import (
	"net/http"
	"time"

	"github.com/jkoskela/fitsight/internal/analysis"
)

// reportGET serves the full analysis report for a user.
func (app *application) reportGET(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.parseUserIDParam(w, r)
	if !ok {
		return
	}
	variant, ok := app.parseVariantParam(w, r)
	if !ok {
		return
	}

	report, err := app.insightService.Report(r.Context(), userID, variant, time.Now())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, report)
}

// trendsGET serves only the trend analysis for a user.
func (app *application) trendsGET(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.parseUserIDParam(w, r)
	if !ok {
		return
	}

	trends, err := app.insightService.Trends(r.Context(), userID, time.Now())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, trends)
}

// riskGET serves only the risk assessment for a user.
func (app *application) riskGET(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.parseUserIDParam(w, r)
	if !ok {
		return
	}
	variant, ok := app.parseVariantParam(w, r)
	if !ok {
		return
	}

	risk, err := app.insightService.Risk(r.Context(), userID, variant, time.Now())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, risk)
}

// exportGET writes the user's complete history to a SQLite file and returns
// its path.
func (app *application) exportGET(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.parseUserIDParam(w, r)
	if !ok {
		return
	}

	path, err := app.insightService.ExportUserData(r.Context(), userID, app.exportPath)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"path": path})
}

// parseVariantParam reads the optional risk variant query parameter,
// defaulting to the injury variant. On an unknown variant, sends HTTP 400.
func (app *application) parseVariantParam(w http.ResponseWriter, r *http.Request) (analysis.RiskVariant, bool) {
	switch variant := r.URL.Query().Get("variant"); variant {
	case "", string(analysis.VariantInjury):
		return analysis.VariantInjury, true
	case string(analysis.VariantMonitoring):
		return analysis.VariantMonitoring, true
	default:
		app.clientError(w, r, http.StatusBadRequest, "unknown risk variant: "+variant)
		return "", false
	}
}
