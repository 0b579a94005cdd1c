package main

import "net/http"

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	api := func(next http.Handler) http.Handler {
		return app.recoverPanic(app.logAndTraceRequest(secureHeaders(app.timeout(next))))
	}

	mux.Handle("GET /api/users/{userID}/report", api(http.HandlerFunc(app.reportGET)))
	mux.Handle("GET /api/users/{userID}/trends", api(http.HandlerFunc(app.trendsGET)))
	mux.Handle("GET /api/users/{userID}/risk", api(http.HandlerFunc(app.riskGET)))
	mux.Handle("GET /api/users/{userID}/export", api(http.HandlerFunc(app.exportGET)))

	mux.Handle("POST /api/users/{userID}/workouts", api(http.HandlerFunc(app.workoutsPOST)))
	mux.Handle("POST /api/users/{userID}/measurements", api(http.HandlerFunc(app.measurementsPOST)))
	mux.Handle("PUT /api/users/{userID}/profile", api(http.HandlerFunc(app.profilePUT)))

	mux.Handle("GET /api/healthy", api(http.HandlerFunc(app.healthy)))

	return mux
}
