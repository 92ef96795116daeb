package main

import "net/http"

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Liveness probe with environment and version
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

// readinessHandler probes storage: a ping in DB mode, always ready in
// memory mode.
func (app *application) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		if err := app.db.Ping(r.Context()); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	app.jsonResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}
