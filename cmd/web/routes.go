package main

import (
	"fmt"
	"net/http"
)

func (app *application) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	var (
		page = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
					commonContext(app.timeout(next))))))))
		}
	)

	mux.Handle("GET /log", page(http.HandlerFunc(app.logGET)))
	mux.Handle("POST /log", page(http.HandlerFunc(app.logPOST)))
	mux.Handle("GET /log/{date}", page(http.HandlerFunc(app.logGET)))

	mux.Handle("GET /history", page(http.HandlerFunc(app.historyGET)))

	mux.Handle("GET /plan", page(http.HandlerFunc(app.planGET)))
	mux.Handle("POST /plan/{date}/notes", page(http.HandlerFunc(app.planNotesPOST)))

	mux.Handle("GET /settings", page(http.HandlerFunc(app.settingsGET)))
	mux.Handle("POST /settings", page(http.HandlerFunc(app.settingsPOST)))
	mux.Handle("POST /settings/start", page(http.HandlerFunc(app.programStartPOST)))
	mux.Handle("POST /settings/reset", page(http.HandlerFunc(app.programResetPOST)))
	mux.Handle("GET /settings/export-data", page(http.HandlerFunc(app.exportDataGET)))
	mux.Handle("POST /settings/import-data", page(http.HandlerFunc(app.importDataPOST)))

	mux.Handle("GET /api/healthy", page(http.HandlerFunc(app.healthy)))

	// Dashboard (most specific)
	mux.Handle("GET /{$}", page(http.HandlerFunc(app.dashboardGET)))

	// File server with custom 404 handling
	fileServerHandler, err := app.fileServerHandler()
	if err != nil {
		return nil, fmt.Errorf("fileServerHandler: %w", err)
	}
	mux.Handle("/", fileServerHandler)

	return mux, nil
}
