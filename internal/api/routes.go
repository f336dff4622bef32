package api

import (
	"log/slog"
	"net/http"

	"github.com/blagoySimandov/bidcompare/go/internal/auth"
	"github.com/blagoySimandov/bidcompare/go/internal/config"
	"github.com/gorilla/mux"
)

type RouterOptions struct {
	AllowedOrigin string
	Logger        *slog.Logger
}

func SetupRoutes(projects *ProjectHandler, callbacks *CallbackHandler, authMiddleware *auth.Middleware, opts RouterOptions) *mux.Router {
	r := mux.NewRouter()

	r.Use(CORSMiddleware(opts.AllowedOrigin))
	r.Use(LoggingMiddleware(opts.Logger))
	r.Use(RecoveryMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Signed by the extraction service, not by a user token.
	r.HandleFunc(config.CallbackPath, callbacks.HandleCallback).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.RequireAuth)

	api.HandleFunc("/projects", projects.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/documents", projects.UploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/dispatch", projects.DispatchBatch).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/status", projects.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}/scores", projects.RecomputeScores).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/comparison", projects.GetComparison).Methods(http.MethodGet)

	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
