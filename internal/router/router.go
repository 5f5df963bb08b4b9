package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/image-analyzer/internal/handlers"
	"github.com/BerylCAtieno/image-analyzer/internal/middleware"
	"github.com/BerylCAtieno/image-analyzer/internal/services"
	"github.com/BerylCAtieno/image-analyzer/internal/utils"
)

func NewRouter(service services.AnalysisService, page handlers.PageInfo, allowedOrigins []string, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(allowedOrigins))

	h := handlers.NewAnalysisHandler(service, page, logger)

	// Page
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/analyze", h.AnalyzeForm).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	api.HandleFunc("/health/model", h.ModelHealth).Methods(http.MethodGet)

	api.HandleFunc("/prompts", h.Prompts).Methods(http.MethodGet)
	api.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/analyses/stats", h.Stats).Methods(http.MethodGet)

	return r
}
