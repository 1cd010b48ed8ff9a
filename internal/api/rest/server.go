package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fortuna/splash/internal/scheduler"
	"github.com/fortuna/splash/internal/service"
	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, scheduleSvc *service.ScheduleService, predictionSvc *service.PredictionService, orchestrator *scheduler.Orchestrator) *Server {
	handler := NewHandler(scheduleSvc, predictionSvc, orchestrator)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Schedule
	api.HandleFunc("/schedule/next", handler.GetNextGame).Methods("GET")
	api.HandleFunc("/schedule/recent", handler.GetRecentGames).Methods("GET")

	// Predictions
	api.HandleFunc("/predictions", handler.GetPredictions).Methods("GET")
	api.HandleFunc("/predictions/pending", handler.GetPendingPrediction).Methods("GET")
	api.HandleFunc("/predictions/metrics", handler.GetAccuracyMetrics).Methods("GET")

	// Reconciliation
	api.HandleFunc("/reconcile", handler.TriggerReconciliation).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
