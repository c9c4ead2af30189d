package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/config"
	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/handlers"
	"github.com/xlml/bench-metrics/internal/http_wrappers"
)

const requestIDHeader = "X-Request-Id"

type Server struct {
	httpServer    *http.Server
	logger        *slog.Logger
	serviceConfig *config.Config
	handlers      *handlers.Handlers
}

type handlerFunc func(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper)

// NewServer creates the read API server. storage is required, runtime may be
// nil in which case published benchmark definitions are not served.
func NewServer(logger *slog.Logger, serviceConfig *config.Config, storage abstractions.Storage, validate *validator.Validate, runtime abstractions.Runtime) (*Server, error) {
	if serviceConfig == nil || serviceConfig.Service == nil {
		return nil, fmt.Errorf("service configuration is required")
	}
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	s := &Server{
		logger:        logger,
		serviceConfig: serviceConfig,
		handlers:      handlers.New(storage, validate, runtime, serviceConfig),
	}
	s.httpServer = &http.Server{
		Addr:              serviceConfig.Service.Listen,
		Handler:           s.SetupRoutes(runtime != nil),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// SetupRoutes registers the API routes and wraps them in the middleware.
func (s *Server) SetupRoutes(withBenchmarks bool) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", s.handle(func(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
		s.handlers.HandleHealth(ctx, w)
	}))
	mux.HandleFunc("/api/v1/status", s.handle(s.handlers.HandleStatus))
	mux.HandleFunc("/api/v1/datasets/{dataset}/runs", s.handle(s.handlers.HandleListRuns))
	mux.HandleFunc("/api/v1/datasets/{dataset}/runs/{run_id}", s.handle(s.handlers.HandleGetRun))
	if withBenchmarks {
		mux.HandleFunc("/api/v1/benchmarks/{benchmark_id}", s.handle(s.handlers.HandleGetBenchmark))
	}
	mux.Handle("/metrics", promhttp.Handler())

	return Middleware(CorsMiddleware(mux, s.serviceConfig))
}

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		logger := s.logger.With(constants.LOG_REQUEST_ID, requestID)
		ctx := executioncontext.NewExecutionContext(r.Context(), requestID, logger)
		w.Header().Set(requestIDHeader, requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		fn(ctx, &reqWrapper{r: r}, &respWrapper{w: rw, logger: logger})

		logger.Info("Request served",
			constants.LOG_METHOD, r.Method,
			constants.LOG_URI, r.URL.RequestURI(),
			constants.LOG_RESP_CODE, rw.statusCode,
			constants.LOG_ELAPSED, ctx.Elapsed().String(),
		)
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Server starting", "listen", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Server shutting down")
	return s.httpServer.Shutdown(ctx)
}
