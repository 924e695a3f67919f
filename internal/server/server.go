package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/resellkit/pricing/internal/telemetry"
	"github.com/resellkit/pricing/pkg/pricing"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the pricing service.
type Server struct {
	port    int
	engine  *pricing.Engine
	logger  *otelzap.Logger
	metrics *telemetry.Metrics

	defaultTargetMargin float64
}

// Config holds server configuration.
type Config struct {
	Port int
	// DefaultTargetMargin applies when a request omits target_margin.
	DefaultTargetMargin float64
}

// New creates a new server instance.
func New(cfg Config, engine *pricing.Engine, logger *otelzap.Logger) *Server {
	return &Server{
		port:                cfg.Port,
		engine:              engine,
		logger:              logger,
		metrics:             telemetry.NewMetrics(),
		defaultTargetMargin: cfg.DefaultTargetMargin,
	}
}

// Handler builds the route table. Split out from Run so tests can drive the
// server through httptest without opening a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Pricing API
	mux.HandleFunc("/v1/price", s.handlePrice)
	mux.HandleFunc("/v1/price/batch", s.handleBatch)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	start := time.Now()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req pricing.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordRejection("bad_json")
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON: "+err.Error())
		return
	}
	s.applyDefaults(&req)

	result, err := s.engine.Price(r.Context(), req)
	if err != nil {
		status, code := classifyError(err)
		s.metrics.RecordRequest("price", code, time.Since(start).Seconds())
		s.metrics.RecordRejection(code)
		s.logger.Ctx(r.Context()).Warn("pricing request failed",
			zap.String("code", code),
			zap.Error(err),
		)
		writeError(w, status, code, err.Error())
		return
	}

	if result.HasDeficitZone() {
		s.metrics.DeficitResults.Inc()
	}
	s.metrics.RecordRequest("price", "ok", time.Since(start).Seconds())
	json.NewEncoder(w).Encode(result)
}

type batchRequest struct {
	Requests []pricing.Request `json:"requests"`
}

type batchResponseItem struct {
	Index  int             `json:"index"`
	Result *pricing.Result `json:"result,omitempty"`
	Error  *errorBody      `json:"error,omitempty"`
}

type batchResponse struct {
	Items []batchResponseItem `json:"items"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	start := time.Now()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordRejection("bad_json")
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON: "+err.Error())
		return
	}
	if len(req.Requests) == 0 {
		s.metrics.RecordRejection("empty_batch")
		writeError(w, http.StatusBadRequest, "empty_batch", "requests must not be empty")
		return
	}
	for i := range req.Requests {
		s.applyDefaults(&req.Requests[i])
	}

	items := s.engine.PriceBatch(r.Context(), req.Requests)
	resp := batchResponse{Items: make([]batchResponseItem, len(items))}
	for i, item := range items {
		out := batchResponseItem{Index: item.Index, Result: item.Result}
		if item.Err != nil {
			_, code := classifyError(item.Err)
			out.Error = &errorBody{Code: code, Message: item.Err.Error()}
		}
		resp.Items[i] = out
	}

	s.metrics.RecordRequest("price_batch", "ok", time.Since(start).Seconds())
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) applyDefaults(req *pricing.Request) {
	if req.TargetMargin == 0 {
		req.TargetMargin = s.defaultTargetMargin
	}
	if req.StoreTier == "" {
		req.StoreTier = pricing.TierNone
	}
}

// classifyError maps engine errors onto HTTP status codes and stable
// machine-readable codes.
func classifyError(err error) (int, string) {
	switch {
	case pricing.IsInvalidInput(err):
		return http.StatusBadRequest, "invalid_input"
	case pricing.IsInfeasibleMargin(err):
		return http.StatusUnprocessableEntity, "infeasible_margin"
	case pricing.IsMissingRateData(err):
		return http.StatusNotFound, "missing_rate_data"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}
