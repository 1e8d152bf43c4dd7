// Package health exposes the HTTP surface of the engine: health and
// readiness probes, chain status, Prometheus metrics, and the bridge
// intent API.
package health

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/monbridge-hq/bridge-engine/pkg/chains"
	"github.com/monbridge-hq/bridge-engine/pkg/circuitbreaker"
	"github.com/monbridge-hq/bridge-engine/pkg/engine"
	"github.com/monbridge-hq/bridge-engine/pkg/logger"
	"github.com/monbridge-hq/bridge-engine/pkg/models"
)

// Server is the HTTP server for health checks, metrics, and the intent API
type Server struct {
	port            string
	engine          *engine.Engine
	chainRPCs       map[chains.Chain]string
	circuitBreakers map[chains.Chain]*circuitbreaker.CircuitBreaker
	metricsAPIKey   string
	logger          logger.Logger
}

// NewServer creates a new API server
func NewServer(
	port string,
	eng *engine.Engine,
	chainRPCs map[chains.Chain]string,
	circuitBreakers map[chains.Chain]*circuitbreaker.CircuitBreaker,
	metricsAPIKey string,
	log logger.Logger,
) *Server {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Server{
		port:            port,
		engine:          eng,
		chainRPCs:       chainRPCs,
		circuitBreakers: circuitBreakers,
		metricsAPIKey:   metricsAPIKey,
		logger:          log,
	}
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler builds the server's route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		for _, chain := range chains.ChainList {
			if s.chainRPCs[chain] == "" {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(fmt.Sprintf("Chain %s has no RPC configured", chain)))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})

	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/circuit/reset", s.handleCircuitReset)
	mux.Handle("/metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	mux.HandleFunc("/api/v1/discover", s.handleDiscover)
	mux.HandleFunc("/api/v1/quote", s.handleQuote)
	mux.HandleFunc("/api/v1/submit", s.handleSubmit)
	mux.HandleFunc("/api/v1/intents/", s.handleIntentStatus)

	return mux
}

// Start starts the API server and blocks
func (s *Server) Start() {
	s.logger.Info("Starting API and metrics server on port %s", s.port)
	if err := http.ListenAndServe(":"+s.port, s.Handler()); err != nil {
		s.logger.Error("API server error: %v", err)
	}
}

// handleStatus reports the configured chains and their circuit state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]interface{})
	for _, chain := range chains.ChainList {
		circuitStatus := "closed"
		if cb, ok := s.circuitBreakers[chain]; ok && cb.IsOpen() {
			circuitStatus = "open"
		}

		status[string(chain)] = map[string]interface{}{
			"name":    chains.GetChainName(chain),
			"rpc_url": s.chainRPCs[chain],
			"circuit": circuitStatus,
		}
	}
	s.writeJSON(w, http.StatusOK, status)
}

// handleCircuitReset manually closes a chain's circuit breaker
func (s *Server) handleCircuitReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	chainName := r.URL.Query().Get("chain")
	if chainName == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Missing chain parameter"))
		return
	}

	chain, err := chains.ParseChain(chainName)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Invalid chain"))
		return
	}

	cb, ok := s.circuitBreakers[chain]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(fmt.Sprintf("No circuit breaker for chain %s", chain)))
		return
	}

	cb.Reset()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(fmt.Sprintf("Circuit breaker for chain %s reset", chain)))
}

type discoverRequest struct {
	Provider string   `json:"provider"`
	Address  string   `json:"address"`
	Chains   []string `json:"chains,omitempty"`
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	provider, err := chains.ParseProvider(req.Provider)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Address == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing account address"))
		return
	}

	requested := make([]chains.Chain, 0, len(req.Chains))
	for _, name := range req.Chains {
		chain, err := chains.ParseChain(name)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		requested = append(requested, chain)
	}

	result, err := s.engine.DiscoverBalances(r.Context(), provider, req.Address, requested)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type quoteRequest struct {
	AccountID string  `json:"account_id,omitempty"`
	IntentID  string  `json:"intent_id"`
	Amount    float64 `json:"amount"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	quoted, err := s.engine.Quote(r.Context(), req.AccountID, req.IntentID, req.Amount)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quoted)
}

type submitRequest struct {
	SessionID string  `json:"session_id,omitempty"`
	AccountID string  `json:"account_id,omitempty"`
	IntentID  string  `json:"intent_id"`
	Amount    float64 `json:"amount"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	session := engine.Session{ID: req.SessionID, AccountID: req.AccountID}
	result, err := s.engine.Submit(r.Context(), session, req.IntentID, req.Amount)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	// Executor failures arrive here as a failed status with a 200, by
	// contract with the engine
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIntentStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	intentID := strings.TrimPrefix(r.URL.Path, "/api/v1/intents/")
	if intentID == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing intent id"))
		return
	}

	record, err := s.engine.GetIntentStatus(intentID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

// writeEngineError maps the engine's error taxonomy onto HTTP status codes
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidAddress),
		errors.Is(err, models.ErrAllowanceExceeded):
		s.writeError(w, http.StatusBadRequest, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response JSON: %v", err)
	}
}
