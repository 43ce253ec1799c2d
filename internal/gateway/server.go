// Package gateway carries backend commands over HTTP: POST /invoke/{command}
// with a JSON object of named arguments.
package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"resource2code/internal/command"
)

const maxBodyBytes = 8 << 20

type resultResponse struct {
	Result any `json:"result"`
}

type errorResponse struct {
	Error string       `json:"error"`
	Kind  command.Kind `json:"kind"`
}

type Server struct {
	registry *command.Registry
	logger   *zap.Logger
	timeout  time.Duration
}

func NewServer(registry *command.Registry, logger *zap.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{registry: registry, logger: logger.Named("gateway"), timeout: timeout}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	r.Get("/commands", s.handleCommands)
	r.Post("/invoke/{command}", s.handleInvoke)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"commands": s.registry.Names()})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")
	args, err := readArgs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, command.KindInvalidInput, err.Error())
		return
	}
	result, err := s.registry.Dispatch(r.Context(), name, args)
	if err != nil {
		remote := remoteError(err)
		if remote.Status >= http.StatusInternalServerError {
			s.logger.Error("command failed", zap.String("command", name), zap.Error(err))
		} else {
			s.logger.Debug("command rejected", zap.String("command", name), zap.String("kind", string(remote.Kind)), zap.Error(err))
		}
		writeError(w, remote.Status, remote.Kind, remote.Message)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: result})
}

// readArgs returns the request body as a single JSON object; an empty body
// means no arguments.
func readArgs(r *http.Request) (json.RawMessage, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, errors.New("invalid json payload")
		}
		return nil, err
	}
	if len(raw) > 0 && raw[0] != '{' && string(raw) != "null" {
		return nil, errors.New("arguments must be a JSON object")
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, kind command.Kind, message string) {
	writeJSON(w, status, errorResponse{Error: message, Kind: kind})
}
