// Package rest serves the HTTP directory and history API used by browser
// clients, and mounts the websocket gateway.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

const maxBodySize = 64 << 10

// DirectoryService registers and resolves identities.
type DirectoryService interface {
	Register(ctx context.Context, username string, publicKey *crypto.PublicKey) (model.Identity, error)
	Lookup(ctx context.Context, username string) (model.Identity, error)
}

// HistoryService reads stored conversations.
type HistoryService interface {
	Conversation(ctx context.Context, a, b string) ([]model.Envelope, error)
}

// HealthCheck is one backend probed by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type identityResponse struct {
	Username  string            `json:"username"`
	PublicKey *crypto.PublicKey `json:"publicKey"`
}

type registerRequest struct {
	Username  string          `json:"username"`
	PublicKey json.RawMessage `json:"publicKey"`
}

type registerResponse struct {
	Msg  string           `json:"msg"`
	User identityResponse `json:"user"`
}

type msgResponse struct {
	Msg string `json:"msg"`
}

// Handler implements the REST endpoints.
type Handler struct {
	directory DirectoryService
	history   HistoryService
	checks    []HealthCheck
	logger    *logger.Logger
}

func NewHandler(
	directory DirectoryService,
	history HistoryService,
	checks []HealthCheck,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		directory: directory,
		history:   history,
		checks:    checks,
		logger:    logger,
	}
}

// Register handles POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req registerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, msgResponse{Msg: "Invalid request body"})
		return
	}

	publicKey, err := decodePublicKey(req.PublicKey)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, msgResponse{Msg: "Invalid public key"})
		return
	}

	identity, err := h.directory.Register(r.Context(), req.Username, publicKey)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, registerResponse{
		Msg:  "User registered",
		User: identityResponse{Username: identity.Username, PublicKey: identity.PublicKey},
	})
}

// GetUser handles GET /api/users/:username.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := h.directory.Lookup(r.Context(), ps.ByName("username"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, identityResponse{Username: identity.Username, PublicKey: identity.PublicKey})
}

// GetMessages handles GET /api/messages?userId1=&userId2=.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	a, b := query.Get("userId1"), query.Get("userId2")
	if a == "" || b == "" {
		h.writeJSON(w, http.StatusBadRequest, msgResponse{Msg: "Missing user parameters"})
		return
	}

	envelopes, err := h.history.Conversation(r.Context(), a, b)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, envelopes)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status := make(map[string]string, len(h.checks))
	code := http.StatusOK
	for _, check := range h.checks {
		if err := check.Ping(r.Context()); err != nil {
			h.logger.Warn("HTTP: health check failed",
				"backend", check.Name,
				"error", err.Error())
			status[check.Name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status[check.Name] = "ok"
	}

	h.writeJSON(w, code, status)
}

func decodePublicKey(raw json.RawMessage) (*crypto.PublicKey, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, crypto.ErrInvalidKey
	}
	publicKey := new(crypto.PublicKey)
	if err := publicKey.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return publicKey, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, msgResponse{Msg: "User not found"})
	case errors.Is(err, model.ErrAlreadyExists):
		h.writeJSON(w, http.StatusBadRequest, msgResponse{Msg: "User already exists"})
	case errors.Is(err, model.ErrInvalidArgument), errors.Is(err, crypto.ErrInvalidKey):
		h.writeJSON(w, http.StatusBadRequest, msgResponse{Msg: err.Error()})
	default:
		h.logger.Error("HTTP: request failed", "error", err.Error())
		h.writeJSON(w, http.StatusInternalServerError, msgResponse{Msg: "Server Error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("HTTP: failed to write response", "error", err.Error())
	}
}
