package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/everreach/warmthd/internal/config"
	"github.com/everreach/warmthd/internal/contacts"
	"github.com/everreach/warmthd/internal/observability"
	"github.com/everreach/warmthd/internal/recompute"
)

type Server struct {
	cfg       config.Config
	store     contacts.Store
	service   *recompute.Service
	metrics   *observability.Metrics
	storeMode string
	upgrader  websocket.Upgrader
}

func New(cfg config.Config, store contacts.Store, service *recompute.Service, metrics *observability.Metrics, storeMode string) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		service:   service,
		metrics:   metrics,
		storeMode: storeMode,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/contacts", s.handleCreateContact)
	r.Post("/v1/contacts/{id}/interactions", s.handleLogInteraction)
	r.Get("/v1/contacts/{id}/warmth", s.handleGetWarmth)
	r.Post("/v1/contacts/{id}/warmth/recompute", s.handleRecompute)
	r.Post("/v1/warmth/recompute", s.handleBulkRecompute)
	r.Get("/v1/warmth/summary", s.handleSummary)
	r.Post("/v1/warmth/preview", s.handlePreview)
	r.Get("/v1/warmth/events", s.handleEvents)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"store_mode": s.storeMode,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"store_mode": s.storeMode,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondStoreError maps engine errors to the API taxonomy.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recompute.ErrInvalidContactID):
		respondError(w, http.StatusBadRequest, "invalid_contact_id", err.Error())
	case errors.Is(err, contacts.ErrContactNotFound):
		respondError(w, http.StatusNotFound, "contact_not_found", err.Error())
	case errors.Is(err, contacts.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
