package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/everreach/warmthd/internal/contacts"
)

type createContactRequest struct {
	DisplayName    string `json:"display_name"`
	WatchStatus    string `json:"watch_status"`
	AlertThreshold int    `json:"alert_threshold"`
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.WatchStatus = strings.TrimSpace(req.WatchStatus)
	if req.DisplayName == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "display_name is required")
		return
	}
	watch := contacts.WatchStatus(req.WatchStatus)
	if req.WatchStatus == "" {
		watch = contacts.WatchNone
	} else if !watch.Watched() && watch != contacts.WatchNone {
		respondError(w, http.StatusBadRequest, "invalid_request", "watch_status must be one of none|watch|important|vip")
		return
	}
	if req.AlertThreshold < 0 || req.AlertThreshold > 100 {
		respondError(w, http.StatusBadRequest, "invalid_request", "alert_threshold must be in [0,100]")
		return
	}

	c, err := s.store.CreateContact(r.Context(), contacts.Contact{
		DisplayName:    req.DisplayName,
		WatchStatus:    watch,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

type logInteractionRequest struct {
	Kind       string     `json:"kind"`
	OccurredAt *time.Time `json:"occurred_at"`
}

type logInteractionResponse struct {
	Interaction    contacts.Interaction `json:"interaction"`
	AffectsWarmth  bool                 `json:"affects_warmth"`
	RecomputeAfter bool                 `json:"recompute_recommended"`
}

func (s *Server) handleLogInteraction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_contact_id", "missing contact id")
		return
	}

	var req logInteractionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req.Kind = strings.TrimSpace(req.Kind)
	if req.Kind == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "kind is required")
		return
	}
	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	iv, err := s.store.AddInteraction(r.Context(), contacts.Interaction{
		ContactID:  id,
		Kind:       req.Kind,
		OccurredAt: occurredAt,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	affects := warmthKind(req.Kind)
	respondJSON(w, http.StatusCreated, logInteractionResponse{
		Interaction:    iv,
		AffectsWarmth:  affects,
		RecomputeAfter: affects,
	})
}

func (s *Server) handleGetWarmth(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_contact_id", "missing contact id")
		return
	}
	c, err := s.store.GetContact(r.Context(), id)
	if err != nil {
		if errors.Is(err, contacts.ErrContactNotFound) {
			respondError(w, http.StatusNotFound, "contact_not_found", err.Error())
			return
		}
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"contact_id": c.ID,
		"snapshot":   c.Snapshot,
	})
}
