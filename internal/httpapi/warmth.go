package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/everreach/warmthd/internal/contacts"
	"github.com/everreach/warmthd/internal/warmth"
)

func warmthKind(kind string) bool {
	return warmth.AffectsWarmth(kind)
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_contact_id", "missing contact id")
		return
	}
	snap, err := s.service.Recompute(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"contact_id": id,
		"snapshot":   snap,
	})
}

type bulkRecomputeRequest struct {
	ContactIDs []string `json:"contact_ids"`
}

type bulkRecomputeResult struct {
	ContactID string             `json:"contact_id"`
	Snapshot  *contacts.Snapshot `json:"snapshot,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func (s *Server) handleBulkRecompute(w http.ResponseWriter, r *http.Request) {
	var req bulkRecomputeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(req.ContactIDs) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "contact_ids is required")
		return
	}

	results, err := s.service.RecomputeMany(r.Context(), req.ContactIDs)
	if err != nil {
		respondError(w, http.StatusBadRequest, "bulk_recompute_failed", err.Error())
		return
	}

	out := make([]bulkRecomputeResult, 0, len(results))
	for _, res := range results {
		item := bulkRecomputeResult{ContactID: res.ContactID}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			snap := res.Snapshot
			item.Snapshot = &snap
		}
		out = append(out, item)
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.service.Summarize(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

type previewInteraction struct {
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
}

type previewRequest struct {
	Interactions []previewInteraction `json:"interactions"`
	Now          *time.Time           `json:"now"`
}

type previewResponse struct {
	Score int         `json:"score"`
	Band  warmth.Band `json:"band"`
}

// handlePreview scores a hypothetical log without persisting anything, for
// what-if views in the dashboard.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	log := make([]warmth.Interaction, 0, len(req.Interactions))
	for _, iv := range req.Interactions {
		if iv.OccurredAt.IsZero() {
			respondError(w, http.StatusBadRequest, "invalid_request", "every interaction needs occurred_at")
			return
		}
		log = append(log, warmth.Interaction{Kind: iv.Kind, OccurredAt: iv.OccurredAt})
	}
	var now time.Time
	if req.Now != nil {
		now = *req.Now
	}
	score, band := s.service.Preview(log, now)
	respondJSON(w, http.StatusOK, previewResponse{Score: score, Band: band})
}
