package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/selection"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

const maxBodyBytes = 1 << 20

// sessionRequest mirrors session.Request with optional selection options;
// omitted options enable every signal.
type sessionRequest struct {
	Count       int                `json:"count"`
	TopicFilter string             `json:"topic_filter"`
	Options     *selection.Options `json:"options"`
}

// POST /api/sessions
func (s *Server) handleBuildSession(w http.ResponseWriter, r *http.Request) {
	var body sessionRequest
	if err := decodeBody(r, &body, true); err != nil {
		respondError(w, r, err)
		return
	}
	req := session.Request{Count: body.Count, TopicFilter: body.TopicFilter, Options: selection.DefaultOptions()}
	if body.Options != nil {
		req.Options = *body.Options
	}
	sess, err := s.svc.BuildSession(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sess)
}

// POST /api/attempts
func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	var in practice.AttemptInput
	if err := decodeBody(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}
	in.Confidence = item.ParseConfidence(string(in.Confidence))
	res, err := s.svc.RecordAttempt(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// POST /api/flashcards/{itemID}/views
func (s *Server) handleFlashcardView(w http.ResponseWriter, r *http.Request) {
	var in practice.FlashcardInput
	if err := decodeBody(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}
	in.ItemID = chi.URLParam(r, "itemID")
	res, err := s.svc.RecordFlashcard(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GET /api/items/due?topic=...
func (s *Server) handleDueItems(w http.ResponseWriter, r *http.Request) {
	due, err := s.svc.DueItems(r.Context(), strings.TrimSpace(r.URL.Query().Get("topic")))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, due)
}

// GET /api/weak-spots
func (s *Server) handleWeakSpots(w http.ResponseWriter, r *http.Request) {
	spots, err := s.svc.WeakSpots(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, spots)
}

// GET /api/weak-spots/topic
func (s *Server) handleWeakestTopic(w http.ResponseWriter, r *http.Request) {
	spot, ok, err := s.svc.WeakestTopic(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !ok {
		http.Error(w, "no weak topic", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, spot)
}

// GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GET /api/topics
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if s.topics == nil {
		http.NotFound(w, r)
		return
	}
	topics, err := s.topics.All(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, topics)
}

// GET /api/prerequisites
func (s *Server) handlePrerequisites(w http.ResponseWriter, _ *http.Request) {
	pending := s.svc.PendingPrerequisites()
	if pending == nil {
		pending = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"pending": pending})
}

// POST /api/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// GET /api/events/attempts?item_id=...&after=...&limit=50
func (s *Server) handleAttemptEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.NotFound(w, r)
		return
	}
	opts, err := queryOpts(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	events, err := s.events.RecentAttempts(r.Context(), opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if events == nil {
		events = []store.AttemptEvent{}
	}
	respondJSON(w, http.StatusOK, events)
}

// GET /api/events/sessions?after=...&limit=50
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.NotFound(w, r)
		return
	}
	opts, err := queryOpts(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	events, err := s.events.QuerySessions(r.Context(), opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if events == nil {
		events = []store.SessionEvent{}
	}
	respondJSON(w, http.StatusOK, events)
}

func queryOpts(r *http.Request) (store.QueryOpts, error) {
	q := r.URL.Query()
	opts := store.QueryOpts{Limit: 50, ItemID: strings.TrimSpace(q.Get("item_id"))}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("%w: bad limit %q", practice.ErrInvalidInput, v)
		}
		opts.Limit = n
	}
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("%w: bad after %q", practice.ErrInvalidInput, v)
		}
		opts.After = n
	}
	return opts, nil
}

// decodeBody decodes a JSON body. An empty body is accepted when
// allowEmpty is set.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", practice.ErrInvalidInput, err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps service errors to status codes.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, practice.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, item.ErrNotFound):
		status = http.StatusNotFound
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
