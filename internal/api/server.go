// Package api exposes the practice service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/topicgraph"
)

// TopicLister lists the topics of the pool. *store.TopicRepo implements it.
type TopicLister interface {
	All(ctx context.Context) ([]topicgraph.Topic, error)
}

// EventQuerier reads the event logs. *store.EventRepo implements it.
type EventQuerier interface {
	RecentAttempts(ctx context.Context, opts store.QueryOpts) ([]store.AttemptEvent, error)
	QuerySessions(ctx context.Context, opts store.QueryOpts) ([]store.SessionEvent, error)
}

// Options configures the router.
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration

	// Topics and Events are optional; their routes answer 404 when nil.
	Topics TopicLister
	Events EventQuerier
}

// Server routes HTTP requests to a practice.Service.
type Server struct {
	svc    *practice.Service
	topics TopicLister
	events EventQuerier
	router chi.Router
}

// NewServer builds the router.
func NewServer(svc *practice.Service, opts Options) *Server {
	s := &Server{svc: svc, topics: opts.Topics, events: opts.Events}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleBuildSession)
		r.Post("/attempts", s.handleRecordAttempt)
		r.Post("/flashcards/{itemID}/views", s.handleFlashcardView)
		r.Get("/items/due", s.handleDueItems)
		r.Get("/weak-spots", s.handleWeakSpots)
		r.Get("/weak-spots/topic", s.handleWeakestTopic)
		r.Get("/stats", s.handleStats)
		r.Get("/topics", s.handleTopics)
		r.Get("/prerequisites", s.handlePrerequisites)
		r.Post("/reset", s.handleReset)

		r.Route("/events", func(r chi.Router) {
			r.Get("/attempts", s.handleAttemptEvents)
			r.Get("/sessions", s.handleSessionEvents)
		})
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
