// Package web serves the public topic API and the HTML admin panel.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"topic_bot/internal/catalog"
	"topic_bot/internal/model"
)

// Catalog is the set of topic operations the handlers need.
type Catalog interface {
	Topics(ctx context.Context) ([]model.Topic, error)
	TopicNames(ctx context.Context) ([]string, error)
	Lookup(ctx context.Context, name string) (*model.Topic, error)
	Topic(ctx context.Context, id int64) (*model.Topic, error)
	Create(ctx context.Context, in model.TopicInput) (*model.Topic, error)
	Update(ctx context.Context, id int64, in model.TopicInput) (*model.Topic, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, origin catalog.Origin, text string) (*model.Topic, error)
	Queries(ctx context.Context) ([]model.QueryView, error)
}

// Server routes HTTP requests to the catalog.
type Server struct {
	router  chi.Router
	catalog Catalog
	pages   *pages
	log     *slog.Logger
}

// NewServer builds the router and parses the embedded templates.
func NewServer(cat Catalog, log *slog.Logger) (*Server, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		router:  chi.NewRouter(),
		catalog: cat,
		pages:   p,
		log:     log,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.handleIndex)
	r.Get("/topics", s.handleTopics)
	r.Get("/topic/{name}", s.handleTopic)
	r.Post("/search", s.handleSearch)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", s.handleAdmin)
		r.Get("/queries", s.handleQueries)
		r.Route("/topics", func(r chi.Router) {
			r.Get("/add", s.handleAddForm)
			r.Post("/add", s.handleAdd)
			r.Get("/edit/{id:[0-9]+}", s.handleEditForm)
			r.Post("/edit/{id:[0-9]+}", s.handleEdit)
			r.Post("/delete/{id:[0-9]+}", s.handleDelete)
		})
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"dur", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
