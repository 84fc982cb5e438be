package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"topic_bot/internal/catalog"
	"topic_bot/internal/model"
)

type topicResponse struct {
	Topic       string `json:"topic"`
	Explanation string `json:"explanation"`
}

type searchRequest struct {
	Text *string `json:"text"`
}

func newTopicResponse(t *model.Topic) topicResponse {
	return topicResponse{Topic: t.Name, Explanation: t.Explanation}
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	names, err := s.catalog.TopicNames(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// chi routes on RawPath when it is set, leaving the param still escaped.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	t, err := s.catalog.Lookup(r.Context(), name)
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "topic not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTopicResponse(t))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
		writeError(w, http.StatusBadRequest, "a text to search is required")
		return
	}

	t, err := s.catalog.Search(r.Context(), catalog.WebOrigin, *req.Text)
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no topic found in the provided text")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTopicResponse(t))
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
