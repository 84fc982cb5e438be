package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"topic_bot/internal/model"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.catalog.TopicNames(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, "index", pageData{Title: "Topics", Names: names})
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	topics, err := s.catalog.Topics(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, "admin", pageData{Title: "Admin", Notice: noticeFrom(r), Topics: topics})
}

func (s *Server) handleQueries(w http.ResponseWriter, r *http.Request) {
	queries, err := s.catalog.Queries(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, "queries", pageData{Title: "Queries", Queries: queries})
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "add_topic", pageData{Title: "Add topic", Notice: noticeFrom(r)})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	in, err := topicForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err = s.catalog.Create(r.Context(), in)
	switch {
	case err == nil:
		redirectWithNotice(w, r, "/admin", noticeTopicAdded)
	case errors.Is(err, model.ErrValidation):
		redirectWithNotice(w, r, "/admin/topics/add", noticeFieldsRequired)
	case errors.Is(err, model.ErrConflict):
		redirectWithNotice(w, r, "/admin", noticeTopicExists)
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := topicID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	t, err := s.catalog.Topic(r.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, "edit_topic", pageData{
		Title:  "Edit topic",
		Notice: noticeFrom(r),
		Topic:  t,
		Form:   model.TopicInput{Name: t.Name, Explanation: t.Explanation},
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := topicID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	in, err := topicForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	back := "/admin/topics/edit/" + strconv.FormatInt(id, 10)
	_, err = s.catalog.Update(r.Context(), id, in)
	switch {
	case err == nil:
		redirectWithNotice(w, r, "/admin", noticeTopicUpdated)
	case errors.Is(err, model.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, model.ErrValidation):
		redirectWithNotice(w, r, back, noticeFieldsRequired)
	case errors.Is(err, model.ErrConflict):
		redirectWithNotice(w, r, back, noticeNameTaken)
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := topicID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	err := s.catalog.Delete(r.Context(), id)
	switch {
	case err == nil:
		redirectWithNotice(w, r, "/admin", noticeTopicDeleted)
	case errors.Is(err, model.ErrNotFound):
		http.NotFound(w, r)
	default:
		s.internalError(w, r, err)
	}
}

// topicID parses the {id} route parameter. Values that overflow int64 are
// treated like unknown ids.
func topicID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func topicForm(r *http.Request) (model.TopicInput, error) {
	if err := r.ParseForm(); err != nil {
		return model.TopicInput{}, err
	}
	return model.TopicInput{
		Name:        r.PostForm.Get("name"),
		Explanation: r.PostForm.Get("explanation"),
	}, nil
}
