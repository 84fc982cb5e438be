package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"topic_bot/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "admin", "add_topic", "edit_topic", "queries"}

// pageData is the view model shared by every HTML page.
type pageData struct {
	Title   string
	Notice  *Notice
	Names   []string
	Topics  []model.Topic
	Topic   *model.Topic
	Form    model.TopicInput
	Queries []model.QueryView
}

type pages struct {
	set map[string]*template.Template
}

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04:05")
	},
	"matchedTopic": matchedTopic,
}

// matchedTopic labels the topic a logged query resolved to.
func matchedTopic(q model.QueryView) string {
	switch {
	case q.MatchedTopicID == nil:
		return "-"
	case q.TopicName == nil:
		return "unknown"
	default:
		return *q.TopicName
	}
}

func loadPages() (*pages, error) {
	p := &pages{set: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		p.set[name] = t
	}
	return p, nil
}

// render executes the named page into a buffer first so template errors
// never leave a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	t, ok := s.pages.set[name]
	if !ok {
		s.internalError(w, r, fmt.Errorf("unknown page %q", name))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.internalError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
