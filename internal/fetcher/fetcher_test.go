package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/gofeed"

	"topic_bot/internal/model"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
	lastReq    *http.Request
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func TestFetch(t *testing.T) {
	xml := loadFixture(t, "../../testdata/glossary.xml")

	tests := []struct {
		name      string
		transport *mockTransport
		wantTitle string
		wantItems int
		wantErr   bool
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: xml, statusCode: 200},
			wantTitle: "Programming Glossary",
			wantItems: 6,
		},
		{
			name:      "http error status",
			transport: &mockTransport{body: "not found", statusCode: 404},
			wantErr:   true,
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
		{
			name:      "invalid xml",
			transport: &mockTransport{body: "not xml at all", statusCode: 200},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.transport)
			feed, err := f.Fetch(context.Background(), "https://example.com/rss")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.wantTitle, feed.Title); diff != "" {
				t.Errorf("title mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantItems, len(feed.Items)); diff != "" {
				t.Errorf("item count mismatch (-want +got):\n%s", diff)
			}
			if got := tt.transport.lastReq.Header.Get("User-Agent"); got != "TopicBot/1.0" {
				t.Errorf("User-Agent = %q", got)
			}
		})
	}
}

func TestFetchTopics(t *testing.T) {
	f := New(&mockTransport{body: loadFixture(t, "../../testdata/glossary.xml"), statusCode: 200})

	got, err := f.FetchTopics(context.Background(), "https://example.com/rss")
	if err != nil {
		t.Fatalf("fetch topics: %v", err)
	}

	want := []model.TopicInput{
		{Name: "closure", Explanation: "A closure is a function that captures variables from its enclosing scope."},
		{Name: "goroutine", Explanation: "A lightweight thread managed by the Go runtime & scheduler."},
		{Name: "python", Explanation: "A general-purpose language."},
		{Name: "monad", Explanation: "A design pattern for chaining computations."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchTopics mismatch (-want +got):\n%s", diff)
	}
}

func TestTopics(t *testing.T) {
	tests := []struct {
		name  string
		items []*gofeed.Item
		want  []model.TopicInput
	}{
		{
			name:  "no items",
			items: nil,
			want:  nil,
		},
		{
			name: "markup and whitespace removed",
			items: []*gofeed.Item{
				{Title: "REST", Description: "<p>Representational\n\n state <a href=\"#\">transfer</a></p>"},
			},
			want: []model.TopicInput{{Name: "rest", Explanation: "Representational state transfer"}},
		},
		{
			name: "scripts are dropped",
			items: []*gofeed.Item{
				{Title: "XSS", Description: "<script>alert(1)</script>Cross-site scripting"},
			},
			want: []model.TopicInput{{Name: "xss", Explanation: "Cross-site scripting"}},
		},
		{
			name: "missing title skipped",
			items: []*gofeed.Item{
				{Title: "  ", Description: "orphan"},
				{Title: "Go", Description: "a language"},
			},
			want: []model.TopicInput{{Name: "go", Explanation: "a language"}},
		},
		{
			name: "case-insensitive duplicates keep first",
			items: []*gofeed.Item{
				{Title: "Go", Description: "first"},
				{Title: "GO", Description: "second"},
			},
			want: []model.TopicInput{{Name: "go", Explanation: "first"}},
		},
	}

	f := New(&mockTransport{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, f.Topics(tt.items)); diff != "" {
				t.Errorf("Topics() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
