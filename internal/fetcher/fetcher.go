// Package fetcher downloads RSS/Atom feeds and turns their items into topics.
package fetcher

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"topic_bot/internal/matcher"
	"topic_bot/internal/model"
)

const maxFeedSize = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
	policy  *bluemonday.Policy
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
		policy:  bluemonday.StrictPolicy(),
	}
}

// Fetch downloads and parses a feed from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "TopicBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// FetchTopics downloads a feed and converts its items with Topics.
func (f *Fetcher) FetchTopics(ctx context.Context, url string) ([]model.TopicInput, error) {
	feed, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return f.Topics(feed.Items), nil
}

// Topics maps feed items to topic inputs: the case-folded title becomes the
// name and the description (or content) stripped of HTML the explanation.
// Items left without a name or explanation are skipped; for repeated names the
// first item wins.
func (f *Fetcher) Topics(items []*gofeed.Item) []model.TopicInput {
	seen := make(map[string]bool, len(items))
	var topics []model.TopicInput
	for _, item := range items {
		name := matcher.Normalize(strings.TrimSpace(item.Title))
		body := item.Description
		if strings.TrimSpace(body) == "" {
			body = item.Content
		}
		in := model.TopicInput{Name: name, Explanation: f.plainText(body)}
		if in.Validate() != nil || seen[in.Name] {
			continue
		}
		seen[in.Name] = true
		topics = append(topics, in)
	}
	return topics
}

func (f *Fetcher) plainText(s string) string {
	text := html.UnescapeString(f.policy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}
