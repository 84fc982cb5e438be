// Package scheduler periodically imports new topics from a feed.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"topic_bot/internal/model"
)

// Source yields the topics currently published by a feed.
type Source interface {
	FetchTopics(ctx context.Context, url string) ([]model.TopicInput, error)
}

// Creator stores a new topic, failing with model.ErrConflict if the name is taken.
type Creator interface {
	Create(ctx context.Context, in model.TopicInput) (*model.Topic, error)
}

// Result summarises one sync pass.
type Result struct {
	Created int
	Skipped int
	Failed  int
}

// Scheduler keeps the catalog in step with a topic feed.
type Scheduler struct {
	source  Source
	catalog Creator
	url     string
	log     *slog.Logger
	tick    time.Duration

	skipFirst bool
}

// New creates a Scheduler syncing url every interval.
func New(source Source, catalog Creator, url string, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		source:  source,
		catalog: catalog,
		url:     url,
		log:     log,
		tick:    interval,
	}
}

// SkipInitialSync makes Run wait for the first tick instead of syncing at once.
// Used when the feed was imported at startup.
func (s *Scheduler) SkipInitialSync() {
	s.skipFirst = true
}

// Run syncs immediately and then on every tick, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	if !s.skipFirst {
		s.Sync(ctx)
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sync(ctx)
		}
	}
}

// Sync fetches the feed once and creates every topic whose name is new.
// Existing topics are never modified.
func (s *Scheduler) Sync(ctx context.Context) Result {
	var res Result

	topics, err := s.source.FetchTopics(ctx, s.url)
	if err != nil {
		s.log.Error("fetch topic feed", "url", s.url, "error", err)
		return res
	}

	for _, in := range topics {
		if ctx.Err() != nil {
			break
		}
		_, err := s.catalog.Create(ctx, in)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrValidation):
			res.Skipped++
		default:
			res.Failed++
			s.log.Error("create topic from feed", "name", in.Name, "error", err)
		}
	}

	if res.Created > 0 || res.Failed > 0 {
		s.log.Info("topic feed synced", "url", s.url, "created", res.Created, "skipped", res.Skipped, "failed", res.Failed)
	} else {
		s.log.Debug("topic feed unchanged", "url", s.url, "skipped", res.Skipped)
	}
	return res
}
