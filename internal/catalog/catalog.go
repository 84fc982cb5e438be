// Package catalog implements the topic catalog operations shared by the web
// panel, the JSON API and the Telegram bot: validated topic CRUD and logged search.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"topic_bot/internal/matcher"
	"topic_bot/internal/model"
	"topic_bot/internal/storage"
)

// Origin identifies who submitted a search.
type Origin struct {
	UserName string
	ChatID   string
}

// WebOrigin is the origin recorded for searches made through the HTTP API.
var WebOrigin = Origin{UserName: model.WebUserName, ChatID: model.WebChatID}

// Service is the application context: constructed once at startup and shared
// by every request handler.
type Service struct {
	store storage.Storage
	log   *slog.Logger
}

// New creates a Service over the given store.
func New(store storage.Storage, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// Topics returns every topic in storage order.
func (s *Service) Topics(ctx context.Context) ([]model.Topic, error) {
	return s.store.ListTopics(ctx)
}

// TopicNames returns the names of all topics in storage order.
func (s *Service) TopicNames(ctx context.Context) ([]string, error) {
	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Name)
	}
	return names, nil
}

// Lookup case-folds name and returns the topic with exactly that name.
func (s *Service) Lookup(ctx context.Context, name string) (*model.Topic, error) {
	return s.store.GetTopicByName(ctx, matcher.Normalize(name))
}

// Topic returns a topic by ID.
func (s *Service) Topic(ctx context.Context, id int64) (*model.Topic, error) {
	return s.store.GetTopic(ctx, id)
}

func normalizeInput(in model.TopicInput) model.TopicInput {
	return model.TopicInput{
		Name:        strings.TrimSpace(in.Name),
		Explanation: strings.TrimSpace(in.Explanation),
	}
}

// Create validates in and stores a new topic.
// A name already in use yields model.ErrConflict and leaves the catalog unchanged.
func (s *Service) Create(ctx context.Context, in model.TopicInput) (*model.Topic, error) {
	in = normalizeInput(in)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.GetTopicByName(ctx, in.Name)
	switch {
	case err == nil:
		return nil, fmt.Errorf("topic %q (id %d): %w", in.Name, existing.ID, model.ErrConflict)
	case !errors.Is(err, model.ErrNotFound):
		return nil, err
	}

	t := &model.Topic{Name: in.Name, Explanation: in.Explanation}
	if err := s.store.CreateTopic(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("topic created", "id", t.ID, "name", t.Name)
	return t, nil
}

// Update replaces the name and explanation of topic id.
// The name may stay the same; taking another topic's name yields model.ErrConflict.
func (s *Service) Update(ctx context.Context, id int64, in model.TopicInput) (*model.Topic, error) {
	t, err := s.store.GetTopic(ctx, id)
	if err != nil {
		return nil, err
	}

	in = normalizeInput(in)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.GetTopicByName(ctx, in.Name)
	switch {
	case err == nil && existing.ID != id:
		return nil, fmt.Errorf("topic %q (id %d): %w", in.Name, existing.ID, model.ErrConflict)
	case err != nil && !errors.Is(err, model.ErrNotFound):
		return nil, err
	}

	t.Name = in.Name
	t.Explanation = in.Explanation
	if err := s.store.UpdateTopic(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("topic updated", "id", t.ID, "name", t.Name)
	return t, nil
}

// Delete removes topic id. Logged queries referencing it are kept.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTopic(ctx, id); err != nil {
		return err
	}
	s.log.Info("topic deleted", "id", id)
	return nil
}

// Search case-folds text, finds the first topic whose name it contains and
// logs exactly one query recording the outcome. With no match the query is
// still logged and the returned error wraps model.ErrNotFound.
func (s *Service) Search(ctx context.Context, origin Origin, text string) (*model.Topic, error) {
	text = matcher.Normalize(text)

	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	found, ok := matcher.Match(text, topics)

	q := &model.Query{
		UserName:  origin.UserName,
		ChatID:    origin.ChatID,
		QueryText: text,
	}
	if ok {
		q.MatchedTopicID = &found.ID
	}
	if err := s.store.RecordQuery(ctx, q); err != nil {
		return nil, err
	}

	s.log.Debug("search", "user", origin.UserName, "chat_id", origin.ChatID, "matched", ok)
	if !ok {
		return nil, fmt.Errorf("search %q: %w", text, model.ErrNotFound)
	}
	return found, nil
}

// Queries returns the query log, most recent first.
func (s *Service) Queries(ctx context.Context) ([]model.QueryView, error) {
	return s.store.ListQueries(ctx)
}
