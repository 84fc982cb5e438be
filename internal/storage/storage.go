// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"topic_bot/internal/model"
)

// Storage is the interface for all persistence operations.
//
// Lookups of a missing row return an error wrapping model.ErrNotFound;
// writes that would duplicate a topic name return one wrapping model.ErrConflict.
type Storage interface {
	CreateTopic(ctx context.Context, t *model.Topic) error
	GetTopic(ctx context.Context, id int64) (*model.Topic, error)
	GetTopicByName(ctx context.Context, name string) (*model.Topic, error)
	ListTopics(ctx context.Context) ([]model.Topic, error)
	UpdateTopic(ctx context.Context, t *model.Topic) error
	DeleteTopic(ctx context.Context, id int64) error
	CountTopics(ctx context.Context) (int, error)
	SeedTopics(ctx context.Context, topics []model.TopicInput) (int, error)

	RecordQuery(ctx context.Context, q *model.Query) error
	ListQueries(ctx context.Context) ([]model.QueryView, error)

	Close() error
}
