// Package seed loads the default topic dataset into an empty catalog.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"topic_bot/internal/model"
	"topic_bot/internal/storage"
)

//go:embed topics.yaml
var defaultTopics []byte

// Entry is one topic of a seed dataset.
type Entry struct {
	Name        string `yaml:"name"`
	Explanation string `yaml:"explanation"`
}

// Defaults returns the embedded default dataset.
func Defaults() ([]model.TopicInput, error) {
	return Parse(defaultTopics)
}

// Load reads a dataset from a YAML file, or returns Defaults when path is empty.
func Load(path string) ([]model.TopicInput, error) {
	if path == "" {
		return Defaults()
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied seed file
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	topics, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return topics, nil
}

// Parse decodes a YAML list of entries, preserving order.
// Entries with a blank name or explanation are rejected, as are duplicate names.
func Parse(data []byte) ([]model.TopicInput, error) {
	var entries []Entry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	topics := make([]model.TopicInput, 0, len(entries))
	for i, e := range entries {
		in := model.TopicInput{
			Name:        strings.TrimSpace(e.Name),
			Explanation: strings.TrimSpace(e.Explanation),
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if seen[in.Name] {
			return nil, fmt.Errorf("entry %d: duplicate name %q", i, in.Name)
		}
		seen[in.Name] = true
		topics = append(topics, in)
	}
	return topics, nil
}

// Merge appends extra topics whose names are not already present in base.
func Merge(base, extra []model.TopicInput) []model.TopicInput {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]model.TopicInput, 0, len(base)+len(extra))
	for _, in := range base {
		seen[in.Name] = true
		out = append(out, in)
	}
	for _, in := range extra {
		if seen[in.Name] {
			continue
		}
		seen[in.Name] = true
		out = append(out, in)
	}
	return out
}

// Run inserts topics if the store holds none. It is safe to call on every start.
func Run(ctx context.Context, store storage.Storage, topics []model.TopicInput, log *slog.Logger) error {
	n, err := store.SeedTopics(ctx, topics)
	if err != nil {
		return fmt.Errorf("seed topics: %w", err)
	}
	if n == 0 {
		log.Debug("topic table not empty, seeding skipped")
		return nil
	}
	log.Info("initial topics imported", "count", n)
	return nil
}
