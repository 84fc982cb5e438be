// Package matcher implements the topic search used by the web API and the bot.
package matcher

import (
	"strings"

	"topic_bot/internal/model"
)

// Normalize case-folds text the same way for queries and topic names.
func Normalize(text string) string {
	return strings.ToLower(text)
}

// Match returns the first topic, in slice order, whose case-folded name occurs
// in the case-folded text. There is no ranking: a later, longer or more specific
// name never wins over an earlier one.
func Match(text string, topics []model.Topic) (*model.Topic, bool) {
	folded := Normalize(text)
	for i := range topics {
		name := Normalize(topics[i].Name)
		if name == "" {
			continue
		}
		if strings.Contains(folded, name) {
			return &topics[i], true
		}
	}
	return nil, false
}
