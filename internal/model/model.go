// Package model defines the domain types used across the application.
package model

import "time"

// Origin identifiers used for searches submitted through the web API.
const (
	WebUserName = "Web user"
	WebChatID   = "web"
)

// Topic is a named explanation that searches can match against.
type Topic struct {
	ID          int64
	Name        string
	Explanation string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TopicInput carries the user-editable fields of a topic.
type TopicInput struct {
	Name        string
	Explanation string
}

// Query records a single search attempt and its outcome.
// Successful is true iff MatchedTopicID is non-nil.
type Query struct {
	ID             int64
	UserName       string
	ChatID         string
	QueryText      string
	MatchedTopicID *int64
	Successful     bool
	Timestamp      time.Time
}

// QueryView is a Query joined with the name of the topic it matched.
// TopicName is nil when the query failed or the topic was deleted since.
type QueryView struct {
	Query
	TopicName *string
}
