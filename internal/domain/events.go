package domain

import "time"

// Activity event kinds emitted by the lending core
const (
	EventToolListed   = "tool_listed"
	EventToolBorrowed = "tool_borrowed"
	EventToolReturned = "tool_returned"
	EventToolDeleted  = "tool_deleted"
)

// ActivityEvent describes one lending action for live dashboards
type ActivityEvent struct {
	Kind      string    `json:"kind"`
	ToolID    string    `json:"toolId"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher fans activity events out to observers. Publishing is
// fire-and-forget; the core never blocks on it.
type EventPublisher interface {
	Publish(event ActivityEvent)
}
