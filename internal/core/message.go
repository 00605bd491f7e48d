package core

import "time"

// ChatMessage is the domain model for a chat message.
// Immutable once created; only removed by chat log eviction.
type ChatMessage struct {
	ID          string
	ConnID      string
	DisplayName string
	Text        string
	Timestamp   time.Time
}
