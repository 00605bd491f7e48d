package core

import (
	"encoding/json"
	"time"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomsList delivers the full room directory snapshot.
	EventRoomsList EventKind = iota
	// EventRoomCreated confirms room creation to the creator.
	EventRoomCreated
	// EventRoomJoined confirms admission and carries the members that
	// were present before the join.
	EventRoomJoined
	// EventUserJoined notifies room members about a new participant.
	EventUserJoined
	// EventUserLeft notifies room members about a departed participant.
	EventUserLeft
	// EventMediaToggle notifies room members about an audio/video change.
	EventMediaToggle
	// EventChatMessage delivers a chat message to room members,
	// including the sender.
	EventChatMessage
	// EventSignal delivers an addressed relay payload to its target.
	EventSignal
	// EventError notifies a client about a domain error.
	EventError
)

// RoomSummary is one row of the room directory.
type RoomSummary struct {
	ID          string
	Name        string
	MemberCount int
	CreatedAt   time.Time
}

// RoomSnapshot is the point-in-time room state returned on admission.
type RoomSnapshot struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Members   []MemberInfo
	Chat      []ChatMessage
}

// Signal is an addressed relay payload tagged with the sender identity.
// FromName is set for offers so the receiving side can label the peer.
type Signal struct {
	Kind     SignalKind
	From     string
	FromName string
	Payload  json.RawMessage
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind            EventKind
	Rooms           []RoomSummary
	Room            *RoomSnapshot
	ExistingMembers []MemberInfo
	ConnID          string
	DisplayName     string
	Media           MediaKind
	Enabled         bool
	Message         *ChatMessage
	Signal          *Signal
	Error           *CoreError
}
