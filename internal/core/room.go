package core

import "time"

// ChatLogLimit bounds the per-room chat log. Oldest entries are
// evicted first once the limit is reached.
const ChatLogLimit = 100

// Room groups participants for broadcast and relay purposes.
// Members are referenced by connection id only, never by pointer.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time

	members map[string]struct{}
	chatLog []ChatMessage
}

// NewRoom constructs a room with no members.
func NewRoom(id, name string, createdAt time.Time) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
		members:   make(map[string]struct{}),
	}
}

// AddMember inserts a connection into the room. Returns true if newly added.
func (r *Room) AddMember(connID string) bool {
	if _, exists := r.members[connID]; exists {
		return false
	}
	r.members[connID] = struct{}{}
	return true
}

// RemoveMember deletes a connection from the room. Returns true if removed.
func (r *Room) RemoveMember(connID string) bool {
	if _, exists := r.members[connID]; !exists {
		return false
	}
	delete(r.members, connID)
	return true
}

// HasMember reports whether the connection is in the room.
func (r *Room) HasMember(connID string) bool {
	_, exists := r.members[connID]
	return exists
}

// MemberIDs returns the connection ids of all members.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// MemberCount returns the number of members.
func (r *Room) MemberCount() int {
	return len(r.members)
}

// Empty returns true if no members remain.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}

// AppendChat adds a message to the chat log, evicting the oldest
// entry once the log holds ChatLogLimit messages.
func (r *Room) AppendChat(msg ChatMessage) {
	if len(r.chatLog) >= ChatLogLimit {
		r.chatLog = r.chatLog[1:]
	}
	r.chatLog = append(r.chatLog, msg)
}

// ChatHistory returns a copy of the chat log, oldest first.
func (r *Room) ChatHistory() []ChatMessage {
	history := make([]ChatMessage, len(r.chatLog))
	copy(history, r.chatLog)
	return history
}
