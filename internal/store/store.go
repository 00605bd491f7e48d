package store

import (
	"context"
	"time"
)

// Tier values for user accounts.
const (
	TierFree = "free"
	TierPlus = "plus"
)

// User represents a user in the system.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsGuest      bool
	SessionID    string // For guest user session tracking
	Tier         string
	CreatedAt    time.Time
}

// ChatRecord is a persisted copy of a relayed chat message.
type ChatRecord struct {
	UserID      int64
	RoomID      string
	ConnID      string
	DisplayName string
	Text        string
	CreatedAt   time.Time
}

// SessionRecord captures how long a user spent in a room.
type SessionRecord struct {
	UserID   int64
	RoomID   string
	JoinedAt time.Time
	Duration time.Duration
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// CreateGuestUser creates a temporary guest user with session ID.
	CreateGuestUser(ctx context.Context, sessionID string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserBySessionID retrieves a guest user by session ID.
	GetUserBySessionID(ctx context.Context, sessionID string) (*User, error)
}

// RecordStore handles append-only activity records. The hub calls these
// off its dispatch goroutine; failures are logged, never surfaced.
type RecordStore interface {
	// SaveChatRecord appends a chat record.
	SaveChatRecord(ctx context.Context, rec ChatRecord) error

	// SaveSessionRecord appends a session-duration record.
	SaveSessionRecord(ctx context.Context, rec SessionRecord) error

	// ListChatRecords retrieves the most recent chat records for a room,
	// oldest first. Limit determines max number of records to return.
	ListChatRecords(ctx context.Context, roomID string, limit int) ([]*ChatRecord, error)
}

// Store combines all persistence interfaces.
type Store interface {
	UserStore
	RecordStore

	// Close releases underlying resources.
	Close() error
}
