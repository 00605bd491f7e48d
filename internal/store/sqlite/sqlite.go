package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_guest      BOOLEAN NOT NULL DEFAULT 0,
	session_id    TEXT,
	tier          TEXT NOT NULL DEFAULT 'free',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS chat_records (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      INTEGER NOT NULL DEFAULT 0,
	room_id      TEXT NOT NULL,
	conn_id      TEXT NOT NULL,
	display_name TEXT NOT NULL,
	text         TEXT NOT NULL,
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS session_records (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          INTEGER NOT NULL,
	room_id          TEXT NOT NULL,
	joined_at        DATETIME NOT NULL,
	duration_seconds INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_records_room ON chat_records(room_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_session_records_user ON session_records(user_id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and bootstraps the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply an alternate schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, password_hash, is_guest, tier)
		VALUES (?, ?, 0, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, passwordHash, store.TierFree)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// CreateGuestUser creates a temporary guest user with session ID.
func (s *SQLiteStore) CreateGuestUser(ctx context.Context, sessionID string) (*store.User, error) {
	query := `
		INSERT INTO users (username, password_hash, is_guest, session_id, tier)
		VALUES (?, '', 1, ?, ?)
	`
	guestUsername := "guest_" + sessionID[:8]

	result, err := s.db.ExecContext(ctx, query, guestUsername, sessionID, store.TierFree)
	if err != nil {
		return nil, fmt.Errorf("insert guest user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, username, password_hash, is_guest, COALESCE(session_id, ''), tier, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, username, password_hash, is_guest, COALESCE(session_id, ''), tier, created_at
		FROM users
		WHERE username = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

// GetUserBySessionID retrieves a guest user by session ID.
func (s *SQLiteStore) GetUserBySessionID(ctx context.Context, sessionID string) (*store.User, error) {
	query := `
		SELECT id, username, password_hash, is_guest, COALESCE(session_id, ''), tier, created_at
		FROM users
		WHERE session_id = ? AND is_guest = 1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, sessionID))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsGuest, &u.SessionID, &u.Tier, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// ==== RecordStore implementation ====

// SaveChatRecord appends a chat record.
func (s *SQLiteStore) SaveChatRecord(ctx context.Context, rec store.ChatRecord) error {
	query := `
		INSERT INTO chat_records (user_id, room_id, conn_id, display_name, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.UserID, rec.RoomID, rec.ConnID, rec.DisplayName, rec.Text, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat record: %w", err)
	}
	return nil
}

// SaveSessionRecord appends a session-duration record.
func (s *SQLiteStore) SaveSessionRecord(ctx context.Context, rec store.SessionRecord) error {
	query := `
		INSERT INTO session_records (user_id, room_id, joined_at, duration_seconds)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.UserID, rec.RoomID, rec.JoinedAt, int64(rec.Duration.Seconds()))
	if err != nil {
		return fmt.Errorf("insert session record: %w", err)
	}
	return nil
}

// ListChatRecords retrieves the most recent chat records for a room, oldest first.
func (s *SQLiteStore) ListChatRecords(ctx context.Context, roomID string, limit int) ([]*store.ChatRecord, error) {
	query := `
		SELECT user_id, room_id, conn_id, display_name, text, created_at
		FROM (
			SELECT user_id, room_id, conn_id, display_name, text, created_at
			FROM chat_records
			WHERE room_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat records: %w", err)
	}
	defer rows.Close()

	records := make([]*store.ChatRecord, 0)
	for rows.Next() {
		var rec store.ChatRecord
		if err := rows.Scan(&rec.UserID, &rec.RoomID, &rec.ConnID, &rec.DisplayName, &rec.Text, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat records: %w", err)
	}
	return records, nil
}
