package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/astepien/roam/assistant/place"
)

const (
	storeDriver = "sqlite"
	storeDSNOpt = "?_pragma=busy_timeout(3000)&_pragma=journal_mode(WAL)"
)

// Store holds chat transcripts and persisted markers.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("chat: store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("chat: create dir: %w", err)
	}
	db, err := sql.Open(storeDriver, path+storeDSNOpt)
	if err != nil {
		return nil, fmt.Errorf("chat: open db: %w", err)
	}
	st := &Store{db: db}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Messages returns the transcript for screen in timestamp order.
func (s *Store) Messages(ctx context.Context, screen Screen) ([]Message, error) {
	const q = `
SELECT id, content, from_user, timestamp, streaming
FROM chat_messages
WHERE screen = ?
ORDER BY timestamp ASC, rowid ASC`
	rows, err := s.db.QueryContext(ctx, q, string(screen))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var m Message
		var fromUser, streaming int
		var ts int64
		if err := rows.Scan(&m.ID, &m.Content, &fromUser, &ts, &streaming); err != nil {
			return nil, err
		}
		m.FromUser = fromUser != 0
		m.Streaming = streaming != 0
		m.Timestamp = time.UnixMilli(ts)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Add appends a completed message to the screen's transcript.
func (s *Store) Add(ctx context.Context, screen Screen, content string, fromUser bool) (Message, error) {
	m := Message{
		ID:        uuid.NewString(),
		Content:   content,
		FromUser:  fromUser,
		Timestamp: time.Now(),
	}
	return m, s.insert(ctx, screen, m)
}

// AddStreaming appends an empty assistant message that will fill in as
// streaming chunks arrive.
func (s *Store) AddStreaming(ctx context.Context, screen Screen) (Message, error) {
	m := Message{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Streaming: true,
	}
	return m, s.insert(ctx, screen, m)
}

func (s *Store) insert(ctx context.Context, screen Screen, m Message) error {
	const q = `
INSERT INTO chat_messages (id, screen, content, from_user, timestamp, streaming)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		m.ID, string(screen), m.Content, boolInt(m.FromUser), m.Timestamp.UnixMilli(), boolInt(m.Streaming),
	)
	return err
}

// ApplyChunk appends a streamed text fragment to the message.
func (s *Store) ApplyChunk(ctx context.Context, screen Screen, messageID, chunk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	const q = `
UPDATE chat_messages SET content = content || ?
WHERE screen = ? AND id = ?`
	_, err := s.db.ExecContext(ctx, q, chunk, string(screen), messageID)
	return err
}

// Complete replaces the message content with the final text and clears
// the streaming flag. Safe to call more than once.
func (s *Store) Complete(ctx context.Context, screen Screen, messageID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	const q = `
UPDATE chat_messages SET content = ?, streaming = 0
WHERE screen = ? AND id = ?`
	_, err := s.db.ExecContext(ctx, q, content, string(screen), messageID)
	return err
}

// Clear drops the screen's transcript.
func (s *Store) Clear(ctx context.Context, screen Screen) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE screen = ?`, string(screen))
	return err
}

// SaveMarkers persists the full marker list, replacing the previous
// snapshot. It satisfies the marker store's saver hook; persistence
// failures are swallowed because the in-memory list is authoritative.
func (s *Store) SaveMarkers(markers []place.MapMarker) {
	raw, err := json.Marshal(markers)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	const q = `
INSERT INTO map_state (key, value) VALUES ('markers', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	_, _ = s.db.ExecContext(context.Background(), q, string(raw))
}

// LoadMarkers returns the persisted marker snapshot, or nil when none
// was saved.
func (s *Store) LoadMarkers(ctx context.Context) ([]place.MapMarker, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM map_state WHERE key = 'markers'`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []place.MapMarker
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("chat: decode markers: %w", err)
	}
	return out, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id TEXT NOT NULL PRIMARY KEY,
	screen TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	from_user INTEGER NOT NULL DEFAULT 0,
	timestamp INTEGER NOT NULL,
	streaming INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_screen_ts
ON chat_messages(screen, timestamp ASC);
CREATE TABLE IF NOT EXISTS map_state (
	key TEXT NOT NULL PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("chat: migrate: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
