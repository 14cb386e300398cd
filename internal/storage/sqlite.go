// Package storage persists conversations and messages in SQLite.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/TanyuSylvain/unify-llm/internal/models"
)

// ErrNotFound is returned when a conversation id has no row.
var ErrNotFound = errors.New("conversation not found")

const debateStateKey = "debate_state"

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	model         TEXT NOT NULL,
	mode          TEXT NOT NULL DEFAULT 'simple',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	message_count INTEGER NOT NULL DEFAULT 0,
	title         TEXT NOT NULL DEFAULT '',
	metadata_json TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS messages (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	timestamp       TEXT NOT NULL,
	model           TEXT NOT NULL DEFAULT '',
	message_type    TEXT NOT NULL DEFAULT 'user',
	iteration       INTEGER NOT NULL DEFAULT 0,
	metadata_json   TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, id);
CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at DESC);
`

// Store is the SQLite-backed conversation store. A single mutex serializes
// writers; modernc.org/sqlite handles concurrent readers.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logrus.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema. Foreign keys are enabled so conversation deletes cascade.
func Open(path string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	logger.WithField("path", path).Info("Database ready")
	return &Store{db: db, logger: logger}, nil
}

// migrate adds columns introduced after the initial schema. Additive only,
// safe to run on every start.
func migrate(db *sql.DB) error {
	additions := []struct{ table, column, ddl string }{
		{"conversations", "mode", "ALTER TABLE conversations ADD COLUMN mode TEXT NOT NULL DEFAULT 'simple'"},
		{"conversations", "title", "ALTER TABLE conversations ADD COLUMN title TEXT NOT NULL DEFAULT ''"},
		{"conversations", "metadata_json", "ALTER TABLE conversations ADD COLUMN metadata_json TEXT NOT NULL DEFAULT '{}'"},
		{"messages", "message_type", "ALTER TABLE messages ADD COLUMN message_type TEXT NOT NULL DEFAULT 'user'"},
		{"messages", "iteration", "ALTER TABLE messages ADD COLUMN iteration INTEGER NOT NULL DEFAULT 0"},
		{"messages", "metadata_json", "ALTER TABLE messages ADD COLUMN metadata_json TEXT NOT NULL DEFAULT '{}'"},
	}
	for _, a := range additions {
		ok, err := hasColumn(db, a.table, a.column)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := db.Exec(a.ddl); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &primaryKey); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// CreateOrTouch ensures a conversation row exists, creating it with the
// given model and mode. An existing row keeps its mode and model.
func (s *Store) CreateOrTouch(id, model string, mode models.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now()
	_, err := s.db.Exec(`
		INSERT INTO conversations (id, model, mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		id, model, string(mode), ts, ts)
	return err
}

// AppendMessage stores one message, bumps the conversation's message count
// and updated_at, and derives the title from the first user message.
func (s *Store) AppendMessage(msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeUser
	}
	meta := "{}"
	if len(msg.Metadata) > 0 {
		meta = string(msg.Metadata)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO messages (conversation_id, role, content, timestamp, model, message_type, iteration, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ConversationID, msg.Role, msg.Content,
		msg.Timestamp.Format(time.RFC3339Nano),
		msg.Model, string(msg.Type), msg.Iteration, meta)
	if err != nil {
		return err
	}
	if seq, err := res.LastInsertId(); err == nil {
		msg.Seq = seq
	}

	if _, err := tx.Exec(`
		UPDATE conversations SET message_count = message_count + 1, updated_at = ?
		WHERE id = ?`,
		now(), msg.ConversationID); err != nil {
		return err
	}

	if msg.Role == "user" {
		if _, err := tx.Exec(`
			UPDATE conversations SET title = ?
			WHERE id = ? AND title = ''`,
			titleFrom(msg.Content), msg.ConversationID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// titleFrom derives a conversation title from its first user message.
func titleFrom(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return content
}

// GetConversation loads one conversation row.
func (s *Store) GetConversation(id string) (*models.Conversation, error) {
	row := s.db.QueryRow(`
		SELECT id, model, mode, created_at, updated_at, message_count, title, metadata_json
		FROM conversations WHERE id = ?`, id)
	return scanConversation(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	var (
		c            models.Conversation
		mode         string
		created, upd string
		metaJSON     string
	)
	err := row.Scan(&c.ID, &c.Model, &mode, &created, &upd, &c.MessageCount, &c.Title, &metaJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Mode = models.Mode(mode)
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	c.UpdatedAt, _ = time.Parse(time.RFC3339Nano, upd)
	if metaJSON != "" && metaJSON != "{}" {
		var meta map[string]json.RawMessage
		if err := json.Unmarshal([]byte(metaJSON), &meta); err == nil {
			c.Metadata = meta
		}
	}
	return &c, nil
}

// ListConversations returns conversations ordered by most recent activity.
// limit <= 0 means no limit.
func (s *Store) ListConversations(limit, offset int) ([]*models.Conversation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT id, model, mode, created_at, updated_at, message_count, title, metadata_json
		FROM conversations ORDER BY updated_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadMessages returns a conversation's messages in insertion order.
func (s *Store) LoadMessages(conversationID string) ([]*models.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, conversation_id, role, content, timestamp, model, message_type, iteration, metadata_json
		FROM messages WHERE conversation_id = ? ORDER BY id`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Message{}
	for rows.Next() {
		var (
			m        models.Message
			ts       string
			typ      string
			metaJSON string
		)
		if err := rows.Scan(&m.Seq, &m.ConversationID, &m.Role, &m.Content, &ts, &m.Model, &typ, &m.Iteration, &metaJSON); err != nil {
			return nil, err
		}
		m.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		m.Type = models.MessageType(typ)
		if metaJSON != "" && metaJSON != "{}" {
			m.Metadata = json.RawMessage(metaJSON)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// UpdateMode changes a conversation's mode. Returns ErrNotFound for an
// unknown id.
func (s *Store) UpdateMode(id string, mode models.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE conversations SET mode = ?, updated_at = ? WHERE id = ?`,
		string(mode), now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReadDebateState loads the debate state stored in the conversation's
// metadata, or nil when none has been written.
func (s *Store) ReadDebateState(id string) (*models.DebateState, error) {
	c, err := s.GetConversation(id)
	if err != nil {
		return nil, err
	}
	raw, ok := c.Metadata[debateStateKey]
	if !ok {
		return nil, nil
	}
	var state models.DebateState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode debate state: %w", err)
	}
	return &state, nil
}

// WriteDebateState stores the debate state under the conversation's
// metadata, preserving other metadata keys.
func (s *Store) WriteDebateState(id string, state *models.DebateState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metaJSON string
	row := s.db.QueryRow(`SELECT metadata_json FROM conversations WHERE id = ?`, id)
	if err := row.Scan(&metaJSON); errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	meta := map[string]json.RawMessage{}
	if metaJSON != "" {
		json.Unmarshal([]byte(metaJSON), &meta)
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	meta[debateStateKey] = raw
	merged, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		UPDATE conversations SET metadata_json = ?, updated_at = ? WHERE id = ?`,
		string(merged), now(), id)
	return err
}

// Delete removes a conversation and, via the cascade, its messages.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every conversation and message. Returns the number of
// conversations removed.
func (s *Store) DeleteAll() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM conversations`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
