package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hudumalabs/districtbot/internal/db"
	"github.com/hudumalabs/districtbot/internal/flow"
)

// Session is one WhatsApp conversation, keyed by phone number. The flow
// context is persisted as JSON so a restart resumes every conversation
// exactly where it left off.
type Session struct {
	ID        string
	Phone     string
	State     flow.State
	Language  flow.Language
	Context   flow.Context
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists sessions in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a session store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// FindOrCreate returns the session for a phone number, creating a fresh one
// in the welcome state when none exists. The insert races safely: concurrent
// callers for the same phone both end up with the single stored row.
func (s *Store) FindOrCreate(phone string, defaultLang flow.Language) (*Session, error) {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, phone, state, language)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(phone) DO NOTHING`,
		uuid.NewString(), phone, string(flow.StateWelcome), string(defaultLang))
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return s.getByPhone(phone)
}

// GetByPhone returns the session for a phone number, or nil when none exists.
func (s *Store) GetByPhone(phone string) (*Session, error) {
	sess, err := s.getByPhone(phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sess, err
}

func (s *Store) getByPhone(phone string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, phone, state, language, context, created_at, updated_at
		FROM sessions WHERE phone = ?`, phone)
	return scanSession(row)
}

// Save writes the mutable session fields back.
func (s *Store) Save(sess *Session) error {
	ctxJSON, err := json.Marshal(sess.Context)
	if err != nil {
		return fmt.Errorf("encoding session context: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE sessions
		SET state = ?, language = ?, context = ?, updated_at = datetime('now')
		WHERE id = ?`,
		string(sess.State), string(sess.Language), string(ctxJSON), sess.ID)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Reset puts a session back at the main menu with an empty context. Used when
// a conversation has been idle past the configured timeout.
func (s *Store) Reset(sess *Session) error {
	sess.State = flow.StateMainMenu
	sess.Context = flow.Context{}
	return s.Save(sess)
}

// Count returns the number of stored sessions.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}

func scanSession(row *sql.Row) (*Session, error) {
	var sess Session
	var state, language, ctxJSON string
	err := row.Scan(&sess.ID, &sess.Phone, &state, &language, &ctxJSON,
		&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sess.State = flow.State(state)
	sess.Language = flow.Language(language)
	if err := json.Unmarshal([]byte(ctxJSON), &sess.Context); err != nil {
		// A corrupted context column should not brick the conversation.
		sess.Context = flow.Context{}
	}
	return &sess, nil
}
