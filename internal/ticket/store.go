package ticket

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hudumalabs/districtbot/internal/db"
	"github.com/hudumalabs/districtbot/internal/flow"
)

// ErrStatusBackwards is returned when an update would move a ticket's status
// backwards in its lifecycle.
var ErrStatusBackwards = errors.New("ticket status cannot move backwards")

// ErrNotFound is returned when no ticket matches the given identifier.
var ErrNotFound = errors.New("ticket not found")

// Store persists tickets in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a ticket store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new ticket. A missing TicketID is filled from NewTicketID;
// a collision on the short id is retried with a fresh one.
func (s *Store) Create(t *Ticket) error {
	if !t.Type.Valid() {
		return fmt.Errorf("invalid ticket type %q", t.Type)
	}
	if strings.TrimSpace(t.Message) == "" {
		return errors.New("ticket message is required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusReceived
	}

	const attempts = 5
	for i := 0; i < attempts; i++ {
		if t.TicketID == "" {
			t.TicketID = flow.NewTicketID()
		}
		_, err := s.db.Exec(`
			INSERT INTO tickets (id, ticket_id, phone, type, message, department, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.TicketID, t.Phone, string(t.Type), t.Message, t.Department, string(t.Status))
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			t.TicketID = ""
			continue
		}
		return fmt.Errorf("creating ticket: %w", err)
	}
	return errors.New("could not allocate a unique ticket id")
}

// NewUniqueTicketID returns a short ticket id not currently in use. The
// UNIQUE constraint on the column still backstops the race with a concurrent
// insert.
func (s *Store) NewUniqueTicketID() string {
	for {
		id := flow.NewTicketID()
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM tickets WHERE ticket_id = ?`, id).Scan(&n); err != nil {
			return id
		}
		if n == 0 {
			return id
		}
	}
}

// GetByTicketID returns the ticket with the given short id.
func (s *Store) GetByTicketID(ticketID string) (*Ticket, error) {
	row := s.db.QueryRow(selectTicket+` WHERE ticket_id = ?`, ticketID)
	return scanTicket(row)
}

// GetByID returns the ticket with the given primary key.
func (s *Store) GetByID(id string) (*Ticket, error) {
	row := s.db.QueryRow(selectTicket+` WHERE id = ?`, id)
	return scanTicket(row)
}

// ListByPhone returns a phone number's tickets of one type, newest first.
func (s *Store) ListByPhone(phone string, typ Type) ([]*Ticket, error) {
	rows, err := s.db.Query(selectTicket+`
		WHERE phone = ? AND type = ?
		ORDER BY created_at DESC`, phone, string(typ))
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	return scanTickets(rows)
}

// List returns all tickets of one type, newest first. An empty type lists
// everything.
func (s *Store) List(typ Type) ([]*Ticket, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if typ == "" {
		rows, err = s.db.Query(selectTicket + ` ORDER BY created_at DESC`)
	} else {
		rows, err = s.db.Query(selectTicket+` WHERE type = ? ORDER BY created_at DESC`, string(typ))
	}
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	return scanTickets(rows)
}

// UpdateStatus advances a ticket's status. Backwards moves are rejected.
func (s *Store) UpdateStatus(id string, status Status) error {
	t, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !t.Status.CanAdvanceTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusBackwards, t.Status, status)
	}
	_, err = s.db.Exec(`
		UPDATE tickets SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("updating ticket status: %w", err)
	}
	return nil
}

// Answer records a reply on a ticket and marks it answered.
func (s *Store) Answer(id, feedback string) error {
	if strings.TrimSpace(feedback) == "" {
		return errors.New("answer text is required")
	}
	t, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !t.Status.CanAdvanceTo(StatusAnswered) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusBackwards, t.Status, StatusAnswered)
	}
	_, err = s.db.Exec(`
		UPDATE tickets
		SET feedback = ?, status = ?, updated_at = datetime('now')
		WHERE id = ?`,
		feedback, string(StatusAnswered), id)
	if err != nil {
		return fmt.Errorf("answering ticket: %w", err)
	}
	return nil
}

const selectTicket = `
	SELECT id, ticket_id, phone, type, message, department, status, feedback,
	       created_at, updated_at
	FROM tickets`

func scanTicket(row *sql.Row) (*Ticket, error) {
	var t Ticket
	var typ, status string
	err := row.Scan(&t.ID, &t.TicketID, &t.Phone, &typ, &t.Message, &t.Department,
		&status, &t.Feedback, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Type = Type(typ)
	t.Status = Status(status)
	return &t, nil
}

func scanTickets(rows *sql.Rows) ([]*Ticket, error) {
	defer rows.Close()
	var out []*Ticket
	for rows.Next() {
		var t Ticket
		var typ, status string
		err := rows.Scan(&t.ID, &t.TicketID, &t.Phone, &typ, &t.Message, &t.Department,
			&status, &t.Feedback, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		t.Type = Type(typ)
		t.Status = Status(status)
		out = append(out, &t)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
