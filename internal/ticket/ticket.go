package ticket

import (
	"time"
)

// Type distinguishes citizen questions from complaints.
type Type string

const (
	TypeQuestion  Type = "question"
	TypeComplaint Type = "complaint"
)

// Valid reports whether t is a known ticket type.
func (t Type) Valid() bool {
	return t == TypeQuestion || t == TypeComplaint
}

// Status is the ticket lifecycle state. Transitions only move forward:
// received, then in_progress, then answered.
type Status string

const (
	StatusReceived   Status = "received"
	StatusInProgress Status = "in_progress"
	StatusAnswered   Status = "answered"
)

var statusRank = map[Status]int{
	StatusReceived:   0,
	StatusInProgress: 1,
	StatusAnswered:   2,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether moving from s to next respects the forward-only
// lifecycle. Writing the same status again is allowed.
func (s Status) CanAdvanceTo(next Status) bool {
	a, ok1 := statusRank[s]
	b, ok2 := statusRank[next]
	return ok1 && ok2 && b >= a
}

// Ticket is a stored citizen question or complaint. TicketID is the short
// citizen-facing identifier (DCT-xxxxx); ID is the internal primary key.
type Ticket struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	Phone      string    `json:"phone"`
	Type       Type      `json:"type"`
	Message    string    `json:"message"`
	Department string    `json:"department,omitempty"`
	Status     Status    `json:"status"`
	Feedback   string    `json:"feedback,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Answered reports whether the ticket carries a reply.
func (t *Ticket) Answered() bool {
	return t.Status == StatusAnswered && t.Feedback != ""
}
