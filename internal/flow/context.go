package flow

// TicketKind distinguishes questions from complaints. The values match the
// ticket store's type column.
type TicketKind string

const (
	KindQuestion  TicketKind = "question"
	KindComplaint TicketKind = "complaint"
)

// Context is the transient per-session working data. Each flow gets its own
// sub-struct carrying exactly the fields that flow needs; transitions that
// return to the main menu nil out the finished sub-structs so no stale keys
// survive a flow change.
type Context struct {
	Check    *CheckContext `json:"check,omitempty"`
	Draft    *TicketDraft  `json:"draft,omitempty"`
	InfoDept string        `json:"info_dept,omitempty"`
}

// CheckContext carries the status-check flow selections.
type CheckContext struct {
	Dept       string `json:"dept"`
	IDType     string `json:"id_type,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// TicketDraft carries a ticket being composed, and after submission the
// fields needed to render its tracking status. SubmittedAt uses the
// "2006-01-02 15:04" layout in UTC.
type TicketDraft struct {
	TicketID    string     `json:"ticket_id,omitempty"`
	Kind        TicketKind `json:"kind"`
	Message     string     `json:"message,omitempty"`
	Department  string     `json:"department,omitempty"`
	SubmittedAt string     `json:"submitted_at,omitempty"`
}

// clearCheck drops the status-check selections.
func (c *Context) clearCheck() {
	c.Check = nil
}

// toMenu prunes everything that is meaningless once the user is back at the
// main menu. The submitted draft survives so "track my ticket" keeps working.
func (c *Context) toMenu() {
	c.Check = nil
	c.InfoDept = ""
	if c.Draft != nil && c.Draft.TicketID == "" {
		// An unsubmitted draft is stale.
		c.Draft = nil
	}
}

// Button is one interactive reply option. Titles are capped at 20 characters
// by the dispatcher.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Reply is the engine's output for one inbound message. Submit and FetchList
// are signals to the caller: the engine itself never touches storage.
type Reply struct {
	Text    string
	Buttons []Button
	// Submit, when set, asks the caller to persist this ticket.
	Submit *TicketDraft
	// FetchList, when set, asks the caller to append the user's ticket list
	// of this kind to the reply text.
	FetchList TicketKind
}
