package flow

import (
	"fmt"
	"strings"
	"time"
)

// submittedAtLayout is how TicketDraft.SubmittedAt is stored (UTC).
const submittedAtLayout = "2006-01-02 15:04"

// Ellipsize shortens s to at most max runes, appending "..." when it cuts.
// Counting runes rather than bytes keeps Swahili text and emoji intact.
func Ellipsize(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// statusMessage renders the tracking view for the draft ticket held in the
// session context. A missing draft yields the "no recent ticket" message; a
// malformed timestamp degrades to the base ticket info without the timing
// clause.
func (e *Engine) statusMessage(draft *TicketDraft, lang Language) string {
	if draft == nil || draft.TicketID == "" {
		return noRecentTicket(lang)
	}

	preview := Ellipsize(draft.Message, 80)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", T(lang, "Tiketi:", "Ticket ID:"), draft.TicketID)
	if preview != "" {
		fmt.Fprintf(&b, "%s %s\n", T(lang, "Ujumbe:", "Message:"), preview)
	}
	if draft.SubmittedAt != "" {
		fmt.Fprintf(&b, "%s %s\n", T(lang, "Imepokelewa:", "Received:"), draft.SubmittedAt)
	}

	if clause := e.timingClause(draft, lang); clause != "" {
		b.WriteString("\n" + clause + "\n")
	}

	b.WriteString("\n" + menuReminder(lang))
	return b.String()
}

// timingClause computes the SLA line. It returns "" when the stored
// timestamp cannot be parsed.
func (e *Engine) timingClause(draft *TicketDraft, lang Language) string {
	submitted, err := time.Parse(submittedAtLayout, draft.SubmittedAt)
	if err != nil {
		return ""
	}

	deadline := submitted.Add(e.SLA)
	if e.now().UTC().Before(deadline) {
		return T(lang, "Utajibiwa kabla ya ", "You will be answered by ") +
			deadline.Format("02 Jan 2006 15:04")
	}

	msg := T(lang,
		"Samahani kwa kuchelewa. Tiketi yako imepelekwa kwa afisa husika.",
		"Sorry for the delay. Your ticket has been escalated to the responsible officer.")
	if e.SupportPhone != "" {
		msg += "\n" + T(lang, "Simu ya msaada: ", "Support phone: ") + e.SupportPhone
	}
	return msg
}
