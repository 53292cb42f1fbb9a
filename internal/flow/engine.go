package flow

import (
	"strings"
	"time"
)

// Engine computes conversation transitions. It is pure: no storage or
// network access happens here, and given the same injected clock and ticket
// id source, every transition is deterministic and replayable from the
// persisted (state, context, language) triple.
type Engine struct {
	// SLA is the promised answer window used in ticket-status rendering.
	SLA time.Duration
	// SupportPhone, when set, is appended to escalation messages.
	SupportPhone string
	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time
	// NewTicketID supplies ticket identifiers; defaults to NewTicketID.
	// Production wiring injects a store-backed generator that pre-checks
	// uniqueness.
	NewTicketID func() string
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) newTicketID() string {
	if e.NewTicketID != nil {
		return e.NewTicketID()
	}
	return NewTicketID()
}

// Keyword short-circuits evaluated ahead of the per-state table. Button
// titles used inside flows (Malalamiko, Maswali, Menyu kuu...) are kept out
// of these sets so they never shadow a state's own inputs.
var (
	greetingWords = map[string]bool{
		"hi": true, "hello": true, "habari": true, "hujambo": true,
		"mambo": true, "jambo": true, "salama": true, "karibu": true,
		"start": true, "anza": true,
	}
	complaintWords = map[string]bool{
		"lalamika": true, "complaint": true, "complain": true,
	}
	questionWords = map[string]bool{
		"swali": true, "uliza": true, "question": true, "ask": true,
	}

	menuInputs = map[string]bool{
		"menu": true, "menyu": true, "menyu kuu": true, "main menu": true,
	}
	trackInputs = map[string]bool{
		"track": true, "fuatilia": true, "fuatilia tiketi": true, "track ticket": true,
	}
)

// Transition processes one inbound message. It never panics and never
// returns an empty reply: input that a state does not accept produces the
// "invalid option" reply with the state unchanged, and an unknown state
// falls back to the main menu.
func (e *Engine) Transition(state State, ctx Context, lang Language, input, displayName string) (State, Context, Reply) {
	msg := strings.TrimSpace(input)
	lower := strings.ToLower(msg)

	// Global overrides, in priority order.
	switch {
	case msg == "#":
		return StateMainMenu, Context{}, Reply{Text: welcomeMessage(lang, displayName)}
	case greetingWords[lower]:
		return StateMainMenu, Context{}, Reply{Text: welcomeMessage(lang, displayName)}
	case complaintWords[lower]:
		ctx.Draft = nil
		ctx.clearCheck()
		return StateSubmitDept, ctx, Reply{Text: submitDeptMenu(lang)}
	case questionWords[lower]:
		return StateSubmitQuestion, ctx, Reply{Text: questionPrompt(lang)}
	}

	switch state {
	case StateWelcome:
		return StateMainMenu, ctx, Reply{Text: welcomeMessage(lang, displayName)}

	case StateMainMenu:
		return e.mainMenu(ctx, lang, msg)

	case StateCheckDept:
		dept, ok := deptByNumber(msg, true)
		if !ok {
			return state, ctx, Reply{Text: invalidOption(lang)}
		}
		ctx.Check = &CheckContext{Dept: dept.Key}
		return StateCheckIDType, ctx, Reply{Text: idTypeMenu(lang, dept)}

	case StateCheckIDType:
		if msg != "1" && msg != "2" && msg != "3" {
			return state, ctx, Reply{Text: invalidOption(lang)}
		}
		if ctx.Check == nil {
			ctx.Check = &CheckContext{}
		}
		ctx.Check.IDType = msg
		return StateCheckIDValue, ctx, Reply{Text: idValuePrompt(lang, msg)}

	case StateCheckIDValue:
		return e.checkIDValue(ctx, lang, msg)

	case StateCheckResultOptions:
		return e.checkResultOptions(ctx, lang, msg)

	case StateSubmitDept:
		dept, ok := deptByNumber(msg, false)
		if !ok {
			return state, ctx, Reply{Text: invalidOption(lang)}
		}
		ctx.Draft = &TicketDraft{Kind: KindComplaint, Department: dept.Key}
		return StateSubmitMessage, ctx, Reply{Text: submitPrompt(lang)}

	case StateSubmitMessage:
		return e.submitMessage(ctx, lang, msg)

	case StateSubmitConfirmedOptions:
		return e.submitConfirmedOptions(ctx, lang, lower)

	case StateTrackTicket:
		if lower == "1" || menuInputs[lower] {
			ctx.toMenu()
			return StateMainMenu, ctx, Reply{Text: mainMenuMessage(lang)}
		}
		return state, ctx, Reply{Text: menuReminder(lang)}

	case StateSubmitQuestion:
		return e.submitQuestion(ctx, lang, msg)

	case StateTrackChoice:
		return e.trackChoice(ctx, lang, lower)

	case StateTrackListShown:
		if lower == "1" || menuInputs[lower] {
			ctx.toMenu()
			return StateMainMenu, ctx, Reply{Text: mainMenuMessage(lang)}
		}
		return state, ctx, Reply{Text: menuReminder(lang)}

	case StateDeptInfoChoice:
		dept, ok := deptByNumber(msg, false)
		if !ok {
			return state, ctx, Reply{Text: invalidOption(lang)}
		}
		ctx.InfoDept = dept.Key
		text := dept.Label + "\n\n" + deptInfoText(lang, dept.Key) + "\n\n" + menuReminder(lang)
		return StateDeptInfoShown, ctx, Reply{Text: text}

	case StateDeptInfoShown:
		if lower == "1" || menuInputs[lower] {
			ctx.toMenu()
			return StateMainMenu, ctx, Reply{Text: mainMenuMessage(lang)}
		}
		return state, ctx, Reply{Text: menuReminder(lang)}
	}

	// Unknown or corrupted state: fall back to the main menu.
	ctx.toMenu()
	return StateMainMenu, ctx, Reply{Text: mainMenuMessage(lang)}
}

func (e *Engine) mainMenu(ctx Context, lang Language, msg string) (State, Context, Reply) {
	switch msg {
	case "1":
		return StateCheckDept, ctx, Reply{Text: checkDeptMenu(lang)}
	case "2":
		ctx.Draft = nil
		return StateSubmitDept, ctx, Reply{Text: submitDeptMenu(lang)}
	case "3":
		return StateDeptInfoChoice, ctx, Reply{Text: deptInfoMenu(lang)}
	case "4":
		return StateMainMenu, ctx, Reply{Text: districtInfo(lang) + "\n\n" + mainMenuBody(lang)}
	case "5":
		return StateMainMenu, ctx, Reply{Text: faqInfo(lang) + "\n\n" + mainMenuBody(lang)}
	case "6":
		return StateMainMenu, ctx, Reply{Text: officeHoursInfo(lang, e.SupportPhone) + "\n\n" + mainMenuBody(lang)}
	case "7":
		return StateSubmitQuestion, ctx, Reply{Text: questionPrompt(lang)}
	case "8":
		return StateTrackChoice, ctx, Reply{
			Text: trackChoicePrompt(lang),
			Buttons: []Button{
				{ID: "track_complaints", Title: "Malalamiko"},
				{ID: "track_questions", Title: "Maswali"},
			},
		}
	}
	return StateMainMenu, ctx, Reply{Text: invalidOption(lang)}
}

func (e *Engine) checkIDValue(ctx Context, lang Language, msg string) (State, Context, Reply) {
	idType := "1"
	if ctx.Check != nil && ctx.Check.IDType != "" {
		idType = ctx.Check.IDType
	}

	var valid bool
	switch idType {
	case "2":
		valid = ValidNIDA(msg)
	case "3":
		valid = ValidPhone(msg)
	default:
		valid = ValidRefNumber(msg)
	}
	if !valid {
		return StateCheckIDValue, ctx, Reply{Text: invalidOption(lang)}
	}

	if ctx.Check == nil {
		ctx.Check = &CheckContext{}
	}
	ctx.Check.Identifier = msg

	dept := deptByKey(ctx.Check.Dept)
	if isDemoIdentifier(msg) {
		return StateCheckResultOptions, ctx, Reply{Text: inReviewResult(lang, dept)}
	}
	return StateCheckResultOptions, ctx, Reply{Text: noRecordFound(lang)}
}

func (e *Engine) checkResultOptions(ctx Context, lang Language, msg string) (State, Context, Reply) {
	switch msg {
	case "1":
		ctx.clearCheck()
		return StateCheckDept, ctx, Reply{Text: checkDeptMenu(lang)}
	case "2":
		ctx.toMenu()
		return StateMainMenu, ctx, Reply{Text: contactSupport(lang, e.SupportPhone) + "\n\n" + mainMenuBody(lang)}
	case "3":
		ctx.toMenu()
		return StateMainMenu, ctx, Reply{Text: mainMenuMessage(lang)}
	}
	return StateCheckResultOptions, ctx, Reply{Text: checkResultMenu(lang)}
}

func (e *Engine) submitMessage(ctx Context, lang Language, msg string) (State, Context, Reply) {
	if len(msg) < 3 {
		return StateSubmitMessage, ctx, Reply{Text: submitTooShort(lang)}
	}

	dept := ""
	if ctx.Draft != nil {
		dept = ctx.Draft.Department
	}
	draft := &TicketDraft{
		TicketID:    e.newTicketID(),
		Kind:        KindComplaint,
		Message:     msg,
		Department:  dept,
		SubmittedAt: e.now().UTC().Format(submittedAtLayout),
	}
	ctx.Draft = draft

	reply := Reply{
		Text:    submitConfirmed(lang, draft.TicketID),
		Buttons: []Button{menuButton(lang), trackButton(lang)},
		Submit:  draft,
	}
	return StateSubmitConfirmedOptions, ctx, reply
}

func (e *Engine) submitConfirmedOptions(ctx Context, lang Language, lower string) (State, Context, Reply) {
	switch {
	case lower == "1" || menuInputs[lower]:
		ctx.toMenu()
		return StateMainMenu, ctx, Reply{Text: mainMenuMessage(lang)}
	case lower == "2" || trackInputs[lower]:
		return StateTrackTicket, ctx, Reply{Text: e.statusMessage(ctx.Draft, lang)}
	}
	return StateSubmitConfirmedOptions, ctx, Reply{
		Text:    invalidOption(lang),
		Buttons: []Button{menuButton(lang), trackButton(lang)},
	}
}

func (e *Engine) submitQuestion(ctx Context, lang Language, msg string) (State, Context, Reply) {
	if len(msg) < 2 {
		return StateSubmitQuestion, ctx, Reply{Text: questionTooShort(lang)}
	}

	draft := &TicketDraft{
		TicketID:    e.newTicketID(),
		Kind:        KindQuestion,
		Message:     msg,
		SubmittedAt: e.now().UTC().Format(submittedAtLayout),
	}
	ctx.Draft = draft

	reply := Reply{
		Text:   questionConfirmed(lang, draft.TicketID) + "\n\n" + e.statusMessage(draft, lang),
		Submit: draft,
	}
	return StateTrackTicket, ctx, reply
}

func (e *Engine) trackChoice(ctx Context, lang Language, lower string) (State, Context, Reply) {
	var kind TicketKind
	switch lower {
	case "1", "malalamiko":
		kind = KindComplaint
	case "2", "maswali":
		kind = KindQuestion
	default:
		return StateTrackChoice, ctx, Reply{
			Text: invalidOption(lang),
			Buttons: []Button{
				{ID: "track_complaints", Title: "Malalamiko"},
				{ID: "track_questions", Title: "Maswali"},
			},
		}
	}
	return StateTrackListShown, ctx, Reply{
		Text:      trackListHeader(lang, kind),
		FetchList: kind,
	}
}

func deptByKey(key string) Department {
	for _, d := range Departments {
		if d.Key == key {
			return d
		}
	}
	return Departments[0]
}
