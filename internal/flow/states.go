package flow

// State identifies a node in the conversation state machine. The set is
// closed: sessions only ever hold one of these values.
type State string

const (
	StateWelcome                State = "welcome"
	StateMainMenu               State = "main_menu"
	StateCheckDept              State = "check_dept"
	StateCheckIDType            State = "check_id_type"
	StateCheckIDValue           State = "check_id_value"
	StateCheckResultOptions     State = "check_result_options"
	StateSubmitDept             State = "submit_dept"
	StateSubmitMessage          State = "submit_message"
	StateSubmitConfirmedOptions State = "submit_confirmed_options"
	StateTrackTicket            State = "track_ticket"
	StateSubmitQuestion         State = "submit_question"
	StateTrackChoice            State = "track_choice"
	StateTrackListShown         State = "track_list_shown"
	StateDeptInfoChoice         State = "dept_info_choice"
	StateDeptInfoShown          State = "dept_info_shown"
)

// Valid reports whether s is a member of the closed state set.
func (s State) Valid() bool {
	switch s {
	case StateWelcome, StateMainMenu, StateCheckDept, StateCheckIDType,
		StateCheckIDValue, StateCheckResultOptions, StateSubmitDept,
		StateSubmitMessage, StateSubmitConfirmedOptions, StateTrackTicket,
		StateSubmitQuestion, StateTrackChoice, StateTrackListShown,
		StateDeptInfoChoice, StateDeptInfoShown:
		return true
	}
	return false
}

// Language selects the reply language. Kiswahili is the default everywhere.
type Language string

const (
	Swahili Language = "sw"
	English Language = "en"
)

// T picks the Kiswahili or English variant for the given language tag.
// Anything that is not English renders as Kiswahili.
func T(lang Language, sw, en string) string {
	if lang == English {
		return en
	}
	return sw
}
