package ticket

import (
	"errors"
	"testing"

	"github.com/hudumalabs/districtbot/internal/db"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestCreateAndGet(t *testing.T) {
	store := testStore(t)

	tk := &Ticket{
		Phone:      "255712000001",
		Type:       TypeComplaint,
		Message:    "Hakuna maji mtaani",
		Department: "maji",
	}
	if err := store.Create(tk); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tk.ID == "" || tk.TicketID == "" {
		t.Fatalf("ids should be assigned, got %+v", tk)
	}
	if tk.Status != StatusReceived {
		t.Errorf("new ticket status = %q", tk.Status)
	}

	got, err := store.GetByTicketID(tk.TicketID)
	if err != nil {
		t.Fatalf("GetByTicketID: %v", err)
	}
	if got.Message != "Hakuna maji mtaani" || got.Department != "maji" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	store := testStore(t)
	if err := store.Create(&Ticket{Type: "other", Message: "x"}); err == nil {
		t.Error("unknown type should be rejected")
	}
	if err := store.Create(&Ticket{Type: TypeQuestion, Message: "   "}); err == nil {
		t.Error("blank message should be rejected")
	}
}

func TestCreateRetriesOnCollision(t *testing.T) {
	store := testStore(t)

	first := &Ticket{Phone: "p", Type: TypeQuestion, Message: "swali", TicketID: "DCT-11111"}
	if err := store.Create(first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	second := &Ticket{Phone: "p", Type: TypeQuestion, Message: "jingine", TicketID: "DCT-11111"}
	if err := store.Create(second); err != nil {
		t.Fatalf("Create with colliding id should retry: %v", err)
	}
	if second.TicketID == "DCT-11111" {
		t.Error("retry should have picked a fresh ticket id")
	}
}

func TestGetMissing(t *testing.T) {
	store := testStore(t)
	_, err := store.GetByTicketID("DCT-00000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListByPhoneFiltersAndOrders(t *testing.T) {
	store := testStore(t)

	for _, tk := range []*Ticket{
		{Phone: "a", Type: TypeComplaint, Message: "first"},
		{Phone: "a", Type: TypeQuestion, Message: "a question"},
		{Phone: "b", Type: TypeComplaint, Message: "other person"},
	} {
		if err := store.Create(tk); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	complaints, err := store.ListByPhone("a", TypeComplaint)
	if err != nil {
		t.Fatalf("ListByPhone: %v", err)
	}
	if len(complaints) != 1 || complaints[0].Message != "first" {
		t.Errorf("unexpected complaints: %+v", complaints)
	}

	questions, err := store.ListByPhone("a", TypeQuestion)
	if err != nil {
		t.Fatalf("ListByPhone: %v", err)
	}
	if len(questions) != 1 || questions[0].Message != "a question" {
		t.Errorf("unexpected questions: %+v", questions)
	}
}

func TestStatusIsMonotonic(t *testing.T) {
	store := testStore(t)

	tk := &Ticket{Phone: "p", Type: TypeComplaint, Message: "tatizo"}
	if err := store.Create(tk); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.UpdateStatus(tk.ID, StatusInProgress); err != nil {
		t.Fatalf("received -> in_progress: %v", err)
	}
	if err := store.UpdateStatus(tk.ID, StatusInProgress); err != nil {
		t.Errorf("same-status write should be allowed: %v", err)
	}
	if err := store.UpdateStatus(tk.ID, StatusReceived); !errors.Is(err, ErrStatusBackwards) {
		t.Errorf("in_progress -> received should fail, got %v", err)
	}

	if err := store.Answer(tk.ID, "Tumeshughulikia."); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := store.UpdateStatus(tk.ID, StatusInProgress); !errors.Is(err, ErrStatusBackwards) {
		t.Errorf("answered -> in_progress should fail, got %v", err)
	}

	got, err := store.GetByID(tk.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Answered() {
		t.Errorf("ticket should be answered: %+v", got)
	}
}

func TestAnswerRequiresText(t *testing.T) {
	store := testStore(t)
	tk := &Ticket{Phone: "p", Type: TypeQuestion, Message: "swali"}
	if err := store.Create(tk); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Answer(tk.ID, "  "); err == nil {
		t.Error("blank answer should be rejected")
	}
}

func TestNewUniqueTicketID(t *testing.T) {
	store := testStore(t)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id := store.NewUniqueTicketID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
		tk := &Ticket{Phone: "p", Type: TypeQuestion, Message: "swali", TicketID: id}
		if err := store.Create(tk); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
}
