package session

import (
	"sync"
	"testing"

	"github.com/hudumalabs/districtbot/internal/db"
	"github.com/hudumalabs/districtbot/internal/flow"
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

func TestFindOrCreateNewSession(t *testing.T) {
	store := testStore(t)

	sess, err := store.FindOrCreate("255712000001", flow.Swahili)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if sess.Phone != "255712000001" {
		t.Errorf("phone = %q", sess.Phone)
	}
	if sess.State != flow.StateWelcome {
		t.Errorf("new session state = %q, want welcome", sess.State)
	}
	if sess.Language != flow.Swahili {
		t.Errorf("language = %q, want sw", sess.Language)
	}
	if sess.ID == "" {
		t.Error("session id should be assigned")
	}
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	store := testStore(t)

	first, err := store.FindOrCreate("255712000002", flow.Swahili)
	if err != nil {
		t.Fatalf("first FindOrCreate: %v", err)
	}
	first.State = flow.StateMainMenu
	if err := store.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second, err := store.FindOrCreate("255712000002", flow.English)
	if err != nil {
		t.Fatalf("second FindOrCreate: %v", err)
	}
	if second.ID != first.ID {
		t.Error("second call should return the same session")
	}
	if second.State != flow.StateMainMenu {
		t.Errorf("state = %q, existing state should survive", second.State)
	}
	if second.Language != flow.Swahili {
		t.Error("existing language should not be overwritten by the default")
	}
}

func TestSaveRoundTripsContext(t *testing.T) {
	store := testStore(t)

	sess, err := store.FindOrCreate("255712000003", flow.Swahili)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	sess.State = flow.StateSubmitConfirmedOptions
	sess.Context = flow.Context{
		Draft: &flow.TicketDraft{
			TicketID:    "DCT-54321",
			Kind:        flow.KindComplaint,
			Message:     "hakuna maji",
			Department:  "maji",
			SubmittedAt: "2026-01-15 10:00",
		},
	}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.GetByPhone("255712000003")
	if err != nil {
		t.Fatalf("GetByPhone: %v", err)
	}
	if loaded.State != flow.StateSubmitConfirmedOptions {
		t.Errorf("state = %q", loaded.State)
	}
	if loaded.Context.Draft == nil || loaded.Context.Draft.TicketID != "DCT-54321" {
		t.Fatalf("draft did not round-trip: %+v", loaded.Context.Draft)
	}
	if loaded.Context.Draft.Department != "maji" {
		t.Errorf("department = %q", loaded.Context.Draft.Department)
	}
}

func TestGetByPhoneMissing(t *testing.T) {
	store := testStore(t)
	sess, err := store.GetByPhone("255799999999")
	if err != nil {
		t.Fatalf("GetByPhone: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil for unknown phone, got %+v", sess)
	}
}

func TestReset(t *testing.T) {
	store := testStore(t)

	sess, err := store.FindOrCreate("255712000004", flow.Swahili)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	sess.State = flow.StateCheckIDValue
	sess.Context = flow.Context{Check: &flow.CheckContext{Dept: "ardhi", IDType: "1"}}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Reset(sess); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	loaded, err := store.GetByPhone("255712000004")
	if err != nil {
		t.Fatalf("GetByPhone: %v", err)
	}
	if loaded.State != flow.StateMainMenu {
		t.Errorf("state after reset = %q", loaded.State)
	}
	if loaded.Context.Check != nil {
		t.Error("context should be empty after reset")
	}
}

func TestConcurrentFindOrCreate(t *testing.T) {
	store := testStore(t)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := store.FindOrCreate("255712000005", flow.Swahili)
			if err != nil {
				t.Errorf("FindOrCreate: %v", err)
				return
			}
			ids[i] = sess.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("concurrent callers got different sessions: %v", ids)
		}
	}
	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("session count = %d, want 1", n)
	}
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("same-key")
			counter++
			km.Unlock("same-key")
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock("a")
	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()
	<-done // must not deadlock while "a" is held
	km.Unlock("a")
}
