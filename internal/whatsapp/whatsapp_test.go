package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hudumalabs/districtbot/internal/flow"
)

func testClient(t *testing.T) (*Client, *[]map[string]any) {
	t.Helper()
	var mu sync.Mutex
	payloads := &[]map[string]any{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/555000111/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("authorization header = %q", got)
		}
		var p map[string]any
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		mu.Lock()
		*payloads = append(*payloads, p)
		mu.Unlock()
		w.Write([]byte(`{"messages":[{"id":"wamid.x"}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient("555000111", "token-123")
	c.SetBaseURL(srv.URL)
	return c, payloads
}

func TestSendText(t *testing.T) {
	c, payloads := testClient(t)

	if err := c.SendText(context.Background(), "+255 712 345 678", "Karibu!"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	p := (*payloads)[0]
	if p["to"] != "255712345678" {
		t.Errorf("to = %v, phone should be normalized to digits", p["to"])
	}
	if p["type"] != "text" {
		t.Errorf("type = %v", p["type"])
	}
	text := p["text"].(map[string]any)
	if text["body"] != "Karibu!" {
		t.Errorf("body = %v", text["body"])
	}
}

func TestSendTextRefusesEmptyBody(t *testing.T) {
	c, payloads := testClient(t)
	if err := c.SendText(context.Background(), "255712345678", "   "); err == nil {
		t.Error("empty body should be refused")
	}
	if len(*payloads) != 0 {
		t.Error("nothing should have been sent")
	}
}

func TestSendButtons(t *testing.T) {
	c, payloads := testClient(t)

	buttons := []flow.Button{
		{ID: "menu", Title: "Menyu kuu"},
		{ID: "track", Title: "Fuatilia tiketi"},
		{ID: "extra1", Title: strings.Repeat("x", 30)},
		{ID: "extra2", Title: "dropped"},
	}
	if err := c.SendButtons(context.Background(), "255712345678", "Chagua:", buttons); err != nil {
		t.Fatalf("SendButtons: %v", err)
	}

	p := (*payloads)[0]
	if p["type"] != "interactive" {
		t.Fatalf("type = %v", p["type"])
	}
	interactive := p["interactive"].(map[string]any)
	action := interactive["action"].(map[string]any)
	apiButtons := action["buttons"].([]any)
	if len(apiButtons) != 3 {
		t.Fatalf("buttons = %d, Cloud API cap is 3", len(apiButtons))
	}
	third := apiButtons[2].(map[string]any)["reply"].(map[string]any)
	if title := third["title"].(string); len(title) != 20 {
		t.Errorf("long title should be truncated to 20 chars, got %d", len(title))
	}
}

func TestSendButtonsEmptyFallsBackToText(t *testing.T) {
	c, payloads := testClient(t)
	if err := c.SendButtons(context.Background(), "255712345678", "plain", nil); err != nil {
		t.Fatalf("SendButtons: %v", err)
	}
	if (*payloads)[0]["type"] != "text" {
		t.Error("no buttons should degrade to a text message")
	}
}

func TestSendReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad token"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("555000111", "bad")
	c.SetBaseURL(srv.URL)
	err := c.SendText(context.Background(), "255712345678", "hi")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("expected a 401 error, got %v", err)
	}
}

type recordingHandler struct {
	mu   sync.Mutex
	msgs []InboundMessage
	done chan struct{}
}

func (h *recordingHandler) HandleMessage(msg InboundMessage) {
	h.mu.Lock()
	h.msgs = append(h.msgs, msg)
	h.mu.Unlock()
	h.done <- struct{}{}
}

func webhookServer(t *testing.T, handler Handler) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	NewWebhook("verify-secret", handler).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestWebhookVerification(t *testing.T) {
	srv := webhookServer(t, nil)

	resp, err := http.Get(srv.URL + "/webhook?hub.mode=subscribe&hub.verify_token=verify-secret&hub.challenge=12345")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var body strings.Builder
	buf := make([]byte, 64)
	for {
		n, err := resp.Body.Read(buf)
		body.Write(buf[:n])
		if err != nil {
			break
		}
	}
	if body.String() != "12345" {
		t.Errorf("challenge echo = %q", body.String())
	}
}

func TestWebhookVerificationWrongToken(t *testing.T) {
	srv := webhookServer(t, nil)
	resp, err := http.Get(srv.URL + "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

const textEvent = `{
	"entry": [{"changes": [{"value": {
		"contacts": [{"profile": {"name": "Asha"}, "wa_id": "255712345678"}],
		"messages": [{"from": "255712345678", "type": "text", "text": {"body": "habari"}}]
	}}]}]
}`

const buttonEvent = `{
	"entry": [{"changes": [{"value": {
		"messages": [{"from": "255712345678", "type": "interactive",
			"interactive": {"type": "button_reply", "button_reply": {"id": "track", "title": "Fuatilia tiketi"}}}]
	}}]}]
}`

const imageEvent = `{
	"entry": [{"changes": [{"value": {
		"messages": [{"from": "255712345678", "type": "image"}]
	}}]}]
}`

func TestWebhookDeliversTextMessage(t *testing.T) {
	h := &recordingHandler{done: make(chan struct{}, 1)}
	srv := webhookServer(t, h)

	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(textEvent))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	msg := h.msgs[0]
	if msg.Phone != "255712345678" || msg.Name != "Asha" || msg.Text != "habari" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestWebhookButtonReplyBecomesTitle(t *testing.T) {
	h := &recordingHandler{done: make(chan struct{}, 1)}
	srv := webhookServer(t, h)

	resp, _ := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(buttonEvent))
	resp.Body.Close()

	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.msgs[0].Text != "Fuatilia tiketi" {
		t.Errorf("text = %q, want the button title", h.msgs[0].Text)
	}
}

func TestWebhookNonTextPlaceholder(t *testing.T) {
	h := &recordingHandler{done: make(chan struct{}, 1)}
	srv := webhookServer(t, h)

	resp, _ := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(imageEvent))
	resp.Body.Close()

	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.msgs[0].Text != "[Non-text message received]" {
		t.Errorf("text = %q", h.msgs[0].Text)
	}
}

func TestWebhookGarbageBodyStillAcks(t *testing.T) {
	srv := webhookServer(t, nil)
	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader("not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, webhook must always ack", resp.StatusCode)
	}
}
