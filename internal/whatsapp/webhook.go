package whatsapp

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// InboundMessage is one citizen message extracted from a webhook event.
type InboundMessage struct {
	// Phone is the sender's number as reported by the Cloud API.
	Phone string
	// Name is the sender's WhatsApp profile name, when present.
	Name string
	// Text is the message body. Button replies carry the button title;
	// media and other non-text types carry a fixed placeholder.
	Text string
}

// Handler processes inbound citizen messages. Processing happens after the
// webhook has been acknowledged, so implementations may block.
type Handler interface {
	HandleMessage(msg InboundMessage)
}

// Webhook receives Cloud API event callbacks.
type Webhook struct {
	verifyToken string
	handler     Handler
}

// NewWebhook creates the webhook endpoint.
func NewWebhook(verifyToken string, handler Handler) *Webhook {
	return &Webhook{verifyToken: verifyToken, handler: handler}
}

// RegisterRoutes mounts the webhook at /webhook.
func (wh *Webhook) RegisterRoutes(r chi.Router) {
	r.Get("/webhook", wh.verify)
	r.Post("/webhook", wh.receive)
}

// verify answers Meta's subscription handshake by echoing hub.challenge.
func (wh *Webhook) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == wh.verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	http.Error(w, "verification failed", http.StatusForbidden)
}

// Cloud API event envelope, trimmed to the fields the bot reads.
type webhookEvent struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
					WaID string `json:"wa_id"`
				} `json:"contacts"`
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
					Interactive struct {
						Type        string `json:"type"`
						ButtonReply struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"button_reply"`
					} `json:"interactive"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// receive acknowledges the event immediately and hands each message to the
// handler. Meta retries webhooks that do not return 200 quickly, so the
// handler runs in its own goroutine.
func (wh *Webhook) receive(w http.ResponseWriter, r *http.Request) {
	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Printf("[whatsapp] undecodable webhook event: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusOK)

	for _, msg := range extractMessages(&event) {
		if wh.handler == nil {
			continue
		}
		go wh.handler.HandleMessage(msg)
	}
}

// extractMessages flattens a webhook event into inbound messages.
func extractMessages(event *webhookEvent) []InboundMessage {
	var out []InboundMessage
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			v := change.Value

			names := map[string]string{}
			for _, c := range v.Contacts {
				names[c.WaID] = c.Profile.Name
			}

			for _, m := range v.Messages {
				if m.From == "" {
					continue
				}
				text := ""
				switch m.Type {
				case "text":
					text = m.Text.Body
				case "interactive":
					if m.Interactive.Type == "button_reply" {
						text = m.Interactive.ButtonReply.Title
					}
				}
				if text == "" {
					text = "[Non-text message received]"
				}
				out = append(out, InboundMessage{
					Phone: m.From,
					Name:  names[m.From],
					Text:  text,
				})
			}
		}
	}
	return out
}
