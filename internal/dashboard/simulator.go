package dashboard

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hudumalabs/districtbot/internal/flow"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// simRequest is the incoming WebSocket message format.
type simRequest struct {
	Content  string `json:"content"`
	Language string `json:"language,omitempty"` // "sw" or "en", first message only
}

// simResponse is the outgoing WebSocket message format.
type simResponse struct {
	Type    string        `json:"type"` // "reply" or "error"
	Content string        `json:"content"`
	State   string        `json:"state"`
	Buttons []flow.Button `json:"buttons,omitempty"`
}

// handleSimulator runs an ephemeral conversation over a WebSocket. State
// lives only on the connection; nothing is persisted and no tickets are
// created, so officers can click through the flow freely.
func (d *Dashboard) handleSimulator(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[dashboard] websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	state := flow.StateWelcome
	ctx := flow.Context{}
	lang := d.lang

	for {
		var req simRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[dashboard] websocket read: %v", err)
			}
			return
		}

		if req.Content == "" {
			d.sendSim(conn, simResponse{Type: "error", Content: "content is required", State: string(state)})
			continue
		}
		if l := flow.Language(req.Language); l == flow.Swahili || l == flow.English {
			lang = l
		}

		var reply flow.Reply
		state, ctx, reply = d.engine.Transition(state, ctx, lang, req.Content, "Officer")

		d.sendSim(conn, simResponse{
			Type:    "reply",
			Content: reply.Text,
			State:   string(state),
			Buttons: reply.Buttons,
		})
	}
}

func (d *Dashboard) sendSim(conn *websocket.Conn, resp simResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("[dashboard] websocket write: %v", err)
	}
}
