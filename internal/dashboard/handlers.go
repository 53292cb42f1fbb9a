package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"github.com/hudumalabs/districtbot/internal/ticket"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d *Dashboard) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	token, ok := d.auth.login(req.Username, req.Password)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *Dashboard) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		d.auth.logout(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	OpenQuestions  int `json:"open_questions"`
	OpenComplaints int `json:"open_complaints"`
	Answered       int `json:"answered"`
	Total          int `json:"total"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	all, err := d.tickets.List("")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var stats statsResponse
	stats.Total = len(all)
	for _, t := range all {
		switch {
		case t.Status == ticket.StatusAnswered:
			stats.Answered++
		case t.Type == ticket.TypeQuestion:
			stats.OpenQuestions++
		default:
			stats.OpenComplaints++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (d *Dashboard) handleList(w http.ResponseWriter, r *http.Request) {
	typ := ticket.Type(r.URL.Query().Get("type"))
	if typ != "" && !typ.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown ticket type"})
		return
	}

	tickets, err := d.tickets.List(typ)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if status := ticket.Status(r.URL.Query().Get("status")); status != "" {
		var filtered []*ticket.Ticket
		for _, t := range tickets {
			if t.Status == status {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}
	if tickets == nil {
		tickets = []*ticket.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

// detailResponse adds the feedback rendered as HTML, so officers can write
// markdown answers and preview what formatting survives.
type detailResponse struct {
	*ticket.Ticket
	FeedbackHTML string `json:"feedback_html,omitempty"`
}

func (d *Dashboard) handleDetail(w http.ResponseWriter, r *http.Request) {
	t, ok := d.fetchTicket(w, r)
	if !ok {
		return
	}

	resp := detailResponse{Ticket: t}
	if t.Feedback != "" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(t.Feedback), &buf); err == nil {
			resp.FeedbackHTML = buf.String()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// handleAnswer records an officer's reply and pushes it to the citizen.
func (d *Dashboard) handleAnswer(w http.ResponseWriter, r *http.Request) {
	t, ok := d.fetchTicket(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "answer is required"})
		return
	}

	if err := d.tickets.Answer(t.ID, answer); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	delivered := false
	if d.notifier != nil && t.Phone != "" {
		ctx, cancel := context30s(r)
		defer cancel()
		body := "📩 " + t.TicketID + "\n\n" + answer
		if err := d.notifier.SendText(ctx, t.Phone, body); err != nil {
			log.Printf("[dashboard] notifying %s about %s: %v", t.Phone, t.TicketID, err)
		} else {
			delivered = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "answered", "delivered": delivered})
}

type statusRequest struct {
	Status ticket.Status `json:"status"`
}

func (d *Dashboard) handleStatus(w http.ResponseWriter, r *http.Request) {
	t, ok := d.fetchTicket(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
		return
	}
	if err := d.tickets.UpdateStatus(t.ID, req.Status); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

func (d *Dashboard) fetchTicket(w http.ResponseWriter, r *http.Request) (*ticket.Ticket, bool) {
	t, err := d.tickets.GetByID(chi.URLParam(r, "id"))
	if err == ticket.ErrNotFound {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "ticket not found"})
		return nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return t, true
}

func context30s(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 30*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
