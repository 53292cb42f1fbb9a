package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hudumalabs/districtbot/internal/flow"
)

// Resolver answers citizen questions from official knowledge sources. The
// second return value reports whether an answer was found.
type Resolver interface {
	Resolve(ctx context.Context, question string, lang flow.Language) (string, bool)
}

// API serves the programmatic ticket endpoints used by district systems.
type API struct {
	store    *Store
	resolver Resolver
	apiKey   string
}

// NewAPI creates the ticket API. resolver may be nil, in which case question
// lookups never auto-answer.
func NewAPI(store *Store, resolver Resolver, apiKey string) *API {
	return &API{store: store, resolver: resolver, apiKey: apiKey}
}

// RegisterRoutes mounts the ticket API under /api.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(a.requireAPIKey)
		r.Post("/questions", a.createTicket(TypeQuestion))
		r.Get("/questions", a.listTickets(TypeQuestion))
		r.Get("/questions/{ticketID}", a.getQuestion)
		r.Post("/complaints", a.createTicket(TypeComplaint))
		r.Get("/complaints", a.listTickets(TypeComplaint))
		r.Get("/complaints/{ticketID}", a.getComplaint)
	})
}

// requireAPIKey accepts the configured key as either a bearer token or an
// X-API-Key header. With no key configured the API is disabled entirely.
func (a *API) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.apiKey == "" {
			writeError(w, http.StatusServiceUnavailable, "API access is not configured")
			return
		}
		key := r.Header.Get("X-API-Key")
		if key == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if key != a.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createRequest struct {
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	Department string `json:"department,omitempty"`
}

func (a *API) createTicket(typ Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		t := &Ticket{
			Phone:      strings.TrimSpace(req.Phone),
			Type:       typ,
			Message:    strings.TrimSpace(req.Message),
			Department: strings.TrimSpace(req.Department),
		}
		if err := a.store.Create(t); err != nil {
			log.Printf("[ticket] create failed: %v", err)
			writeError(w, http.StatusInternalServerError, "could not create ticket")
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func (a *API) listTickets(typ Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, err := a.store.List(typ)
		if err != nil {
			log.Printf("[ticket] list failed: %v", err)
			writeError(w, http.StatusInternalServerError, "could not list tickets")
			return
		}
		if tickets == nil {
			tickets = []*Ticket{}
		}
		writeJSON(w, http.StatusOK, tickets)
	}
}

// getQuestion returns a question ticket. An unanswered question triggers a
// knowledge lookup first, so API consumers see the same auto-answer a
// WhatsApp user would get.
func (a *API) getQuestion(w http.ResponseWriter, r *http.Request) {
	t, ok := a.fetch(w, r, TypeQuestion)
	if !ok {
		return
	}

	if !t.Answered() && a.resolver != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
		defer cancel()
		if answer, found := a.resolver.Resolve(ctx, t.Message, flow.Swahili); found {
			if err := a.store.Answer(t.ID, answer); err != nil {
				log.Printf("[ticket] storing auto-answer for %s: %v", t.TicketID, err)
			} else {
				t.Feedback = answer
				t.Status = StatusAnswered
			}
		}
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) getComplaint(w http.ResponseWriter, r *http.Request) {
	t, ok := a.fetch(w, r, TypeComplaint)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) fetch(w http.ResponseWriter, r *http.Request, typ Type) (*Ticket, bool) {
	ticketID := chi.URLParam(r, "ticketID")
	t, err := a.store.GetByTicketID(ticketID)
	if errors.Is(err, ErrNotFound) || (err == nil && t.Type != typ) {
		writeError(w, http.StatusNotFound, "ticket not found")
		return nil, false
	}
	if err != nil {
		log.Printf("[ticket] fetch %s failed: %v", ticketID, err)
		writeError(w, http.StatusInternalServerError, "could not fetch ticket")
		return nil, false
	}
	return t, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ticket] encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
