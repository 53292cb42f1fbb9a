// Package dashboard is the officers' web console: ticket triage, answering
// with WhatsApp delivery, and a conversation simulator for testing the flow
// without a phone.
package dashboard

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/hudumalabs/districtbot/internal/flow"
	"github.com/hudumalabs/districtbot/internal/ticket"
)

// Notifier pushes an officer's answer back to the citizen on WhatsApp.
type Notifier interface {
	SendText(ctx context.Context, to, body string) error
}

// Dashboard provides the officer console.
type Dashboard struct {
	tickets  *ticket.Store
	notifier Notifier
	engine   *flow.Engine
	lang     flow.Language

	auth *authState
}

// New creates a dashboard. notifier may be nil; answers are then stored
// without WhatsApp delivery.
func New(tickets *ticket.Store, notifier Notifier, engine *flow.Engine, lang flow.Language, username, password string) *Dashboard {
	return &Dashboard{
		tickets:  tickets,
		notifier: notifier,
		engine:   engine,
		lang:     lang,
		auth:     newAuthState(username, password),
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", d.serveIndex)
	r.Post("/dashboard/login", d.handleLogin)
	r.Post("/dashboard/logout", d.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(d.auth.require)
		r.Get("/api/dashboard/stats", d.handleStats)
		r.Get("/api/dashboard/tickets", d.handleList)
		r.Get("/api/dashboard/tickets/{id}", d.handleDetail)
		r.Post("/api/dashboard/tickets/{id}/answer", d.handleAnswer)
		r.Post("/api/dashboard/tickets/{id}/status", d.handleStatus)
		r.Get("/ws/simulator", d.handleSimulator)
	})
}
