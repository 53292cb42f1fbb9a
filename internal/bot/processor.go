// Package bot is the dispatcher between the WhatsApp webhook and the
// conversation engine: it loads the session, runs one transition, persists
// the result and sends the reply, then hands submitted questions to the
// auto-answer workers.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/hudumalabs/districtbot/internal/flow"
	"github.com/hudumalabs/districtbot/internal/session"
	"github.com/hudumalabs/districtbot/internal/ticket"
	"github.com/hudumalabs/districtbot/internal/whatsapp"
)

// Sender delivers outbound WhatsApp messages.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	SendButtons(ctx context.Context, to, body string, buttons []flow.Button) error
}

// Resolver answers citizen questions from official knowledge sources.
type Resolver interface {
	Resolve(ctx context.Context, question string, lang flow.Language) (string, bool)
}

// Processor handles inbound messages end to end. Messages from the same
// phone number are processed strictly in order; different conversations run
// concurrently.
type Processor struct {
	Sessions    *session.Store
	Tickets     *ticket.Store
	Engine      *flow.Engine
	Sender      Sender
	Resolver    Resolver
	DefaultLang flow.Language
	// IdleTimeout resets a conversation that has been silent this long.
	IdleTimeout time.Duration
	// Now supplies the clock for idle detection; defaults to time.Now.
	Now func() time.Time
	// SendTimeout bounds each outbound send. Zero means 30 seconds.
	SendTimeout time.Duration

	locks *session.KeyedMutex

	jobs chan answerJob
	wg   sync.WaitGroup
	once sync.Once
}

type answerJob struct {
	ticketID string // internal primary key
	phone    string
	question string
	lang     flow.Language
}

// NewProcessor creates a processor and starts the auto-answer worker pool.
func NewProcessor(sessions *session.Store, tickets *ticket.Store, engine *flow.Engine,
	sender Sender, resolver Resolver, defaultLang flow.Language,
	idleTimeout time.Duration, workers int) *Processor {

	p := &Processor{
		Sessions:    sessions,
		Tickets:     tickets,
		Engine:      engine,
		Sender:      sender,
		Resolver:    resolver,
		DefaultLang: defaultLang,
		IdleTimeout: idleTimeout,
		Now:         time.Now,
		locks:       session.NewKeyedMutex(),
		jobs:        make(chan answerJob, 64),
	}
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.answerWorker()
	}
	return p
}

// Close stops the worker pool after draining queued jobs.
func (p *Processor) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// HandleMessage implements whatsapp.Handler.
func (p *Processor) HandleMessage(msg whatsapp.InboundMessage) {
	if msg.Phone == "" {
		return
	}
	p.locks.Lock(msg.Phone)
	defer p.locks.Unlock(msg.Phone)

	ctx, cancel := context.WithTimeout(context.Background(), p.sendTimeout())
	defer cancel()

	reply, err := p.process(msg)
	if err != nil {
		log.Printf("[bot] processing message from %s: %v", msg.Phone, err)
		return
	}

	if reply.Text == "" {
		// The engine never produces this, but a silent bot looks dead.
		reply.Text = "Karibu! Jibu # kuanza upya. / Welcome! Reply # to start over."
	}

	if err := p.send(ctx, msg.Phone, reply); err != nil {
		log.Printf("[bot] sending reply to %s: %v", msg.Phone, err)
	}
}

func (p *Processor) process(msg whatsapp.InboundMessage) (flow.Reply, error) {
	sess, err := p.Sessions.FindOrCreate(msg.Phone, p.DefaultLang)
	if err != nil {
		return flow.Reply{}, fmt.Errorf("loading session: %w", err)
	}

	// A long-idle conversation starts over rather than resuming mid-flow.
	if p.IdleTimeout > 0 && sess.State != flow.StateWelcome &&
		p.now().Sub(sess.UpdatedAt) > p.IdleTimeout {
		sess.State = flow.StateWelcome
		sess.Context = flow.Context{}
	}

	state, ctx, reply := p.Engine.Transition(sess.State, sess.Context, sess.Language, msg.Text, msg.Name)

	if reply.Submit != nil {
		p.persistTicket(msg.Phone, reply.Submit)
	}
	if reply.FetchList != "" {
		reply.Text = p.appendTicketList(reply.Text, msg.Phone, reply.FetchList, sess.Language)
	}

	sess.State = state
	sess.Context = ctx
	if err := p.Sessions.Save(sess); err != nil {
		return flow.Reply{}, fmt.Errorf("saving session: %w", err)
	}
	return reply, nil
}

// persistTicket stores a submitted draft and, for questions, queues the
// auto-answer lookup. A storage failure is logged but does not block the
// confirmation the user already saw.
func (p *Processor) persistTicket(phone string, draft *flow.TicketDraft) {
	t := &ticket.Ticket{
		TicketID:   draft.TicketID,
		Phone:      phone,
		Type:       ticket.Type(draft.Kind),
		Message:    draft.Message,
		Department: draft.Department,
	}
	if err := p.Tickets.Create(t); err != nil {
		log.Printf("[bot] storing ticket %s: %v", draft.TicketID, err)
		return
	}
	if draft.TicketID != t.TicketID {
		// The store allocated a fresh id on collision; keep the session's
		// draft consistent with what was stored.
		draft.TicketID = t.TicketID
	}

	if t.Type == ticket.TypeQuestion && p.Resolver != nil {
		lang := p.DefaultLang
		if sess, err := p.Sessions.GetByPhone(phone); err == nil && sess != nil {
			lang = sess.Language
		}
		p.jobs <- answerJob{ticketID: t.ID, phone: phone, question: t.Message, lang: lang}
	}
}

func (p *Processor) appendTicketList(text, phone string, kind flow.TicketKind, lang flow.Language) string {
	tickets, err := p.Tickets.ListByPhone(phone, ticket.Type(kind))
	if err != nil {
		log.Printf("[bot] listing tickets for %s: %v", phone, err)
		return text
	}
	if len(tickets) == 0 {
		none := "Hakuna tiketi zilizopatikana."
		if lang == flow.English {
			none = "No tickets found."
		}
		return text + "\n" + none + "\n\n" + "1️⃣ Menyu kuu"
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n")
	for i, t := range tickets {
		if i >= 5 {
			break
		}
		preview := flow.Ellipsize(t.Message, 40)
		fmt.Fprintf(&b, "\n%s [%s]\n%s\n", t.TicketID, statusLabel(t.Status, lang), preview)
		if t.Answered() {
			fmt.Fprintf(&b, "↳ %s\n", t.Feedback)
		}
	}
	b.WriteString("\n1️⃣ Menyu kuu")
	return b.String()
}

func statusLabel(s ticket.Status, lang flow.Language) string {
	sw := map[ticket.Status]string{
		ticket.StatusReceived:   "Imepokelewa",
		ticket.StatusInProgress: "Inashughulikiwa",
		ticket.StatusAnswered:   "Imejibiwa",
	}
	en := map[ticket.Status]string{
		ticket.StatusReceived:   "Received",
		ticket.StatusInProgress: "In progress",
		ticket.StatusAnswered:   "Answered",
	}
	if lang == flow.English {
		return en[s]
	}
	return sw[s]
}

func (p *Processor) send(ctx context.Context, phone string, reply flow.Reply) error {
	if len(reply.Buttons) > 0 {
		return p.Sender.SendButtons(ctx, phone, reply.Text, reply.Buttons)
	}
	return p.Sender.SendText(ctx, phone, reply.Text)
}

// answerWorker drains the auto-answer queue. Each job runs the knowledge
// cascade and, when it finds an answer, stores it and pushes it to the
// citizen who asked.
func (p *Processor) answerWorker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.answer(job)
	}
}

func (p *Processor) answer(job answerJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	answer, found := p.Resolver.Resolve(ctx, job.question, job.lang)
	if !found {
		// Unanswered questions wait for an officer on the dashboard.
		return
	}

	if err := p.Tickets.Answer(job.ticketID, answer); err != nil {
		log.Printf("[bot] storing answer for ticket %s: %v", job.ticketID, err)
		return
	}
	if err := p.Sender.SendText(ctx, job.phone, answer); err != nil {
		log.Printf("[bot] sending answer to %s: %v", job.phone, err)
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Processor) sendTimeout() time.Duration {
	if p.SendTimeout > 0 {
		return p.SendTimeout
	}
	return 30 * time.Second
}
