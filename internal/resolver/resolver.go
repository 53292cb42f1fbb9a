// Package resolver answers citizen questions by cascading through knowledge
// tiers: the curated district document first, then the live district website,
// then the model's general knowledge. Each tier can decline, and a tier's
// failure (timeout, API error, missing source) falls through to the next.
package resolver

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/hudumalabs/districtbot/internal/flow"
	"github.com/hudumalabs/districtbot/internal/llm"
)

// SiteSource supplies the crawled district website text.
type SiteSource interface {
	Get(ctx context.Context) (string, error)
}

// Resolver runs the tiered question-answering cascade.
type Resolver struct {
	// Provider is the chat completion backend.
	Provider llm.Provider
	// Model overrides the provider's default model when set.
	Model string
	// Knowledge returns the curated district document text. May be nil.
	Knowledge func() (string, error)
	// Site supplies crawled website text. May be nil.
	Site SiteSource
	// Timeout bounds each individual model call. Zero means 20 seconds.
	Timeout time.Duration
}

const (
	defaultTimeout = 20 * time.Second
	temperature    = 0.4
	maxTokens      = 700
)

// Resolve answers a question, reporting whether any tier produced an answer.
// The returned text is never one of the decline sentinels.
func (r *Resolver) Resolve(ctx context.Context, question string, lang flow.Language) (string, bool) {
	if r.Provider == nil {
		return "", false
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", false
	}

	if answer, ok := r.fromKnowledgeDoc(ctx, question, lang); ok {
		return answer, true
	}
	if answer, ok := r.fromSite(ctx, question, lang); ok {
		return answer, true
	}
	return r.fromGeneralKnowledge(ctx, question, lang)
}

func (r *Resolver) fromKnowledgeDoc(ctx context.Context, question string, lang flow.Language) (string, bool) {
	if r.Knowledge == nil {
		return "", false
	}
	doc, err := r.Knowledge()
	if err != nil || strings.TrimSpace(doc) == "" {
		return "", false
	}
	answer, err := r.complete(ctx, docSystemPrompt(lang, doc), question)
	if err != nil {
		log.Printf("[resolver] document tier failed: %v", err)
		return "", false
	}
	if answer == "" || answer == noAnswerSentinel {
		return "", false
	}
	return answer, true
}

func (r *Resolver) fromSite(ctx context.Context, question string, lang flow.Language) (string, bool) {
	if r.Site == nil {
		return "", false
	}
	text, err := r.Site.Get(ctx)
	if err != nil {
		log.Printf("[resolver] site text unavailable: %v", err)
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	answer, err := r.complete(ctx, siteSystemPrompt(lang, text), question)
	if err != nil {
		log.Printf("[resolver] site tier failed: %v", err)
		return "", false
	}
	if answer == "" || answer == notAvailableSentinel {
		return "", false
	}
	return answer, true
}

func (r *Resolver) fromGeneralKnowledge(ctx context.Context, question string, lang flow.Language) (string, bool) {
	answer, err := r.complete(ctx, generalSystemPrompt(lang), question)
	if err != nil {
		log.Printf("[resolver] general tier failed: %v", err)
		return "", false
	}
	if answer == "" || answer == notAvailableSentinel {
		return "", false
	}
	return answer, true
}

// complete runs one model call under the per-call timeout and returns the
// trimmed reply text.
func (r *Resolver) complete(ctx context.Context, system, question string) (string, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := r.Provider.Complete(callCtx, llm.CompletionRequest{
		Model:       r.Model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: question},
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
