// Package chat implements the conversational core: it routes a free-text
// message to a greeting, a medication create/edit action, or a
// question-answering path, and records every completed exchange.
package chat

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/lembremed/lembremed/internal/core"
	"github.com/lembremed/lembremed/internal/service/memory"
	"github.com/lembremed/lembremed/pkg/cache"
	"github.com/lembremed/lembremed/pkg/log"
)

// Composer is the intent router and response composer. It owns the ephemeral
// cache instance and coordinates classifiers, extractors and executors.
type Composer struct {
	gen    core.Generator
	docs   core.DocumentStore
	kv     core.KeyValue
	auth   core.Auth
	memory *memory.Store
	prefs  *memory.Prefs
	cache  *cache.Cache

	randIntn func(int) int
	now      func() time.Time
}

type Option func(*Composer)

// WithRand substitutes the random source used for reply-pool selection.
func WithRand(fn func(int) int) Option {
	return func(c *Composer) { c.randIntn = fn }
}

// WithClock substitutes the clock injected into extraction prompts and date
// normalization.
func WithClock(fn func() time.Time) Option {
	return func(c *Composer) { c.now = fn }
}

func NewComposer(
	gen core.Generator,
	docs core.DocumentStore,
	kv core.KeyValue,
	auth core.Auth,
	mem *memory.Store,
	prefs *memory.Prefs,
	results *cache.Cache,
	opts ...Option,
) *Composer {
	c := &Composer{
		gen:      gen,
		docs:     docs,
		kv:       kv,
		auth:     auth,
		memory:   mem,
		prefs:    prefs,
		cache:    results,
		randIntn: rand.Intn,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reply produces the assistant's answer for one user message. It never
// returns an error or panics to the transport: any failure collapses into a
// fixed apology, which is itself recorded in conversation memory.
func (c *Composer) Reply(ctx context.Context, message string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			log.FromCtx(ctx).Error().Interface("panic", r).Msg("composer panicked")
			reply = apologyReply
			c.record(ctx, message, reply, core.CategoryOther, nil, "")
		}
	}()

	reply, err := c.respond(ctx, message)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to compose reply")
		reply = apologyReply
		c.record(ctx, message, reply, core.CategoryOther, nil, "")
	}
	return reply
}

func (c *Composer) respond(ctx context.Context, message string) (string, error) {
	// Greeting short-circuit: no backend classification runs for a plain
	// salutation.
	if isGreeting(message) {
		return c.greetingReply(ctx, message)
	}

	data, wantsCreate, wantsEdit := c.gatherIntent(ctx, message)

	// Edit takes priority when both intents classify true.
	if wantsEdit {
		return c.editFlow(ctx, message, data)
	}
	if wantsCreate {
		return c.createFlow(ctx, message)
	}
	return c.questionFlow(ctx, message, data)
}

// gatherIntent runs the user-data fetch and the two intent classifiers
// concurrently and joins all three before branching. A data-fetch failure
// degrades to nil data instead of failing the flow.
func (c *Composer) gatherIntent(ctx context.Context, message string) (*core.UserData, bool, bool) {
	var (
		data                   *core.UserData
		wantsCreate, wantsEdit bool
		wg                     sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		d, err := c.fetchUserData(ctx)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("user data fetch failed")
			return
		}
		data = d
	}()
	go func() {
		defer wg.Done()
		wantsCreate = c.classifyCreateIntent(ctx, message)
	}()
	go func() {
		defer wg.Done()
		wantsEdit = c.classifyEditIntent(ctx, message)
	}()
	wg.Wait()

	return data, wantsCreate, wantsEdit
}

func (c *Composer) greetingReply(ctx context.Context, message string) (string, error) {
	summary := c.summarizeContext(ctx, message)

	pool := greetingReplies
	lower := strings.ToLower(summary)
	if strings.Contains(lower, "medicamento") || strings.Contains(lower, "favorito") {
		pool = medicationAwareGreetings
	}

	reply := pool[c.randIntn(len(pool))]
	c.record(ctx, message, reply, core.CategoryGreeting, nil, summary)
	return reply, nil
}

func (c *Composer) editFlow(ctx context.Context, message string, data *core.UserData) (string, error) {
	summary := c.summarizeContext(ctx, message)

	var medications []core.MedicationRecord
	if data != nil {
		medications = data.Medications
	}

	extraction := c.extractEdit(ctx, message, medications)
	if extraction.Outcome != OutcomeSuccess {
		reply := extraction.Message
		if reply == "" {
			reply = editFallback
		}
		c.record(ctx, message, reply, core.CategoryEdit, nil, summary)
		return reply, nil
	}

	payload := extraction.Payload
	if err := c.executeEdit(ctx, payload); err != nil {
		reply := fmt.Sprintf("❌ Erro ao editar o medicamento: %v. Tente novamente.", err)
		c.record(ctx, message, reply, core.CategoryEdit, nil, summary)
		return reply, nil
	}

	c.touchPreferences(ctx, payload)

	reply := buildEditConfirmation(payload)
	if containsGreeting(message) {
		reply = greetingPrefixes[c.randIntn(len(greetingPrefixes))] + reply
	}

	c.record(ctx, message, reply, core.CategoryEdit, []string{payload.Title}, summary)
	return reply, nil
}

func (c *Composer) createFlow(ctx context.Context, message string) (string, error) {
	summary := c.summarizeContext(ctx, message)

	extraction := c.extractCreate(ctx, message)
	if extraction.Outcome != OutcomeSuccess {
		reply := extraction.Message
		if reply == "" {
			reply = createFallback
		}
		c.record(ctx, message, reply, core.CategoryCreate, nil, summary)
		return reply, nil
	}

	payload := extraction.Payload
	if _, err := c.executeCreate(ctx, payload); err != nil {
		reply := fmt.Sprintf("❌ Erro ao salvar o medicamento: %v. Tente novamente.", err)
		c.record(ctx, message, reply, core.CategoryCreate, nil, summary)
		return reply, nil
	}

	c.touchPreferences(ctx, payload)

	reply := buildCreateConfirmation(payload)
	if containsGreeting(message) {
		reply = greetingPrefixes[c.randIntn(len(greetingPrefixes))] + reply
	}

	c.record(ctx, message, reply, core.CategoryCreate, []string{payload.Title}, summary)
	return reply, nil
}

func (c *Composer) questionFlow(ctx context.Context, message string, data *core.UserData) (string, error) {
	strategy := c.classifyStrategy(ctx, message, data)
	summary := c.summarizeContext(ctx, message)

	switch strategy {
	case strategyLocalData:
		reply, err := c.gen.Generate(ctx, buildLocalAnswerPrompt(message, summary, data))
		if err != nil {
			return "", fmt.Errorf("local answer generation: %w", err)
		}
		c.record(ctx, message, reply, core.CategoryQuestion, nil, summary)
		return reply, nil

	case strategyBoth:
		// Both halves are requested concurrently and joined before
		// concatenation.
		var (
			localReply, webReply string
			localErr             error
			wg                   sync.WaitGroup
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			localReply, localErr = c.gen.Generate(ctx, buildLocalDataPrompt(message, data))
		}()
		go func() {
			defer wg.Done()
			webReply = c.webAnswer(ctx, message)
		}()
		wg.Wait()

		if localErr != nil {
			log.FromCtx(ctx).Warn().Err(localErr).Msg("local answer generation failed")
			localReply = localDataFallback
		}

		reply := localReply + additionalInfoSeparator + webReply
		c.record(ctx, message, reply, core.CategoryQuestion, nil, summary)
		return reply, nil

	case strategyWebSearch:
		reply := c.webAnswer(ctx, message)
		c.record(ctx, message, reply, core.CategoryQuestion, nil, summary)
		return reply, nil

	default:
		// Unrecognized strategy falls back to the general-knowledge path.
		reply := c.webAnswer(ctx, message)
		c.record(ctx, message, reply, core.CategoryQuestion, nil, "")
		return reply, nil
	}
}

// webAnswer runs the general-knowledge pass. Backend failures degrade to a
// fixed disclaimer instead of erroring.
func (c *Composer) webAnswer(ctx context.Context, question string) string {
	reply, err := c.gen.Generate(ctx, buildWebAnswerPrompt(question))
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("web answer generation failed")
		return webSearchFallback
	}
	return reply
}

// touchPreferences folds a successful action's entities into the preference
// accumulator. Best-effort: failures are logged, never fatal.
func (c *Composer) touchPreferences(ctx context.Context, p MedicationPayload) {
	err := c.prefs.Touch(ctx, p.Title, formatTimeOfDay(p.StartDateTime), string(p.FrequencyType), p.Color)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to update preferences")
	}
}

// record appends the completed exchange to conversation memory. Mandatory
// for every terminal reply, error replies included; a storage failure is
// logged but cannot suppress the reply.
func (c *Composer) record(ctx context.Context, userMessage, reply string, category core.Category, entities []string, summary string) {
	turn := c.memory.NewTurn(userMessage, reply, category, entities, summary)
	if err := c.memory.Record(ctx, turn); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to record conversation turn")
	}
}

// InvalidateUser drops the memoized data summary for one user.
func (c *Composer) InvalidateUser(userID string) {
	c.cache.Delete(cache.UserDataKey(userID))
}

// ClearCache drops every memoized result.
func (c *Composer) ClearCache() {
	c.cache.Clear()
}
