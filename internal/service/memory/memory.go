// Package memory holds the per-user conversation log and the preference
// accumulator, both persisted in the local key-value store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lembremed/lembremed/internal/core"
)

const (
	// maxTurns caps the per-user conversation log; the oldest turn is
	// evicted on insert.
	maxTurns = 50

	memoryKeyPrefix = "chat_memoria_"
)

// Store is the append-only, capped conversation memory.
type Store struct {
	kv   core.KeyValue
	auth core.Auth
	now  func() time.Time
}

func NewStore(kv core.KeyValue, auth core.Auth) *Store {
	return &Store{kv: kv, auth: auth, now: time.Now}
}

// NewTurn builds a turn stamped with the current time. The id is derived from
// the timestamp, matching the store's insertion order.
func (s *Store) NewTurn(userMessage, assistantReply string, category core.Category, entities []string, contextSummary string) core.ConversationTurn {
	ts := s.now().UnixMilli()
	return core.ConversationTurn{
		ID:                strconv.FormatInt(ts, 10),
		UserMessage:       userMessage,
		AssistantReply:    assistantReply,
		Timestamp:         ts,
		Category:          category,
		MentionedEntities: entities,
		ContextSummary:    contextSummary,
	}
}

// Record appends a completed turn. With nobody signed in it silently skips.
func (s *Store) Record(ctx context.Context, turn core.ConversationTurn) error {
	user := s.auth.CurrentUser()
	if user == nil {
		return nil
	}

	turns, err := s.load(ctx, user.ID)
	if err != nil {
		return err
	}

	log := FIFOFrom(maxTurns, turns)
	log.Insert(turn)

	data, err := json.Marshal(log.Items())
	if err != nil {
		return fmt.Errorf("failed to marshal conversation log: %w", err)
	}
	return s.kv.Set(ctx, memoryKeyPrefix+user.ID, string(data))
}

// History returns the newest `limit` turns in original relative order.
func (s *Store) History(ctx context.Context, limit int) ([]core.ConversationTurn, error) {
	user := s.auth.CurrentUser()
	if user == nil {
		return nil, nil
	}

	turns, err := s.load(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (s *Store) load(ctx context.Context, userID string) ([]core.ConversationTurn, error) {
	raw, ok, err := s.kv.Get(ctx, memoryKeyPrefix+userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation log: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var turns []core.ConversationTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation log: %w", err)
	}
	return turns, nil
}
