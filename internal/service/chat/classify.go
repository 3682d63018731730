package chat

import (
	"context"
	"strings"

	"github.com/lembremed/lembremed/internal/core"
	"github.com/lembremed/lembremed/pkg/cache"
	"github.com/lembremed/lembremed/pkg/log"
)

// Answer strategies produced by the strategy classifier.
const (
	strategyLocalData = "dados_locais"
	strategyWebSearch = "pesquisa_web"
	strategyBoth      = "ambos"
)

// isGreeting matches a greeting keyword against the whole normalized message:
// exact, leading word or trailing word. It runs before any backend call and a
// hit skips every other classifier.
func isGreeting(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, keyword := range greetingKeywords {
		if normalized == keyword ||
			strings.HasPrefix(normalized, keyword+" ") ||
			strings.HasSuffix(normalized, " "+keyword) {
			return true
		}
	}
	return false
}

// containsGreeting is the looser substring check used to prefix confirmations
// when a create/edit message also opens with a salutation.
func containsGreeting(message string) bool {
	normalized := strings.ToLower(message)
	for _, keyword := range greetingKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

func (c *Composer) classifyCreateIntent(ctx context.Context, message string) bool {
	return c.classifyYesNo(ctx, "intencao_criar", buildCreateIntentPrompt(message), message)
}

func (c *Composer) classifyEditIntent(ctx context.Context, message string) bool {
	return c.classifyYesNo(ctx, "intencao_editar", buildEditIntentPrompt(message), message)
}

// classifyYesNo runs one closed-instruction generation call and parses the
// reply against the SIM/NÃO vocabulary. Backend failures degrade to false.
func (c *Composer) classifyYesNo(ctx context.Context, op, prompt, message string) bool {
	key := cache.Key(op, message)
	if cached, ok := c.cache.Get(key); ok {
		if value, ok := cached.(bool); ok {
			return value
		}
	}

	raw, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("classifier", op).Msg("intent classification failed")
		return false
	}

	result := strings.ToUpper(strings.TrimSpace(raw)) == "SIM"
	c.cache.Set(key, result)
	return result
}

// classifyStrategy decides whether a question is answered from local data,
// general knowledge, or both. Backend failures degrade to the
// general-knowledge path.
func (c *Composer) classifyStrategy(ctx context.Context, message string, data *core.UserData) string {
	key := cache.Key("pergunta", message)
	if cached, ok := c.cache.Get(key); ok {
		if value, ok := cached.(string); ok {
			return value
		}
	}

	raw, err := c.gen.Generate(ctx, buildStrategyPrompt(message, data))
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("strategy classification failed")
		return strategyWebSearch
	}

	strategy := strings.TrimSpace(raw)
	c.cache.Set(key, strategy)
	return strategy
}
