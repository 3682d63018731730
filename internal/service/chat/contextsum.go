package chat

import (
	"context"

	"github.com/lembremed/lembremed/pkg/log"
)

const (
	firstConversationSummary = "Primeira conversa do usuário."
	contextUnavailable       = "Contexto não disponível."

	contextHistoryWindow = 5
)

// summarizeContext condenses recent history and accumulated preferences into
// a short summary that personalizes greetings and question answers. Soft-fail
// only: any failure yields a placeholder, never an error.
func (c *Composer) summarizeContext(ctx context.Context, message string) string {
	logger := log.FromCtx(ctx)

	history, err := c.memory.History(ctx, contextHistoryWindow)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load conversation history")
		return contextUnavailable
	}
	if len(history) == 0 {
		return firstConversationSummary
	}

	prefs, err := c.prefs.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load preferences")
		return contextUnavailable
	}

	summary, err := c.gen.Generate(ctx, buildContextPrompt(message, history, prefs))
	if err != nil {
		logger.Warn().Err(err).Msg("context summarization failed")
		return contextUnavailable
	}
	return summary
}
