package telegram

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/lembremed/lembremed/pkg/log"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendText sends a plain-text reply, chunked when it exceeds Telegram's
// message limit.
func (s *sender) sendText(ctx context.Context, to tele.Recipient, text string) error {
	logger := log.FromCtx(ctx)

	chunks := splitText(strings.TrimSpace(text), maxTelegramMsgLen)
	for i, chunk := range chunks {
		if _, err := s.bot.Send(to, chunk); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// splitText splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting.
func splitText(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		// Try to find a good break point (newline) in the second half of the chunk
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
