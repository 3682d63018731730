package telegram

import (
	"context"
	"fmt"
	"io"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/lembremed/lembremed/internal/config"
	"github.com/lembremed/lembremed/internal/core"
	"github.com/lembremed/lembremed/internal/service/chat"
	"github.com/lembremed/lembremed/pkg/log"
)

const baseContextKey = "base_context"

// transcribeInstruction is sent alongside a voice note so the backend returns
// only the literal transcript.
const transcribeInstruction = "Transcreva o áudio a seguir em português brasileiro. Responda APENAS com a transcrição, sem comentários adicionais."

type Bot struct {
	bot         *tele.Bot
	cfg         *config.TelegramConfig
	composer    *chat.Composer
	transcriber core.Transcriber
	sender      *sender
	ownerID     int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	composer *chat.Composer,
	transcriber core.Transcriber,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:         b,
		cfg:         cfg,
		composer:    composer,
		transcriber: transcriber,
		sender:      newSender(b),
		ownerID:     cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleText)
	b.Handle(tele.OnVoice, bot.handleVoice)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleText(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)

	_ = c.Notify(tele.Typing)

	reply := b.composer.Reply(ctx, c.Text())
	return b.sender.sendText(ctx, c.Chat(), reply)
}

// handleVoice transcribes a voice note and feeds the transcript through the
// same pipeline as a typed message.
func (b *Bot) handleVoice(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	voice := c.Message().Voice
	if voice == nil {
		return nil
	}

	_ = c.Notify(tele.Typing)

	rc, err := b.bot.File(&voice.File)
	if err != nil {
		logger.Error().Err(err).Msg("failed to download voice note")
		return c.Send("Desculpe, não consegui baixar o áudio. Tente novamente.")
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read voice note")
		return c.Send("Desculpe, não consegui baixar o áudio. Tente novamente.")
	}

	mime := voice.MIME
	if mime == "" {
		mime = "audio/ogg"
	}

	transcript, err := b.transcriber.Transcribe(ctx, transcribeInstruction, core.AudioBlob{
		MIMEType: mime,
		Data:     data,
	})
	if err != nil {
		logger.Error().Err(err).Msg("voice transcription failed")
		return c.Send("Desculpe, não consegui entender o áudio. Tente novamente.")
	}

	reply := b.composer.Reply(ctx, transcript)
	return b.sender.sendText(ctx, c.Chat(), reply)
}
