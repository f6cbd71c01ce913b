package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trading-supervisor/internal/agent"
	"trading-supervisor/internal/domain"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"
)

const usage = "Usage: /analyze <question>\nExample: /analyze Should I buy AAPL?"

var newBot = tele.NewBot

type Querier interface {
	HandleQuery(ctx context.Context, text, sessionID string) domain.Recommendation
}

// Bot answers stock questions over Telegram.
type Bot struct {
	querier Querier
	logger  zerolog.Logger
	timeout time.Duration
}

func New(querier Querier, logger zerolog.Logger, timeout time.Duration) *Bot {
	return &Bot{
		querier: querier,
		logger:  logger.With().Str("component", "telegram").Logger(),
		timeout: timeout,
	}
}

// Start connects with token and polls in the background until ctx is done.
// An empty token skips startup.
func (b *Bot) Start(ctx context.Context, token string) error {
	if token == "" {
		b.logger.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	tb, err := newBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}

	tb.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	tb.Handle("/start", func(c tele.Context) error {
		return c.Send(usage)
	})
	tb.Handle("/help", func(c tele.Context) error {
		return c.Send(usage)
	})
	tb.Handle("/analyze", func(c tele.Context) error {
		return c.Send(b.Reply(ctx, c.Message().Payload, chatSession(c)))
	})
	tb.Handle(tele.OnText, func(c tele.Context) error {
		return c.Send(b.Reply(ctx, c.Text(), chatSession(c)))
	})

	go tb.Start()
	go func() {
		<-ctx.Done()
		tb.Stop()
	}()
	b.logger.Info().Msg("Telegram bot started")
	return nil
}

// Reply runs one query and renders the answer as chat text.
func (b *Bot) Reply(ctx context.Context, query, sessionID string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return usage
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	rec := b.querier.HandleQuery(ctx, query, sessionID)
	b.logger.Debug().
		Str("session_id", sessionID).
		Str("recommendation", string(rec.Action)).
		Msg("telegram query answered")
	return strings.TrimSpace(agent.FormatMessage(rec))
}

func chatSession(c tele.Context) string {
	if chat := c.Chat(); chat != nil {
		return fmt.Sprintf("telegram-%d", chat.ID)
	}
	return ""
}
