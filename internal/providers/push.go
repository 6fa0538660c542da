package providers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"notification-center/internal/config"
	"notification-center/internal/models"
)

// Push delivers notifications to a user's registered chat through the
// Telegram bot transport. The contact address is the chat id.
type Push struct {
	cfg     config.Config
	limiter *rate.Limiter
}

func NewPush(cfg config.Config) *Push {
	perSecond := cfg.Push.RatePerSecond
	return &Push{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(float64(perSecond)), perSecond),
	}
}

func (p *Push) Send(ctx context.Context, n models.Notification, address string) error {
	if p.cfg.Push.BotToken == "" {
		return fmt.Errorf("missing Push configuration: BotToken is empty")
	}
	chatID, err := strconv.ParseInt(address, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q for recipient %d: %w", address, n.RecipientID, err)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("push rate limit wait cancelled: %w", err)
	}

	b, err := bot.New(p.cfg.Push.BotToken)
	if err != nil {
		return fmt.Errorf("failed to initialize push bot: %w", err)
	}

	text := fmt.Sprintf("*%s*\n%s", n.Title, n.Message)
	if n.ActionURL != "" {
		text += fmt.Sprintf("\n\n%s", n.ActionURL)
	}
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send push to chat %d: %w", chatID, err)
	}
	return nil
}
