package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"metbot/app/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/do"
)

// Inbound is a single text message received from the owner chat.
type Inbound struct {
	ID     int
	Sender int64
	Text   string
	At     time.Time
}

type Client struct {
	cfg *config.Config
	bot *tgbotapi.BotAPI

	mutex  sync.Mutex
	offset int
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	return &Client{
		cfg: cfg,
		bot: bot,
	}, nil
}

func (c *Client) Send(recipient int64, text string) error {
	msg := tgbotapi.NewMessage(recipient, text)

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

// PollRecent fetches new updates once and advances the internal offset.
// Non-text updates and messages from chats other than the owner's are
// consumed but not returned.
func (c *Client) PollRecent(ctx context.Context, limit int) ([]Inbound, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	req := tgbotapi.NewUpdate(c.offset)
	req.Limit = limit
	req.Timeout = 0

	updates, err := c.bot.GetUpdates(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram updates: %w", err)
	}

	result := make([]Inbound, 0, len(updates))

	for _, update := range updates {
		if update.UpdateID >= c.offset {
			c.offset = update.UpdateID + 1
		}

		if update.Message == nil || update.Message.Text == "" {
			continue
		}

		if update.Message.Chat.ID != c.cfg.Telegram.OwnerChatID {
			slog.Debug("Ignoring message from foreign chat", "chat_id", update.Message.Chat.ID)
			continue
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result = append(result, Inbound{
			ID:     update.Message.MessageID,
			Sender: update.Message.Chat.ID,
			Text:   update.Message.Text,
			At:     update.Message.Time(),
		})
	}

	return result, nil
}
