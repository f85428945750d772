package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender delivers outbound messages through a Telegram bot instance. It is
// the delivery capability handed to background tasks, which must not depend
// on the bot type directly.
type Sender struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewSender wraps a Telegram bot instance as an outbound message sender.
func NewSender(b *bot.Bot, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		bot:    b,
		logger: logger.With("component", "telegram_sender"),
	}
}

// SendMessage sends text to the given chat. When markdown is true the text is
// rendered with Telegram's Markdown parse mode.
func (s *Sender) SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markdown {
		params.ParseMode = models.ParseModeMarkdown
	}

	if _, err := s.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Message sent", "chat_id", chatID)
	return nil
}
