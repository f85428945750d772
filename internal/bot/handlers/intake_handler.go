package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewIntakeStartHandler returns a handler for the /tugasbaru command, which
// begins (or restarts) the task intake conversation for the chat.
func NewIntakeStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return intakeStartHandler{deps}.Handle
}

type intakeStartHandler struct {
	deps HandlerDeps
}

func (h intakeStartHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "tugasbaru")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Intake start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /tugasbaru command", "chat_id", chatID, "user_id", update.Message.From.ID)

	sendReply(ctx, b, chatID, h.deps.Intake.Start(chatID), false, log)
}

// NewIntakeCancelHandler returns a handler for the /cancel command, which
// discards the chat's intake draft without persisting anything.
func NewIntakeCancelHandler(deps HandlerDeps) bot.HandlerFunc {
	return intakeCancelHandler{deps}.Handle
}

type intakeCancelHandler struct {
	deps HandlerDeps
}

func (h intakeCancelHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cancel")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Cancel handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /cancel command", "chat_id", chatID, "user_id", update.Message.From.ID)

	sendReply(ctx, b, chatID, h.deps.Intake.Cancel(chatID), false, log)
}

// NewIntakeTextHandler returns the bot's default handler. Free text is routed
// to the chat's intake draft; text from an idle chat is ignored.
func NewIntakeTextHandler(deps HandlerDeps) bot.HandlerFunc {
	return intakeTextHandler{deps}.Handle
}

type intakeTextHandler struct {
	deps HandlerDeps
}

func (h intakeTextHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "intake_text")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	text := update.Message.Text
	if text == "" || strings.HasPrefix(text, "/") {
		// Unknown commands never feed the draft.
		return
	}

	chatID := update.Message.Chat.ID
	reply, handled := h.deps.Intake.HandleText(ctx, chatID, text)
	if !handled {
		log.DebugContext(ctx, "Ignoring free text outside intake", "chat_id", chatID)
		return
	}

	sendReply(ctx, b, chatID, reply, true, log)
}

// sendReply sends a plain or Markdown-formatted reply to the chat.
func sendReply(ctx context.Context, b *bot.Bot, chatID int64, text string, markdown bool, log *slog.Logger) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markdown {
		params.ParseMode = models.ParseModeMarkdown
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
