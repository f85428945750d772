package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tugasbot/internal/database"
)

// NewCompleteStartHandler returns a handler for the /selesai command, which
// presents every incomplete task as a pickable inline-keyboard option.
func NewCompleteStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return completeStartHandler{deps}.Handle
}

type completeStartHandler struct {
	deps HandlerDeps
}

func (h completeStartHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "selesai")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Complete handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /selesai command", "chat_id", chatID, "user_id", update.Message.From.ID)

	tasks, err := h.deps.Store.ListIncompleteTasks(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list tasks for completion", "error", err, "chat_id", chatID)
		h.send(ctx, b, chatID, h.deps.Config.Messages.GeneralError, nil, log)
		return
	}

	if len(tasks) == 0 {
		h.send(ctx, b, chatID, h.deps.Config.Messages.CompleteEmpty, nil, log)
		return
	}

	h.send(ctx, b, chatID, h.deps.Config.Messages.CompletePrompt, buildCompletionKeyboard(tasks), log)
}

func (h completeStartHandler) send(ctx context.Context, b *bot.Bot, chatID int64, text string, markup *models.InlineKeyboardMarkup, log *slog.Logger) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send completion prompt", "error", err, "chat_id", chatID)
	}
}

// buildCompletionKeyboard renders one button row per task, labelled with the
// task name and keyed by its id in the callback payload.
func buildCompletionKeyboard(tasks []database.Task) *models.InlineKeyboardMarkup {
	keyboard := make([][]models.InlineKeyboardButton, 0, len(tasks))
	for _, task := range tasks {
		keyboard = append(keyboard, []models.InlineKeyboardButton{{
			Text:         task.Name,
			CallbackData: fmt.Sprintf("%s%d", CompleteCallbackPrefix, task.ID),
		}})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

// NewCompleteCallbackHandler returns a handler for "selesai_<id>" callback queries.
func NewCompleteCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return completeCallbackHandler{deps}.Handle
}

type completeCallbackHandler struct {
	deps HandlerDeps
}

func (h completeCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "selesai_callback")

	if update.CallbackQuery == nil {
		log.WarnContext(ctx, "Callback handler received update without callback query", "update_id", update.ID)
		return
	}
	query := update.CallbackQuery

	// Acknowledge the button press so the client stops its spinner.
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}

	var chatID int64
	var messageID int
	if query.Message.Message != nil {
		chatID = query.Message.Message.Chat.ID
		messageID = query.Message.Message.ID
	} else if query.Message.InaccessibleMessage != nil {
		chatID = query.Message.InaccessibleMessage.Chat.ID
		messageID = query.Message.InaccessibleMessage.MessageID
	} else {
		log.WarnContext(ctx, "Callback query carries no message reference", "callback_query_id", query.ID)
		return
	}

	taskID, err := parseCompleteCallback(query.Data)
	if err != nil {
		log.WarnContext(ctx, "Malformed completion callback payload", "data", query.Data, "error", err)
		h.edit(ctx, b, chatID, messageID, h.deps.Config.Messages.GeneralError, log)
		return
	}

	task, err := h.deps.Store.CompleteTask(ctx, taskID, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to complete task", "error", err, "task_id", taskID, "chat_id", chatID)
		h.edit(ctx, b, chatID, messageID, h.deps.Config.Messages.GeneralError, log)
		return
	}
	if task == nil {
		log.InfoContext(ctx, "Completion requested for unknown task", "task_id", taskID, "chat_id", chatID)
		h.edit(ctx, b, chatID, messageID, h.deps.Config.Messages.CompleteNotFound, log)
		return
	}

	h.edit(ctx, b, chatID, messageID, fmt.Sprintf(h.deps.Config.Messages.CompleteConfirm, task.Name), log)
}

func (h completeCallbackHandler) edit(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, log *slog.Logger) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit completion message", "error", err, "chat_id", chatID)
	}
}

// parseCompleteCallback extracts the task id from a "selesai_<id>" payload.
func parseCompleteCallback(data string) (int64, error) {
	raw, ok := strings.CutPrefix(data, CompleteCallbackPrefix)
	if !ok {
		return 0, fmt.Errorf("payload %q does not carry the completion prefix", data)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("payload %q carries a non-numeric task id: %w", data, err)
	}
	return id, nil
}
