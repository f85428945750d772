package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tugasbot/internal/config"
	"github.com/edgard/tugasbot/internal/database"
	"github.com/edgard/tugasbot/internal/deadline"
)

// NewListHandler returns a handler for the /listtugas command.
func NewListHandler(deps HandlerDeps) bot.HandlerFunc {
	return listHandler{deps}.Handle
}

type listHandler struct {
	deps HandlerDeps
}

func (h listHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "listtugas")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "List handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /listtugas command", "chat_id", chatID, "user_id", update.Message.From.ID)

	tasks, err := h.deps.Store.ListIncompleteTasks(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list tasks", "error", err, "chat_id", chatID)
		sendReply(ctx, b, chatID, h.deps.Config.Messages.GeneralError, false, log)
		return
	}

	if len(tasks) == 0 {
		sendReply(ctx, b, chatID, h.deps.Config.Messages.ListEmpty, false, log)
		return
	}

	text := formatTaskList(h.deps.Config.Messages, tasks, h.deps.today(), log)
	sendReply(ctx, b, chatID, text, true, log)
}

// formatTaskList renders the numbered task list with days remaining. Rows
// whose deadlines fail to parse are logged and omitted, never surfaced to the
// user as errors.
func formatTaskList(msgs config.MessagesConfig, tasks []database.Task, today time.Time, log *slog.Logger) string {
	var sb strings.Builder
	sb.WriteString(msgs.ListHeader)

	n := 0
	for _, task := range tasks {
		days, err := deadline.DaysRemaining(today, task.Deadline)
		if err != nil {
			log.Warn("Skipping task with unparsable deadline",
				"task_id", task.ID, "deadline", task.Deadline, "error", err)
			continue
		}
		n++
		sb.WriteString(fmt.Sprintf(msgs.ListEntry, n, task.Name, task.Deadline, days))
	}

	return sb.String()
}
