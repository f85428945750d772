package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/tugasbot/internal/deadline"
)

// newDailyReminderTask creates the daily reminder pass: read every incomplete
// task, auto-close the overdue ones, and send a reminder for the rest.
func newDailyReminderTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "daily_reminder")

	return func(ctx context.Context) error {
		startTime := time.Now()

		incomplete, err := deps.Store.ListAllIncompleteTasks(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Failed to read incomplete tasks", "error", err)
			return fmt.Errorf("daily reminder read failed: %w", err)
		}

		today := deps.now()

		var reminded, closed, skipped, failed int
		for _, task := range incomplete {
			days, err := deadline.DaysRemaining(today, task.Deadline)
			if err != nil {
				// Should not happen: deadlines are validated before insert.
				// The row stays incomplete and untouched.
				log.WarnContext(ctx, "Skipping task with unparsable deadline",
					"task_id", task.ID, "deadline", task.Deadline, "error", err)
				skipped++
				continue
			}

			if days < 0 {
				// Past deadline: close it so it is never reminded again. The
				// write happens before any delivery and never waits on it.
				if err := deps.Store.MarkTaskOverdue(ctx, task.ID); err != nil {
					log.ErrorContext(ctx, "Failed to close overdue task",
						"task_id", task.ID, "error", err)
					continue
				}
				log.InfoContext(ctx, "Overdue task auto-closed",
					"task_id", task.ID, "chat_id", task.ChatID, "deadline", task.Deadline)
				closed++
				continue
			}

			text := fmt.Sprintf(deps.Config.Messages.Reminder, task.Name, task.Deadline, days)

			// One timeout per recipient; a failed or slow send never aborts
			// the rest of the fan-out.
			sendCtx, cancel := context.WithTimeout(ctx, deps.Config.Telegram.SendTimeout)
			err = deps.Messenger.SendMessage(sendCtx, task.ChatID, text, true)
			cancel()
			if err != nil {
				log.ErrorContext(ctx, "Failed to deliver reminder",
					"task_id", task.ID, "chat_id", task.ChatID, "error", err)
				failed++
				continue
			}
			reminded++
		}

		log.InfoContext(ctx, "Daily reminder pass finished",
			"total", len(incomplete),
			"reminded", reminded,
			"closed", closed,
			"skipped", skipped,
			"delivery_failures", failed,
			"duration", time.Since(startTime))
		return nil
	}
}
