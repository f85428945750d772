// Package tasks implements the scheduled background tasks of TugasBot.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/tugasbot/internal/config"
	"github.com/edgard/tugasbot/internal/database"
)

// Messenger is the outbound delivery capability tasks depend on. The Telegram
// sender satisfies it in production; tests use fakes.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Store     database.Store
	Messenger Messenger
	Config    *config.Config
	Location  *time.Location

	// Now supplies the current time; nil means time.Now. Exists so tests can
	// pin the calendar date.
	Now func() time.Time
}

func (d TaskDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	if d.Location != nil {
		return time.Now().In(d.Location)
	}
	return time.Now()
}
