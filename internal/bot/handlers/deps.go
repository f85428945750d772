// Package handlers contains Telegram bot command, callback, and message
// handlers, along with their registration logic.
package handlers

import (
	"log/slog"
	"time"

	"github.com/edgard/tugasbot/internal/config"
	"github.com/edgard/tugasbot/internal/database"
	"github.com/edgard/tugasbot/internal/intake"
)

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Intake   *intake.Manager
	Location *time.Location
}

// today returns the current civil date in the bot's configured timezone.
func (d HandlerDeps) today() time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}
