// Package intake implements the multi-step conversation for registering a new
// task: ask for a name, then a deadline, then commit the row. Drafts are
// transient in-process state keyed per chat; they are never persisted.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/edgard/tugasbot/internal/config"
	"github.com/edgard/tugasbot/internal/database"
	"github.com/edgard/tugasbot/internal/deadline"
)

// Step identifies the current state of a chat's intake conversation.
type Step int

const (
	// StepIdle means no intake conversation is active for the chat.
	StepIdle Step = iota
	// StepAwaitingName means the next text message is taken as the task name.
	StepAwaitingName
	// StepAwaitingDeadline means the next text message is parsed as the deadline.
	StepAwaitingDeadline
)

type draft struct {
	step Step
	name string
}

// Manager tracks one intake draft per chat and drives the conversation
// transitions. All methods are safe for concurrent use by different chats.
type Manager struct {
	mu     sync.Mutex
	drafts map[int64]*draft

	store  database.Store
	msgs   config.MessagesConfig
	logger *slog.Logger
}

// NewManager creates an intake manager backed by the given store.
func NewManager(store database.Store, msgs config.MessagesConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		drafts: make(map[int64]*draft),
		store:  store,
		msgs:   msgs,
		logger: logger.With("component", "intake"),
	}
}

// Start begins a new intake conversation for the chat, overwriting any draft
// already in progress, and returns the name prompt.
func (m *Manager) Start(chatID int64) string {
	m.mu.Lock()
	m.drafts[chatID] = &draft{step: StepAwaitingName}
	m.mu.Unlock()

	m.logger.Debug("Intake started", "chat_id", chatID)
	return m.msgs.IntakeAskName
}

// Cancel discards the chat's draft, if any, and returns the cancellation
// message. Nothing is persisted.
func (m *Manager) Cancel(chatID int64) string {
	m.mu.Lock()
	_, active := m.drafts[chatID]
	delete(m.drafts, chatID)
	m.mu.Unlock()

	if active {
		m.logger.Debug("Intake cancelled", "chat_id", chatID)
	}
	return m.msgs.IntakeCancelled
}

// Step reports the chat's current intake step.
func (m *Manager) Step(chatID int64) Step {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.drafts[chatID]; ok {
		return d.step
	}
	return StepIdle
}

// HandleText advances the conversation with a free-text message. It returns
// the reply to send and whether the text was consumed by an active draft;
// handled is false when the chat is idle.
func (m *Manager) HandleText(ctx context.Context, chatID int64, text string) (reply string, handled bool) {
	m.mu.Lock()
	d, ok := m.drafts[chatID]
	if !ok {
		m.mu.Unlock()
		return "", false
	}

	switch d.step {
	case StepAwaitingName:
		// Any text is accepted verbatim as the name.
		d.name = text
		d.step = StepAwaitingDeadline
		m.mu.Unlock()

		m.logger.Debug("Intake captured task name", "chat_id", chatID)
		return fmt.Sprintf(m.msgs.IntakeAskDate, text), true

	case StepAwaitingDeadline:
		name := d.name
		m.mu.Unlock()
		return m.submitDeadline(ctx, chatID, name, text), true

	default:
		m.mu.Unlock()
		return "", false
	}
}

// submitDeadline validates the deadline and commits the task. A parse failure
// keeps the draft (name included) and re-prompts; a storage failure ends the
// conversation with a generic error.
func (m *Manager) submitDeadline(ctx context.Context, chatID int64, name, text string) string {
	if err := deadline.Validate(text); err != nil {
		if !errors.Is(err, deadline.ErrInvalidFormat) {
			m.logger.WarnContext(ctx, "Unexpected deadline validation error", "chat_id", chatID, "error", err)
		}
		m.logger.DebugContext(ctx, "Intake rejected deadline", "chat_id", chatID, "input", text)
		return m.msgs.IntakeBadDate
	}

	task := &database.Task{ChatID: chatID, Name: name, Deadline: text}
	err := m.store.CreateTask(ctx, task)

	m.mu.Lock()
	delete(m.drafts, chatID)
	m.mu.Unlock()

	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to save task from intake", "chat_id", chatID, "error", err)
		return m.msgs.GeneralError
	}

	m.logger.InfoContext(ctx, "New task saved",
		"chat_id", chatID, "task_id", task.ID, "deadline", task.Deadline)
	return fmt.Sprintf(m.msgs.IntakeSaved, name, text)
}
