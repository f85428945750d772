package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for task persistence operations. Every method
// is atomic with respect to the others; methods accept context.Context for
// cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateTask inserts a new incomplete task and assigns its ID.
	// Name and Deadline are assumed pre-validated by the caller.
	CreateTask(ctx context.Context, task *Task) error

	// ListIncompleteTasks retrieves all incomplete tasks for one chat,
	// in insertion order.
	ListIncompleteTasks(ctx context.Context, chatID int64) ([]Task, error)

	// ListAllIncompleteTasks retrieves all incomplete tasks across all chats.
	// Used only by the daily reminder job.
	ListAllIncompleteTasks(ctx context.Context) ([]Task, error)

	// CompleteTask marks the task complete iff a row with that id and chat
	// exists and is currently incomplete. It returns the completed task, or
	// nil when no row matched (not found is not an error).
	CompleteTask(ctx context.Context, id, chatID int64) (*Task, error)

	// MarkTaskOverdue marks a task complete without an owner check. Reserved
	// for the daily reminder job, which trusts its own read.
	MarkTaskOverdue(ctx context.Context, id int64) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateTask inserts a new incomplete task record and assigns its ID.
func (s *sqlxStore) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return fmt.Errorf("cannot save nil task")
	}
	if task.ChatID == 0 {
		return fmt.Errorf("task must have a non-zero chat_id")
	}
	if task.Name == "" {
		return fmt.Errorf("task must have a non-empty name")
	}
	if task.Deadline == "" {
		return fmt.Errorf("task must have a non-empty deadline")
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Complete = false

	query := `
        INSERT INTO tasks (chat_id, name, deadline, complete, created_at, updated_at)
        VALUES (:chat_id, :name, :deadline, :complete, :created_at, :updated_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, task)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving task", "chat_id", task.ChatID, "error", err)
		return fmt.Errorf("failed to save task for chat %d: %w", task.ChatID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving task",
			"chat_id", task.ChatID, "error", err)
	} else {
		task.ID = id
	}

	s.logger.DebugContext(ctx, "Task saved successfully",
		"chat_id", task.ChatID, "task_id", task.ID, "deadline", task.Deadline)
	return nil
}

// ListIncompleteTasks retrieves all incomplete tasks for one chat in insertion order.
func (s *sqlxStore) ListIncompleteTasks(ctx context.Context, chatID int64) ([]Task, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	var tasks []Task
	query := `
        SELECT id, chat_id, name, deadline, complete, created_at, updated_at
        FROM tasks
        WHERE chat_id = ? AND complete = 0
        ORDER BY id ASC;
    `

	err := s.db.SelectContext(ctx, &tasks, query, chatID)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching tasks",
			"chat_id", chatID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting incomplete tasks", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get incomplete tasks for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched incomplete tasks", "chat_id", chatID, "count", len(tasks))
	return tasks, nil
}

// ListAllIncompleteTasks retrieves all incomplete tasks across all chats.
func (s *sqlxStore) ListAllIncompleteTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	query := `
        SELECT id, chat_id, name, deadline, complete, created_at, updated_at
        FROM tasks
        WHERE complete = 0
        ORDER BY id ASC;
    `

	err := s.db.SelectContext(ctx, &tasks, query)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching all incomplete tasks", "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting all incomplete tasks", "error", err)
		return nil, fmt.Errorf("failed to get all incomplete tasks: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched all incomplete tasks", "count", len(tasks))
	return tasks, nil
}

// CompleteTask marks a task complete iff it belongs to the chat and is still
// incomplete. The existence check and the write happen in one transaction so
// a concurrent complete on the same row cannot race.
func (s *sqlxStore) CompleteTask(ctx context.Context, id, chatID int64) (*Task, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for completing task",
			"task_id", id, "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	var task Task
	err = tx.GetContext(ctx, &task, `
        SELECT id, chat_id, name, deadline, complete, created_at, updated_at
        FROM tasks
        WHERE id = ? AND chat_id = ? AND complete = 0;
    `, id, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		// Wrong owner, unknown id, or already complete: not found, not an error.
		s.logger.DebugContext(ctx, "Task not found for completion", "task_id", id, "chat_id", chatID)
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error checking task for completion",
			"task_id", id, "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to check task %d for chat %d: %w", id, chatID, err)
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
        UPDATE tasks SET complete = 1, updated_at = ?
        WHERE id = ? AND chat_id = ? AND complete = 0;
    `, now, id, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error completing task", "task_id", id, "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to complete task %d for chat %d: %w", id, chatID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count when completing task",
			"task_id", id, "error", err)
	} else if affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when completing task",
			"task_id", id, "affected", affected)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"task_id", id, "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	task.Complete = true
	task.UpdatedAt = now

	s.logger.InfoContext(ctx, "Task marked complete", "task_id", id, "chat_id", chatID, "name", task.Name)
	return &task, nil
}

// MarkTaskOverdue marks a task complete without an owner check.
func (s *sqlxStore) MarkTaskOverdue(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
        UPDATE tasks SET complete = 1, updated_at = ?
        WHERE id = ? AND complete = 0;
    `, now, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error marking task overdue", "task_id", id, "error", err)
		return fmt.Errorf("failed to mark task %d overdue: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		// Already closed by a concurrent operation; nothing to do.
		s.logger.DebugContext(ctx, "Overdue task already complete", "task_id", id)
	}

	return nil
}
