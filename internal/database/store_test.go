package database_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/edgard/tugasbot/internal/database"
)

// newTestStore creates an in-memory store with migrations applied and closes
// it when the test completes.
func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return database.NewStore(db, slog.Default())
}

func mustCreate(t *testing.T, s database.Store, chatID int64, name, deadline string) *database.Task {
	t.Helper()

	task := &database.Task{ChatID: chatID, Name: name, Deadline: deadline}
	if err := s.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("creating task %q: %v", name, err)
	}
	return task
}

func TestCreateTaskAssignsIncreasingIDs(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	first := mustCreate(t, s, 42, "Essay", "2025-01-10")
	second := mustCreate(t, s, 42, "Presentation", "2025-02-01")

	if first.ID == 0 {
		t.Fatal("expected first task to get a non-zero ID")
	}
	if second.ID <= first.ID {
		t.Fatalf("expected IDs to increase: first=%d second=%d", first.ID, second.ID)
	}
	if first.Complete || second.Complete {
		t.Error("new tasks must start incomplete")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		task *database.Task
	}{
		{name: "nil task", task: nil},
		{name: "zero chat id", task: &database.Task{Name: "x", Deadline: "2025-01-01"}},
		{name: "empty name", task: &database.Task{ChatID: 1, Deadline: "2025-01-01"}},
		{name: "empty deadline", task: &database.Task{ChatID: 1, Name: "x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.CreateTask(ctx, tc.task); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestListIncompleteTasksScopedToOwnerInInsertionOrder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, s, 7, "A", "2025-01-10")
	mustCreate(t, s, 9, "other owner", "2025-01-10")
	mustCreate(t, s, 7, "B", "2025-01-11")

	tasks, err := s.ListIncompleteTasks(ctx, 7)
	if err != nil {
		t.Fatalf("listing tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks for chat 7, got %d", len(tasks))
	}
	if tasks[0].Name != "A" || tasks[1].Name != "B" {
		t.Errorf("expected insertion order [A B], got [%s %s]", tasks[0].Name, tasks[1].Name)
	}
}

func TestCompleteTaskOwnerMismatchIsNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	task := mustCreate(t, s, 42, "Essay", "2025-01-10")

	done, err := s.CompleteTask(ctx, task.ID, 99)
	if err != nil {
		t.Fatalf("completing with wrong owner: %v", err)
	}
	if done != nil {
		t.Fatal("expected nil (not found) for wrong owner")
	}

	// Row must be untouched.
	tasks, err := s.ListIncompleteTasks(ctx, 42)
	if err != nil {
		t.Fatalf("listing tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected task to remain incomplete, got %d incomplete tasks", len(tasks))
	}
}

func TestCompleteTaskUnknownIDIsNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, s, 7, "A", "2025-01-10")

	done, err := s.CompleteTask(ctx, 999, 7)
	if err != nil {
		t.Fatalf("completing unknown id: %v", err)
	}
	if done != nil {
		t.Fatal("expected nil (not found) for unknown id")
	}
}

func TestCompleteTaskIsMonotonic(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	task := mustCreate(t, s, 42, "Essay", "2025-01-10")

	done, err := s.CompleteTask(ctx, task.ID, 42)
	if err != nil {
		t.Fatalf("completing task: %v", err)
	}
	if done == nil {
		t.Fatal("expected the completed task back")
	}
	if done.Name != "Essay" || !done.Complete {
		t.Errorf("unexpected completed task: %+v", done)
	}

	// A second completion of the same row signals not found.
	again, err := s.CompleteTask(ctx, task.ID, 42)
	if err != nil {
		t.Fatalf("re-completing task: %v", err)
	}
	if again != nil {
		t.Error("expected nil when completing an already complete task")
	}
}

func TestMarkTaskOverdueSkipsOwnerCheckAndExcludesFromListing(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	task := mustCreate(t, s, 42, "Essay", "2025-01-10")

	if err := s.MarkTaskOverdue(ctx, task.ID); err != nil {
		t.Fatalf("marking overdue: %v", err)
	}

	all, err := s.ListAllIncompleteTasks(ctx)
	if err != nil {
		t.Fatalf("listing all incomplete: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no incomplete tasks after overdue close, got %d", len(all))
	}

	// Marking an already closed task again is a no-op.
	if err := s.MarkTaskOverdue(ctx, task.ID); err != nil {
		t.Fatalf("re-marking overdue: %v", err)
	}
}
