package intake_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/edgard/tugasbot/internal/config"
	"github.com/edgard/tugasbot/internal/database"
	"github.com/edgard/tugasbot/internal/intake"
)

var testMessages = config.MessagesConfig{
	GeneralError:    "general error",
	IntakeAskName:   "ask name",
	IntakeAskDate:   "name is %s, ask date",
	IntakeBadDate:   "bad date",
	IntakeSaved:     "saved %s %s",
	IntakeCancelled: "cancelled",
}

func newTestManager(t *testing.T) (*intake.Manager, database.Store) {
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

	store := database.NewStore(db, slog.Default())
	return intake.NewManager(store, testMessages, slog.Default()), store
}

func TestIntakeFullFlowCreatesTask(t *testing.T) {
	t.Parallel()

	m, store := newTestManager(t)
	ctx := context.Background()

	if got := m.Start(42); got != "ask name" {
		t.Errorf("Start reply = %q, want name prompt", got)
	}
	if m.Step(42) != intake.StepAwaitingName {
		t.Fatalf("expected StepAwaitingName, got %v", m.Step(42))
	}

	reply, handled := m.HandleText(ctx, 42, "Essay")
	if !handled {
		t.Fatal("name text should be handled by the active draft")
	}
	if !strings.Contains(reply, "Essay") {
		t.Errorf("name echo missing from reply %q", reply)
	}

	reply, handled = m.HandleText(ctx, 42, "2025-01-10")
	if !handled {
		t.Fatal("deadline text should be handled by the active draft")
	}
	if reply != "saved Essay 2025-01-10" {
		t.Errorf("confirmation = %q", reply)
	}
	if m.Step(42) != intake.StepIdle {
		t.Error("expected chat to return to idle after commit")
	}

	tasks, err := store.ListIncompleteTasks(ctx, 42)
	if err != nil {
		t.Fatalf("listing tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Essay" || tasks[0].Deadline != "2025-01-10" {
		t.Errorf("unexpected stored tasks: %+v", tasks)
	}
}

func TestIntakeBadDeadlineKeepsDraft(t *testing.T) {
	t.Parallel()

	m, store := newTestManager(t)
	ctx := context.Background()

	m.Start(7)
	m.HandleText(ctx, 7, "Presentation")

	reply, handled := m.HandleText(ctx, 7, "next tuesday")
	if !handled {
		t.Fatal("malformed deadline should still be handled")
	}
	if reply != "bad date" {
		t.Errorf("expected re-prompt, got %q", reply)
	}
	if m.Step(7) != intake.StepAwaitingDeadline {
		t.Fatal("draft must stay in AwaitingDeadline after a parse failure")
	}

	// The captured name survives the retry.
	reply, _ = m.HandleText(ctx, 7, "2025-03-01")
	if reply != "saved Presentation 2025-03-01" {
		t.Errorf("confirmation after retry = %q", reply)
	}

	tasks, err := store.ListIncompleteTasks(ctx, 7)
	if err != nil {
		t.Fatalf("listing tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected exactly one task, got %d", len(tasks))
	}
}

func TestIntakeCancelDiscardsDraft(t *testing.T) {
	t.Parallel()

	m, store := newTestManager(t)
	ctx := context.Background()

	m.Start(7)
	m.HandleText(ctx, 7, "Essay")

	if got := m.Cancel(7); got != "cancelled" {
		t.Errorf("Cancel reply = %q", got)
	}
	if m.Step(7) != intake.StepIdle {
		t.Error("expected idle after cancel")
	}

	// Free text after cancel is not consumed.
	if _, handled := m.HandleText(ctx, 7, "2025-01-10"); handled {
		t.Error("text must not be handled once the draft is discarded")
	}

	tasks, err := store.ListIncompleteTasks(ctx, 7)
	if err != nil {
		t.Fatalf("listing tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("no row may be created by a cancelled intake, got %d", len(tasks))
	}
}

func TestIntakeRestartOverwritesDraft(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	ctx := context.Background()

	m.Start(7)
	m.HandleText(ctx, 7, "old name")

	// Starting again mid-flow resets to the name step.
	m.Start(7)
	if m.Step(7) != intake.StepAwaitingName {
		t.Fatalf("expected restart to go back to AwaitingName, got %v", m.Step(7))
	}

	reply, _ := m.HandleText(ctx, 7, "new name")
	if !strings.Contains(reply, "new name") {
		t.Errorf("expected new name echoed, got %q", reply)
	}
}

// failingStore rejects every insert. The remaining Store methods are never
// reached by the intake flow.
type failingStore struct {
	database.Store
	creates int
}

func (s *failingStore) CreateTask(context.Context, *database.Task) error {
	s.creates++
	return errors.New("insert failed")
}

func TestIntakeStorageFailureEndsConversation(t *testing.T) {
	t.Parallel()

	store := &failingStore{}
	m := intake.NewManager(store, testMessages, slog.Default())
	ctx := context.Background()

	m.Start(7)
	m.HandleText(ctx, 7, "Essay")

	reply, handled := m.HandleText(ctx, 7, "2025-01-10")
	if !handled {
		t.Fatal("deadline text should be handled by the active draft")
	}
	if reply != "general error" {
		t.Errorf("reply = %q, want the generic error message", reply)
	}
	if store.creates != 1 {
		t.Errorf("expected exactly one insert attempt, got %d", store.creates)
	}
	if m.Step(7) != intake.StepIdle {
		t.Error("a storage failure must end the conversation, not keep the draft")
	}

	// Later free text is ignored, not retried against the store.
	if _, handled := m.HandleText(ctx, 7, "2025-01-11"); handled {
		t.Error("text must not be handled once the draft is discarded")
	}
	if store.creates != 1 {
		t.Errorf("no further insert attempts expected, got %d", store.creates)
	}
}

func TestIntakeDraftsAreScopedPerChat(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	ctx := context.Background()

	m.Start(1)

	if _, handled := m.HandleText(ctx, 2, "hello"); handled {
		t.Error("chat 2 has no draft, its text must not be consumed")
	}
	if m.Step(1) != intake.StepAwaitingName {
		t.Error("chat 1 draft must be unaffected by chat 2 traffic")
	}
}
