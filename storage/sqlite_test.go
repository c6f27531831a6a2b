package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/charleshall888/Vacation-Finder/models"
)

func newTestOpsStore(t *testing.T) *OpsStore {
	t.Helper()
	store, err := NewOpsStore(filepath.Join(t.TempDir(), "ops.db"))
	if err != nil {
		t.Fatalf("failed to open ops store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := newTestOpsStore(t)

	run := &models.ScrapeRun{
		SiteID:    "vrbo",
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}

	id, err := store.CreateRun(run)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero run ID")
	}
	run.ID = id

	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	run.ListingsFound = 42
	run.ListingsNew = 7
	if err := store.UpdateRun(run); err != nil {
		t.Fatalf("update run: %v", err)
	}

	last, err := store.GetLastRunTime("vrbo")
	if err != nil {
		t.Fatalf("last run time: %v", err)
	}
	if last.IsZero() {
		t.Fatal("expected a recorded run time")
	}

	last, err = store.GetLastRunTime("unknown-site")
	if err != nil {
		t.Fatalf("last run time for unknown site: %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("expected zero time for unknown site, got %v", last)
	}
}

func TestRunLogs(t *testing.T) {
	store := newTestOpsStore(t)

	run := &models.ScrapeRun{SiteID: "vacasa", StartedAt: time.Now(), Status: models.RunStatusRunning}
	id, err := store.CreateRun(run)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}

	if err := store.Log(&id, models.LogLevelInfo, "starting", "vacasa"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := store.Log(&id, models.LogLevelError, "fetch failed", "vacasa"); err != nil {
		t.Fatalf("log: %v", err)
	}
	// A worker log with no run attached should not show up for this run.
	if err := store.Log(nil, models.LogLevelInfo, "rescore pass", "rescore"); err != nil {
		t.Fatalf("log: %v", err)
	}

	logs, err := store.GetRunLogs(id)
	if err != nil {
		t.Fatalf("get run logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Message != "starting" {
		t.Fatalf("unexpected first message %q", logs[0].Message)
	}
	if logs[1].Level != models.LogLevelError {
		t.Fatalf("unexpected second level %q", logs[1].Level)
	}
}

func TestCommandQueue(t *testing.T) {
	store := newTestOpsStore(t)

	if err := store.EnqueueCommand(models.CmdRefreshNow, nil); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.EnqueueCommand(models.CmdRefreshSource, &models.CommandParams{Site: "airbnb"}); err != nil {
		t.Fatalf("enqueue with params: %v", err)
	}

	cmds, err := store.GetPendingCommands()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("expected 2 pending commands, got %d", len(cmds))
	}

	params, err := store.ParseCommandParams(&cmds[0])
	if err != nil {
		t.Fatalf("parse params: %v", err)
	}
	if params.Site != "" {
		t.Fatalf("expected empty site, got %q", params.Site)
	}

	params, err = store.ParseCommandParams(&cmds[1])
	if err != nil {
		t.Fatalf("parse params: %v", err)
	}
	if params.Site != "airbnb" {
		t.Fatalf("expected site airbnb, got %q", params.Site)
	}

	if err := store.MarkCommandProcessed(cmds[0].ID); err != nil {
		t.Fatalf("mark processed: %v", err)
	}

	cmds, err = store.GetPendingCommands()
	if err != nil {
		t.Fatalf("pending after processing: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected 1 pending command, got %d", len(cmds))
	}
	if cmds[0].Command != models.CmdRefreshSource {
		t.Fatalf("unexpected remaining command %q", cmds[0].Command)
	}
}
