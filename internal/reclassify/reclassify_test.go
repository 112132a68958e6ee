package reclassify

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"triagebot/internal/domain"
	"triagebot/internal/storage/sqlite"
	"triagebot/internal/triage"
)

type fakeNotifier struct {
	events []domain.Feedback
	err    error
}

func (f *fakeNotifier) SeverityEscalated(fb domain.Feedback, result domain.Classification) error {
	f.events = append(f.events, fb)
	return f.err
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.InitDB(filepath.Join(t.TempDir(), "triage.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunPending(t *testing.T) {
	db := testDB(t)
	highID, err := sqlite.InsertFeedback(db, domain.Feedback{
		Title:       "Cháy nhà nghiêm trọng",
		Description: "Có người phải nhập viện cấp cứu",
	})
	if err != nil {
		t.Fatalf("InsertFeedback: %v", err)
	}
	if _, err := sqlite.InsertFeedback(db, domain.Feedback{
		Title:       "Đề nghị cắt tỉa cây xanh",
		Description: "Cành cây hơi rậm rạp",
	}); err != nil {
		t.Fatalf("InsertFeedback: %v", err)
	}

	notifier := &fakeNotifier{}
	job := NewJob(db, triage.NewClassifier(nil, nil, nil, nil), notifier, "", 10, nil)

	result := job.RunPending(context.Background())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if result.Processed != 2 {
		t.Fatalf("expected 2 processed, got %d", result.Processed)
	}
	if result.Escalations != 1 {
		t.Fatalf("expected 1 escalation, got %d", result.Escalations)
	}
	if len(notifier.events) != 1 || notifier.events[0].ID != highID {
		t.Fatalf("expected one alert for feedback %d, got %+v", highID, notifier.events)
	}

	// Everything is classified now; the next sweep is a no-op.
	again := job.RunPending(context.Background())
	if again.Processed != 0 {
		t.Fatalf("expected empty second sweep, got %+v", again)
	}
}

func TestRunFullDoesNotReAlert(t *testing.T) {
	db := testDB(t)
	if _, err := sqlite.InsertFeedback(db, domain.Feedback{
		Title:       "Cháy nhà nghiêm trọng",
		Description: "Có người phải nhập viện cấp cứu",
	}); err != nil {
		t.Fatalf("InsertFeedback: %v", err)
	}

	notifier := &fakeNotifier{}
	job := NewJob(db, triage.NewClassifier(nil, nil, nil, nil), notifier, "", 10, nil)

	first := job.RunFull(context.Background())
	if first.Escalations != 1 {
		t.Fatalf("expected escalation on first sweep, got %+v", first)
	}

	second := job.RunFull(context.Background())
	if second.Processed != 1 {
		t.Fatalf("expected the row re-processed, got %+v", second)
	}
	if second.Escalations != 0 || len(notifier.events) != 1 {
		t.Fatalf("already-high rows must not re-alert: %+v, events %d", second, len(notifier.events))
	}
}

func TestRunPendingWithoutNotifier(t *testing.T) {
	db := testDB(t)
	if _, err := sqlite.InsertFeedback(db, domain.Feedback{
		Title:       "Cháy nhà nghiêm trọng",
		Description: "Khẩn cấp",
	}); err != nil {
		t.Fatalf("InsertFeedback: %v", err)
	}

	job := NewJob(db, triage.NewClassifier(nil, nil, nil, nil), nil, "", 10, nil)
	result := job.RunPending(context.Background())
	if result.Processed != 1 || result.Escalations != 1 {
		t.Fatalf("expected escalation counted without a notifier, got %+v", result)
	}
}

func TestClassifyItemsCanceledContext(t *testing.T) {
	db := testDB(t)
	if _, err := sqlite.InsertFeedback(db, domain.Feedback{Title: "a", Description: "b"}); err != nil {
		t.Fatalf("InsertFeedback: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewJob(db, triage.NewClassifier(nil, nil, nil, nil), nil, "", 10, nil)
	result := job.RunPending(ctx)
	if result.Processed != 0 {
		t.Fatalf("expected no rows processed after cancel, got %+v", result)
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected the cancellation surfaced in Errors")
	}
}

func TestFormatSummary(t *testing.T) {
	plain := FormatSummary(Result{Processed: 3})
	if plain != "3 classified" {
		t.Fatalf("unexpected summary %q", plain)
	}

	escalated := FormatSummary(Result{Processed: 5, Escalations: 2})
	if !strings.Contains(escalated, "2 escalated to high") {
		t.Fatalf("unexpected summary %q", escalated)
	}

	withErrors := FormatSummary(Result{Processed: 1, Errors: []string{"feedback 7: boom"}})
	if !strings.Contains(withErrors, "Warnings:") || !strings.Contains(withErrors, "feedback 7: boom") {
		t.Fatalf("unexpected summary %q", withErrors)
	}
}

func TestStartSchedulerInvalidSpec(t *testing.T) {
	db := testDB(t)
	job := NewJob(db, triage.NewClassifier(nil, nil, nil, nil), nil, "", 10, nil)

	if err := StartScheduler(job, time.UTC, "not a cron spec", "0 3 * * *", nil); err == nil {
		t.Fatal("expected an error for an invalid pending schedule")
	}
	if err := StartScheduler(job, time.UTC, "*/5 * * * *", "@nope", nil); err == nil {
		t.Fatal("expected an error for an invalid resweep schedule")
	}
}

func TestStartScheduler(t *testing.T) {
	db := testDB(t)
	job := NewJob(db, triage.NewClassifier(nil, nil, nil, nil), nil, "", 10, nil)

	if err := StartScheduler(job, time.UTC, "*/5 * * * *", "0 3 * * *", nil); err != nil {
		t.Fatalf("StartScheduler: %v", err)
	}
}
