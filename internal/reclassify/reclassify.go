// Package reclassify runs the scheduled triage sweeps: classify newly
// submitted feedback on a short interval, and periodically re-run the
// whole table so rule or model updates propagate. Severity never
// downgrades across sweeps; that invariant lives in the store.
package reclassify

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"triagebot/internal/domain"
	"triagebot/internal/storage/sqlite"
	"triagebot/internal/triage"
)

// Notifier receives escalation events. May be nil on a Job.
type Notifier interface {
	SeverityEscalated(fb domain.Feedback, result domain.Classification) error
}

// Result tracks separate counters for one sweep.
type Result struct {
	Processed   int
	Escalations int
	Errors      []string
}

type Job struct {
	db         *sql.DB
	classifier *triage.Classifier
	notifier   Notifier
	provider   string
	batchSize  int
	logger     *log.Logger
}

func NewJob(db *sql.DB, classifier *triage.Classifier, notifier Notifier, provider string, batchSize int, logger *log.Logger) *Job {
	if batchSize < 1 {
		batchSize = 100
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Job{
		db:         db,
		classifier: classifier,
		notifier:   notifier,
		provider:   provider,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// RunPending classifies feedback that has never been triaged.
func (j *Job) RunPending(ctx context.Context) Result {
	items, err := sqlite.GetPendingFeedback(j.db, j.batchSize)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("loading pending feedback: %v", err)}}
	}
	return j.classifyItems(ctx, items)
}

// RunFull re-classifies every stored feedback row.
func (j *Job) RunFull(ctx context.Context) Result {
	items, err := sqlite.GetAllFeedback(j.db)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("loading feedback: %v", err)}}
	}
	return j.classifyItems(ctx, items)
}

func (j *Job) classifyItems(ctx context.Context, items []domain.Feedback) Result {
	var result Result
	for _, fb := range items {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("sweep canceled: %v", ctx.Err()))
			return result
		}

		classification := j.classifier.Classify(ctx, fb.Title, fb.Description)
		applied, escalated, err := sqlite.ApplyClassification(j.db, fb.ID, classification, j.provider)
		if err != nil {
			j.logger.Printf("reclassify store error feedback=%d: %v", fb.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("feedback %d: %v", fb.ID, err))
			continue
		}
		result.Processed++

		if escalated {
			result.Escalations++
			if j.notifier != nil {
				if err := j.notifier.SeverityEscalated(fb, applied); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("alert for feedback %d: %v", fb.ID, err))
				}
			}
		}
	}
	return result
}

// FormatSummary returns a human-readable summary of a sweep Result.
func FormatSummary(result Result) string {
	msg := fmt.Sprintf("%d classified", result.Processed)
	if result.Escalations > 0 {
		msg += fmt.Sprintf(", %d escalated to high", result.Escalations)
	}
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\nWarnings:\n%s", strings.Join(result.Errors, "\n"))
	}
	return msg
}

// StartScheduler starts the two cron loops. Schedules are standard
// 5-field cron expressions (minute hour day-of-month month day-of-week).
// Examples: "*/5 * * * *" (every 5 minutes), "0 3 * * *" (daily 3am).
func StartScheduler(job *Job, loc *time.Location, pendingSchedule, resweepSchedule string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	pending, err := parser.Parse(strings.TrimSpace(pendingSchedule))
	if err != nil {
		return fmt.Errorf("invalid pending_schedule '%s': %w", pendingSchedule, err)
	}
	resweep, err := parser.Parse(strings.TrimSpace(resweepSchedule))
	if err != nil {
		return fmt.Errorf("invalid resweep_schedule '%s': %w", resweepSchedule, err)
	}

	logger.Printf("Triage sweeps scheduled (pending: %s, resweep: %s)", pendingSchedule, resweepSchedule)

	runLoop := func(name string, sched cron.Schedule, run func(context.Context) Result) {
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			time.Sleep(next.Sub(now))

			result := run(context.Background())
			logger.Printf("%s sweep complete: %s", name, FormatSummary(result))

			if stats, err := sqlite.GetTriageStats(job.db); err == nil {
				logger.Printf("triage stats total=%d pending=%d khieu_nai=%d phan_anh=%d low=%d medium=%d high=%d avg_confidence=%.2f",
					stats.Total, stats.Pending, stats.Grievances, stats.Reports,
					stats.SeverityLow, stats.SeverityMedium, stats.SeverityHigh, stats.AvgConfidence)
			}
		}
	}

	go runLoop("pending", pending, job.RunPending)
	go runLoop("resweep", resweep, job.RunFull)
	return nil
}
