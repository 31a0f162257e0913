// Package reconcile runs the periodic ledger consistency check as an asynq task.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
	"github.com/keyurdhanani/store-management-project/internal/report"
)

const (
	QueueDefault  = "default"
	TaskReconcile = "ledger:reconcile"
)

type Payload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

func NewTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(Payload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskReconcile, body, asynq.Queue(QueueDefault)), nil
}

type Reconciler interface {
	Reconcile(ctx context.Context) ([]ledger.Drift, error)
}

// DriftRecorder publishes the drift count. *observability.Metrics satisfies it.
type DriftRecorder interface {
	SetDrift(n int)
}

// ReportWarmer refreshes cached reports after a check. *report.Service satisfies it.
type ReportWarmer interface {
	Invalidate(ctx context.Context)
	Dashboard(ctx context.Context) (report.Dashboard, error)
}

// Job compares every stock row against its batches. Drift is reported, never corrected.
type Job struct {
	ledger  Reconciler
	drift   DriftRecorder
	reports ReportWarmer
}

// NewJob builds the job. reports may be nil.
func NewJob(ledger Reconciler, drift DriftRecorder, reports ReportWarmer) *Job {
	return &Job{ledger: ledger, drift: drift, reports: reports}
}

// Run performs one check and, alongside it, refreshes the dashboard cache.
func (j *Job) Run(ctx context.Context) ([]ledger.Drift, error) {
	var drift []ledger.Drift

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		drift, err = j.ledger.Reconcile(ctx)
		if err != nil {
			return fmt.Errorf("reconciling ledger: %w", err)
		}

		if j.drift != nil {
			j.drift.SetDrift(len(drift))
		}

		return nil
	})

	if j.reports != nil {
		g.Go(func() error {
			j.reports.Invalidate(ctx)

			if _, err := j.reports.Dashboard(ctx); err != nil {
				slog.Warn("failed to warm dashboard", "error", err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return drift, nil
}

// Handle processes TaskReconcile tasks.
func (j *Job) Handle(ctx context.Context, t *asynq.Task) error {
	var payload Payload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding reconcile payload: %w", asynq.SkipRetry)
	}

	drift, err := j.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("ledger reconciled", "scheduled_for", payload.ScheduledFor, "drifting_products", len(drift))

	return nil
}
