package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"hrms/internal/platform/querier"
	"hrms/internal/platform/requestctx"
)

const (
	JobPayrollRun = "payroll_run"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	queueSize = 32
)

var ErrQueueFull = errors.New("job queue full")

// Func is one unit of background work. The returned details are stored as JSON
// on the job_runs row.
type Func func(ctx context.Context) (any, error)

// PeriodFunc runs payroll for a calendar month.
type PeriodFunc func(ctx context.Context, month, year int) (any, error)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type Service struct {
	DB    querier.Querier
	Now   func() time.Time
	queue chan job
}

type job struct {
	Type string
	Run  Func
}

func New(db querier.Querier) *Service {
	return &Service{
		DB:    db,
		Now:   time.Now,
		queue: make(chan job, queueSize),
	}
}

// Start runs the worker until ctx is cancelled. With a positive interval the
// payroll for the current month is enqueued on every tick; repeated runs only
// create the payslips that are still missing.
func (s *Service) Start(ctx context.Context, interval time.Duration, payroll PeriodFunc) {
	go s.worker(ctx)
	if interval > 0 && payroll != nil {
		go s.schedulePayroll(ctx, interval, payroll)
	}
}

func (s *Service) Enqueue(jobType string, run Func) error {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return nil
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return ErrQueueFull
	}
}

// RunNow executes run synchronously and records it like a queued job.
func (s *Service) RunNow(ctx context.Context, jobType string, run Func) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) ListRuns(ctx context.Context, jobType string, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    WHERE ($1 = '' OR job_type = $1)
    ORDER BY started_at DESC
    LIMIT $2
  `, jobType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.JobType, &r.Status, &r.Details, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (details any, err error) {
	runID := s.recordStart(ctx, j.Type)
	ctx = requestctx.WithJobRunID(ctx, runID)

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("job panicked", "jobType", j.Type, "panic", rec)
			err = errors.New("job panicked")
		}
		s.recordFinish(ctx, runID, details, err)
	}()

	return j.Run(ctx)
}

func (s *Service) recordStart(ctx context.Context, jobType string) string {
	if s.DB == nil {
		return ""
	}
	var runID string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1, $2)
    RETURNING id
  `, jobType, StatusRunning).Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "jobType", jobType, "err", err)
		return ""
	}
	return runID
}

func (s *Service) recordFinish(ctx context.Context, runID string, details any, runErr error) {
	if runID == "" || s.DB == nil {
		return
	}
	status := StatusCompleted
	if runErr != nil {
		status = StatusFailed
		details = map[string]any{"error": runErr.Error(), "result": details}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		slog.Warn("job details marshal failed", "err", err)
		payload = []byte("{}")
	}
	if _, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, payload, runID); err != nil {
		slog.Warn("job run update failed", "runId", runID, "err", err)
	}
}

func (s *Service) schedulePayroll(ctx context.Context, interval time.Duration, payroll PeriodFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.Now()
			month, year := int(now.Month()), now.Year()
			_ = s.Enqueue(JobPayrollRun, func(ctx context.Context) (any, error) {
				return payroll(ctx, month, year)
			})
		}
	}
}
