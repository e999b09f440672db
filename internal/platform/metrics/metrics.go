package metrics

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Collector keeps process-lifetime counters for HTTP traffic and payroll runs.
type Collector struct {
	requests        atomic.Uint64
	serverErrors    atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64

	payrollRuns      atomic.Uint64
	payslipsCreated  atomic.Uint64
	payslipsSkipped  atomic.Uint64
	payslipsErrored  atomic.Uint64
	lastRunUnixMilli atomic.Int64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.requests.Add(1)
	switch {
	case status >= http.StatusInternalServerError:
		c.serverErrors.Add(1)
	case status == http.StatusTooManyRequests:
		c.rateLimited.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

// RecordPayrollRun adds the tallies of one completed batch run.
func (c *Collector) RecordPayrollRun(generated, skipped, errored int) {
	c.payrollRuns.Add(1)
	c.payslipsCreated.Add(uint64(generated))
	c.payslipsSkipped.Add(uint64(skipped))
	c.payslipsErrored.Add(uint64(errored))
	c.lastRunUnixMilli.Store(time.Now().UnixMilli())
}

func (c *Collector) Snapshot() map[string]any {
	total := c.requests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	out := map[string]any{
		"requestsTotal":        total,
		"errorsTotal":          c.serverErrors.Load(),
		"rateLimitedTotal":     c.rateLimited.Load(),
		"avgDurationMs":        avg,
		"payrollRunsTotal":     c.payrollRuns.Load(),
		"payslipsGenerated":    c.payslipsCreated.Load(),
		"payslipsSkipped":      c.payslipsSkipped.Load(),
		"payslipsErrored":      c.payslipsErrored.Load(),
		"payrollLastRunAtUnix": int64(0),
	}
	if last := c.lastRunUnixMilli.Load(); last > 0 {
		out["payrollLastRunAtUnix"] = last / 1000
	}
	return out
}
