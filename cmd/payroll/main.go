// Command payroll generates payslips for one month and exits. It is meant for
// cron or other external schedulers; re-running a period only fills gaps.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hrms/internal/app/server"
	"hrms/internal/platform/config"
	"hrms/internal/platform/db"
	"hrms/internal/platform/jobs"
	"hrms/internal/platform/logging"
)

func main() {
	month := flag.Int("month", 0, "payroll month 1-12 (default: current month)")
	year := flag.Int("year", 0, "payroll year (default: current year)")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger, *month, *year); err != nil {
		logger.Error("payroll run failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, month, year int) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	svc := server.NewPayrollService(pool)
	result, err := jobs.New(pool).RunNow(ctx, jobs.JobPayrollRun, func(ctx context.Context) (any, error) {
		return svc.Run(ctx, month, year)
	})
	if err != nil {
		return err
	}
	logger.Info("payroll run finished", "result", result)
	return nil
}
