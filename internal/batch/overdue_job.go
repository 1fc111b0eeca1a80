// Package batch holds the scheduled jobs the engine runs outside the request
// path.
package batch

import (
	"context"
	"log/slog"
	"time"

	"goldloan-engine/internal/domain/loan"
)

// OverdueSweepJob transitions every active loan past its maturity date to
// DEFAULTED. The sweep is idempotent: a rerun over the same state changes
// nothing, so a missed or doubled schedule tick is harmless.
type OverdueSweepJob struct {
	loanService loan.Service
	timeout     time.Duration
	logger      *slog.Logger
}

func NewOverdueSweepJob(loanService loan.Service, timeout time.Duration, logger *slog.Logger) *OverdueSweepJob {
	if loanService == nil || logger == nil {
		panic("OverdueSweepJob dependencies cannot be nil")
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &OverdueSweepJob{
		loanService: loanService,
		timeout:     timeout,
		logger:      logger.With("job", "OverdueSweep"),
	}
}

func (j *OverdueSweepJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting overdue loan sweep job.")

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	defaulted, err := j.loanService.ExpireOverdueLoans(ctx, time.Now())
	if err != nil {
		j.logger.ErrorContext(ctx, "Overdue loan sweep failed.", slog.Any("error", err))
		return err
	}

	j.logger.InfoContext(ctx, "Overdue loan sweep job finished.",
		slog.Int("defaulted", len(defaulted)),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
