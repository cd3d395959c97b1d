package economy

import (
	"context"
	"log/slog"

	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
)

// ListJobs returns the job catalog in its defined order.
func (e *Engine) ListJobs() []string {
	return e.cat.Jobs()
}

// ChooseJob sets the user's job. Switching jobs always resets the level to 1.
func (e *Engine) ChooseJob(ctx context.Context, userID, job string) (*JobResult, error) {
	if _, ok := e.cat.JobPay(job); !ok {
		return nil, apperrors.NewInvalidJob(job)
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	ledger.Job = job
	ledger.JobLevel = 1
	e.addHistory(ledger, "Chose job: %s", job)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &JobResult{Job: ledger.Job, JobLevel: ledger.JobLevel}, nil
}

// Promote raises the user's job level by exactly one. There is no cost and no
// upper bound; promotion always succeeds once a job is held.
func (e *Engine) Promote(ctx context.Context, userID string) (*JobResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if ledger.Job == "" {
		return nil, apperrors.NewNoJob()
	}

	ledger.JobLevel++
	e.addHistory(ledger, "Promoted at %s to level %d", ledger.Job, ledger.JobLevel)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &JobResult{Job: ledger.Job, JobLevel: ledger.JobLevel}, nil
}

// Work draws earnings from the job's pay range, multiplied by the job level,
// and credits the wallet.
func (e *Engine) Work(ctx context.Context, userID string) (*WorkResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if ledger.Job == "" {
		return nil, apperrors.NewNoJob()
	}

	pay, ok := e.cat.JobPay(ledger.Job)
	if !ok {
		// The job was removed from the catalog after it was chosen.
		e.log.Warn("user holds a job missing from the catalog",
			slog.String("user_id", userID), slog.String("job", ledger.Job))
		return nil, apperrors.NewInvalidJob(ledger.Job)
	}

	earnings := e.rng.IntBetween(pay.Low, pay.High) * int64(ledger.JobLevel)
	ledger.Wallet += earnings
	e.addHistory(ledger, "Worked as %s and earned %d", ledger.Job, earnings)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &WorkResult{
		Job:      ledger.Job,
		JobLevel: ledger.JobLevel,
		Earnings: earnings,
		Wallet:   ledger.Wallet,
	}, nil
}
