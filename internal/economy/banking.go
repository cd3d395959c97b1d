package economy

import (
	"context"
	"math"

	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
)

// Deposit moves amount from wallet to bank.
func (e *Engine) Deposit(ctx context.Context, userID string, amount int64) (*BalanceResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 || amount > ledger.Wallet {
		return nil, apperrors.NewInvalidAmount(amount)
	}

	ledger.Wallet -= amount
	ledger.Bank += amount
	e.addHistory(ledger, "Deposited %d", amount)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &BalanceResult{Wallet: ledger.Wallet, Bank: ledger.Bank}, nil
}

// Withdraw moves amount from bank to wallet.
func (e *Engine) Withdraw(ctx context.Context, userID string, amount int64) (*BalanceResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 || amount > ledger.Bank {
		return nil, apperrors.NewInvalidAmount(amount)
	}

	ledger.Bank -= amount
	ledger.Wallet += amount
	e.addHistory(ledger, "Withdrew %d", amount)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &BalanceResult{Wallet: ledger.Wallet, Bank: ledger.Bank}, nil
}

// Transfer moves amount between two users' bank balances as one atomic unit:
// either both ledgers persist or neither does.
func (e *Engine) Transfer(ctx context.Context, fromID, toID string, amount int64) (*TransferResult, error) {
	unlock := e.locks.Lock(fromID, toID)
	defer unlock()

	sender, receiver, err := e.loadPair(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 || amount > sender.Bank {
		return nil, apperrors.NewInvalidAmount(amount)
	}

	sender.Bank -= amount
	receiver.Bank += amount

	e.addHistory(sender, "Transferred %d to %s", amount, toID)
	if sender != receiver {
		e.addHistory(receiver, "Received transfer of %d from %s", amount, fromID)
	}

	if err := e.persist(ctx, sender, receiver); err != nil {
		return nil, err
	}

	return &TransferResult{
		From:       fromID,
		To:         toID,
		Amount:     amount,
		SenderBank: sender.Bank,
	}, nil
}

// TakeLoan credits amount to the wallet and adds amount plus interest to the
// outstanding loan. Loans are cumulative; each draw accrues its own interest.
func (e *Engine) TakeLoan(ctx context.Context, userID string, amount int64) (*LoanResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 || amount > math.MaxInt64-ledger.Wallet {
		return nil, apperrors.NewInvalidAmount(amount)
	}

	ledger.Wallet += amount
	ledger.Loan += float64(amount) * (1 + e.cfg.LoanInterestRate)
	e.addHistory(ledger, "Took loan of %d", amount)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &LoanResult{
		Wallet:  ledger.Wallet,
		Loan:    ledger.Loan,
		Applied: float64(amount),
	}, nil
}

// Repay pays min(amount, loan) from the wallet against the loan, so the loan
// never goes below zero and a repayment never exceeds the debt. The wallet is
// integral; the debit rounds the applied repayment to the nearest whole unit
// while the loan keeps its fractional precision.
func (e *Engine) Repay(ctx context.Context, userID string, amount int64) (*LoanResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 || amount > ledger.Wallet {
		return nil, apperrors.NewInvalidAmount(amount)
	}

	repayment := math.Min(float64(amount), ledger.Loan)
	ledger.Wallet -= int64(math.Round(repayment))
	ledger.Loan -= repayment
	if ledger.Loan < 0 {
		ledger.Loan = 0
	}
	e.addHistory(ledger, "Repaid %.2f loan", repayment)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &LoanResult{
		Wallet:  ledger.Wallet,
		Loan:    ledger.Loan,
		Applied: repayment,
	}, nil
}

// ClaimInterest credits floor(bank * rate) to the bank. There is no cooldown:
// repeated claims keep compounding, matching the reference behavior.
func (e *Engine) ClaimInterest(ctx context.Context, userID string) (*InterestResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	earned := int64(math.Floor(float64(ledger.Bank) * e.cfg.BankInterestRate))
	ledger.Bank += earned
	e.addHistory(ledger, "Claimed interest %d", earned)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &InterestResult{Earned: earned, Bank: ledger.Bank}, nil
}
