package economy

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
)

func TestDepositWithdraw_TotalPreserved(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	result, err := engine.Deposit(ctx, "42", 70)
	require.NoError(t, err)
	assert.Equal(t, int64(30), result.Wallet)
	assert.Equal(t, int64(70), result.Bank)

	result, err = engine.Withdraw(ctx, "42", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(80), result.Wallet)
	assert.Equal(t, int64(20), result.Bank)

	assert.Equal(t, int64(100), result.Wallet+result.Bank)
}

func TestDeposit_Invalid(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name   string
		amount int64
	}{
		{name: "zero", amount: 0},
		{name: "negative", amount: -10},
		{name: "exceeds wallet", amount: 101},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			engine := testEngine(store, &scriptSource{})

			_, err := engine.Deposit(ctx, "42", tc.amount)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindInvalidAmount, apperrors.KindOf(err))
			assert.Equal(t, int64(100), store.saved("42").Wallet)
		})
	}
}

func TestWithdraw_ExceedsBank(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	_, err := engine.Deposit(ctx, "42", 40)
	require.NoError(t, err)

	_, err = engine.Withdraw(ctx, "42", 41)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidAmount, apperrors.KindOf(err))
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	_, err := engine.Deposit(ctx, "alice", 80)
	require.NoError(t, err)
	_, err = engine.Balance(ctx, "bob")
	require.NoError(t, err)

	result, err := engine.Transfer(ctx, "alice", "bob", 50)
	require.NoError(t, err)

	assert.Equal(t, int64(30), result.SenderBank)
	assert.Equal(t, int64(50), store.saved("bob").Bank)

	assert.Contains(t, store.saved("alice").History[len(store.saved("alice").History)-1], "Transferred 50 to bob")
	assert.Contains(t, store.saved("bob").History[0], "Received transfer of 50 from alice")
}

func TestTransfer_InsufficientBankRejectedBeforeMutation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	_, err := engine.Deposit(ctx, "alice", 20)
	require.NoError(t, err)

	_, err = engine.Transfer(ctx, "alice", "bob", 50)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidAmount, apperrors.KindOf(err))

	assert.Equal(t, int64(20), store.saved("alice").Bank)
	assert.Equal(t, int64(0), store.saved("bob").Bank)
}

func TestTransfer_ToSelfKeepsBalance(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	_, err := engine.Deposit(ctx, "alice", 80)
	require.NoError(t, err)

	result, err := engine.Transfer(ctx, "alice", "alice", 30)
	require.NoError(t, err)

	assert.Equal(t, int64(80), result.SenderBank)
	assert.Equal(t, int64(80), store.saved("alice").Bank)
}

func TestTakeLoan_InterestAccrues(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	result, err := engine.TakeLoan(ctx, "42", 100)
	require.NoError(t, err)

	assert.Equal(t, int64(200), result.Wallet)
	assert.InDelta(t, 110.0, result.Loan, 1e-9)

	result, err = engine.TakeLoan(ctx, "42", 100)
	require.NoError(t, err)
	assert.InDelta(t, 220.0, result.Loan, 1e-9)
}

func TestTakeLoan_InvalidAmount(t *testing.T) {
	engine := testEngine(newFakeStore(), &scriptSource{})

	_, err := engine.TakeLoan(context.Background(), "42", 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidAmount, apperrors.KindOf(err))
}

func TestTakeLoan_WalletOverflowRejected(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	_, err := engine.TakeLoan(ctx, "42", math.MaxInt64/2)
	require.NoError(t, err)

	_, err = engine.TakeLoan(ctx, "42", math.MaxInt64/2)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidAmount, apperrors.KindOf(err))

	saved := store.saved("42")
	assert.Equal(t, int64(100)+math.MaxInt64/2, saved.Wallet)
	assert.GreaterOrEqual(t, saved.Wallet, int64(0))
}

func TestRepay(t *testing.T) {
	ctx := context.Background()

	t.Run("partial repayment", func(t *testing.T) {
		store := newFakeStore()
		engine := testEngine(store, &scriptSource{})

		_, err := engine.TakeLoan(ctx, "42", 100)
		require.NoError(t, err)

		result, err := engine.Repay(ctx, "42", 50)
		require.NoError(t, err)

		assert.Equal(t, int64(150), result.Wallet)
		assert.InDelta(t, 60.0, result.Loan, 1e-9)
		assert.InDelta(t, 50.0, result.Applied, 1e-9)
	})

	t.Run("overpayment clamps to debt", func(t *testing.T) {
		store := newFakeStore()
		engine := testEngine(store, &scriptSource{})

		_, err := engine.TakeLoan(ctx, "42", 100)
		require.NoError(t, err)

		result, err := engine.Repay(ctx, "42", 200)
		require.NoError(t, err)

		assert.Zero(t, result.Loan)
		assert.InDelta(t, 110.0, result.Applied, 1e-9)
		assert.Equal(t, int64(90), result.Wallet)
	})

	t.Run("amount above wallet rejected", func(t *testing.T) {
		store := newFakeStore()
		engine := testEngine(store, &scriptSource{})

		_, err := engine.TakeLoan(ctx, "42", 100)
		require.NoError(t, err)

		_, err = engine.Repay(ctx, "42", 201)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindInvalidAmount, apperrors.KindOf(err))
	})

	t.Run("repay with no loan applies nothing", func(t *testing.T) {
		store := newFakeStore()
		engine := testEngine(store, &scriptSource{})

		result, err := engine.Repay(ctx, "42", 50)
		require.NoError(t, err)

		assert.Zero(t, result.Applied)
		assert.Zero(t, result.Loan)
		assert.Equal(t, int64(100), result.Wallet)
	})
}

func TestClaimInterest(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	_, err := engine.Deposit(ctx, "42", 90)
	require.NoError(t, err)

	result, err := engine.ClaimInterest(ctx, "42")
	require.NoError(t, err)

	assert.Equal(t, int64(4), result.Earned)
	assert.Equal(t, int64(94), result.Bank)

	// no cooldown: an immediate second claim compounds
	result, err = engine.ClaimInterest(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Earned)
	assert.Equal(t, int64(98), result.Bank)
}

func TestClaimInterest_EmptyBank(t *testing.T) {
	engine := testEngine(newFakeStore(), &scriptSource{})

	result, err := engine.ClaimInterest(context.Background(), "42")
	require.NoError(t, err)

	assert.Zero(t, result.Earned)
	assert.Zero(t, result.Bank)
}
