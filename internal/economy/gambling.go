package economy

import (
	"context"

	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
	"github.com/dmikhr/coinpurse-bot/pkg/metrics"
)

var slotSymbols = [...]string{"🍒", "🍋", "🔔", "⭐", "💎"}

// Gamble stakes amount on a fair coin flip: win doubles the stake back into
// the wallet, lose forfeits it.
func (e *Engine) Gamble(ctx context.Context, userID string, amount int64) (*GambleResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 || amount > ledger.Wallet {
		return nil, apperrors.NewInvalidAmount(amount)
	}

	won := e.rng.CoinFlip()
	if won {
		ledger.Wallet += amount
		e.addHistory(ledger, "Gambled %d and won %d", amount, amount)
	} else {
		ledger.Wallet -= amount
		e.addHistory(ledger, "Gambled %d and lost %d", amount, amount)
	}

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	metrics.RecordGamble("coinflip", outcomeLabel(won))

	return &GambleResult{Won: won, Amount: amount, Wallet: ledger.Wallet}, nil
}

// Slots spins three independent symbols. Three of a kind pays the jackpot
// multiplier on the stake; anything else loses the stake. There are no
// partial-match tiers.
func (e *Engine) Slots(ctx context.Context, userID string, amount int64) (*SlotsResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 || amount > ledger.Wallet {
		return nil, apperrors.NewInvalidAmount(amount)
	}

	var symbols [3]string
	for i := range symbols {
		symbols[i] = slotSymbols[e.rng.Pick(len(slotSymbols))]
	}

	reel := symbols[0] + symbols[1] + symbols[2]
	jackpot := symbols[0] == symbols[1] && symbols[1] == symbols[2]

	var payout int64
	if jackpot {
		payout = amount * e.cfg.JackpotMultiplier
		ledger.Wallet += payout
		e.addHistory(ledger, "Played slots with %d and hit the jackpot %s winning %d", amount, reel, payout)
	} else {
		payout = -amount
		ledger.Wallet -= amount
		e.addHistory(ledger, "Played slots with %d and lost %s", amount, reel)
	}

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	metrics.RecordGamble("slots", outcomeLabel(jackpot))

	return &SlotsResult{
		Symbols: symbols,
		Jackpot: jackpot,
		Payout:  payout,
		Wallet:  ledger.Wallet,
	}, nil
}

// Rob attempts to steal from the target's wallet. Success moves a uniform cut
// of the target's wallet to the actor; failure fines the actor, clamped so
// the actor's wallet never goes negative, leaving the target untouched.
func (e *Engine) Rob(ctx context.Context, userID, targetID string) (*RobResult, error) {
	unlock := e.locks.Lock(userID, targetID)
	defer unlock()

	actor, target, err := e.loadPair(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	if target.Wallet <= 0 {
		return nil, apperrors.NewNothingToSteal()
	}

	if e.rng.CoinFlip() {
		stolen := e.rng.IntBetween(1, target.Wallet)
		target.Wallet -= stolen
		actor.Wallet += stolen

		e.addHistory(actor, "Robbery attempt: robbed %s for %d", targetID, stolen)
		if actor != target {
			e.addHistory(target, "Was robbed by %s for %d", userID, stolen)
		}

		if err := e.persist(ctx, actor, target); err != nil {
			return nil, err
		}

		metrics.RecordGamble("rob", "win")

		return &RobResult{Success: true, Amount: stolen, Wallet: actor.Wallet}, nil
	}

	fine := e.rng.IntBetween(e.cfg.RobFineMin, e.cfg.RobFineMax)
	paid := fine
	if paid > actor.Wallet {
		paid = actor.Wallet
	}
	actor.Wallet -= paid

	e.addHistory(actor, "Robbery attempt: failed and lost %d", paid)

	if err := e.persist(ctx, actor); err != nil {
		return nil, err
	}

	metrics.RecordGamble("rob", "loss")

	return &RobResult{Success: false, Amount: paid, Wallet: actor.Wallet}, nil
}

func outcomeLabel(won bool) string {
	if won {
		return "win"
	}

	return "loss"
}
