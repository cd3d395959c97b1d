package economy

import (
	"context"
	"log/slog"
	"math"

	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
	"github.com/dmikhr/coinpurse-bot/pkg/metrics"
)

// BuyTickets debits count*ticket price from the wallet and adds the tickets
// to the current draw period.
func (e *Engine) BuyTickets(ctx context.Context, userID string, count int) (*TicketsResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if count <= 0 || e.cfg.TicketPrice <= 0 || int64(count) > math.MaxInt64/e.cfg.TicketPrice {
		return nil, apperrors.NewInvalidTicketCount(count)
	}

	cost := int64(count) * e.cfg.TicketPrice
	if ledger.Wallet < cost {
		return nil, apperrors.NewInvalidTicketCount(count)
	}

	ledger.Wallet -= cost
	ledger.LotteryTickets += count
	e.addHistory(ledger, "Bought %d lottery tickets", count)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &TicketsResult{
		Bought:  count,
		Cost:    cost,
		Tickets: ledger.LotteryTickets,
		Wallet:  ledger.Wallet,
	}, nil
}

// Draw picks a winner uniformly among all known users and credits the fixed
// prize to their wallet. Ticket counts do not weight the draw and are not
// consumed. Authorization is the transport adapter's job: the engine performs
// the draw unconditionally.
func (e *Engine) Draw(ctx context.Context) (*DrawResult, error) {
	ids, err := e.store.UserIDs(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	if len(ids) == 0 {
		return nil, apperrors.NewNoParticipants()
	}

	winnerID := ids[e.rng.Pick(len(ids))]

	unlock := e.locks.Lock(winnerID)
	defer unlock()

	winner, err := e.load(ctx, winnerID)
	if err != nil {
		return nil, err
	}

	winner.Wallet += e.cfg.LotteryPrize
	e.addHistory(winner, "Won lottery prize of %d", e.cfg.LotteryPrize)

	if err := e.persist(ctx, winner); err != nil {
		return nil, err
	}

	metrics.RecordLotteryPrize(e.cfg.LotteryPrize)

	e.log.Info("lottery drawn",
		slog.String("winner_id", winnerID),
		slog.Int64("prize", e.cfg.LotteryPrize),
	)

	return &DrawResult{WinnerID: winnerID, Prize: e.cfg.LotteryPrize}, nil
}
