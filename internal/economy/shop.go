package economy

import (
	"context"

	"github.com/dmikhr/coinpurse-bot/internal/catalog"
	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
)

// ListShop returns the shop catalog in its defined order.
func (e *Engine) ListShop() []catalog.Item {
	return e.cat.Items()
}

// BuyItem debits the catalog price and appends the item to the inventory.
// Duplicates are allowed; the inventory is an ordered multiset.
func (e *Engine) BuyItem(ctx context.Context, userID, item string) (*PurchaseResult, error) {
	price, ok := e.cat.Price(item)
	if !ok {
		return nil, apperrors.NewUnknownItem(item)
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if ledger.Wallet < price {
		return nil, apperrors.NewInsufficientFunds(price, ledger.Wallet)
	}

	ledger.Wallet -= price
	ledger.Inventory = append(ledger.Inventory, item)
	e.addHistory(ledger, "Bought item: %s", item)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &PurchaseResult{Item: item, Price: price, Wallet: ledger.Wallet}, nil
}

// SellItem removes exactly one occurrence of the item and credits half the
// catalog price, or half the fallback value for items no longer listed.
func (e *Engine) SellItem(ctx context.Context, userID, item string) (*SaleResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !ledger.HasItem(item) {
		return nil, apperrors.NewItemNotOwned(item)
	}

	price, ok := e.cat.Price(item)
	if !ok {
		price = e.cfg.FallbackItemValue
	}
	value := price / 2

	ledger.RemoveItem(item)
	ledger.Wallet += value
	e.addHistory(ledger, "Sold item: %s", item)

	if err := e.persist(ctx, ledger); err != nil {
		return nil, err
	}

	return &SaleResult{Item: item, Value: value, Wallet: ledger.Wallet}, nil
}

// UseItem records the use of an owned item. Using an item has no mechanical
// effect beyond the history entry; the hook exists for future item effects.
func (e *Engine) UseItem(ctx context.Context, userID, item string) error {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return err
	}

	if !ledger.HasItem(item) {
		return apperrors.NewItemNotOwned(item)
	}

	e.addHistory(ledger, "Used item: %s", item)

	return e.persist(ctx, ledger)
}

// Inventory returns the user's items as currently held, duplicates included,
// in insertion order.
func (e *Engine) Inventory(ctx context.Context, userID string) ([]string, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ledger.Inventory, nil
}
