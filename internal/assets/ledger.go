// Package assets provides a balance ledger backed by the same key-value
// store as the marketplace. It stands in for an external asset network in
// development and tests, behind the narrow transfer interface the market
// depends on.
package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kalepail/smol-sc/internal/log"
	"github.com/kalepail/smol-sc/internal/market"
	"github.com/kalepail/smol-sc/internal/storage"
)

var (
	// ErrInsufficientBalance rejects a transfer whose sender cannot cover it.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount rejects zero and negative transfer amounts.
	ErrInvalidAmount = errors.New("transfer amount must be positive")
)

const balancePrefix = "balance"

// Ledger tracks per-principal balances for each asset. It implements
// market.AssetTransferService.
type Ledger struct {
	mu    sync.Mutex
	store storage.Store
}

// NewLedger creates a ledger on top of the given store. The ledger keeps its
// keys under its own prefix, so it can share a store with the marketplace.
func NewLedger(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

func balanceKey(asset market.Asset, principal market.Principal) storage.Key {
	return storage.NewKey(balancePrefix, string(asset), string(principal))
}

// Mint credits amount to a principal out of thin air. Test and development
// scaffolding only.
func (l *Ledger) Mint(ctx context.Context, asset market.Asset, to market.Principal, amount market.Amount) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.store.Update(func(tx storage.Tx) error {
		balance, err := readBalance(tx, asset, to)
		if err != nil {
			return err
		}
		return writeBalance(tx, asset, to, balance+amount)
	})
}

// Transfer moves amount from one principal to another, failing if the
// sender's balance cannot cover it.
func (l *Ledger) Transfer(ctx context.Context, asset market.Asset, from, to market.Principal, amount market.Amount) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.Update(func(tx storage.Tx) error {
		fromBalance, err := readBalance(tx, asset, from)
		if err != nil {
			return err
		}
		if fromBalance < amount {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, from, fromBalance, amount)
		}

		toBalance, err := readBalance(tx, asset, to)
		if err != nil {
			return err
		}

		if err := writeBalance(tx, asset, from, fromBalance-amount); err != nil {
			return err
		}
		return writeBalance(tx, asset, to, toBalance+amount)
	})
	if err != nil {
		return err
	}

	log.Debug(log.CatAssets, "transfer applied", "asset", string(asset), "from", string(from), "to", string(to), "amount", amount)
	return nil
}

// Balance reports a principal's current balance for an asset.
func (l *Ledger) Balance(ctx context.Context, asset market.Asset, principal market.Principal) (market.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var balance market.Amount
	err := l.store.View(func(tx storage.Tx) error {
		var err error
		balance, err = readBalance(tx, asset, principal)
		return err
	})
	return balance, err
}

func readBalance(tx storage.Tx, asset market.Asset, principal market.Principal) (market.Amount, error) {
	balance, ok, err := storage.GetJSON[market.Amount](tx, balanceKey(asset, principal))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return balance, nil
}

func writeBalance(tx storage.Tx, asset market.Asset, principal market.Principal, balance market.Amount) error {
	key := balanceKey(asset, principal)
	if balance == 0 {
		return tx.Remove(key)
	}
	return storage.SetJSON(tx, key, balance)
}
