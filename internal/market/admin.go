package market

import (
	"context"

	"github.com/kalepail/smol-sc/internal/storage"
)

// Singleton configuration owned by the administration surface: fee routing
// and the two royalty rates. The engine reads these on every sale; an unset
// value surfaces as ErrNotInitialized.

// InitConfig carries the initial marketplace configuration.
type InitConfig struct {
	Admin           Principal
	FeeAsset        Asset
	FeeRecipient    Principal
	ColorClaimFee   Amount
	ColorOwnerRate  int64
	GlyphAuthorRate int64
}

// ConfigUpdate overwrites only the fields that are non-nil.
type ConfigUpdate struct {
	Admin           *Principal
	FeeAsset        *Asset
	FeeRecipient    *Principal
	ColorClaimFee   *Amount
	ColorOwnerRate  *int64
	GlyphAuthorRate *int64
}

type royaltyRates struct {
	author     int64
	colorOwner int64
}

func readRates(tx storage.Tx) (royaltyRates, error) {
	author, ok, err := storage.GetJSON[int64](tx, keyAuthorRate())
	if err != nil {
		return royaltyRates{}, err
	}
	if !ok {
		return royaltyRates{}, ErrNotInitialized
	}
	colorOwner, ok, err := storage.GetJSON[int64](tx, keyColorRate())
	if err != nil {
		return royaltyRates{}, err
	}
	if !ok {
		return royaltyRates{}, ErrNotInitialized
	}
	return royaltyRates{author: author, colorOwner: colorOwner}, nil
}

// Initialize persists the singleton configuration. Fails with
// ErrAlreadyInitialized once an admin is set. Rate validation (for example
// that the two rates sum to at most 100) is deliberately the admin's
// responsibility; the engine does not clamp.
func (m *Marketplace) Initialize(ctx context.Context, cfg InitConfig) error {
	ctx, span := m.startSpan(ctx, "initialize")
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.Update(func(tx storage.Tx) error {
		has, err := tx.Has(keyAdmin())
		if err != nil {
			return err
		}
		if has {
			return ErrAlreadyInitialized
		}
		if err := storage.SetJSON(tx, keyAdmin(), cfg.Admin); err != nil {
			return err
		}
		if err := storage.SetJSON(tx, keyFeeAsset(), cfg.FeeAsset); err != nil {
			return err
		}
		if err := storage.SetJSON(tx, keyFeeRecipient(), cfg.FeeRecipient); err != nil {
			return err
		}
		if err := storage.SetJSON(tx, keyColorFee(), cfg.ColorClaimFee); err != nil {
			return err
		}
		if err := storage.SetJSON(tx, keyColorRate(), cfg.ColorOwnerRate); err != nil {
			return err
		}
		return storage.SetJSON(tx, keyAuthorRate(), cfg.GlyphAuthorRate)
	})
}

// UpdateConfig overwrites the provided fields after authorizing the current
// admin.
func (m *Marketplace) UpdateConfig(ctx context.Context, upd ConfigUpdate) error {
	ctx, span := m.startSpan(ctx, "update_config")
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.Update(func(tx storage.Tx) error {
		admin, ok, err := storage.GetJSON[Principal](tx, keyAdmin())
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInitialized
		}
		if err := m.auth.RequireAuth(ctx, admin); err != nil {
			return err
		}

		if upd.Admin != nil {
			if err := storage.SetJSON(tx, keyAdmin(), *upd.Admin); err != nil {
				return err
			}
		}
		if upd.FeeAsset != nil {
			if err := storage.SetJSON(tx, keyFeeAsset(), *upd.FeeAsset); err != nil {
				return err
			}
		}
		if upd.FeeRecipient != nil {
			if err := storage.SetJSON(tx, keyFeeRecipient(), *upd.FeeRecipient); err != nil {
				return err
			}
		}
		if upd.ColorClaimFee != nil {
			if err := storage.SetJSON(tx, keyColorFee(), *upd.ColorClaimFee); err != nil {
				return err
			}
		}
		if upd.ColorOwnerRate != nil {
			if err := storage.SetJSON(tx, keyColorRate(), *upd.ColorOwnerRate); err != nil {
				return err
			}
		}
		if upd.GlyphAuthorRate != nil {
			if err := storage.SetJSON(tx, keyAuthorRate(), *upd.GlyphAuthorRate); err != nil {
				return err
			}
		}
		return nil
	})
}
