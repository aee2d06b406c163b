package market

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kalepail/smol-sc/internal/cachemanager"
	"github.com/kalepail/smol-sc/internal/log"
	"github.com/kalepail/smol-sc/internal/pubsub"
	"github.com/kalepail/smol-sc/internal/storage"
)

// DefaultCustody is the principal that holds escrowed offer funds and
// accrued-but-unclaimed royalties.
const DefaultCustody Principal = "marketplace"

// Marketplace orchestrates the registries, the offer books and the royalty
// ledger behind the public operations. One operation runs at a time; all of
// an operation's storage access happens inside a single transaction, so a
// failure at any step (including authorization and external transfers)
// leaves no partial state behind.
type Marketplace struct {
	mu      sync.Mutex
	store   storage.Store
	auth    AuthorizationProvider
	assets  AssetTransferService
	events  pubsub.Publisher[Notification]
	tracer  trace.Tracer
	custody Principal
	glyphs  *cachemanager.Cache[Glyph]
}

// Option configures a Marketplace.
type Option func(*Marketplace)

// WithEvents attaches the notification sink.
func WithEvents(pub pubsub.Publisher[Notification]) Option {
	return func(m *Marketplace) { m.events = pub }
}

// WithTracer attaches the tracer used to span every public operation.
func WithTracer(t trace.Tracer) Option {
	return func(m *Marketplace) { m.tracer = t }
}

// WithCustody overrides the custody principal.
func WithCustody(p Principal) Option {
	return func(m *Marketplace) { m.custody = p }
}

// New creates a Marketplace over the given store and external collaborators.
func New(store storage.Store, auth AuthorizationProvider, assets AssetTransferService, opts ...Option) *Marketplace {
	m := &Marketplace{
		store:   store,
		auth:    auth,
		assets:  assets,
		tracer:  noop.NewTracerProvider().Tracer("market"),
		custody: DefaultCustody,
		glyphs:  cachemanager.New[Glyph]("glyphs"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Custody reports the principal holding escrow and royalty funds.
func (m *Marketplace) Custody() Principal { return m.custody }

func (m *Marketplace) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "market."+op, trace.WithAttributes(attrs...))
}

// ColorClaim records owner as the owner of color and charges the configured
// claim fee to payer.
func (m *Marketplace) ColorClaim(ctx context.Context, payer, owner Principal, color uint32) error {
	ctx, span := m.startSpan(ctx, "color_claim", attribute.Int64("color", int64(color)))
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.Update(func(tx storage.Tx) error {
		if color > MaxColor {
			return ErrColorOutOfRange
		}
		if _, claimed, err := colorOwner(tx, color); err != nil {
			return err
		} else if claimed {
			return ErrColorAlreadyClaimed
		}
		if err := setColorOwner(tx, color, owner); err != nil {
			return err
		}

		feeRecipient, ok, err := storage.GetJSON[Principal](tx, keyFeeRecipient())
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInitialized
		}
		feeAmount, ok, err := storage.GetJSON[Amount](tx, keyColorFee())
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInitialized
		}
		feeAsset, ok, err := storage.GetJSON[Asset](tx, keyFeeAsset())
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInitialized
		}

		if err := m.auth.RequireAuth(ctx, payer); err != nil {
			return err
		}
		return m.assets.Transfer(ctx, feeAsset, payer, feeRecipient, feeAmount)
	})
	if err != nil {
		log.ErrorErr(log.CatMarket, "color claim failed", err, "color", color)
		return err
	}

	log.Info(log.CatMarket, "color claimed", "color", color, "owner", owner)
	m.publish([]note{{TopicColorClaim, map[string]any{"color": color, "owner": owner}}})
	return nil
}

// ColorOwnerGet returns the current owner of color.
func (m *Marketplace) ColorOwnerGet(ctx context.Context, color uint32) (Principal, error) {
	_, span := m.startSpan(ctx, "color_owner_get", attribute.Int64("color", int64(color)))
	defer span.End()

	var owner Principal
	err := m.store.View(func(tx storage.Tx) error {
		var ok bool
		var err error
		owner, ok, err = colorOwner(tx, color)
		if err != nil {
			return err
		}
		if !ok {
			return ErrColorNotClaimed
		}
		return nil
	})
	return owner, err
}

// ColorOwnerTransfer hands color to a new owner after authorizing the
// current one.
func (m *Marketplace) ColorOwnerTransfer(ctx context.Context, color uint32, to Principal) error {
	ctx, span := m.startSpan(ctx, "color_owner_transfer", attribute.Int64("color", int64(color)))
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.Update(func(tx storage.Tx) error {
		owner, ok, err := colorOwner(tx, color)
		if err != nil {
			return err
		}
		if !ok {
			return ErrColorNotClaimed
		}
		if err := m.auth.RequireAuth(ctx, owner); err != nil {
			return err
		}
		return setColorOwner(tx, color, to)
	})
	if err != nil {
		return err
	}

	m.publish([]note{{TopicColorOwnerTransfer, map[string]any{"color": color, "to": to}}})
	return nil
}

// GlyphMint registers a new glyph under the next identifier. Identity is the
// content hash of (pixels, width); minting the same pair twice fails with
// ErrGlyphAlreadyMinted. Title and story ride the mint notification only.
func (m *Marketplace) GlyphMint(ctx context.Context, author, owner Principal, pixels []byte, legend []uint32, width uint32, title, story string) (GlyphID, error) {
	_, span := m.startSpan(ctx, "glyph_mint", attribute.Int("pixels", len(pixels)))
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	var id GlyphID
	err := m.store.Update(func(tx storage.Tx) error {
		if len(pixels) > MaxGlyphPixels {
			return ErrGlyphTooBig
		}

		hash := GlyphHash(pixels, width)
		if has, err := tx.Has(keyGlyphHash(hash)); err != nil {
			return err
		} else if has {
			return ErrGlyphAlreadyMinted
		}

		var err error
		id, err = nextGlyphID(tx)
		if err != nil {
			return err
		}
		if err := storage.SetJSON(tx, keyGlyphHash(hash), id); err != nil {
			return err
		}
		glyph := Glyph{Author: author, Pixels: pixels, Legend: legend, Width: width}
		if err := storage.SetJSON(tx, keyGlyph(id), glyph); err != nil {
			return err
		}
		return setGlyphOwner(tx, id, owner)
	})
	if err != nil {
		return 0, err
	}

	log.Info(log.CatMarket, "glyph minted", "id", id, "author", author, "owner", owner)
	m.publish([]note{{TopicGlyphMint, map[string]any{
		"id": id, "owner": owner, "title": title, "story": story,
	}}})
	return id, nil
}

// GlyphGet returns the stored glyph record. Glyphs are immutable after mint,
// so hits are served from the read cache.
func (m *Marketplace) GlyphGet(ctx context.Context, id GlyphID) (Glyph, error) {
	_, span := m.startSpan(ctx, "glyph_get", attribute.Int64("glyph", int64(id)))
	defer span.End()

	cacheKey := strconv.FormatUint(uint64(id), 10)
	if glyph, ok := m.glyphs.Get(cacheKey); ok {
		return glyph, nil
	}

	var glyph Glyph
	err := m.store.View(func(tx storage.Tx) error {
		var ok bool
		var err error
		glyph, ok, err = glyphByID(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrGlyphNotMinted
		}
		return nil
	})
	if err != nil {
		return Glyph{}, err
	}
	m.glyphs.Set(cacheKey, glyph)
	return glyph, nil
}

// GlyphOwnerGet returns the current owner of the glyph.
func (m *Marketplace) GlyphOwnerGet(ctx context.Context, id GlyphID) (Principal, error) {
	_, span := m.startSpan(ctx, "glyph_owner_get", attribute.Int64("glyph", int64(id)))
	defer span.End()

	var owner Principal
	err := m.store.View(func(tx storage.Tx) error {
		var ok bool
		var err error
		owner, ok, err = glyphOwner(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrGlyphNotMinted
		}
		return nil
	})
	return owner, err
}

// GlyphOwnerTransfer hands the glyph to a new owner after authorizing the
// current one.
func (m *Marketplace) GlyphOwnerTransfer(ctx context.Context, id GlyphID, to Principal) error {
	ctx, span := m.startSpan(ctx, "glyph_owner_transfer", attribute.Int64("glyph", int64(id)))
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.Update(func(tx storage.Tx) error {
		owner, ok, err := glyphOwner(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrGlyphNotMinted
		}
		if err := m.auth.RequireAuth(ctx, owner); err != nil {
			return err
		}
		return setGlyphOwner(tx, id, to)
	})
	if err != nil {
		return err
	}

	m.publish([]note{{TopicGlyphOwnerTransfer, map[string]any{"id": id, "to": to}}})
	return nil
}

// OfferSellGlyph proposes to exchange glyph sell for buy (another glyph or
// an asset amount). If a counter-offer already exists the trade executes
// immediately and the new owner of sell is returned; otherwise the offer is
// recorded and nil is returned.
func (m *Marketplace) OfferSellGlyph(ctx context.Context, sell GlyphID, buy OfferBuy) (*Principal, error) {
	ctx, span := m.startSpan(ctx, "offer_sell_glyph", attribute.Int64("sell", int64(sell)))
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched *Principal
	err := m.store.Update(func(tx storage.Tx) error {
		seller, ok, err := glyphOwner(tx, sell)
		if err != nil {
			return err
		}
		if !ok {
			return ErrGlyphNotMinted
		}
		if err := m.auth.RequireAuth(ctx, seller); err != nil {
			return err
		}

		switch buy.Kind {
		case OfferGlyph:
			counterOffers, err := sellGlyphOffers(tx, buy.Glyph)
			if err != nil {
				return err
			}
			if _, found := searchSorted(counterOffers, BuyGlyph(sell), compareOffers); found {
				return m.matchGlyphForGlyph(tx, sell, seller, buy.Glyph, &matched)
			}
		case OfferAsset:
			queue, err := assetOfferQueue(tx, sell, buy.Asset, buy.Amount)
			if err != nil {
				return err
			}
			if len(queue) > 0 {
				return m.matchGlyphForAsset(tx, sell, seller, buy.Asset, buy.Amount, queue, &matched)
			}
		}

		// No match: record the offer in sorted order.
		offers, err := sellGlyphOffers(tx, sell)
		if err != nil {
			return err
		}
		rank, found := searchSorted(offers, buy, compareOffers)
		if found {
			return ErrOfferDuplicate
		}
		return setSellGlyphOffers(tx, sell, insertSorted(offers, rank, buy))
	})
	if err != nil {
		return nil, err
	}

	data := map[string]any{"sell": sell, "buy": buy}
	if matched != nil {
		data["matched"] = *matched
		log.Info(log.CatOffer, "sell-glyph offer matched", "sell", sell, "new_owner", *matched)
	} else {
		log.Debug(log.CatOffer, "sell-glyph offer recorded", "sell", sell)
	}
	m.publish([]note{{TopicOfferSellGlyph, data}})
	return matched, nil
}

// matchGlyphForGlyph executes a glyph-for-glyph swap: the reverse offer was
// found on other's book. Every open offer on either glyph becomes void, not
// just the matched one: offers are glyph-scoped, and the ownership change
// invalidates every outstanding promise.
func (m *Marketplace) matchGlyphForGlyph(tx storage.Tx, sell GlyphID, seller Principal, other GlyphID, matched **Principal) error {
	otherOwner, ok, err := glyphOwner(tx, other)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGlyphNotMinted
	}

	if err := setGlyphOwner(tx, sell, otherOwner); err != nil {
		return err
	}
	if err := setGlyphOwner(tx, other, seller); err != nil {
		return err
	}
	if err := removeSellGlyphOffers(tx, other); err != nil {
		return err
	}
	if err := removeSellGlyphOffers(tx, sell); err != nil {
		return err
	}
	*matched = &otherOwner
	return nil
}

// matchGlyphForAsset services the head of the escrowed-buyer queue: the
// lowest-ordered principal, not the first to arrive. The escrowed funds are
// already in custody, so they flow straight into the royalty split.
func (m *Marketplace) matchGlyphForAsset(tx storage.Tx, sell GlyphID, seller Principal, asset Asset, amount Amount, queue []Principal, matched **Principal) error {
	buyer := queue[0]

	glyph, ok, err := glyphByID(tx, sell)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGlyphNotMinted
	}
	rates, err := readRates(tx)
	if err != nil {
		return err
	}
	if err := distributeRoyalties(tx, rates, glyph, seller, asset, amount); err != nil {
		return err
	}
	if err := setGlyphOwner(tx, sell, buyer); err != nil {
		return err
	}
	if err := removeSellGlyphOffers(tx, sell); err != nil {
		return err
	}
	if err := setAssetOfferQueue(tx, sell, asset, amount, queue[1:]); err != nil {
		return err
	}
	*matched = &buyer
	return nil
}

// OfferSellAsset escrows amount of asset against glyph buy. If the glyph's
// owner already offered it for exactly (asset, amount) the trade executes
// immediately and true is returned; otherwise the caller joins the buyer
// queue and the funds stay in custody until a match or removal.
func (m *Marketplace) OfferSellAsset(ctx context.Context, seller Principal, asset Asset, amount Amount, buy GlyphID) (bool, error) {
	ctx, span := m.startSpan(ctx, "offer_sell_asset",
		attribute.Int64("buy", int64(buy)), attribute.Int64("amount", amount))
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	var isMatch bool
	err := m.store.Update(func(tx storage.Tx) error {
		glyphOwnerNow, ok, err := glyphOwner(tx, buy)
		if err != nil {
			return err
		}
		if !ok {
			return ErrGlyphNotMinted
		}
		if err := m.auth.RequireAuth(ctx, seller); err != nil {
			return err
		}

		offers, err := sellGlyphOffers(tx, buy)
		if err != nil {
			return err
		}
		if _, found := searchSorted(offers, BuyAsset(asset, amount), compareOffers); found {
			// Counter offer exists: run the split now. The payment into
			// custody is the final step, so a rolled-back match never holds
			// the buyer's funds.
			glyph, ok, err := glyphByID(tx, buy)
			if err != nil {
				return err
			}
			if !ok {
				return ErrGlyphNotMinted
			}
			rates, err := readRates(tx)
			if err != nil {
				return err
			}
			if err := distributeRoyalties(tx, rates, glyph, glyphOwnerNow, asset, amount); err != nil {
				return err
			}
			if err := setGlyphOwner(tx, buy, seller); err != nil {
				return err
			}
			if err := removeSellGlyphOffers(tx, buy); err != nil {
				return err
			}
			isMatch = true
			return m.assets.Transfer(ctx, asset, seller, m.custody, amount)
		}

		// No counter offer: queue up and escrow.
		queue, err := assetOfferQueue(tx, buy, asset, amount)
		if err != nil {
			return err
		}
		rank, found := searchSorted(queue, seller, comparePrincipals)
		if found {
			return ErrOfferDuplicate
		}
		if err := setAssetOfferQueue(tx, buy, asset, amount, insertSorted(queue, rank, seller)); err != nil {
			return err
		}
		return m.assets.Transfer(ctx, asset, seller, m.custody, amount)
	})
	if err != nil {
		return false, err
	}

	if isMatch {
		log.Info(log.CatOffer, "sell-asset offer matched", "buy", buy, "buyer", seller)
	} else {
		log.Debug(log.CatOffer, "sell-asset offer escrowed", "buy", buy, "buyer", seller)
	}
	m.publish([]note{{TopicOfferSellAsset, map[string]any{
		"buy": buy, "asset": asset, "amount": amount, "matched": isMatch,
	}}})
	return isMatch, nil
}

// OfferSellGlyphRemove withdraws one offer (buy non-nil) or every open offer
// on the glyph (buy nil).
func (m *Marketplace) OfferSellGlyphRemove(ctx context.Context, sell GlyphID, buy *OfferBuy) error {
	ctx, span := m.startSpan(ctx, "offer_sell_glyph_remove", attribute.Int64("sell", int64(sell)))
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.Update(func(tx storage.Tx) error {
		owner, ok, err := glyphOwner(tx, sell)
		if err != nil {
			return err
		}
		if !ok {
			return ErrGlyphNotMinted
		}
		if err := m.auth.RequireAuth(ctx, owner); err != nil {
			return err
		}

		if buy == nil {
			return removeSellGlyphOffers(tx, sell)
		}
		offers, err := sellGlyphOffers(tx, sell)
		if err != nil {
			return err
		}
		rank, found := searchSorted(offers, *buy, compareOffers)
		if !found {
			return ErrOfferNotFound
		}
		return setSellGlyphOffers(tx, sell, removeAt(offers, rank))
	})
	if err != nil {
		return err
	}

	m.publish([]note{{TopicOfferSellGlyphRemove, map[string]any{"sell": sell}}})
	return nil
}

// OfferSellAssetRemove withdraws a queued buyer and refunds exactly the
// escrowed amount to them.
func (m *Marketplace) OfferSellAssetRemove(ctx context.Context, seller Principal, asset Asset, amount Amount, buy GlyphID) error {
	ctx, span := m.startSpan(ctx, "offer_sell_asset_remove", attribute.Int64("buy", int64(buy)))
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.Update(func(tx storage.Tx) error {
		if err := m.auth.RequireAuth(ctx, seller); err != nil {
			return err
		}
		queue, err := assetOfferQueue(tx, buy, asset, amount)
		if err != nil {
			return err
		}
		rank, found := searchSorted(queue, seller, comparePrincipals)
		if !found {
			return ErrOfferNotFound
		}
		if err := setAssetOfferQueue(tx, buy, asset, amount, removeAt(queue, rank)); err != nil {
			return err
		}
		return m.assets.Transfer(ctx, asset, m.custody, seller, amount)
	})
	if err != nil {
		return err
	}

	m.publish([]note{{TopicOfferSellAssetRemove, map[string]any{
		"buy": buy, "asset": asset, "amount": amount, "seller": seller,
	}}})
	return nil
}

// OfferSellGlyphGet reports the rank of a specific offer (buy non-nil) or
// the number of open offers (buy nil). nil means not present / empty.
func (m *Marketplace) OfferSellGlyphGet(ctx context.Context, sell GlyphID, buy *OfferBuy) (*int, error) {
	_, span := m.startSpan(ctx, "offer_sell_glyph_get", attribute.Int64("sell", int64(sell)))
	defer span.End()

	var result *int
	err := m.store.View(func(tx storage.Tx) error {
		offers, err := sellGlyphOffers(tx, sell)
		if err != nil {
			return err
		}
		if buy != nil {
			if rank, found := searchSorted(offers, *buy, compareOffers); found {
				result = &rank
			}
			return nil
		}
		if len(offers) > 0 {
			n := len(offers)
			result = &n
		}
		return nil
	})
	return result, err
}

// OfferSellAssetGet reports the rank of a specific queued buyer (seller
// non-nil) or the queue length (seller nil). nil means not present / empty.
func (m *Marketplace) OfferSellAssetGet(ctx context.Context, seller *Principal, asset Asset, amount Amount, buy GlyphID) (*int, error) {
	_, span := m.startSpan(ctx, "offer_sell_asset_get", attribute.Int64("buy", int64(buy)))
	defer span.End()

	var result *int
	err := m.store.View(func(tx storage.Tx) error {
		queue, err := assetOfferQueue(tx, buy, asset, amount)
		if err != nil {
			return err
		}
		if seller != nil {
			if rank, found := searchSorted(queue, *seller, comparePrincipals); found {
				result = &rank
			}
			return nil
		}
		if len(queue) > 0 {
			n := len(queue)
			result = &n
		}
		return nil
	})
	return result, err
}

// RoyaltiesGet returns the claimable balance for (owner, asset); zero when
// nothing has accrued.
func (m *Marketplace) RoyaltiesGet(ctx context.Context, owner Principal, asset Asset) (Amount, error) {
	_, span := m.startSpan(ctx, "royalties_get")
	defer span.End()

	var balance Amount
	err := m.store.View(func(tx storage.Tx) error {
		var err error
		balance, err = royaltyBalance(tx, owner, asset)
		return err
	})
	return balance, err
}

// RoyaltiesClaim pays the full accrued balance out of custody and zeroes it.
func (m *Marketplace) RoyaltiesClaim(ctx context.Context, owner Principal, asset Asset) (Amount, error) {
	ctx, span := m.startSpan(ctx, "royalties_claim")
	defer span.End()
	m.mu.Lock()
	defer m.mu.Unlock()

	var claimed Amount
	err := m.store.Update(func(tx storage.Tx) error {
		balance, err := royaltyBalance(tx, owner, asset)
		if err != nil {
			return err
		}
		if balance == 0 {
			return ErrNoRoyaltiesToClaim
		}
		if err := m.assets.Transfer(ctx, asset, m.custody, owner, balance); err != nil {
			return err
		}
		if err := setRoyaltyBalance(tx, owner, asset, 0); err != nil {
			return err
		}
		claimed = balance
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info(log.CatRoyalty, "royalties claimed", "owner", owner, "asset", asset, "amount", claimed)
	m.publish([]note{{TopicRoyaltiesClaim, map[string]any{
		"owner": owner, "asset": asset, "amount": claimed,
	}}})
	return claimed, nil
}
