package market

import (
	"github.com/google/uuid"

	"github.com/kalepail/smol-sc/internal/pubsub"
)

// Notification topics, one per observable marketplace action. Consumed
// externally (an event forwarder, an indexer); never load-bearing for
// correctness.
const (
	TopicColorClaim           pubsub.EventType = "color_claim"
	TopicColorOwnerTransfer   pubsub.EventType = "color_owner_transfer"
	TopicGlyphMint            pubsub.EventType = "glyph_mint"
	TopicGlyphOwnerTransfer   pubsub.EventType = "glyph_owner_transfer"
	TopicOfferSellGlyph       pubsub.EventType = "offer_sell_glyph"
	TopicOfferSellAsset       pubsub.EventType = "offer_sell_asset"
	TopicOfferSellGlyphRemove pubsub.EventType = "offer_sell_glyph_remove"
	TopicOfferSellAssetRemove pubsub.EventType = "offer_sell_asset_remove"
	TopicRoyaltiesClaim       pubsub.EventType = "royalties_claim"
)

// Notification is the payload published for every marketplace event.
type Notification struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// note is an event staged during an operation and published only after the
// transaction commits; a rolled-back operation emits nothing.
type note struct {
	topic pubsub.EventType
	data  map[string]any
}

func (m *Marketplace) publish(notes []note) {
	if m.events == nil {
		return
	}
	for _, n := range notes {
		m.events.Publish(n.topic, Notification{ID: uuid.NewString(), Data: n.data})
	}
}
