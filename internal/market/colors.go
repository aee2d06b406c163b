package market

import "github.com/kalepail/smol-sc/internal/storage"

// ColorRegistry state: color value -> owning principal. Colors are never
// deleted; ownership only changes through an explicit transfer.

func colorOwner(tx storage.Tx, color uint32) (Principal, bool, error) {
	return storage.GetJSON[Principal](tx, keyColorOwner(color))
}

func setColorOwner(tx storage.Tx, color uint32, owner Principal) error {
	return storage.SetJSON(tx, keyColorOwner(color), owner)
}
