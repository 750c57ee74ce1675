// Package detect decides whether a sampled feed state differs from the last
// published one.
package detect

import (
	"slices"

	"garden_bot/internal/model"
)

// Active returns the entries whose window contains now, preserving order.
func Active(items []model.ItemEntry, now int64) []model.ItemEntry {
	var out []model.ItemEntry
	for _, it := range items {
		if it.ActiveAt(now) {
			out = append(out, it)
		}
	}
	return out
}

type itemKey struct {
	id       string
	quantity int
	hasQty   bool
}

func keyOf(e model.ItemEntry) itemKey {
	k := itemKey{id: e.ItemID}
	if e.Quantity != nil {
		k.quantity = *e.Quantity
		k.hasQty = true
	}
	return k
}

// ItemsChanged compares two entry sets by (item ID, quantity) only.
// Ordering, duplicates and metadata such as display names are ignored.
func ItemsChanged(cur, prev []model.ItemEntry) bool {
	return !sameSet(cur, prev, keyOf)
}

type catalogKey struct {
	id       string
	lastSeen int64
	seen     bool
}

func catalogKeyOf(e model.CatalogEntry) catalogKey {
	k := catalogKey{id: e.ItemID}
	if e.LastSeen != nil {
		k.lastSeen = *e.LastSeen
		k.seen = true
	}
	return k
}

// Observed returns the catalog entries that have been seen at least once.
func Observed(entries []model.CatalogEntry) []model.CatalogEntry {
	var out []model.CatalogEntry
	for _, e := range entries {
		if e.LastSeen != nil {
			out = append(out, e)
		}
	}
	return out
}

// CatalogChanged compares two catalogs by (item ID, last seen).
func CatalogChanged(cur, prev []model.CatalogEntry) bool {
	return !sameSet(cur, prev, catalogKeyOf)
}

func sameSet[T any, K comparable](a, b []T, key func(T) K) bool {
	left := make(map[K]struct{}, len(a))
	for _, v := range a {
		left[key(v)] = struct{}{}
	}
	right := make(map[K]struct{}, len(b))
	for _, v := range b {
		right[key(v)] = struct{}{}
	}
	if len(left) != len(right) {
		return false
	}
	for k := range left {
		if _, ok := right[k]; !ok {
			return false
		}
	}
	return true
}

// Merchant summarizes the active merchant entries. The window is taken from
// the first entry. ok is false when nothing is active.
func Merchant(name string, active []model.ItemEntry) (info model.MerchantInfo, ok bool) {
	if len(active) == 0 {
		return model.MerchantInfo{}, false
	}
	info.Name = name
	info.StockIDs = make([]string, 0, len(active))
	for _, it := range active {
		info.StockIDs = append(info.StockIDs, it.ItemID)
	}
	// Active entries always carry both bounds.
	info.Window = model.Window{Start: *active[0].Start, End: *active[0].End}
	return info, true
}

// MerchantChanged compares merchant visits field by field. Stock order matters.
func MerchantChanged(cur, prev model.MerchantInfo) bool {
	return cur.Name != prev.Name ||
		cur.Window != prev.Window ||
		!slices.Equal(cur.StockIDs, prev.StockIDs)
}

// NewWeathers splits the live weather feed against what was previously seen.
// Previously seen events that ended at or before now are pruned first, so a
// weather that expired and came back counts as new. still holds the pruned
// previous events; fresh holds live active events not among them.
func NewWeathers(live, prev []model.WeatherEvent, now int64) (fresh, still []model.WeatherEvent) {
	known := make(map[string]struct{}, len(prev))
	for _, w := range prev {
		if w.End > now {
			still = append(still, w)
			known[w.WeatherID] = struct{}{}
		}
	}
	for _, w := range ActiveWeathers(live) {
		if _, ok := known[w.WeatherID]; !ok {
			fresh = append(fresh, w)
		}
	}
	return fresh, still
}

// ActiveWeathers returns the events flagged active by the feed.
func ActiveWeathers(live []model.WeatherEvent) []model.WeatherEvent {
	var out []model.WeatherEvent
	for _, w := range live {
		if w.Active {
			out = append(out, w)
		}
	}
	return out
}
