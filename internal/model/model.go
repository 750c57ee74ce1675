// Package model defines the domain types used across the application.
package model

import "encoding/json"

// ItemEntry is one stocked item during a time window.
type ItemEntry struct {
	ItemID      string `json:"item_id"`
	DisplayName string `json:"display_name"`
	Quantity    *int   `json:"quantity,omitempty"`
	Start       *int64 `json:"start_unix,omitempty"`
	End         *int64 `json:"end_unix,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Name returns the display name, falling back to the item ID.
func (e ItemEntry) Name() string {
	return displayName(e.DisplayName, e.ItemID)
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	if id != "" {
		return id
	}
	return "Unknown"
}

// ActiveAt reports whether now falls inside [Start, End).
// An entry missing either bound is never active.
func (e ItemEntry) ActiveAt(now int64) bool {
	if e.Start == nil || e.End == nil {
		return false
	}
	return *e.Start <= now && now < *e.End
}

// WeatherEvent is a weather phenomenon with a hard expiry.
type WeatherEvent struct {
	WeatherID   string `json:"weather_id"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
	End         int64  `json:"end_duration_unix"`
}

// Name returns the display name, falling back to the weather ID.
func (w WeatherEvent) Name() string {
	return displayName(w.DisplayName, w.WeatherID)
}

// Window is a [Start, End) pair of unix timestamps.
type Window struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// MerchantInfo summarizes the currently active merchant visit.
type MerchantInfo struct {
	Name     string   `json:"merchant_name"`
	StockIDs []string `json:"stock_ids"`
	Window   Window   `json:"active_window"`
}

// MerchantListing is the traveling merchant section of the stock listing.
type MerchantListing struct {
	Name  string
	Stock []ItemEntry
	// Raw is the listing exactly as the feed returned it.
	Raw json.RawMessage
}

// StockListing is one sample of the stock endpoint.
type StockListing struct {
	Seed      []ItemEntry
	Gear      []ItemEntry
	Egg       []ItemEntry
	EventShop []ItemEntry
	Merchant  MerchantListing
}

// CatalogEntry is one row of an item or weather catalog.
type CatalogEntry struct {
	ItemID      string `json:"item_id"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon,omitempty"`
	// LastSeen is nil when the entry has never been observed.
	LastSeen *int64 `json:"last_seen,omitempty"`
}

// Name returns the display name, falling back to the item ID.
func (c CatalogEntry) Name() string {
	return displayName(c.DisplayName, c.ItemID)
}

// CatalogKind selects one of the catalog endpoints.
type CatalogKind string

// Supported catalogs.
const (
	CatalogSeed    CatalogKind = "seed"
	CatalogGear    CatalogKind = "gear"
	CatalogEgg     CatalogKind = "egg"
	CatalogWeather CatalogKind = "weather"
)

// SnapshotKind names a persisted last-published state.
type SnapshotKind string

// Snapshot kinds. Each monitor owns a disjoint subset.
const (
	SnapshotSeed           SnapshotKind = "seed"
	SnapshotGear           SnapshotKind = "gear"
	SnapshotEgg            SnapshotKind = "egg"
	SnapshotEventShop      SnapshotKind = "eventshop"
	SnapshotMerchant       SnapshotKind = "merchant"
	SnapshotMerchantInfo   SnapshotKind = "merchant_info"
	SnapshotActiveWeathers SnapshotKind = "active_weathers"
	SnapshotCatalogSeed    SnapshotKind = "catalog_seed"
	SnapshotCatalogGear    SnapshotKind = "catalog_gear"
	SnapshotCatalogEgg     SnapshotKind = "catalog_egg"
)

// Dedup keys for long-lived notifications, one per feed family.
const (
	KeyStockSeed      = "stock_seed"
	KeyStockGear      = "stock_gear"
	KeyStockEgg       = "stock_egg"
	KeyStockEventShop = "stock_eventshop"
	KeyMerchant       = "merchant"
	KeySeed           = "seed"
	KeyGear           = "gear"
	KeyEgg            = "egg"
	KeyWeather        = "weather"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// NotificationRef locates a previously sent notification.
type NotificationRef struct {
	ChatID    int64
	MessageID int
}
