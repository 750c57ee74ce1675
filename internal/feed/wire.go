package feed

import (
	"bytes"
	"encoding/json"
	"strconv"

	"garden_bot/internal/model"
)

// flexInt decodes a number, a numeric string or null. Anything else
// decodes to "absent" instead of failing the whole payload.
type flexInt struct {
	v *int64
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	f.v = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil //nolint:nilerr // malformed values are treated as absent
		}
		b = []byte(s)
	}
	if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
		f.v = &n
		return nil
	}
	if x, err := strconv.ParseFloat(string(b), 64); err == nil {
		n := int64(x)
		f.v = &n
	}
	return nil
}

func (f flexInt) int() *int {
	if f.v == nil {
		return nil
	}
	n := int(*f.v)
	return &n
}

// nonZero returns the value unless it is absent or zero.
func (f flexInt) nonZero() *int64 {
	if f.v == nil || *f.v == 0 {
		return nil
	}
	return f.v
}

type wireItem struct {
	ItemID      string  `json:"item_id"`
	DisplayName string  `json:"display_name"`
	Quantity    flexInt `json:"quantity"`
	Start       flexInt `json:"start_date_unix"`
	End         flexInt `json:"end_date_unix"`
	Icon        string  `json:"icon"`
}

func (w wireItem) toModel() model.ItemEntry {
	return model.ItemEntry{
		ItemID:      w.ItemID,
		DisplayName: w.DisplayName,
		Quantity:    w.Quantity.int(),
		Start:       w.Start.v,
		End:         w.End.v,
		Icon:        w.Icon,
	}
}

func itemsToModel(items []wireItem) []model.ItemEntry {
	out := make([]model.ItemEntry, 0, len(items))
	for _, it := range items {
		out = append(out, it.toModel())
	}
	return out
}

type wireMerchant struct {
	Name  string     `json:"merchantName"`
	Stock []wireItem `json:"stock"`
}

type stockResponse struct {
	Seed      []wireItem      `json:"seed_stock"`
	Gear      []wireItem      `json:"gear_stock"`
	Egg       []wireItem      `json:"egg_stock"`
	EventShop []wireItem      `json:"eventshop_stock"`
	Merchant  json.RawMessage `json:"travelingmerchant_stock"`
}

func (r stockResponse) toModel() model.StockListing {
	listing := model.StockListing{
		Seed:      itemsToModel(r.Seed),
		Gear:      itemsToModel(r.Gear),
		Egg:       itemsToModel(r.Egg),
		EventShop: itemsToModel(r.EventShop),
		Merchant:  model.MerchantListing{Name: defaultMerchantName},
	}

	raw := bytes.TrimSpace(r.Merchant)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return listing
	}
	listing.Merchant.Raw = append(json.RawMessage(nil), raw...)

	var m wireMerchant
	if err := json.Unmarshal(raw, &m); err != nil {
		return listing
	}
	if m.Name != "" {
		listing.Merchant.Name = m.Name
	}
	listing.Merchant.Stock = itemsToModel(m.Stock)
	return listing
}

type wireWeather struct {
	WeatherID string  `json:"weather_id"`
	Name      string  `json:"weather_name"`
	Active    bool    `json:"active"`
	End       flexInt `json:"end_duration_unix"`
}

func (w wireWeather) toModel() model.WeatherEvent {
	ev := model.WeatherEvent{
		WeatherID:   w.WeatherID,
		DisplayName: w.Name,
		Active:      w.Active,
	}
	if w.End.v != nil {
		ev.End = *w.End.v
	}
	return ev
}

type weatherResponse struct {
	Weather []wireWeather `json:"weather"`
}

type wireCatalogEntry struct {
	ItemID      string  `json:"item_id"`
	DisplayName string  `json:"display_name"`
	Icon        string  `json:"icon"`
	LastSeen    flexInt `json:"last_seen"`
}

func (w wireCatalogEntry) toModel() model.CatalogEntry {
	return model.CatalogEntry{
		ItemID:      w.ItemID,
		DisplayName: w.DisplayName,
		Icon:        w.Icon,
		LastSeen:    w.LastSeen.nonZero(),
	}
}
