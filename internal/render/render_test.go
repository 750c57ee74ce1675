package render

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"garden_bot/internal/model"
	"garden_bot/internal/notify"
)

func item(id, name string, qty *int, start, end int64) model.ItemEntry {
	return model.ItemEntry{ItemID: id, DisplayName: name, Quantity: qty, Start: model.Ptr(start), End: model.Ptr(end)}
}

func TestStock(t *testing.T) {
	f := New(map[string]string{"carrot": "🥕"}, nil)

	tests := []struct {
		name  string
		title string
		items []model.ItemEntry
		want  string
	}{
		{
			name:  "earliest end leads",
			title: "Seed Stock",
			items: []model.ItemEntry{
				item("tomato", "Tomato", model.Ptr(3), 1000, 1600),
				item("carrot", "Carrot", model.Ptr(5), 1000, 1300),
			},
			want: "Seed Stock\nRestocks 1970-01-01 00:21 UTC\n\nTomato x3\n🥕 Carrot x5",
		},
		{
			name:  "missing quantity renders placeholder",
			title: "Gear Stock",
			items: []model.ItemEntry{{ItemID: "trowel"}},
			want:  "Gear Stock\n\ntrowel x-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Stock(tt.title, tt.items)
			if diff := cmp.Diff(notify.Message{Text: tt.want}, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerchant(t *testing.T) {
	f := New(nil, nil)
	got := f.Merchant("Gnome Merchant", []model.ItemEntry{
		item("gnome_crate", "Gnome Crate", model.Ptr(1), 1000, 15400),
		item("common_gnome", "", nil, 1000, 15400),
	})
	want := "Gnome Merchant\nLeaves 1970-01-01 04:16 UTC\n\nStock:\nGnome Crate x1\ncommon_gnome x-"
	if diff := cmp.Diff(want, got.Text); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog(t *testing.T) {
	f := New(map[string]string{"carrot": "🥕"}, nil)

	tests := []struct {
		name    string
		entries []model.CatalogEntry
		want    string
	}{
		{
			name:    "empty",
			entries: nil,
			want:    "Seeds\n\nNo recent activity found.",
		},
		{
			name: "never seen entries are skipped",
			entries: []model.CatalogEntry{
				{ItemID: "carrot", DisplayName: "Carrot", LastSeen: model.Ptr[int64](60)},
				{ItemID: "moon_mango", DisplayName: "Moon Mango"},
			},
			want: "Seeds\n\n🥕 Carrot 1970-01-01 00:01 UTC",
		},
		{
			name:    "only unseen entries",
			entries: []model.CatalogEntry{{ItemID: "moon_mango"}},
			want:    "Seeds\n\nNo recent activity found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Catalog("Seeds", tt.entries)
			if diff := cmp.Diff(tt.want, got.Text); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCatalogTruncates(t *testing.T) {
	f := New(nil, nil)
	var entries []model.CatalogEntry
	for i := 0; i < 120; i++ {
		entries = append(entries, model.CatalogEntry{
			ItemID:      fmt.Sprintf("item_%03d", i),
			DisplayName: fmt.Sprintf("A rather long display name for item %03d", i),
			LastSeen:    model.Ptr[int64](1750000000),
		})
	}

	got := f.Catalog("Seeds", entries).Text

	if !strings.HasSuffix(got, "\n\n... and 70 more items") {
		t.Errorf("missing truncation marker:\n%s", got)
	}
	if strings.Contains(got, "item 050") {
		t.Error("line 51 should be truncated")
	}
	if !strings.Contains(got, "item 049") {
		t.Error("line 50 should be kept")
	}
}

func TestMessagesStayWithinTelegramLimit(t *testing.T) {
	f := New(map[string]string{"item_000": "🌟"}, nil)
	long := strings.Repeat("Very Long Name ", 10)

	var items []model.ItemEntry
	var entries []model.CatalogEntry
	var active []model.WeatherEvent
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("item_%03d", i)
		items = append(items, item(id, long+id, model.Ptr(i), 1000, 1300))
		active = append(active, model.WeatherEvent{WeatherID: id, DisplayName: long + id, Active: true, End: 1300})
		if i < 40 {
			entries = append(entries, model.CatalogEntry{ItemID: id, DisplayName: long + id, LastSeen: model.Ptr[int64](60)})
		}
	}

	tests := []struct {
		name string
		msg  notify.Message
	}{
		{name: "stock", msg: f.Stock("Seed Stock", items)},
		{name: "merchant", msg: f.Merchant("Gnome Merchant", items)},
		{name: "catalog under the line threshold", msg: f.Catalog("Seeds", entries)},
		{name: "weather summary", msg: f.WeatherSummary(entries, active)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := tt.msg.Text
			if n := utf8.RuneCountInString(text); n > maxMessageLen {
				t.Fatalf("message has %d characters, limit %d", n, maxMessageLen)
			}
			if !strings.HasSuffix(text, clipMarker) {
				t.Errorf("clipped message should end with %q", clipMarker)
			}
			lines := strings.Split(strings.TrimSuffix(text, clipMarker), "\n")
			if last := lines[len(lines)-1]; last != "" && !strings.Contains(last, "item_") {
				t.Errorf("message should be cut at a line boundary, last line %q", last)
			}
		})
	}
}

func TestShortMessageUntouched(t *testing.T) {
	got := message("Seeds\n\nCarrot x5")
	if diff := cmp.Diff(notify.Message{Text: "Seeds\n\nCarrot x5"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWeather(t *testing.T) {
	f := New(map[string]string{"rain": "🌧"}, nil)
	rain := model.WeatherEvent{WeatherID: "rain", DisplayName: "Rain", Active: true, End: 1300}

	alert := f.WeatherAlert(rain)
	if diff := cmp.Diff("Rain\n🌧 Ends 1970-01-01 00:21 UTC", alert.Text); diff != "" {
		t.Errorf("alert mismatch (-want +got):\n%s", diff)
	}

	summary := f.WeatherSummary(
		[]model.CatalogEntry{{ItemID: "rain", DisplayName: "Rain", LastSeen: model.Ptr[int64](60)}},
		[]model.WeatherEvent{rain},
	)
	want := "Weather\n\nActive now:\n🌧 Rain until 1970-01-01 00:21 UTC\n\n🌧 Rain 1970-01-01 00:01 UTC"
	if diff := cmp.Diff(want, summary.Text); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestMentions(t *testing.T) {
	f := New(nil, map[string]string{"carrot": "@seeds", "tomato": "@seeds", "beanstalk": "@rare"})
	got := f.Mentions([]model.ItemEntry{
		{ItemID: "beanstalk"}, {ItemID: "carrot"}, {ItemID: "potato"}, {ItemID: "tomato"},
	})
	if diff := cmp.Diff("@rare @seeds", got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
