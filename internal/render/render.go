// Package render turns feed state into notification text.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"garden_bot/internal/model"
	"garden_bot/internal/notify"
)

const (
	// maxDigestLen is the longest catalog digest published untruncated.
	maxDigestLen = 4000
	// truncatedLines is how many lines a truncated digest keeps.
	truncatedLines = 50

	// maxMessageLen caps every message below Telegram's 4096 character
	// limit, leaving room for a mention prefix.
	maxMessageLen = 4000
	clipMarker    = "\n..."

	emptyDigest = "No recent activity found."
	timeLayout  = "2006-01-02 15:04 UTC"
)

// Formatter renders messages, decorating items with configured emoji.
type Formatter struct {
	emoji    map[string]string
	mentions map[string]string
}

// New creates a Formatter. Both maps are keyed by item ID and may be nil.
func New(emoji, mentions map[string]string) *Formatter {
	return &Formatter{emoji: emoji, mentions: mentions}
}

// Stock renders a stock listing, led by the earliest end time of the items.
func (f *Formatter) Stock(title string, items []model.ItemEntry) notify.Message {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	var earliest int64
	for _, it := range items {
		if it.End != nil && (earliest == 0 || *it.End < earliest) {
			earliest = *it.End
		}
	}
	if earliest != 0 {
		fmt.Fprintf(&b, "Restocks %s\n", FormatUnix(earliest))
	}
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString(f.itemLine(it))
		b.WriteString("\n")
	}
	return message(strings.TrimRight(b.String(), "\n"))
}

// Merchant renders the traveling merchant's current visit.
func (f *Formatter) Merchant(name string, items []model.ItemEntry) notify.Message {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString("\n")
	if len(items) > 0 && items[0].End != nil {
		fmt.Fprintf(&b, "Leaves %s\n", FormatUnix(*items[0].End))
	}
	if len(items) > 0 {
		b.WriteString("\nStock:\n")
		for _, it := range items {
			b.WriteString(f.itemLine(it))
			b.WriteString("\n")
		}
	}
	return message(strings.TrimRight(b.String(), "\n"))
}

// Catalog renders a "last seen" digest of the observed catalog entries.
func (f *Formatter) Catalog(title string, entries []model.CatalogEntry) notify.Message {
	return message(title + "\n\n" + f.digest(entries))
}

// WeatherAlert renders the one-shot announcement of a weather event.
func (f *Formatter) WeatherAlert(w model.WeatherEvent) notify.Message {
	return message(fmt.Sprintf("%s\n%sEnds %s", w.Name(), f.prefix(w.WeatherID), FormatUnix(w.End)))
}

// WeatherSummary renders the currently active weather followed by the weather catalog digest.
func (f *Formatter) WeatherSummary(catalog []model.CatalogEntry, active []model.WeatherEvent) notify.Message {
	var b strings.Builder
	b.WriteString("Weather\n\n")
	if len(active) > 0 {
		b.WriteString("Active now:\n")
		for _, w := range active {
			fmt.Fprintf(&b, "%s%s until %s\n", f.prefix(w.WeatherID), w.Name(), FormatUnix(w.End))
		}
		b.WriteString("\n")
	}
	b.WriteString(f.digest(catalog))
	return message(b.String())
}

// Mentions returns the mentions configured for items, in item order, without duplicates.
func (f *Formatter) Mentions(items []model.ItemEntry) string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range items {
		m := f.mentions[it.ItemID]
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return strings.Join(out, " ")
}

func (f *Formatter) digest(entries []model.CatalogEntry) string {
	var lines []string
	for _, e := range entries {
		if e.LastSeen == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", f.prefix(e.ItemID), e.Name(), FormatUnix(*e.LastSeen)))
	}
	if len(lines) == 0 {
		return emptyDigest
	}
	text := strings.Join(lines, "\n")
	if len(text) > maxDigestLen && len(lines) > truncatedLines {
		text = strings.Join(lines[:truncatedLines], "\n") +
			fmt.Sprintf("\n\n... and %d more items", len(lines)-truncatedLines)
	}
	return text
}

// message builds a notification, cutting text that is too long at the last
// whole line that fits.
func message(text string) notify.Message {
	if utf8.RuneCountInString(text) <= maxMessageLen {
		return notify.Message{Text: text}
	}
	runes := []rune(text)
	cut := string(runes[:maxMessageLen-utf8.RuneCountInString(clipMarker)])
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return notify.Message{Text: cut + clipMarker}
}

func (f *Formatter) itemLine(it model.ItemEntry) string {
	qty := "-"
	if it.Quantity != nil {
		qty = fmt.Sprint(*it.Quantity)
	}
	return fmt.Sprintf("%s%s x%s", f.prefix(it.ItemID), it.Name(), qty)
}

func (f *Formatter) prefix(id string) string {
	if e := f.emoji[id]; e != "" {
		return e + " "
	}
	return ""
}

// FormatUnix formats a unix timestamp for display.
func FormatUnix(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(timeLayout)
}

// StockTitle returns the heading used for a stock sub-feed.
func StockTitle(kind model.SnapshotKind) string {
	switch kind {
	case model.SnapshotSeed:
		return "Seed Stock"
	case model.SnapshotGear:
		return "Gear Stock"
	case model.SnapshotEgg:
		return "Egg Stock"
	case model.SnapshotEventShop:
		return "Event Shop Stock"
	default:
		return string(kind)
	}
}
