package bot

import (
	"fmt"
	"strings"

	"garden_bot/internal/model"
)

// stockKinds are the sub-feeds /stock can show, in display order.
var stockKinds = []model.SnapshotKind{
	model.SnapshotSeed,
	model.SnapshotGear,
	model.SnapshotEgg,
	model.SnapshotEventShop,
}

// ParseStockArgs parses the arguments of /stock.
// Format: [seed|gear|egg|eventshop ...]; no arguments selects every sub-feed.
func ParseStockArgs(args string) ([]model.SnapshotKind, error) {
	parts := strings.Fields(strings.ToLower(args))
	if len(parts) == 0 {
		return stockKinds, nil
	}

	var kinds []model.SnapshotKind
	seen := make(map[model.SnapshotKind]bool)
	for _, p := range parts {
		kind, ok := parseStockKind(p)
		if !ok {
			return nil, fmt.Errorf("unknown stock %q", p)
		}
		if seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func parseStockKind(s string) (model.SnapshotKind, bool) {
	for _, k := range stockKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}
