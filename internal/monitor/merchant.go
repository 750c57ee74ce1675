package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"garden_bot/internal/detect"
	"garden_bot/internal/model"
	"garden_bot/internal/schedule"
	"garden_bot/internal/storage"
)

// Merchant publishes the traveling merchant's visits.
type Merchant struct {
	deps   Deps
	chatID int64
}

// NewMerchant creates the merchant monitor.
func NewMerchant(d Deps, chatID int64) *Merchant {
	return &Merchant{deps: d, chatID: chatID}
}

// Name implements schedule.Task.
func (m *Merchant) Name() string { return "merchant" }

// Cycle implements schedule.Task.
func (m *Merchant) Cycle(ctx context.Context, at time.Time) time.Duration {
	ctx = begin(ctx, m.Name())
	log := m.deps.Log

	listing, err := m.deps.Feed.Stock(ctx)
	if err != nil {
		log.WarnContext(ctx, "fetch merchant", "error", err)
		return MerchantInterval
	}

	now := at.Unix()
	active := detect.Active(listing.Merchant.Stock, now)
	ends := make([]int64, 0, len(active))
	for _, it := range active {
		ends = append(ends, *it.End)
	}
	delay := schedule.NextDelay(ends, MerchantInterval, now)

	info, ok := detect.Merchant(listing.Merchant.Name, active)
	if !ok || m.chatID == 0 {
		// Nothing to announce; only keep the raw listing current.
		m.saveRaw(ctx, listing.Merchant.Raw)
		return delay
	}

	prev, err := storage.Load(ctx, m.deps.Store, model.SnapshotMerchantInfo, model.MerchantInfo{})
	if err != nil {
		log.ErrorContext(ctx, "load merchant info, treating as empty", "error", err)
	}
	if !detect.MerchantChanged(info, prev) {
		log.DebugContext(ctx, "unchanged")
		return delay
	}

	msg := m.deps.Render.Merchant(info.Name, active)
	if err := m.deps.Publisher.Publish(ctx, model.KeyMerchant, m.chatID, msg); err != nil {
		log.ErrorContext(ctx, "publish", "key", model.KeyMerchant, "error", err)
		return delay
	}
	if err := storage.Save(ctx, m.deps.Store, model.SnapshotMerchantInfo, info); err != nil {
		log.ErrorContext(ctx, "save merchant info", "error", err)
		return delay
	}
	m.saveRaw(ctx, listing.Merchant.Raw)
	log.InfoContext(ctx, "published", "key", model.KeyMerchant, "merchant", info.Name, "entries", len(active))
	return delay
}

// saveRaw stores the raw merchant listing when it differs from the stored one.
func (m *Merchant) saveRaw(ctx context.Context, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		m.deps.Log.WarnContext(ctx, "compact merchant listing", "error", err)
		return
	}

	prev, err := storage.Load[json.RawMessage](ctx, m.deps.Store, model.SnapshotMerchant, nil)
	if err != nil {
		m.deps.Log.ErrorContext(ctx, "load merchant listing", "error", err)
	}
	if bytes.Equal(prev, compact.Bytes()) {
		return
	}
	if err := storage.Save(ctx, m.deps.Store, model.SnapshotMerchant, json.RawMessage(compact.Bytes())); err != nil {
		m.deps.Log.ErrorContext(ctx, "save merchant listing", "error", err)
	}
}
