package monitor

import (
	"context"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"garden_bot/internal/detect"
	"garden_bot/internal/model"
	"garden_bot/internal/schedule"
	"garden_bot/internal/storage"
)

// Weather announces newly started weather events and keeps a rolling
// weather summary up to date.
type Weather struct {
	deps        Deps
	alertChat   int64
	summaryChat int64
}

// NewWeather creates the weather monitor. One-shot alerts go to alertChat,
// the summary to summaryChat.
func NewWeather(d Deps, alertChat, summaryChat int64) *Weather {
	return &Weather{deps: d, alertChat: alertChat, summaryChat: summaryChat}
}

// Name implements schedule.Task.
func (w *Weather) Name() string { return "weather" }

// Cycle implements schedule.Task.
func (w *Weather) Cycle(ctx context.Context, at time.Time) time.Duration {
	ctx = begin(ctx, w.Name())
	log := w.deps.Log

	live, err := w.deps.Feed.Weather(ctx)
	if err != nil {
		log.WarnContext(ctx, "fetch weather", "error", err)
		return WeatherInterval
	}
	now := at.Unix()
	active := detect.ActiveWeathers(live)

	w.announce(ctx, live, active, now)
	w.summarize(ctx, active)

	ends := make([]int64, 0, len(active))
	for _, ev := range active {
		ends = append(ends, ev.End)
	}
	return min(schedule.NextDelay(ends, WeatherInterval, now), WeatherInterval)
}

// announce sends one alert per newly active event. Events whose alert failed
// are left out of the stored snapshot so the next cycle retries them.
func (w *Weather) announce(ctx context.Context, live, active []model.WeatherEvent, now int64) {
	log := w.deps.Log

	prev, err := storage.Load[[]model.WeatherEvent](ctx, w.deps.Store, model.SnapshotActiveWeathers, nil)
	if err != nil {
		log.ErrorContext(ctx, "load active weathers, treating as empty", "error", err)
	}
	fresh, _ := detect.NewWeathers(live, prev, now)

	failed := make(map[string]bool)
	if w.alertChat != 0 {
		for _, ev := range fresh {
			if err := w.deps.Publisher.Announce(ctx, w.alertChat, w.deps.Render.WeatherAlert(ev)); err != nil {
				log.ErrorContext(ctx, "announce weather", "weather_id", ev.WeatherID, "error", err)
				failed[ev.WeatherID] = true
				continue
			}
			log.InfoContext(ctx, "weather announced", "weather_id", ev.WeatherID, "ends", ev.End)
		}
	}

	keep := make([]model.WeatherEvent, 0, len(active))
	for _, ev := range active {
		if !failed[ev.WeatherID] {
			keep = append(keep, ev)
		}
	}
	if cmp.Equal(keep, prev, cmpopts.EquateEmpty()) {
		return
	}
	if err := storage.Save(ctx, w.deps.Store, model.SnapshotActiveWeathers, keep); err != nil {
		log.ErrorContext(ctx, "save active weathers", "error", err)
	}
}

// summarize edits the rolling weather summary, creating it if needed.
func (w *Weather) summarize(ctx context.Context, active []model.WeatherEvent) {
	if w.summaryChat == 0 {
		return
	}
	catalog, err := w.deps.Feed.Catalog(ctx, model.CatalogWeather)
	if err != nil {
		w.deps.Log.WarnContext(ctx, "fetch weather catalog", "error", err)
		return
	}
	msg := w.deps.Render.WeatherSummary(catalog, active)
	if err := w.deps.Publisher.Publish(ctx, model.KeyWeather, w.summaryChat, msg); err != nil {
		w.deps.Log.ErrorContext(ctx, "publish", "key", model.KeyWeather, "error", err)
	}
}
