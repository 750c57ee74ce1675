// Package assets downloads catalog icons to disk.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"garden_bot/internal/model"
)

const maxIconSize = 2 * 1024 * 1024

// Kinds are the catalogs whose icons are downloaded, in order.
var Kinds = []model.CatalogKind{
	model.CatalogSeed,
	model.CatalogGear,
	model.CatalogEgg,
	model.CatalogWeather,
}

// Catalogs lists catalog entries.
type Catalogs interface {
	Catalog(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error)
}

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader saves the icon of every observed catalog entry as
// <dir>/<kind>/<item id>.png.
type Downloader struct {
	catalogs Catalogs
	client   HTTPClient
	dir      string
	log      *slog.Logger
}

// New creates a Downloader writing below dir.
func New(catalogs Catalogs, client HTTPClient, dir string, log *slog.Logger) *Downloader {
	return &Downloader{catalogs: catalogs, client: client, dir: dir, log: log}
}

// Fetch downloads the icons and returns how many were saved per catalog.
// A failing icon is logged and skipped; a failing catalog is reported in the
// returned error while the other catalogs are still processed.
func (d *Downloader) Fetch(ctx context.Context) (map[model.CatalogKind]int, error) {
	saved := make(map[model.CatalogKind]int, len(Kinds))
	var errs []error
	for _, kind := range Kinds {
		n, err := d.fetchKind(ctx, kind)
		saved[kind] = n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return saved, errors.Join(errs...)
}

func (d *Downloader) fetchKind(ctx context.Context, kind model.CatalogKind) (int, error) {
	entries, err := d.catalogs.Catalog(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", kind, err)
	}

	dir := filepath.Join(d.dir, string(kind))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("create %s: %w", dir, err)
	}

	saved := 0
	for _, e := range entries {
		if e.LastSeen == nil {
			continue
		}
		log := d.log.With("kind", kind, "item_id", e.ItemID)
		if e.Icon == "" {
			log.WarnContext(ctx, "no icon url")
			continue
		}
		name := filepath.Base(e.ItemID)
		if name != e.ItemID || name == "." || name == ".." {
			log.WarnContext(ctx, "unsafe item id, skipping")
			continue
		}

		path := filepath.Join(dir, name+".png")
		if err := d.download(ctx, e.Icon, path); err != nil {
			log.WarnContext(ctx, "download icon", "error", err)
			continue
		}
		log.DebugContext(ctx, "icon saved", "path", path)
		saved++
	}
	return saved, nil
}

func (d *Downloader) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIconSize))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
