package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/MonkyMars/gecho"
)

// Progress checkpoints reported while the catalog loads.
const (
	ProgressQueued   = 0
	ProgressFetching = 30
	ProgressReady    = 100
)

// Loader fetches every product ordered by name.
type Loader interface {
	ListAllProducts(ctx context.Context) ([]Product, error)
}

// ProgressFunc receives load progress in percent. It is purely informational.
type ProgressFunc func(percent int)

// Builder loads the full catalog once and materializes it as a Snapshot.
type Builder struct {
	logger    *gecho.Logger
	loader    Loader
	collation string
	progress  ProgressFunc
}

func NewBuilder(logger *gecho.Logger, loader Loader, collation string, progress ProgressFunc) *Builder {
	return &Builder{
		logger:    logger,
		loader:    loader,
		collation: collation,
		progress:  progress,
	}
}

// Build fetches the catalog and returns the ordered snapshot. There is no
// retry; on error the caller keeps running without a cache.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	b.report(ProgressQueued)
	b.report(ProgressFetching)

	products, err := b.loader.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	snap := NewSnapshot(products, b.collation)
	if dropped := len(products) - snap.Len(); dropped > 0 {
		b.logger.Warn("Catalog rows skipped while building snapshot",
			gecho.Field("dropped", dropped),
			gecho.Field("loaded", len(products)),
		)
	}

	b.report(ProgressReady)
	b.logger.Debug("Catalog snapshot built",
		gecho.Field("products", snap.Len()),
		gecho.Field("duration", time.Since(start)),
	)
	return snap, nil
}

// report forwards progress, swallowing any panic from the sink.
func (b *Builder) report(percent int) {
	if b.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("Catalog progress sink failed", gecho.Field("percent", percent), gecho.Field("panic", r))
		}
	}()
	b.progress(percent)
}
