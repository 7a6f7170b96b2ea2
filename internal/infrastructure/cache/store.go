package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Snapshot is one cached collection with the time it was last refreshed.
// Freshness is judged against RefreshedAt rather than a store-level expiry
// so that a stale snapshot survives as fallback data.
type Snapshot struct {
	Data        json.RawMessage `json:"data"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// CollectionStore holds collection snapshots keyed by cache name.
// Implementations are process-wide shared state; concurrent refreshes for
// the same key may race and the last write wins.
type CollectionStore interface {
	Get(ctx context.Context, key string) (*Snapshot, error)
	Set(ctx context.Context, key string, snap *Snapshot) error
	Invalidate(ctx context.Context, keys ...string) error
	Close() error
}

// GetOrRefresh returns the cached collection for key if it is younger than
// ttl, otherwise calls refresh. A failed or empty refresh falls back to the
// previous snapshot when one exists, else an empty collection; a read-only
// listing never surfaces a hard failure, only degraded data.
func GetOrRefresh[T any](ctx context.Context, store CollectionStore, logger *zap.Logger, key string, ttl time.Duration, refresh func(ctx context.Context) ([]T, error)) []T {
	prev, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		prev = nil
	}

	if prev != nil && time.Since(prev.RefreshedAt) < ttl {
		if items, ok := decodeSnapshot[T](logger, key, prev); ok {
			return items
		}
		// Corrupt snapshot: fall through to refresh
	}

	items, err := refresh(ctx)
	if err != nil || len(items) == 0 {
		if err != nil {
			logger.Warn("cache refresh failed, serving degraded data",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		if prev != nil {
			if stale, ok := decodeSnapshot[T](logger, key, prev); ok {
				return stale
			}
		}
		return []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return items
	}
	if err := store.Set(ctx, key, &Snapshot{Data: data, RefreshedAt: time.Now()}); err != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return items
}

func decodeSnapshot[T any](logger *zap.Logger, key string, snap *Snapshot) ([]T, bool) {
	var items []T
	if err := json.Unmarshal(snap.Data, &items); err != nil {
		logger.Warn("cache snapshot is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return items, true
}
