package catalog

import (
	"context"

	"go.uber.org/zap"
)

// Source delivers raw catalog records, e.g. from the database.
type Source interface {
	LoadRaw(ctx context.Context) (Raw, error)
}

// Cache stores raw records between loads. A miss returns ok == false.
type Cache interface {
	GetRaw(ctx context.Context) (raw Raw, ok bool, err error)
	SetRaw(ctx context.Context, raw Raw) error
}

// Loader fetches and normalizes the catalog. Failures never propagate: the
// caller always gets a usable catalog, possibly built from defaults.
type Loader struct {
	source Source
	cache  Cache
	logger *zap.Logger
}

func NewLoader(source Source, cache Cache, logger *zap.Logger) *Loader {
	return &Loader{source: source, cache: cache, logger: logger}
}

func (l *Loader) Load(ctx context.Context) *Catalog {
	raw, err := l.loadRaw(ctx)
	if err != nil {
		l.logger.Warn("catalog source unavailable, using defaults", zap.Error(err))
		raw = Raw{}
	}
	return Normalize(raw, l.logger)
}

func (l *Loader) loadRaw(ctx context.Context) (Raw, error) {
	if l.cache != nil {
		raw, ok, err := l.cache.GetRaw(ctx)
		if err != nil {
			l.logger.Warn("catalog cache read failed", zap.Error(err))
		} else if ok {
			return raw, nil
		}
	}

	if l.source == nil {
		return Raw{}, nil
	}
	raw, err := l.source.LoadRaw(ctx)
	if err != nil {
		return Raw{}, err
	}

	if l.cache != nil {
		if err := l.cache.SetRaw(ctx, raw); err != nil {
			l.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return raw, nil
}
