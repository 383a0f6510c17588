// Package cardpool loads card templates from files or Postgres.
package cardpool

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/config"
	"github.com/technobros/cardgame-go/internal/game"
)

// ErrEmptyPool is returned when a source yields no usable templates.
var ErrEmptyPool = errors.New("card pool is empty")

// Source yields the card templates decks are built from.
type Source interface {
	Load(ctx context.Context) ([]game.Template, error)
	Close() error
}

// NewSource opens the source named by cfg.
func NewSource(ctx context.Context, cfg config.CardPoolConfig, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Source {
	case config.SourceJSON:
		return NewJSONSource(cfg.Path, logger), nil
	case config.SourceYAML:
		return NewYAMLSource(cfg.Path, logger), nil
	case config.SourcePostgres:
		return NewPostgresSource(ctx, cfg.DatabaseURL, cfg.Table, cfg.MaxConns, logger)
	default:
		return nil, fmt.Errorf("unknown card pool source %q", cfg.Source)
	}
}

// sanitize drops templates that fail validation and warns about effect
// descriptors that will be skipped when they fire.
func sanitize(origin string, templates []game.Template, logger *zap.Logger) ([]game.Template, error) {
	out := make([]game.Template, 0, len(templates))
	for i, t := range templates {
		if err := t.Validate(); err != nil {
			logger.Warn("skipping invalid card template",
				zap.String("source", origin),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		for _, d := range t.Effects {
			if err := d.Validate(); err != nil {
				logger.Warn("card has an invalid effect",
					zap.String("source", origin),
					zap.String("card", t.Name),
					zap.Error(err),
				)
			}
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPool, origin)
	}
	logger.Info("card pool loaded",
		zap.String("source", origin),
		zap.Int("cards", len(out)),
		zap.Int("skipped", len(templates)-len(out)),
	)
	return out, nil
}
