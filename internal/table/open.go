package table

import (
	"context"
	"fmt"

	"github.com/yourorg/csv-loader/internal/config"
)

// Open builds the table selected by cfg.Backend. The returned close func
// releases local resources and is never nil.
func Open(ctx context.Context, cfg config.Config) (Table, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.BackendDynamo:
		d, err := NewDynamo(ctx, cfg.TableName, cfg.DynamoOptions())
		if err != nil {
			return nil, noop, err
		}
		return d, noop, nil
	case config.BackendBadger:
		b, err := OpenBadger(cfg.BadgerDir, cfg.TableName, cfg.TableKey)
		if err != nil {
			return nil, noop, err
		}
		return b, b.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown table backend %q", cfg.Backend)
	}
}
