// Package kvopen opens the kv.Medium selected by the configuration.
package kvopen

import (
	"context"

	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/core"
	"github.com/365cent/grade-tracker/storage/database"
	"github.com/365cent/grade-tracker/storage/kv"
	"github.com/365cent/grade-tracker/storage/kv/filekv"
	"github.com/365cent/grade-tracker/storage/kv/memkv"
	"github.com/365cent/grade-tracker/storage/kv/pgkv"
	"github.com/365cent/grade-tracker/storage/kv/rediskv"
)

// Open returns the medium of conf.Storage.Driver.
// When the driver is "none" or the medium cannot be opened, a warning is logged and
// kv.Unavailable is returned: the gradebook then runs without persistence.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) kv.Medium {
	medium, err := open(ctx, conf, logger)
	if err != nil {
		logger.Warn("no persistence available", err, map[string]interface{}{"driver": conf.Storage.Driver})
		return kv.Unavailable()
	}
	return medium
}

func open(ctx context.Context, conf *core.Config, logger core.Logger) (kv.Medium, error) {
	switch conf.Storage.Driver {
	case core.StorageMemory:
		return memkv.New(), nil
	case core.StorageFile:
		return filekv.Open(conf.Storage.Path)
	case core.StorageRedis:
		return rediskv.Open(ctx, conf)
	case core.StoragePostgres:
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		version, err := database.Migrate(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Debug("database migrated", map[string]interface{}{"version": version})
		return pgkv.New(db), nil
	case core.StorageNone:
		return nil, kv.ErrUnavailable
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}
