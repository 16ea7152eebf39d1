package logsvc

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/365cent/grade-tracker/core"
)

// NewLogger builds the zap logger described by conf.Log.
// Format "console" gives colored human output, anything else JSON.
func NewLogger(conf *core.Config) (*zap.Logger, error) {
	var zapConf zap.Config
	switch conf.Log.Format {
	case "console":
		zapConf = zap.NewDevelopmentConfig()
		zapConf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapConf = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(conf.Log.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", conf.Log.Level)
	}
	zapConf.Level = zap.NewAtomicLevelAt(level)

	zl, err := zapConf.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return zl.Named(conf.AppName), nil
}

// NewNopLogger returns a core.Logger that discards everything.
func NewNopLogger() core.Logger {
	return &RollbarLogger{zl: zap.NewNop()}
}

// fields converts logger args to zap fields: errors, maps of extra data, anything else by position.
func fields(args []interface{}) []zap.Field {
	flds := make([]zap.Field, 0, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case error:
			flds = append(flds, zap.Error(v))
		case map[string]interface{}:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				flds = append(flds, zap.Any(k, v[k]))
			}
		default:
			flds = append(flds, zap.Any(fmt.Sprintf("arg%d", i), v))
		}
	}
	return flds
}
