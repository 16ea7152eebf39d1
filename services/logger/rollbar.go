package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/365cent/grade-tracker/core"
)

// RollbarLogger writes every entry through zap and reports it to Rollbar when enabled.
type RollbarLogger struct {
	zl     *zap.Logger
	report bool
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger configures the Rollbar client from conf. Reporting is only enabled
// when a token is set outside of debug mode.
func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.AppName)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	l := &RollbarLogger{zl: zl.WithOptions(zap.AddCallerSkip(1))}
	l.Enable(conf.RollbarToken != "" && !conf.Debug)
	return l
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
	l.report = enabled
}

// Sync flushes zap and the pending Rollbar items.
func (l *RollbarLogger) Sync() error {
	if l.report {
		rollbar.Wait()
	}
	return l.zl.Sync()
}

// expected fmt: msg | error, map[string]interface{}
func (l *RollbarLogger) send(level string, msg string, args []interface{}) {
	if !l.report {
		return
	}
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	newArgs = append(newArgs, args...)
	rollbar.Log(level, newArgs...)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.send(rollbar.DEBUG, msg, args)
	l.zl.Debug(msg, fields(args)...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.send(rollbar.INFO, msg, args)
	l.zl.Info(msg, fields(args)...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.send(rollbar.WARN, msg, args)
	l.zl.Warn(msg, fields(args)...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.send(rollbar.ERR, msg, args)
	l.zl.Error(msg, fields(args)...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.send(rollbar.CRIT, msg, args)
	if l.report {
		rollbar.Wait()
	}
	l.zl.Fatal(msg, fields(args)...)
}
