// Package shared wires the services common to the gradebook applications.
package shared

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/core"
	"github.com/365cent/grade-tracker/core/course"
	logsvc "github.com/365cent/grade-tracker/services/logger"
	"github.com/365cent/grade-tracker/storage/database/kvrepo"
	"github.com/365cent/grade-tracker/storage/kv"
	"github.com/365cent/grade-tracker/storage/kv/kvopen"
)

type App struct {
	Conf       *core.Config
	Logger     *logsvc.RollbarLogger
	Validate   *validator.Validate
	Translator ut.Translator
	Medium     kv.Medium
	CourseSvc  *course.Service
}

// NewValidator returns a validator with every custom validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	return validate, translator
}

// New loads the configuration and opens the gradebook.
func New(ctx context.Context) (*App, error) {
	conf, err := core.NewConfig()
	if err != nil {
		return nil, err
	}
	zl, err := logsvc.NewLogger(conf)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, conf, logsvc.NewRollbarLogger(zl, conf))
}

// NewWithConfig opens the gradebook described by conf.
func NewWithConfig(ctx context.Context, conf *core.Config, logger *logsvc.RollbarLogger) (*App, error) {
	app := &App{
		Conf:   conf,
		Logger: logger,
		Medium: kvopen.Open(ctx, conf, logger),
	}
	app.Validate, app.Translator = NewValidator()

	var opts []kvrepo.Option
	if conf.Storage.Strict {
		opts = append(opts, kvrepo.Strict())
	}
	repo := kvrepo.NewCourseRepository(app.Medium, logger, opts...)
	app.CourseSvc = course.NewService(repo, app.Validate, logger)
	return app, nil
}

// Seed adds the default courses (or those of conf.Seed.File) when seeding is enabled.
func (app *App) Seed(ctx context.Context) error {
	if !app.Conf.Seed.Defaults {
		return nil
	}
	defaults := course.DefaultCourses()
	if app.Conf.Seed.File != "" {
		var err error
		if defaults, err = course.LoadSeedFile(app.Conf.Seed.File); err != nil {
			return err
		}
	}
	if _, err := app.CourseSvc.SeedDefaults(ctx, defaults); err != nil {
		return errors.Wrap(err, "seeding default courses")
	}
	return nil
}

func (app *App) Close() error {
	err := app.Medium.Close()
	_ = app.Logger.Sync()
	return err
}
