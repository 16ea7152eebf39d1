package main

import (
	"context"
	"fmt"
	"os"

	echoapi "github.com/365cent/grade-tracker/apps/api/echo"
	"github.com/365cent/grade-tracker/apps/shared"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	ctx := context.Background()

	app, err := shared.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	logger := app.Logger
	defer func() {
		if err = app.Close(); err != nil {
			logger.Error("could not close the gradebook", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", app.Conf.Build))
	defer logger.Info("Application stopped")

	if err = app.Seed(ctx); err != nil {
		logger.Error("seeding failed", err)
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       app.Conf,
			Logger:     logger,
			CourseSvc:  app.CourseSvc,
			Translator: app.Translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, app.Conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
