package main

import (
	"context"
	"fmt"
	"os"

	"github.com/365cent/grade-tracker/apps/shared"
)

func main() {
	ctx := context.Background()

	app, err := shared.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	if err = app.Seed(ctx); err != nil {
		app.Logger.Error("seeding failed", err)
	}

	cli := commandLine{
		svc:        app.CourseSvc,
		conf:       app.Conf,
		translator: app.Translator,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)
	_ = app.Close()
	if err != nil {
		if err != errHelp {
			fmt.Fprintln(os.Stderr, cli.formatError(err))
		}
		os.Exit(1)
	}
}
