package main

import (
	"context"
	"fmt"

	"github.com/365cent/grade-tracker/core"
	"github.com/365cent/grade-tracker/storage/database"
)

var migrateFunc = func(ctx context.Context, conf *core.Config) (uint, error) { // mockable
	db, err := database.Open(ctx, conf)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	return database.Migrate(db)
}

func (cli *commandLine) migrate(ctx context.Context) error {
	if cli.conf.Storage.Driver != core.StoragePostgres {
		fmt.Fprintf(cli.out, "nothing to migrate for the %q storage driver\n", cli.conf.Storage.Driver)
		return nil
	}
	version, err := migrateFunc(ctx, cli.conf)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "database schema at version %d\n", version)
	return nil
}
