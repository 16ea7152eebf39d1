package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/services/export"
)

const (
	formatXLSX = "xlsx"
	formatICS  = "ics"
)

func (cli *commandLine) export(ctx context.Context, format, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing export file")
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	switch format {
	case formatXLSX:
		reports, rerr := cli.svc.Report(ctx)
		if rerr != nil {
			return rerr
		}
		if err = export.WriteWorkbook(f, reports); err != nil {
			return err
		}
	case formatICS:
		courses, qerr := cli.svc.QueryCourses(ctx)
		if qerr != nil {
			return qerr
		}
		if err = export.WriteCalendar(f, courses); err != nil {
			return err
		}
	}
	fmt.Fprintf(cli.out, "exported %s to %s\n", format, path)
	return nil
}
