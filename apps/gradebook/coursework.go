package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/365cent/grade-tracker/core/course"
)

func (cli *commandLine) listCoursework(ctx context.Context, courseID string) error {
	crs, err := cli.svc.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	items, err := cli.svc.QueryCoursework(ctx, courseID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%s %s (%s, ends %s)\n\n", crs.Code, crs.Name, crs.Term, crs.EndDate)
	if len(items) == 0 {
		fmt.Fprintln(cli.out, "No coursework yet.")
	} else {
		w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tWEIGHT\tGRADE")
		for _, cw := range items {
			grade := "-"
			if cw.Graded() {
				grade = formatPct(*cw.Grade)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", cw.ID, cw.Name, cw.Type, formatPct(cw.Percentage), grade)
		}
		if err = w.Flush(); err != nil {
			return err
		}
	}

	prog := course.ProgressOf(items)
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "Score:     %s\n", formatPct(prog.Score))
	fmt.Fprintf(cli.out, "Graded:    %s\n", formatPct(prog.PercentageGraded))
	fmt.Fprintf(cli.out, "Remaining: %s\n", formatPct(course.Remaining(items)))
	if isTerminal(cli.out) {
		fmt.Fprintln(cli.out, progressBar(prog.PercentageGraded))
	}
	return nil
}

func (cli *commandLine) addCoursework(ctx context.Context, courseID string, nw course.NewCoursework) error {
	if _, err := cli.svc.GetCourse(ctx, courseID); err != nil {
		return err
	}
	cw, err := cli.svc.AddCoursework(ctx, courseID, nw)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "added coursework %s (%s)\n", cw.ID, cw.Name)
	return nil
}

func (cli *commandLine) editCoursework(ctx context.Context, id string, uw course.UpdateCoursework) error {
	cw, err := cli.svc.UpdateCoursework(ctx, id, uw)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "updated coursework %s (%s)\n", cw.ID, cw.Name)
	return nil
}

func (cli *commandLine) setGrade(ctx context.Context, id string, grade *float64) error {
	cw, err := cli.svc.SetGrade(ctx, id, grade)
	if err != nil {
		return err
	}
	if cw.Graded() {
		fmt.Fprintf(cli.out, "graded %s: %s\n", cw.Name, formatPct(*cw.Grade))
	} else {
		fmt.Fprintf(cli.out, "cleared the grade of %s\n", cw.Name)
	}
	return nil
}

func (cli *commandLine) removeCoursework(ctx context.Context, id string) error {
	cw, err := cli.svc.GetCoursework(ctx, id)
	if err != nil {
		return err
	}
	if err = cli.svc.DeleteCoursework(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "deleted coursework %s (%s)\n", cw.ID, cw.Name)
	return nil
}
