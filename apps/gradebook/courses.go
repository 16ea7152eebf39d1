package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/365cent/grade-tracker/core/course"
)

const barWidth = 20

func (cli *commandLine) listCourses(ctx context.Context) error {
	summaries, err := cli.svc.Overview(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(cli.out, "No courses yet. Add one with: course-add -name NAME -end YYYY-MM-DD")
		return nil
	}

	bars := isTerminal(cli.out)
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tTERM\tENDS\tSCORE\tGRADED")
	for _, s := range summaries {
		graded := formatPct(s.Progress.PercentageGraded)
		if bars {
			graded = progressBar(s.Progress.PercentageGraded) + " " + graded
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Code, s.Name, s.Term, s.EndDate, formatPct(s.Progress.Score), graded)
	}
	return w.Flush()
}

func (cli *commandLine) addCourse(ctx context.Context, nc course.NewCourse) error {
	crs, err := cli.svc.CreateCourse(ctx, nc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "added course %s (%s)\n", crs.ID, crs.Name)
	return nil
}

func (cli *commandLine) editCourse(ctx context.Context, id string, uc course.UpdateCourse) error {
	crs, err := cli.svc.UpdateCourse(ctx, id, uc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "updated course %s (%s)\n", crs.ID, crs.Name)
	return nil
}

func (cli *commandLine) removeCourse(ctx context.Context, id string) error {
	crs, err := cli.svc.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if err = cli.svc.DeleteCourse(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "deleted course %s (%s) and its coursework\n", crs.ID, crs.Name)
	return nil
}

func (cli *commandLine) seed(ctx context.Context, file string) error {
	defaults := course.DefaultCourses()
	if file != "" {
		var err error
		if defaults, err = course.LoadSeedFile(file); err != nil {
			return err
		}
	}
	added, err := cli.svc.SeedDefaults(ctx, defaults)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "added %d course(s)\n", len(added))
	for _, crs := range added {
		fmt.Fprintf(cli.out, "  %s %s %s\n", crs.ID, crs.Code, crs.Name)
	}
	return nil
}

func formatPct(f float64) string {
	return fmt.Sprintf("%.2f%%", f)
}

// progressBar draws pct (out of 100) as a bar of barWidth cells.
func progressBar(pct float64) string {
	filled := int(pct / 100 * barWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}
