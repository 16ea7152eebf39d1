package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"golang.org/x/term"

	"github.com/365cent/grade-tracker/apps"
	"github.com/365cent/grade-tracker/core"
	"github.com/365cent/grade-tracker/core/course"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	svc        *course.Service
	conf       *core.Config
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  courses                                          - list courses with their running grade")
	fmt.Fprintln(cli.out, "  course-add -name NAME -end YYYY-MM-DD [-code CODE] [-term TERM]")
	fmt.Fprintln(cli.out, "  course-edit -id ID [-name NAME] [-code CODE] [-term TERM] [-end YYYY-MM-DD]")
	fmt.Fprintln(cli.out, "  course-rm -id ID                                 - delete a course and its coursework")
	fmt.Fprintln(cli.out, "  work -course ID                                  - list the coursework of a course")
	fmt.Fprintln(cli.out, "  work-add -course ID -name NAME -type TYPE -pct N [-grade N]")
	fmt.Fprintln(cli.out, "  work-edit -id ID [-name NAME] [-type TYPE] [-pct N]")
	fmt.Fprintln(cli.out, "  grade -id ID (-value N | -clear)                 - set or clear a grade")
	fmt.Fprintln(cli.out, "  work-rm -id ID                                   - delete a coursework")
	fmt.Fprintln(cli.out, "  seed [-file PATH]                                - add the default courses")
	fmt.Fprintln(cli.out, "  export -format xlsx|ics -out PATH                - export the gradebook")
	fmt.Fprintln(cli.out, "  migrate                                          - migrate the PostgreSQL storage")
	fmt.Fprintln(cli.out, "Coursework types: "+course.TypeNames())
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// optionalFloat is a float flag that remembers whether it was set.
type optionalFloat struct {
	set   bool
	value float64
}

func (f *optionalFloat) String() string {
	if f == nil || !f.set {
		return ""
	}
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

func (f *optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return apps.NewArgumentError(fmt.Sprintf("%q is not a number", s))
	}
	f.set, f.value = true, v
	return nil
}

func (f *optionalFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "courses":
		return cli.listCourses(ctx)

	case "course-add":
		fs := cli.newFlagSet("course-add")
		nc := course.NewCourse{}
		fs.StringVar(&nc.Name, "name", "", "The course name.")
		fs.StringVar(&nc.Code, "code", "", "The course code (eg. COMPSCI 9860 001).")
		fs.StringVar(&nc.Term, "term", "", "The academic term.")
		fs.StringVar(&nc.EndDate, "end", "", "The course end date, formatted as YYYY-MM-DD.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if nc.Name == "" || nc.EndDate == "" {
			fs.Usage()
			return errHelp
		}
		return cli.addCourse(ctx, nc)

	case "course-edit":
		fs := cli.newFlagSet("course-edit")
		id := fs.String("id", "", "The course ID.")
		uc := course.UpdateCourse{}
		fs.StringVar(&uc.Name, "name", "", "The new course name.")
		fs.StringVar(&uc.Code, "code", "", "The new course code.")
		fs.StringVar(&uc.Term, "term", "", "The new academic term.")
		fs.StringVar(&uc.EndDate, "end", "", "The new end date, formatted as YYYY-MM-DD.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		return cli.editCourse(ctx, *id, uc)

	case "course-rm":
		fs := cli.newFlagSet("course-rm")
		id := fs.String("id", "", "The course ID.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		return cli.removeCourse(ctx, *id)

	case "work":
		fs := cli.newFlagSet("work")
		courseID := fs.String("course", "", "The course ID.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *courseID == "" {
			fs.Usage()
			return errHelp
		}
		return cli.listCoursework(ctx, *courseID)

	case "work-add":
		fs := cli.newFlagSet("work-add")
		courseID := fs.String("course", "", "The course ID.")
		name := fs.String("name", "", "The coursework name.")
		typ := fs.String("type", "", "The coursework type: "+course.TypeNames()+".")
		pct := &optionalFloat{}
		fs.Var(pct, "pct", "The weight of the coursework in the course, in percent.")
		grade := &optionalFloat{}
		fs.Var(grade, "grade", "The grade, out of 100 (optional).")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *courseID == "" || *name == "" || *typ == "" || !pct.set {
			fs.Usage()
			return errHelp
		}
		return cli.addCoursework(ctx, *courseID, course.NewCoursework{
			Name:       *name,
			Type:       course.CourseworkType(*typ),
			Percentage: pct.value,
			Grade:      grade.ptr(),
		})

	case "work-edit":
		fs := cli.newFlagSet("work-edit")
		id := fs.String("id", "", "The coursework ID.")
		name := fs.String("name", "", "The new name.")
		typ := fs.String("type", "", "The new type: "+course.TypeNames()+".")
		pct := &optionalFloat{}
		fs.Var(pct, "pct", "The new weight, in percent.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		uw := course.UpdateCoursework{Percentage: pct.ptr()}
		set := setFlags(fs)
		if set["name"] {
			uw.Name = name
		}
		if set["type"] {
			t := course.CourseworkType(*typ)
			uw.Type = &t
		}
		return cli.editCoursework(ctx, *id, uw)

	case "grade":
		fs := cli.newFlagSet("grade")
		id := fs.String("id", "", "The coursework ID.")
		value := &optionalFloat{}
		fs.Var(value, "value", "The grade, out of 100.")
		clearGrade := fs.Bool("clear", false, "Mark the coursework as not graded yet.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *id == "" || value.set == *clearGrade {
			fs.Usage()
			return errHelp
		}
		return cli.setGrade(ctx, *id, value.ptr())

	case "work-rm":
		fs := cli.newFlagSet("work-rm")
		id := fs.String("id", "", "The coursework ID.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		return cli.removeCoursework(ctx, *id)

	case "seed":
		fs := cli.newFlagSet("seed")
		file := fs.String("file", "", "A YAML file of courses to seed instead of the defaults.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.seed(ctx, *file)

	case "export":
		fs := cli.newFlagSet("export")
		format := fs.String("format", "", "The export format: xlsx or ics.")
		out := fs.String("out", "", "The output file.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *out == "" || (*format != formatXLSX && *format != formatICS) {
			fs.Usage()
			return errHelp
		}
		return cli.export(ctx, *format, *out)

	case "migrate":
		return cli.migrate(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}

// formatError renders err for the terminal, listing validation failures field by field.
func (cli *commandLine) formatError(err error) string {
	fldErrs := core.TranslateErrors(err, cli.translator)
	if len(fldErrs) == 0 {
		return "error: " + err.Error()
	}
	flds := make([]string, 0, len(fldErrs))
	for fld := range fldErrs {
		flds = append(flds, fld)
	}
	sort.Strings(flds)

	var b strings.Builder
	b.WriteString("invalid input:")
	for _, fld := range flds {
		fmt.Fprintf(&b, "\n  %s: %s", fld, fldErrs[fld])
	}
	return b.String()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminalFunc(int(f.Fd()))
}
