// Package export renders the gradebook to files: an Excel grade report and an
// iCalendar of course end dates.
package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/365cent/grade-tracker/core/course"
)

const (
	OverviewSheet   = "Overview"
	CourseworkSheet = "Coursework"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	overviewHeader   = []interface{}{"Code", "Course", "Term", "End date", "Score", "Graded %", "Remaining %"}
	courseworkHeader = []interface{}{"Course", "Coursework", "Type", "Weight %", "Grade", "Weighted"}
)

// WriteWorkbook writes an xlsx workbook with one overview row per course and one row per coursework.
func WriteWorkbook(w io.Writer, reports []course.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", OverviewSheet); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}
	if _, err := f.NewSheet(CourseworkSheet); err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}

	if err = writeRows(f, OverviewSheet, overviewHeader, overviewRows(reports), bold); err != nil {
		return err
	}
	if err = writeRows(f, CourseworkSheet, courseworkHeader, courseworkRows(reports), bold); err != nil {
		return err
	}
	_ = f.SetColWidth(OverviewSheet, "B", "B", 45)
	_ = f.SetColWidth(CourseworkSheet, "A", "B", 30)

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func overviewRows(reports []course.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []interface{}{
			r.Course.Code,
			r.Course.Name,
			r.Course.Term,
			r.Course.EndDate,
			r.Progress.Score,
			r.Progress.PercentageGraded,
			r.Remaining,
		})
	}
	return rows
}

func courseworkRows(reports []course.Report) [][]interface{} {
	var rows [][]interface{}
	for _, r := range reports {
		for _, cw := range r.Coursework {
			var grade, weighted interface{}
			if cw.Grade != nil {
				grade = *cw.Grade
				weighted = *cw.Grade * cw.Percentage / 100
			}
			rows = append(rows, []interface{}{
				r.Course.Code,
				cw.Name,
				cw.Type.String(),
				cw.Percentage,
				grade,
				weighted,
			})
		}
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrapf(err, "writing %s header", sheet)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return errors.Wrapf(err, "styling %s header", sheet)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		row := row
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet, i+2)
		}
	}
	return nil
}
