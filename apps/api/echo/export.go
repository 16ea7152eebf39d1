package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/core/course"
	"github.com/365cent/grade-tracker/services/export"
)

type exportApi struct {
	svc *course.Service
}

func registerExportAPI(g *echo.Group, svc *course.Service) {
	api := exportApi{svc: svc}

	eg := g.Group("/export")
	eg.GET("/report.xlsx", api.workbook)
	eg.GET("/calendar.ics", api.calendar)
}

func (api *exportApi) workbook(ctx echo.Context) error {
	reports, err := api.svc.Report(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	var buf bytes.Buffer
	if err = export.WriteWorkbook(&buf, reports); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="report.xlsx"`)
	return ctx.Blob(http.StatusOK, export.XLSXContentType, buf.Bytes())
}

func (api *exportApi) calendar(ctx echo.Context) error {
	courses, err := api.svc.QueryCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	var buf bytes.Buffer
	if err = export.WriteCalendar(&buf, courses); err != nil {
		return err
	}
	return ctx.Blob(http.StatusOK, export.ICSContentType, buf.Bytes())
}
