package tests

import (
	"bytes"
	"net/http"
	"testing"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/365cent/grade-tracker/services/export"
	testutil "github.com/365cent/grade-tracker/tests"
)

func Test_exportApi(t *testing.T) {
	srv, svc := setup(t)
	crs := testutil.CreateCourse(t, svc, "Compilers", "CS 4447")
	testutil.AddCoursework(t, svc, crs.ID, "Midterm", 40, testutil.Float(80))

	t.Run("workbook", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/export/report.xlsx")
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, export.XLSXContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(export.CourseworkSheet)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Midterm", rows[1][1])
	})

	t.Run("calendar", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/export/calendar.ics")
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, export.ICSContentType, rec.Header().Get("Content-Type"))

		cal, err := ics.ParseCalendar(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		events := cal.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "CS 4447 Compilers ends", events[0].GetProperty(ics.ComponentPropertySummary).Value)
	})
}
