package export

import (
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/core/course"
)

const (
	ICSContentType = "text/calendar; charset=utf-8"
	productID      = "-//grade-tracker//gradebook//EN"
)

// Now is replaced in tests.
var Now = time.Now

// WriteCalendar writes an iCalendar with an all-day event on the end date of every course.
// Courses with an unparsable end date are skipped.
func WriteCalendar(w io.Writer, courses []course.Course) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Course end dates")

	stamp := Now().UTC()
	for _, crs := range courses {
		end, err := time.Parse(course.DateLayout, crs.EndDate)
		if err != nil {
			continue
		}
		event := cal.AddEvent(crs.ID + "@grade-tracker")
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(end)
		event.SetAllDayEndAt(end.AddDate(0, 0, 1))
		event.SetSummary(summary(crs))
		if crs.Term != "" {
			event.SetDescription(crs.Term)
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return errors.Wrap(err, "writing calendar")
	}
	return nil
}

func summary(crs course.Course) string {
	if crs.Code == "" {
		return crs.Name + " ends"
	}
	return crs.Code + " " + crs.Name + " ends"
}
