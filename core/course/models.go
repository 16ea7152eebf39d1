package course

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/core"
)

// DateLayout is the ISO 8601 calendar date layout of Course.EndDate.
const DateLayout = "2006-01-02"

type CourseworkType string

// Coursework types
const (
	TypeAssignment    CourseworkType = "assignment"
	TypeLab           CourseworkType = "lab"
	TypeParticipation CourseworkType = "participation"
	TypeQuiz          CourseworkType = "quiz"
	TypeExam          CourseworkType = "exam"
	TypeProject       CourseworkType = "project"
	TypeOther         CourseworkType = "other"
)

var CourseworkTypes = []CourseworkType{
	TypeAssignment,
	TypeLab,
	TypeParticipation,
	TypeQuiz,
	TypeExam,
	TypeProject,
	TypeOther,
}

func (t CourseworkType) Valid() bool {
	for _, typ := range CourseworkTypes {
		if t == typ {
			return true
		}
	}
	return false
}

func (t CourseworkType) String() string { return string(t) }

// ParseCourseworkType returns the CourseworkType matching s (case-insensitive).
func ParseCourseworkType(s string) (CourseworkType, error) {
	typ := CourseworkType(core.CleanString(s, true /* lower */))
	if !typ.Valid() {
		msg := "unknown coursework type " + `"` + s + `"`
		if suggestion := SuggestType(s); suggestion != "" {
			msg += ", did you mean " + `"` + suggestion.String() + `"?`
		}
		return "", errors.New(msg)
	}
	return typ, nil
}

type Course struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Term    string `json:"term"`
	EndDate string `json:"endDate"`
}

type Coursework struct {
	ID         string         `json:"id"`
	CourseID   string         `json:"courseId"`
	Name       string         `json:"name"`
	Type       CourseworkType `json:"type"`
	Percentage float64        `json:"percentage"`
	Grade      *float64       `json:"grade,omitempty"`
}

func (cw Coursework) Graded() bool { return cw.Grade != nil }

// clone returns a copy of cw that does not share its Grade pointer.
func (cw Coursework) clone() Coursework {
	if cw.Grade != nil {
		g := *cw.Grade
		cw.Grade = &g
	}
	return cw
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name    string `json:"name" yaml:"name" validate:"required,notblank"`
	Code    string `json:"code" yaml:"code"`
	Term    string `json:"term" yaml:"term"`
	EndDate string `json:"endDate" yaml:"endDate" validate:"required,datetime=2006-01-02"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code)
	nc.Term = core.CleanString(nc.Term)
	nc.EndDate = core.CleanString(nc.EndDate)
	return validate.Struct(nc)
}

func (nc NewCourse) course() Course {
	return Course{
		Name:    nc.Name,
		Code:    nc.Code,
		Term:    nc.Term,
		EndDate: nc.EndDate,
	}
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Blank fields keep their original value.
type UpdateCourse struct {
	Name    string `json:"name" validate:"required,notblank"`
	Code    string `json:"code"`
	Term    string `json:"term"`
	EndDate string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate, orig Course) error {
	uc.Name = cleanOr(uc.Name, orig.Name)
	uc.Code = cleanOr(uc.Code, orig.Code)
	uc.Term = cleanOr(uc.Term, orig.Term)
	uc.EndDate = cleanOr(uc.EndDate, orig.EndDate)
	return validate.Struct(uc)
}

// NewCoursework contains information needed to add a Coursework to a Course.
type NewCoursework struct {
	Name       string         `json:"name" validate:"required,notblank"`
	Type       CourseworkType `json:"type" validate:"required,courseworktype"`
	Percentage float64        `json:"percentage" validate:"gt=0,lte=100"`
	Grade      *float64       `json:"grade,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (nw *NewCoursework) Validate(validate *validator.Validate) error {
	nw.Name = core.CleanString(nw.Name)
	nw.Type = CourseworkType(core.CleanString(string(nw.Type), true /* lower */))
	return validate.Struct(nw)
}

func (nw NewCoursework) coursework(courseID string) Coursework {
	return Coursework{
		CourseID:   courseID,
		Name:       nw.Name,
		Type:       nw.Type,
		Percentage: nw.Percentage,
		Grade:      nw.Grade,
	}.clone()
}

// UpdateCoursework defines what information may be provided to modify an existing Coursework.
// Nil fields keep their original value; use Service.SetGrade to clear a grade.
type UpdateCoursework struct {
	Name       *string         `json:"name" validate:"omitempty,notblank"`
	Type       *CourseworkType `json:"type" validate:"omitempty,courseworktype"`
	Percentage *float64        `json:"percentage" validate:"omitempty,gt=0,lte=100"`
	Grade      *float64        `json:"grade" validate:"omitempty,gte=0,lte=100"`
}

func (uw *UpdateCoursework) Validate(validate *validator.Validate) error {
	if uw.Name != nil {
		name := core.CleanString(*uw.Name)
		uw.Name = &name
	}
	if uw.Type != nil {
		typ := CourseworkType(core.CleanString(string(*uw.Type), true /* lower */))
		uw.Type = &typ
	}
	return validate.Struct(uw)
}

// apply merges the set fields of uw into cw.
func (uw UpdateCoursework) apply(cw Coursework) Coursework {
	if uw.Name != nil {
		cw.Name = *uw.Name
	}
	if uw.Type != nil {
		cw.Type = *uw.Type
	}
	if uw.Percentage != nil {
		cw.Percentage = *uw.Percentage
	}
	if uw.Grade != nil {
		g := *uw.Grade
		cw.Grade = &g
	}
	return cw
}

// GradeInput is the payload of a grade update; a nil Grade clears it.
type GradeInput struct {
	Grade *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
}

func cleanOr(s, orig string) string {
	if s = core.CleanString(s); s != "" {
		return s
	}
	return orig
}

// Progress is the running grade of a Course.
// Score is expressed as a percentage of the whole course, not of the graded part.
type Progress struct {
	Score            float64 `json:"score"`
	PercentageGraded float64 `json:"percentageGraded"`
}

// Summary is a Course along with its Progress.
type Summary struct {
	Course
	Progress Progress `json:"progress"`
}

// Report is a Course with its Coursework and grading figures.
type Report struct {
	Course     Course       `json:"course"`
	Coursework []Coursework `json:"coursework"`
	Progress   Progress     `json:"progress"`
	Remaining  float64      `json:"remaining"`
}

// TypeNames returns the coursework types as strings, for usage messages.
func TypeNames() string {
	names := make([]string, 0, len(CourseworkTypes))
	for _, t := range CourseworkTypes {
		names = append(names, t.String())
	}
	return strings.Join(names, "|")
}
