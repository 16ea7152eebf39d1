package testutil

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/365cent/grade-tracker/apps/shared"
	"github.com/365cent/grade-tracker/core/course"
	logsvc "github.com/365cent/grade-tracker/services/logger"
	"github.com/365cent/grade-tracker/storage/database/kvrepo"
	"github.com/365cent/grade-tracker/storage/kv"
	"github.com/365cent/grade-tracker/storage/kv/memkv"
)

// NewService returns a course service persisting to medium (an in-memory one if nil).
func NewService(medium kv.Medium, opts ...kvrepo.Option) (*course.Service, course.Repository) {
	validate, _ := shared.NewValidator()
	return NewServiceWithValidator(medium, validate, opts...)
}

// NewServiceWithValidator is NewService with a caller-supplied validator, so that
// validation errors can be translated by the translator paired with it.
func NewServiceWithValidator(medium kv.Medium, validate *validator.Validate, opts ...kvrepo.Option) (*course.Service, course.Repository) {
	if medium == nil {
		medium = memkv.New()
	}
	logger := logsvc.NewNopLogger()
	repo := kvrepo.NewCourseRepository(medium, logger, opts...)
	return course.NewService(repo, validate, logger), repo
}

func CreateCourse(t *testing.T, svc *course.Service, name, code string) course.Course {
	t.Helper()
	crs, err := svc.CreateCourse(context.Background(), course.NewCourse{
		Name:    name,
		Code:    code,
		Term:    "2025 Winter Graduate",
		EndDate: "2026-05-01",
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func AddCoursework(t *testing.T, svc *course.Service, courseID, name string, pct float64, grade *float64) course.Coursework {
	t.Helper()
	cw, err := svc.AddCoursework(context.Background(), courseID, course.NewCoursework{
		Name:       name,
		Type:       course.TypeAssignment,
		Percentage: pct,
		Grade:      grade,
	})
	if err != nil {
		t.Fatalf("addCoursework() failed: %v", err)
	}
	return cw
}

func Float(f float64) *float64 { return &f }
