package course

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/core"
)

var (
	// errors
	ErrNotFound       = errors.New("not found")
	ErrCourseNotFound = errors.New("course does not exist")
	ErrDuplicateID    = errors.New("duplicate coursework id")
)

type (
	// Repository is the persistence store of courses and coursework.
	// Reads return copies; every mutation must go through the Repository.
	Repository interface {
		// ListCourses returns all courses in insertion order.
		ListCourses(ctx context.Context) ([]Course, error)
		// ListCoursework returns the coursework of all courses in insertion order.
		ListCoursework(ctx context.Context) ([]Coursework, error)
		// AddCourse assigns a fresh ID to crs and appends it.
		AddCourse(ctx context.Context, crs Course) (Course, error)
		// ReplaceCourse overwrites the course with the same ID. Unknown IDs are ignored
		// unless the repository is strict, in which case ErrNotFound is returned.
		ReplaceCourse(ctx context.Context, crs Course) error
		// DeleteCourse removes a course and all of its coursework in one write.
		DeleteCourse(ctx context.Context, id string) error
		// AddCoursework assigns a fresh ID to cw and appends it.
		// ErrCourseNotFound is returned if cw.CourseID is not an existing course.
		AddCoursework(ctx context.Context, cw Coursework) (Coursework, error)
		ReplaceCoursework(ctx context.Context, cw Coursework) error
		// SetCoursework replaces the whole coursework collection. Items without an ID get a
		// fresh one; any other ID must be one of a current coursework (ErrNotFound otherwise).
		SetCoursework(ctx context.Context, items []Coursework) error
		// ReplaceCourseCoursework replaces the coursework of one course, leaving the others untouched.
		// Given IDs must belong to the course: IDs of other courses give ErrDuplicateID,
		// unknown or deleted ones ErrNotFound.
		ReplaceCourseCoursework(ctx context.Context, courseID string, items []Coursework) error
		DeleteCoursework(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		logger:   logger,
	}
}

// SeedDefaults adds every default course whose code is not used by an existing course yet.
// It returns the added courses. Nothing is added when one of those defaults is invalid.
func (svc *Service) SeedDefaults(ctx context.Context, defaults []NewCourse) ([]Course, error) {
	courses, err := svc.repo.ListCourses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}
	codes := make(map[string]struct{}, len(courses)+len(defaults))
	for _, crs := range courses {
		codes[crs.Code] = struct{}{}
	}

	pending := make([]NewCourse, 0, len(defaults))
	for _, nc := range defaults {
		if err = nc.Validate(svc.validate); err != nil {
			return nil, errors.Wrapf(err, "seeding course %q", nc.Code)
		}
		if _, ok := codes[nc.Code]; ok {
			continue
		}
		codes[nc.Code] = struct{}{}
		pending = append(pending, nc)
	}

	added := make([]Course, 0, len(pending))
	for _, nc := range pending {
		crs, err := svc.CreateCourse(ctx, nc)
		if err != nil {
			return added, errors.Wrapf(err, "seeding course %q", nc.Code)
		}
		added = append(added, crs)
	}
	if len(added) > 0 {
		svc.logger.Info(fmt.Sprintf("seeded %d default course(s)", len(added)))
	}
	return added, nil
}

func (svc *Service) QueryCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.ListCourses(ctx)
}

func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	courses, err := svc.repo.ListCourses(ctx)
	if err != nil {
		return Course{}, errors.Wrap(err, "listing courses")
	}
	for _, crs := range courses {
		if crs.ID == id {
			return crs, nil
		}
	}
	return Course{}, ErrNotFound
}

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	return svc.repo.AddCourse(ctx, nc.course())
}

func (svc *Service) UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	orig, err := svc.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err = uc.Validate(svc.validate, orig); err != nil {
		return Course{}, err
	}
	crs := Course{
		ID:      orig.ID,
		Name:    uc.Name,
		Code:    uc.Code,
		Term:    uc.Term,
		EndDate: uc.EndDate,
	}
	if err = svc.repo.ReplaceCourse(ctx, crs); err != nil {
		return Course{}, errors.Wrap(err, "replacing course")
	}
	return crs, nil
}

// DeleteCourse deletes a course along with its coursework. Unknown IDs are ignored.
func (svc *Service) DeleteCourse(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// QueryCoursework returns the coursework of a course.
func (svc *Service) QueryCoursework(ctx context.Context, courseID string) ([]Coursework, error) {
	items, err := svc.repo.ListCoursework(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing coursework")
	}
	return filterByCourse(items, courseID), nil
}

func (svc *Service) GetCoursework(ctx context.Context, id string) (Coursework, error) {
	items, err := svc.repo.ListCoursework(ctx)
	if err != nil {
		return Coursework{}, errors.Wrap(err, "listing coursework")
	}
	for _, cw := range items {
		if cw.ID == id {
			return cw, nil
		}
	}
	return Coursework{}, ErrNotFound
}

func (svc *Service) AddCoursework(ctx context.Context, courseID string, nw NewCoursework) (Coursework, error) {
	if err := nw.Validate(svc.validate); err != nil {
		return Coursework{}, err
	}
	return svc.repo.AddCoursework(ctx, nw.coursework(courseID))
}

func (svc *Service) UpdateCoursework(ctx context.Context, id string, uw UpdateCoursework) (Coursework, error) {
	orig, err := svc.GetCoursework(ctx, id)
	if err != nil {
		return Coursework{}, err
	}
	if err = uw.Validate(svc.validate); err != nil {
		return Coursework{}, err
	}
	cw := uw.apply(orig)
	if err = svc.repo.ReplaceCoursework(ctx, cw); err != nil {
		return Coursework{}, errors.Wrap(err, "replacing coursework")
	}
	return cw, nil
}

// SetGrade sets the grade of a coursework; a nil grade marks it as not graded yet.
func (svc *Service) SetGrade(ctx context.Context, id string, grade *float64) (Coursework, error) {
	in := GradeInput{Grade: grade}
	if err := svc.validate.Struct(in); err != nil {
		return Coursework{}, err
	}
	cw, err := svc.GetCoursework(ctx, id)
	if err != nil {
		return Coursework{}, err
	}
	cw.Grade = nil
	if grade != nil {
		g := *grade
		cw.Grade = &g
	}
	if err = svc.repo.ReplaceCoursework(ctx, cw); err != nil {
		return Coursework{}, errors.Wrap(err, "replacing coursework")
	}
	return cw, nil
}

// ReplaceCourseCoursework replaces all the coursework of a course with items.
// Items without an ID are added, the others must be coursework of the course
// (ErrNotFound for deleted or unknown IDs). Every item is validated first.
func (svc *Service) ReplaceCourseCoursework(ctx context.Context, courseID string, items []Coursework) ([]Coursework, error) {
	if _, err := svc.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	cleaned := make([]Coursework, 0, len(items))
	for i, cw := range items {
		nw := NewCoursework{Name: cw.Name, Type: cw.Type, Percentage: cw.Percentage, Grade: cw.Grade}
		if err := nw.Validate(svc.validate); err != nil {
			return nil, errors.Wrapf(err, "validating coursework #%d", i)
		}
		item := nw.coursework(courseID)
		item.ID = cw.ID
		cleaned = append(cleaned, item)
	}
	if err := svc.repo.ReplaceCourseCoursework(ctx, courseID, cleaned); err != nil {
		return nil, errors.Wrap(err, "replacing course coursework")
	}
	return svc.QueryCoursework(ctx, courseID)
}

// DeleteCoursework deletes a coursework. Unknown IDs are ignored.
func (svc *Service) DeleteCoursework(ctx context.Context, id string) error {
	return svc.repo.DeleteCoursework(ctx, id)
}

// CourseProgress computes the running grade of a course.
func (svc *Service) CourseProgress(ctx context.Context, courseID string) (Progress, error) {
	items, err := svc.QueryCoursework(ctx, courseID)
	if err != nil {
		return Progress{}, err
	}
	return ProgressOf(items), nil
}

// Overview returns every course along with its progress.
func (svc *Service) Overview(ctx context.Context) ([]Summary, error) {
	reports, err := svc.Report(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, Summary{Course: r.Course, Progress: r.Progress})
	}
	return summaries, nil
}

// Report returns every course along with its coursework and grading figures.
func (svc *Service) Report(ctx context.Context) ([]Report, error) {
	courses, err := svc.repo.ListCourses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}
	items, err := svc.repo.ListCoursework(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing coursework")
	}

	reports := make([]Report, 0, len(courses))
	for _, crs := range courses {
		work := filterByCourse(items, crs.ID)
		reports = append(reports, Report{
			Course:     crs,
			Coursework: work,
			Progress:   ProgressOf(work),
			Remaining:  Remaining(work),
		})
	}
	return reports, nil
}
