// Package kvrepo implements course.Repository over a kv.Medium.
//
// Courses and coursework are stored under two keys, each holding a JSON array of records
// in insertion order.
package kvrepo

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/core"
	"github.com/365cent/grade-tracker/core/course"
	"github.com/365cent/grade-tracker/storage/kv"
)

const (
	CoursesKey    = "courses"
	CourseworkKey = "coursework"
)

type Option func(repo *courseRepository)

// Strict makes updates and deletes of unknown ids fail with course.ErrNotFound
// instead of being ignored.
func Strict() Option {
	return func(repo *courseRepository) { repo.strict = true }
}

// WithIDGenerator replaces the UUID generator, mostly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(repo *courseRepository) { repo.newID = gen }
}

type courseRepository struct {
	mu     sync.RWMutex
	medium kv.Medium
	logger core.Logger
	strict bool
	newID  func() string
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(medium kv.Medium, logger core.Logger, opts ...Option) course.Repository {
	repo := &courseRepository{
		medium: medium,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// state is a snapshot of both collections.
type state struct {
	courses    []course.Course
	coursework []course.Coursework
	// false when the medium is unavailable
	persisted bool
}

func (st state) courseExists(id string) bool {
	for _, crs := range st.courses {
		if crs.ID == id {
			return true
		}
	}
	return false
}

func (st state) courseworkIndex(id string) int {
	for i, cw := range st.coursework {
		if cw.ID == id {
			return i
		}
	}
	return -1
}

// load reads both collections with a single Get.
func (repo *courseRepository) load(ctx context.Context) (state, error) {
	st := state{
		courses:    []course.Course{},
		coursework: []course.Coursework{},
	}
	entries, err := repo.medium.Get(ctx, CoursesKey, CourseworkKey)
	if err != nil {
		if kv.IsUnavailable(err) {
			return st, nil
		}
		return st, errors.Wrap(err, "reading gradebook")
	}
	st.persisted = true

	if data, ok := entries[CoursesKey]; ok {
		if err = decode(data, &st.courses); err != nil {
			return st, errors.Wrapf(err, "decoding %s", CoursesKey)
		}
	}
	if data, ok := entries[CourseworkKey]; ok {
		if err = decode(data, &st.coursework); err != nil {
			return st, errors.Wrapf(err, "decoding %s", CourseworkKey)
		}
	}
	return st, nil
}

func decode(data []byte, v interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

// save writes the given collections (nil ones are left untouched) in one Put.
func (repo *courseRepository) save(ctx context.Context, courses []course.Course, items []course.Coursework) error {
	entries := make(map[string][]byte, 2)
	if courses != nil {
		data, err := json.Marshal(courses)
		if err != nil {
			return errors.Wrapf(err, "encoding %s", CoursesKey)
		}
		entries[CoursesKey] = data
	}
	if items != nil {
		data, err := json.Marshal(items)
		if err != nil {
			return errors.Wrapf(err, "encoding %s", CourseworkKey)
		}
		entries[CourseworkKey] = data
	}

	if err := repo.medium.Put(ctx, entries); err != nil {
		if kv.IsUnavailable(err) {
			repo.logger.Debug("persistence unavailable, write dropped")
			return nil
		}
		return errors.Wrap(err, "writing gradebook")
	}
	return nil
}

// notFound is the result of an update or delete of an unknown id.
func (repo *courseRepository) notFound(st state) error {
	if repo.strict && st.persisted {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) ListCourses(ctx context.Context) ([]course.Course, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	st, err := repo.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.courses, nil
}

func (repo *courseRepository) ListCoursework(ctx context.Context) ([]course.Coursework, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	st, err := repo.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.coursework, nil
}

func (repo *courseRepository) AddCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	st, err := repo.load(ctx)
	if err != nil {
		return course.Course{}, err
	}
	crs.ID = repo.newID()
	if err = repo.save(ctx, append(st.courses, crs), nil); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) ReplaceCourse(ctx context.Context, crs course.Course) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	st, err := repo.load(ctx)
	if err != nil {
		return err
	}
	for i := range st.courses {
		if st.courses[i].ID == crs.ID {
			st.courses[i] = crs
			return repo.save(ctx, st.courses, nil)
		}
	}
	return repo.notFound(st)
}

// DeleteCourse removes the course and its coursework with a single Put of both keys.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	st, err := repo.load(ctx)
	if err != nil {
		return err
	}
	if !st.courseExists(id) {
		return repo.notFound(st)
	}

	courses := make([]course.Course, 0, len(st.courses))
	for _, crs := range st.courses {
		if crs.ID != id {
			courses = append(courses, crs)
		}
	}
	items := make([]course.Coursework, 0, len(st.coursework))
	for _, cw := range st.coursework {
		if cw.CourseID != id {
			items = append(items, cw)
		}
	}
	return repo.save(ctx, courses, items)
}

func (repo *courseRepository) AddCoursework(ctx context.Context, cw course.Coursework) (course.Coursework, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	st, err := repo.load(ctx)
	if err != nil {
		return course.Coursework{}, err
	}
	if st.persisted && !st.courseExists(cw.CourseID) {
		return course.Coursework{}, course.ErrCourseNotFound
	}
	cw.ID = repo.newID()
	if err = repo.save(ctx, nil, append(st.coursework, cw)); err != nil {
		return course.Coursework{}, err
	}
	return cw, nil
}

func (repo *courseRepository) ReplaceCoursework(ctx context.Context, cw course.Coursework) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	st, err := repo.load(ctx)
	if err != nil {
		return err
	}
	i := st.courseworkIndex(cw.ID)
	if i < 0 {
		return repo.notFound(st)
	}
	if !st.courseExists(cw.CourseID) {
		return course.ErrCourseNotFound
	}
	st.coursework[i] = cw
	return repo.save(ctx, nil, st.coursework)
}

func (repo *courseRepository) SetCoursework(ctx context.Context, items []course.Coursework) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	st, err := repo.load(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(st.coursework))
	for _, cw := range st.coursework {
		known[cw.ID] = struct{}{}
	}
	res, err := repo.prepare(st, items, known, map[string]struct{}{})
	if err != nil {
		return err
	}
	return repo.save(ctx, nil, res)
}

// ReplaceCourseCoursework swaps the coursework of one course for items.
// Coursework of the other courses keeps its order; items are appended after it.
func (repo *courseRepository) ReplaceCourseCoursework(ctx context.Context, courseID string, items []course.Coursework) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	st, err := repo.load(ctx)
	if err != nil {
		return err
	}
	if st.persisted && !st.courseExists(courseID) {
		return course.ErrCourseNotFound
	}

	kept := make([]course.Coursework, 0, len(st.coursework)+len(items))
	known := make(map[string]struct{})
	seen := make(map[string]struct{}, len(st.coursework))
	for _, cw := range st.coursework {
		if cw.CourseID == courseID {
			known[cw.ID] = struct{}{}
		} else {
			kept = append(kept, cw)
			seen[cw.ID] = struct{}{}
		}
	}

	owned := make([]course.Coursework, 0, len(items))
	for _, cw := range items {
		cw.CourseID = courseID
		owned = append(owned, cw)
	}
	res, err := repo.prepare(st, owned, known, seen)
	if err != nil {
		return err
	}
	return repo.save(ctx, nil, append(kept, res...))
}

// prepare assigns ids to new items and checks every item against the current state:
// it must belong to an existing course, and a given id must be one of known and appear
// once (ids in seen are taken). Ids are never reused, so a deleted or made-up id is
// rejected with course.ErrNotFound.
func (repo *courseRepository) prepare(st state, items []course.Coursework, known, seen map[string]struct{}) ([]course.Coursework, error) {
	res := make([]course.Coursework, 0, len(items))
	for _, cw := range items {
		if st.persisted && !st.courseExists(cw.CourseID) {
			return nil, course.ErrCourseNotFound
		}
		if cw.ID == "" {
			cw.ID = repo.newID()
		} else if _, dup := seen[cw.ID]; dup {
			return nil, errors.Wrap(course.ErrDuplicateID, cw.ID)
		} else if _, ok := known[cw.ID]; st.persisted && !ok {
			return nil, errors.Wrapf(course.ErrNotFound, "coursework %s", cw.ID)
		}
		seen[cw.ID] = struct{}{}
		res = append(res, cw)
	}
	return res, nil
}

func (repo *courseRepository) DeleteCoursework(ctx context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	st, err := repo.load(ctx)
	if err != nil {
		return err
	}
	i := st.courseworkIndex(id)
	if i < 0 {
		return repo.notFound(st)
	}
	items := append(st.coursework[:i:i], st.coursework[i+1:]...)
	return repo.save(ctx, nil, items)
}
