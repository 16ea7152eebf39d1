package kvrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/365cent/grade-tracker/core/course"
	logsvc "github.com/365cent/grade-tracker/services/logger"
	"github.com/365cent/grade-tracker/storage/kv"
	"github.com/365cent/grade-tracker/storage/kv/memkv"
)

var ctx = context.Background()

func float(f float64) *float64 { return &f }

func sequentialIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func setup(t *testing.T, opts ...Option) (course.Repository, *memkv.Medium) {
	t.Helper()
	medium := memkv.New()
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	return NewCourseRepository(medium, logsvc.NewNopLogger(), opts...), medium
}

func addCourse(t *testing.T, repo course.Repository, name string) course.Course {
	t.Helper()
	crs, err := repo.AddCourse(ctx, course.Course{Name: name, Code: name, Term: "Fall", EndDate: "2026-05-01"})
	require.NoError(t, err)
	return crs
}

func addCoursework(t *testing.T, repo course.Repository, courseID, name string, pct float64, grade *float64) course.Coursework {
	t.Helper()
	cw, err := repo.AddCoursework(ctx, course.Coursework{
		CourseID: courseID, Name: name, Type: course.TypeAssignment, Percentage: pct, Grade: grade,
	})
	require.NoError(t, err)
	return cw
}

func TestCourseRepository_AddCourse(t *testing.T) {
	repo := NewCourseRepository(memkv.New(), logsvc.NewNopLogger())

	in := course.Course{ID: "ignored", Name: "Compilers", Code: "CS 4447", Term: "Fall", EndDate: "2026-05-01"}
	a, err := repo.AddCourse(ctx, in)
	require.NoError(t, err)
	b, err := repo.AddCourse(ctx, in)
	require.NoError(t, err)

	assert.NotEqual(t, "ignored", a.ID)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	want := in
	want.ID = a.ID
	assert.Equal(t, want, a)

	courses, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Course{a, b}, courses)
}

func TestCourseRepository_AddCoursework_roundTrip(t *testing.T) {
	repo, _ := setup(t)
	crs := addCourse(t, repo, "Compilers")

	in := course.Coursework{CourseID: crs.ID, Name: "Midterm", Type: course.TypeExam, Percentage: 40, Grade: float(80)}
	cw, err := repo.AddCoursework(ctx, in)
	require.NoError(t, err)

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	want := in
	want.ID = cw.ID
	assert.Equal(t, want, items[0])
}

func TestCourseRepository_readsAreCopies(t *testing.T) {
	repo, _ := setup(t)
	crs := addCourse(t, repo, "Compilers")
	addCoursework(t, repo, crs.ID, "Lab", 10, float(50))

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	*items[0].Grade = 0
	items[0].Name = "changed"

	items, err = repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lab", items[0].Name)
	assert.Equal(t, 50.0, *items[0].Grade)
}

func TestCourseRepository_AddCoursework_orphan(t *testing.T) {
	repo, _ := setup(t)
	_, err := repo.AddCoursework(ctx, course.Coursework{CourseID: "nope", Name: "Lab", Percentage: 10})
	assert.Equal(t, course.ErrCourseNotFound, err)

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCourseRepository_DeleteCourse_cascades(t *testing.T) {
	repo, medium := setup(t)
	a := addCourse(t, repo, "A")
	b := addCourse(t, repo, "B")
	addCoursework(t, repo, a.ID, "a1", 10, nil)
	b1 := addCoursework(t, repo, b.ID, "b1", 10, nil)
	addCoursework(t, repo, a.ID, "a2", 10, float(1))
	b2 := addCoursework(t, repo, b.ID, "b2", 20, float(2))

	require.NoError(t, repo.DeleteCourse(ctx, a.ID))

	courses, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Course{b}, courses)

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Coursework{b1, b2}, items)

	// both keys were rewritten
	raw, err := medium.Get(ctx, CoursesKey, CourseworkKey)
	require.NoError(t, err)
	var stored []course.Coursework
	require.NoError(t, json.Unmarshal(raw[CourseworkKey], &stored))
	assert.Len(t, stored, 2)
}

// recordingMedium counts the Puts that reach the wrapped medium.
type recordingMedium struct {
	kv.Medium
	puts []map[string][]byte
}

func (m *recordingMedium) Put(ctx context.Context, entries map[string][]byte) error {
	m.puts = append(m.puts, entries)
	return m.Medium.Put(ctx, entries)
}

func TestCourseRepository_DeleteCourse_singleWrite(t *testing.T) {
	medium := &recordingMedium{Medium: memkv.New()}
	repo := NewCourseRepository(medium, logsvc.NewNopLogger())
	crs := addCourse(t, repo, "A")
	addCoursework(t, repo, crs.ID, "a1", 10, nil)
	medium.puts = nil

	require.NoError(t, repo.DeleteCourse(ctx, crs.ID))
	require.Len(t, medium.puts, 1)
	assert.Contains(t, medium.puts[0], CoursesKey)
	assert.Contains(t, medium.puts[0], CourseworkKey)
}

func TestCourseRepository_notFound(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{name: "permissive"},
		{name: "strict", opts: []Option{Strict()}, wantErr: course.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := setup(t, tt.opts...)
			crs := addCourse(t, repo, "A")
			cw := addCoursework(t, repo, crs.ID, "a1", 10, nil)

			err := repo.ReplaceCourse(ctx, course.Course{ID: "nope", Name: "ghost"})
			assert.Equal(t, tt.wantErr, err, "ReplaceCourse()")
			err = repo.DeleteCourse(ctx, "nope")
			assert.Equal(t, tt.wantErr, err, "DeleteCourse()")
			err = repo.ReplaceCoursework(ctx, course.Coursework{ID: "nope", CourseID: crs.ID})
			assert.Equal(t, tt.wantErr, err, "ReplaceCoursework()")
			err = repo.DeleteCoursework(ctx, "nope")
			assert.Equal(t, tt.wantErr, err, "DeleteCoursework()")

			courses, err := repo.ListCourses(ctx)
			require.NoError(t, err)
			assert.Equal(t, []course.Course{crs}, courses)
			items, err := repo.ListCoursework(ctx)
			require.NoError(t, err)
			assert.Equal(t, []course.Coursework{cw}, items)
		})
	}
}

func TestCourseRepository_ReplaceCourse(t *testing.T) {
	repo, _ := setup(t)
	a := addCourse(t, repo, "A")
	b := addCourse(t, repo, "B")

	a.Name = "A prime"
	require.NoError(t, repo.ReplaceCourse(ctx, a))

	courses, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Course{a, b}, courses)
}

func TestCourseRepository_ReplaceCoursework(t *testing.T) {
	repo, _ := setup(t)
	a := addCourse(t, repo, "A")
	b := addCourse(t, repo, "B")
	cw := addCoursework(t, repo, a.ID, "a1", 10, nil)
	other := addCoursework(t, repo, a.ID, "a2", 10, nil)

	cw.Grade = float(95)
	cw.CourseID = b.ID
	require.NoError(t, repo.ReplaceCoursework(ctx, cw))

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Coursework{cw, other}, items)

	cw.CourseID = "nope"
	assert.Equal(t, course.ErrCourseNotFound, repo.ReplaceCoursework(ctx, cw))
}

func TestCourseRepository_DeleteCoursework(t *testing.T) {
	repo, _ := setup(t)
	crs := addCourse(t, repo, "A")
	w1 := addCoursework(t, repo, crs.ID, "1", 10, nil)
	w2 := addCoursework(t, repo, crs.ID, "2", 10, nil)
	w3 := addCoursework(t, repo, crs.ID, "3", 10, nil)

	require.NoError(t, repo.DeleteCoursework(ctx, w2.ID))

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Coursework{w1, w3}, items)
}

func TestCourseRepository_SetCoursework(t *testing.T) {
	repo, _ := setup(t)
	a := addCourse(t, repo, "A")
	b := addCourse(t, repo, "B")
	old := addCoursework(t, repo, a.ID, "old", 10, nil)
	gone := addCoursework(t, repo, b.ID, "gone", 10, nil)
	require.NoError(t, repo.DeleteCoursework(ctx, gone.ID))

	tests := []struct {
		name    string
		items   []course.Coursework
		wantErr error
	}{
		{
			name:    "unknown course",
			items:   []course.Coursework{{CourseID: "nope", Name: "x"}},
			wantErr: course.ErrCourseNotFound,
		},
		{
			name:    "duplicate ids",
			items:   []course.Coursework{{ID: "x", CourseID: a.ID}, {ID: "x", CourseID: b.ID}},
			wantErr: course.ErrDuplicateID,
		},
		{
			name:    "deleted id",
			items:   []course.Coursework{{ID: gone.ID, CourseID: b.ID, Name: "back"}},
			wantErr: course.ErrNotFound,
		},
		{
			name:    "made-up id",
			items:   []course.Coursework{{ID: "mine", CourseID: a.ID, Name: "x"}},
			wantErr: course.ErrNotFound,
		},
		{
			name: "valid",
			items: []course.Coursework{
				{ID: old.ID, CourseID: a.ID, Name: "kept", Percentage: 20},
				{CourseID: b.ID, Name: "new", Percentage: 30},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.SetCoursework(ctx, tt.items)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("SetCoursework() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, old.ID, items[0].ID)
	assert.Equal(t, "kept", items[0].Name)
	assert.NotEmpty(t, items[1].ID)
	assert.Equal(t, "new", items[1].Name)

	require.NoError(t, repo.SetCoursework(ctx, nil))
	items, err = repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCourseRepository_ReplaceCourseCoursework(t *testing.T) {
	repo, _ := setup(t)
	a := addCourse(t, repo, "A")
	b := addCourse(t, repo, "B")
	a1 := addCoursework(t, repo, a.ID, "a1", 10, nil)
	b1 := addCoursework(t, repo, b.ID, "b1", 10, nil)
	addCoursework(t, repo, a.ID, "a2", 10, nil)
	b2 := addCoursework(t, repo, b.ID, "b2", 10, nil)

	a1.Grade = float(60)
	err := repo.ReplaceCourseCoursework(ctx, a.ID, []course.Coursework{
		a1,
		{CourseID: b.ID, Name: "a3", Percentage: 50}, // course id is forced to a
	})
	require.NoError(t, err)

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, []course.Coursework{b1, b2, a1}, items[:3])
	assert.Equal(t, a.ID, items[3].CourseID)
	assert.Equal(t, "a3", items[3].Name)

	// ids of other courses cannot be stolen
	err = repo.ReplaceCourseCoursework(ctx, a.ID, []course.Coursework{b1})
	assert.Equal(t, course.ErrDuplicateID, errors.Cause(err))

	// ids that no longer exist or never did are not stored
	a3 := items[3]
	require.NoError(t, repo.DeleteCoursework(ctx, a3.ID))
	for _, id := range []string{a3.ID, "client-chosen"} {
		err = repo.ReplaceCourseCoursework(ctx, a.ID, []course.Coursework{{ID: id, Name: "back", Percentage: 10}})
		assert.Equal(t, course.ErrNotFound, errors.Cause(err), id)
	}
	err = repo.ReplaceCourseCoursework(ctx, a.ID, []course.Coursework{a1, a1})
	assert.Equal(t, course.ErrDuplicateID, errors.Cause(err))

	items, err = repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Coursework{b1, b2, a1}, items)

	err = repo.ReplaceCourseCoursework(ctx, "nope", nil)
	assert.Equal(t, course.ErrCourseNotFound, err)

	// emptying a course
	require.NoError(t, repo.ReplaceCourseCoursework(ctx, a.ID, nil))
	items, err = repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Coursework{b1, b2}, items)
}

func TestCourseRepository_noFieldValidation(t *testing.T) {
	repo, _ := setup(t)
	crs, err := repo.AddCourse(ctx, course.Course{})
	require.NoError(t, err)

	cw, err := repo.AddCoursework(ctx, course.Coursework{
		CourseID: crs.ID, Type: "essay", Percentage: -5, Grade: float(250),
	})
	require.NoError(t, err)

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Coursework{cw}, items)
}

func TestCourseRepository_persistedLayout(t *testing.T) {
	repo, medium := setup(t)
	crs := addCourse(t, repo, "A")
	addCoursework(t, repo, crs.ID, "a1", 40, nil)

	raw, err := medium.Get(ctx, CoursesKey, CourseworkKey)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":"id-1","name":"A","code":"A","term":"Fall","endDate":"2026-05-01"}]`,
		string(raw[CoursesKey]))
	assert.JSONEq(t,
		`[{"id":"id-2","courseId":"id-1","name":"a1","type":"assignment","percentage":40}]`,
		string(raw[CourseworkKey]))

	// records written by another process are read back
	require.NoError(t, medium.Put(ctx, map[string][]byte{
		CoursesKey:    []byte(`[{"id":"x","name":"X","code":"","term":"","endDate":"2026-01-01"}]`),
		CourseworkKey: []byte(`[{"id":"y","courseId":"x","name":"Y","type":"quiz","percentage":10,"grade":90}]`),
	}))
	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Coursework{
		{ID: "y", CourseID: "x", Name: "Y", Type: course.TypeQuiz, Percentage: 10, Grade: float(90)},
	}, items)
}

func TestCourseRepository_corruptData(t *testing.T) {
	repo, medium := setup(t)
	require.NoError(t, medium.Put(ctx, map[string][]byte{CoursesKey: []byte(`{"not":"an array"}`)}))

	_, err := repo.ListCourses(ctx)
	assert.Error(t, err)
	_, err = repo.AddCourse(ctx, course.Course{Name: "A"})
	assert.Error(t, err)
}

func TestCourseRepository_nullCollections(t *testing.T) {
	repo, medium := setup(t)
	require.NoError(t, medium.Put(ctx, map[string][]byte{CoursesKey: []byte(`null`)}))

	courses, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestCourseRepository_unavailable(t *testing.T) {
	repo := NewCourseRepository(kv.Unavailable(), logsvc.NewNopLogger(), Strict())

	crs, err := repo.AddCourse(ctx, course.Course{Name: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, crs.ID)

	cw, err := repo.AddCoursework(ctx, course.Coursework{CourseID: crs.ID, Name: "a1"})
	require.NoError(t, err)
	assert.NotEmpty(t, cw.ID)

	courses, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.NoError(t, repo.ReplaceCourse(ctx, crs))
	assert.NoError(t, repo.DeleteCourse(ctx, crs.ID))
	assert.NoError(t, repo.ReplaceCoursework(ctx, cw))
	assert.NoError(t, repo.SetCoursework(ctx, []course.Coursework{cw}))
	assert.NoError(t, repo.ReplaceCourseCoursework(ctx, crs.ID, nil))
	assert.NoError(t, repo.DeleteCoursework(ctx, cw.ID))
}

// failingMedium fails every operation with a non-availability error.
type failingMedium struct{ err error }

func (m failingMedium) Get(context.Context, ...string) (map[string][]byte, error) { return nil, m.err }
func (m failingMedium) Put(context.Context, map[string][]byte) error             { return m.err }
func (m failingMedium) Close() error                                             { return nil }

func TestCourseRepository_mediumErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := NewCourseRepository(failingMedium{err: boom}, logsvc.NewNopLogger())

	_, err := repo.ListCourses(ctx)
	assert.Equal(t, boom, errors.Cause(err))
	_, err = repo.AddCourse(ctx, course.Course{Name: "A"})
	assert.Equal(t, boom, errors.Cause(err))
	err = repo.DeleteCourse(ctx, "x")
	assert.Equal(t, boom, errors.Cause(err))
}

func TestCourseRepository_concurrentAdds(t *testing.T) {
	repo := NewCourseRepository(memkv.New(), logsvc.NewNopLogger())
	crs := addCourse(t, repo, "A")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AddCoursework(ctx, course.Coursework{CourseID: crs.ID, Name: fmt.Sprint(i), Percentage: 5})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	items, err := repo.ListCoursework(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 20)
}
