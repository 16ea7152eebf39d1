package course

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const defaultTerm = "2025 Winter Graduate"

// DefaultCourses returns the courses seeded into an empty gradebook.
func DefaultCourses() []NewCourse {
	return []NewCourse{
		{Name: "CYBERSECURITY THREATS AND MITIGATION", Code: "COMPSCI 9851 001", Term: defaultTerm, EndDate: "2026-05-01"},
		{Name: "MACHINE LEARNING", Code: "COMPSCI 9860 001", Term: defaultTerm, EndDate: "2026-05-01"},
		{Name: "DEPENDABLE ARTIFICIAL INTELLIGENCE SYSTEMS", Code: "COMPSCI 9874 001", Term: defaultTerm, EndDate: "2026-05-01"},
	}
}

type seedFile struct {
	Courses []NewCourse `yaml:"courses"`
}

// LoadSeedFile reads default courses from a YAML document of the form:
//
//	courses:
//	  - name: MACHINE LEARNING
//	    code: COMPSCI 9860 001
//	    term: 2025 Winter Graduate
//	    endDate: "2026-05-01"
func LoadSeedFile(path string) ([]NewCourse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading seed file")
	}
	var sf seedFile
	if err = yaml.Unmarshal(data, &sf); err != nil {
		return nil, errors.Wrapf(err, "parsing seed file %s", path)
	}
	return sf.Courses, nil
}
