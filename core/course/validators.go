package course

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	courseworkTypeTag  = "courseworktype"
	courseworkTypeText = "{0} must be one of " + TypeNames()

	dateTag  = "datetime"
	dateText = "{0} must be a date formatted as YYYY-MM-DD"

	// minimum similarity ratio for a type suggestion
	suggestMinRatio = .6
)

// InitValidators registers the course validators and their translations.
// core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(courseworkTypeTag, courseworkTypeValidation)
	_ = validate.RegisterTranslation(
		courseworkTypeTag, translator,
		func(t ut.Translator) error { return t.Add(courseworkTypeTag, courseworkTypeText, false) },
		translateCourseworkType,
	)

	_ = validate.RegisterTranslation(
		dateTag, translator,
		func(t ut.Translator) error { return t.Add(dateTag, dateText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(dateTag, fe.Field())
			return s
		},
	)
}

// SuggestType returns the coursework type closest to s, or "" when none is close enough.
func SuggestType(s string) CourseworkType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var (
		best      CourseworkType
		bestRatio float64
	)
	for _, typ := range CourseworkTypes {
		ratio := difflib.NewMatcher(strings.Split(s, ""), strings.Split(typ.String(), "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = typ, ratio
		}
	}
	if bestRatio < suggestMinRatio {
		return ""
	}
	return best
}

// Custom Validators

// courseworkTypeValidation checks that the field is one of CourseworkTypes.
func courseworkTypeValidation(fl validator.FieldLevel) bool {
	return CourseworkType(fl.Field().String()).Valid()
}

func translateCourseworkType(t ut.Translator, fe validator.FieldError) string {
	msg, _ := t.T(courseworkTypeTag, fe.Field())
	var val string
	switch v := fe.Value().(type) {
	case CourseworkType:
		val = string(v)
	case *CourseworkType:
		if v != nil {
			val = string(*v)
		}
	}
	if suggestion := SuggestType(val); suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return msg
}
