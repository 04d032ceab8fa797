package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a draft value is a plain decimal number after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Draft holds the add/update form exactly as typed.
// Fields stay strings so a failed save can hand the user back their input.
type Draft struct {
	ID       string `json:"id" form:"id"`
	Name     string `json:"name" form:"name"`
	Calories string `json:"calories" form:"calories"`
	Fat      string `json:"fat" form:"fat"`
	Carbs    string `json:"carbs" form:"carbs"`
	Protein  string `json:"protein" form:"protein"`
}

// FieldError reports a single invalid draft field.
type FieldError struct {
	Field   string
	Value   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BlankDraft returns the empty form template.
func BlankDraft() Draft {
	return Draft{}
}

// DraftFromRow pre-fills the form from an existing row.
func DraftFromRow(r Row) Draft {
	return Draft{
		ID:       string(r.ID),
		Name:     r.Name,
		Calories: FormatNumber(r.Calories),
		Fat:      FormatNumber(r.Fat),
		Carbs:    FormatNumber(r.Carbs),
		Protein:  FormatNumber(r.Protein),
	}
}

// IsBlank reports whether every field is empty.
func (d Draft) IsBlank() bool {
	return d == Draft{}
}

// Parse converts the draft into a Row.
// All field problems are returned joined, so the form can show them at once.
func (d Draft) Parse() (Row, error) {
	var errs []error
	row := Row{
		ID:   ID(strings.TrimSpace(d.ID)),
		Name: strings.TrimSpace(d.Name),
	}

	if row.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "required field is empty"})
	}
	if row.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required field is empty"})
	}

	numbers := []struct {
		field string
		value string
		dst   *float64
	}{
		{"calories", d.Calories, &row.Calories},
		{"fat", d.Fat, &row.Fat},
		{"carbs", d.Carbs, &row.Carbs},
		{"protein", d.Protein, &row.Protein},
	}
	for _, n := range numbers {
		f, err := parseNumber(n.value)
		if err != nil {
			errs = append(errs, FieldError{Field: n.field, Value: n.value, Message: err.Error()})
			continue
		}
		*n.dst = f
	}

	if len(errs) > 0 {
		return Row{}, errors.Join(errs...)
	}
	return row, nil
}

// parseNumber accepts decimal input with optional thousands separators.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("required field is empty")
	}
	s = strings.ReplaceAll(s, ",", "")
	if !numericRegex.MatchString(s) {
		return 0, errors.New("invalid number format")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid number format")
	}
	return f, nil
}
