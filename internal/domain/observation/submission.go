package observation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Submission is the raw user input to the intake pipeline. Photo is the only
// optional field.
type Submission struct {
	Floor       string `validate:"required"`
	Location    string `validate:"required"`
	Description string `validate:"required"`
	Photo       []byte
}

// ValidationError reports missing required submission fields. It is raised
// before any oracle call is made and must abort the submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required fields missing: %s", strings.Join(e.Fields, ", "))
}

var validate = validator.New()

// Validate checks the required fields and returns a *ValidationError naming
// each missing one.
func (s Submission) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return &ValidationError{Fields: fields}
}
