package event

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidEvent = crerr.New("invalid event")

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidationError describes the first rule an event broke. Reason is a stable
// "field:rule" key suitable for counting.
type ValidationError struct {
	Kind   Kind
	Field  string
	Rule   string
	Param  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s %s failed %s=%s (value %v)", e.Kind, e.Field, e.Rule, e.Param, e.Value)
	}
	return fmt.Sprintf("%s %s failed %s (value %v)", e.Kind, e.Field, e.Rule, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEvent
}

// NewReferenceError reports an id that points at no stored row.
func NewReferenceError(kind Kind, ref Ref) *ValidationError {
	field := string(ref.Kind) + "_id"
	return &ValidationError{
		Kind:   kind,
		Field:  field,
		Rule:   "exists",
		Value:  ref.ID,
		Reason: field + ":exists",
	}
}

// Validate checks range and shape rules declared on the event's struct tags.
func Validate(e Event) error {
	if e == nil {
		return crerr.Wrap(ErrInvalidEvent, "nil event")
	}
	err := structValidator.Struct(e)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return crerr.Wrapf(ErrInvalidEvent, "%s: %v", e.Kind(), err)
	}

	fe := fieldErrs[0]
	field := snakeCase(fe.Field())
	return &ValidationError{
		Kind:   e.Kind(),
		Field:  field,
		Rule:   fe.Tag(),
		Param:  fe.Param(),
		Value:  fe.Value(),
		Reason: field + ":" + fe.Tag(),
	}
}

func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
