// Package form declares the edit-form contract per entity: an explicit
// field list with defaults and a declarative validation rule per field.
// Validation runs before submit; an invalid form never reaches the network.
package form

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field describes one editable field of an entity form.
type Field struct {
	// Name is the wire (json) name of the field.
	Name string
	// Label is the human-readable name used in error messages.
	Label string
	// Required marks the field as mandatory.
	Required bool
	// Len, when non-zero, is an exact length constraint (10-digit phone,
	// 12-character personal id).
	Len int
}

// Errors maps wire field names to their validation messages.
type Errors map[string]string

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the wire name, matching Field.Name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Schema is the declared form contract of one entity type.
type Schema[T any] struct {
	fields   []Field
	defaults func() T
}

// NewSchema builds a schema. defaults produces the initial form values for
// a "new" edit session; fields drive labels and messages, the validate
// struct tags on T drive the rules.
func NewSchema[T any](defaults func() T, fields ...Field) *Schema[T] {
	return &Schema[T]{fields: fields, defaults: defaults}
}

// Defaults returns a fresh form value.
func (s *Schema[T]) Defaults() T { return s.defaults() }

// Fields returns the declared field list in declaration order.
func (s *Schema[T]) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Validate checks v against its declared rules: the validate struct tags on
// T plus the Required/Len rules of the field list, so a declared rule holds
// even when the struct lacks the matching tag. Returns nil when valid,
// otherwise an Errors with one message per failing field.
func (s *Schema[T]) Validate(v T) error {
	out := Errors{}
	if err := validate.Struct(v); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			out[fe.Field()] = s.message(fe)
		}
	}
	s.applyFieldRules(v, out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// applyFieldRules checks the field list's own rules against v. Tag-derived
// messages win when a field fails both ways.
func (s *Schema[T]) applyFieldRules(v T, out Errors) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}
	byName := wireValues(rv)
	for _, f := range s.fields {
		if _, failed := out[f.Name]; failed {
			continue
		}
		fv, ok := byName[f.Name]
		if !ok {
			continue
		}
		if f.Required && fv.IsZero() {
			out[f.Name] = fmt.Sprintf("%s is required", s.label(f.Name))
			continue
		}
		// Len on an optional field only applies once a value is present.
		if f.Len > 0 && fv.Kind() == reflect.String && fv.Len() > 0 && fv.Len() != f.Len {
			out[f.Name] = fmt.Sprintf("%s must be exactly %d characters", s.label(f.Name), f.Len)
		}
	}
}

// wireValues maps json wire names to struct field values.
func wireValues(rv reflect.Value) map[string]reflect.Value {
	out := make(map[string]reflect.Value, rv.NumField())
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		out[name] = rv.Field(i)
	}
	return out
}

func (s *Schema[T]) label(name string) string {
	for _, f := range s.fields {
		if f.Name == name && f.Label != "" {
			return f.Label
		}
	}
	return name
}

func (s *Schema[T]) message(fe validator.FieldError) string {
	label := s.label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", label)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
