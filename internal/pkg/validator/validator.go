package validator

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// Validate struct fields, keyed by json field name.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		errors[err.Field()] = err.Tag()
	}
	return errors
}

// Var validates a single value against a tag expression such as "required,email".
func Var(v interface{}, tag string) bool {
	return validate.Var(v, tag) == nil
}

// Describe renders field errors as a stable, human readable sentence.
func Describe(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s failed %s", k, fields[k]))
	}
	return strings.Join(parts, "; ")
}

// FieldError carries the failed rule per json field.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	return Describe(e.Fields)
}
