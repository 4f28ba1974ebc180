// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	shared     *validator.Validate
	sharedOnce sync.Once
)

// ValidationError is a single field failure. Field is the JSON name.
type ValidationError struct {
	field string
	tag   string
	param string
	value any
	msg   string
}

func (e *ValidationError) Field() string { return e.field }
func (e *ValidationError) Tag() string   { return e.tag }
func (e *ValidationError) Param() string { return e.param }
func (e *ValidationError) Value() any    { return e.value }
func (e *ValidationError) Error() string { return e.msg }

// RequestValidationError collects every field failure of one request body.
type RequestValidationError struct {
	errors []ValidationError
}

func (ve *RequestValidationError) Errors() []ValidationError { return ve.errors }

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	for i := range ve.errors {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ve.errors[i].msg)
	}
	return b.String()
}

// Detail is the text placed in the {"detail": ...} response body.
func (ve *RequestValidationError) Detail() string {
	return "Validation error: " + ve.Error()
}

// GetValidator returns the process-wide validator. Field names in reported
// errors are taken from json tags so they match the request body.
func GetValidator() *validator.Validate {
	sharedOnce.Do(func() {
		shared = validator.New(validator.WithRequiredStructEnabled())
		shared.RegisterTagNameFunc(jsonFieldName)
	})
	return shared
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// ValidateStruct runs struct tag validation over a decoded request. A nil
// result means the value is valid.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// nil or non-struct argument
		return &RequestValidationError{errors: []ValidationError{
			{field: "body", tag: "invalid", msg: err.Error()},
		}}
	}

	out := &RequestValidationError{errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.errors = append(out.errors, ValidationError{
			field: fe.Field(),
			tag:   fe.Tag(),
			param: fe.Param(),
			value: fe.Value(),
			msg:   describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	f, p := fe.Field(), fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, p)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", f, p, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", f, p, unit)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", f, p)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", f, p)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, p)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", f, p)
	}
	return fmt.Sprintf("%s failed %s validation", f, fe.Tag())
}
