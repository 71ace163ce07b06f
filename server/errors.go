// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationError is returned, as a 422, for request bodies that cannot be
// decoded or fail field validation.
type ValidationError struct {
	Errors []FieldError
	Err    error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}

	return "validation error: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// classifyBindError turns a gin binding error into a ValidationError.
func classifyBindError(err error) *ValidationError {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		syntax  *json.SyntaxError
	)

	switch {
	case errors.As(err, &verrs):
		out := &ValidationError{Err: err}
		for _, fe := range verrs {
			out.Errors = append(out.Errors, FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
				Type:    fieldType(fe.Tag()),
			})
		}

		return out
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}

		return &ValidationError{Err: err, Errors: []FieldError{{
			Field:   field,
			Message: fmt.Sprintf("Input should be a valid %s", typeErr.Type),
			Type:    "type_error",
		}}}
	case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return &ValidationError{Err: err, Errors: []FieldError{{
			Field:   "body",
			Message: "Invalid JSON: " + err.Error(),
			Type:    "json_invalid",
		}}}
	default:
		return &ValidationError{Err: err, Errors: []FieldError{{
			Field:   "body",
			Message: err.Error(),
			Type:    "value_error",
		}}}
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "gt":
		return "Input should be greater than " + fe.Param()
	case "gte", "min":
		return "Input should be greater than or equal to " + fe.Param()
	case "lte", "max":
		return "Input should be less than or equal to " + fe.Param()
	case "oneof":
		return "Input should be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fe.Error()
	}
}

func fieldType(tag string) string {
	switch tag {
	case "required":
		return "missing"
	case "gt":
		return "greater_than"
	case "gte", "min":
		return "greater_than_equal"
	case "lte", "max":
		return "less_than_equal"
	case "oneof":
		return "enum"
	default:
		return tag
	}
}
