// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrValidation = errors.New("validation error")

// InnerLocation is the location element under which values held by wrapper
// types are validated.
const InnerLocation = "inner"

// FieldError is a single validation failure. Loc is the path to the value,
// made of attribute names, map keys and slice indexes.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Location renders the path to the value, dot separated.
func (e FieldError) Location() string {
	parts := make([]string, 0, len(e.Loc))
	for _, l := range e.Loc {
		switch v := l.(type) {
		case string:
			parts = append(parts, v)
		case int:
			parts = append(parts, strconv.Itoa(v))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, ".")
}

// ValidationError collects every failure found while validating a model.
type ValidationError struct {
	Model  string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	plural := ""
	if len(e.Errors) != 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "%d validation error%s for %s", len(e.Errors), plural, e.Model)
	for _, fe := range e.Errors {
		fmt.Fprintf(&b, "\n%s\n  %s (type=%s)", fe.Location(), fe.Msg, fe.Type)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
