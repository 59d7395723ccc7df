// SPDX-License-Identifier: Apache-2.0

package field

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is wrapped by every configuration error, raised when
	// mutually exclusive declaration options are combined.
	ErrConfiguration = errors.New("configuration error")
	// ErrSchema is wrapped by every schema error, raised when a descriptor or
	// declaration fails its own consistency checks.
	ErrSchema = errors.New("schema error")
)

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	return fmt.Sprintf("schema error: field %s: %s", e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

func schemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}
