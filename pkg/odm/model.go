// SPDX-License-Identifier: Apache-2.0

package odm

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/xataio/esodm/internal/json"
)

var ErrNoPrimaryKey = errors.New("model has no primary key")

// Model is a registered Go model type.
type Model[T any] struct {
	*Schema
}

// Parse validates the input and builds a model value from it.
func (m *Model[T]) Parse(data map[string]any) (*T, error) {
	validated, err := m.Validate(data)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := decodeModel(reflect.ValueOf(out).Elem(), m.decl, validated, data, m.registry); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", m.decl.Name, err)
	}
	return out, nil
}

// ParseJSON is like Parse for a JSON document.
func (m *Model[T]) ParseJSON(doc []byte) (*T, error) {
	var data map[string]any
	if err := json.Unmarshal(doc, &data); err != nil {
		return nil, fmt.Errorf("unmarshalling %s document: %w", m.decl.Name, err)
	}
	return m.Parse(data)
}

// Dump exports a model value to a plain map keyed by attribute name. Nil
// pointers, maps, slices and interfaces are left out unless the value was
// parsed from an input holding them as null. Wrapper types are replaced by
// the value they hold.
func (m *Model[T]) Dump(v *T) map[string]any {
	if v == nil {
		return nil
	}
	return dumpModel(reflect.ValueOf(v).Elem(), m.decl, m.registry)
}

// DumpJSON is like Dump but returns a JSON document.
func (m *Model[T]) DumpJSON(v *T) ([]byte, error) {
	return json.Marshal(m.Dump(v))
}

// DocumentID returns the primary key of a model value as a string, the form
// search stores take document identifiers in.
func (m *Model[T]) DocumentID(v *T) (string, error) {
	pk, found := m.decl.PrimaryKey()
	if !found {
		return "", fmt.Errorf("%s: %w", m.decl.Name, ErrNoPrimaryKey)
	}
	if v == nil {
		return "", fmt.Errorf("%s: nil model value", m.decl.Name)
	}
	fv, ok := fieldByIndex(reflect.ValueOf(v).Elem(), pk.Index)
	if !ok {
		return "", fmt.Errorf("%s: primary key %s is not set", m.decl.Name, pk.Name)
	}
	value, ok := dumpValue(fv, m.registry)
	if !ok {
		return "", fmt.Errorf("%s: primary key %s is not set", m.decl.Name, pk.Name)
	}
	return fmt.Sprint(value), nil
}
