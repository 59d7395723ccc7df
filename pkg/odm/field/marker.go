// SPDX-License-Identifier: Apache-2.0

package field

import (
	"fmt"
	"reflect"
)

// MarkerKind tells the classifier how a declared attribute should be indexed
// when it differs from the attribute's data type.
type MarkerKind uint8

const (
	MarkerPlain MarkerKind = iota
	MarkerObject
	MarkerNested
	MarkerKeyword
	MarkerCommon
)

var markerNames = map[MarkerKind]string{
	MarkerPlain:   "plain",
	MarkerObject:  "object",
	MarkerNested:  "nested",
	MarkerKeyword: "keyword",
	MarkerCommon:  "common",
}

func (k MarkerKind) String() string {
	if name, found := markerNames[k]; found {
		return name
	}
	return fmt.Sprintf("MarkerKind(%d)", uint8(k))
}

func parseMarkerKind(name string) (MarkerKind, bool) {
	for k, n := range markerNames {
		if n == name {
			return k, true
		}
	}
	return MarkerPlain, false
}

// Marker is sidecar metadata attached to a descriptor. A marker together with
// the attribute's own data type forms a two member union: the marker is the
// nominal member, the data type (or Fallback) the plain one.
type Marker struct {
	Kind MarkerKind
	// Model names a registered model, resolved lazily so models can reference
	// each other before both are declared.
	Model string
	// Inner is the wrapped model type when it is known at declaration time.
	Inner reflect.Type
	// Fallback replaces the attribute's data type as the plain member.
	Fallback reflect.Type
}

func (m Marker) IsZero() bool {
	return m.Kind == MarkerPlain && m.Model == "" && m.Inner == nil && m.Fallback == nil
}

func Object(model string) Marker {
	return Marker{Kind: MarkerObject, Model: model}
}

func ObjectOf(inner reflect.Type) Marker {
	return Marker{Kind: MarkerObject, Inner: inner}
}

func Nested(model string) Marker {
	return Marker{Kind: MarkerNested, Model: model}
}

func NestedOf(inner reflect.Type) Marker {
	return Marker{Kind: MarkerNested, Inner: inner}
}

func KeywordMarker() Marker {
	return Marker{Kind: MarkerKeyword}
}

// Common validates as the attribute's data type but indexes as fallback.
func Common(fallback reflect.Type) Marker {
	return Marker{Kind: MarkerCommon, Fallback: fallback}
}

// Wrapper is implemented by generic wrapper types. The wrapper holds the real
// value and reports the marker it stands for.
type Wrapper interface {
	WrapperMarker() Marker
	// WrappedType is the type values are validated as.
	WrappedType() reflect.Type
	WrappedValue() any
}

var wrapperType = reflect.TypeFor[Wrapper]()

// WrapperOf returns the marker and the wrapped type of the given type if it
// is a wrapper type.
func WrapperOf(t reflect.Type) (Marker, reflect.Type, bool) {
	if t == nil || t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer || !t.Implements(wrapperType) {
		return Marker{}, nil, false
	}
	w, ok := reflect.Zero(t).Interface().(Wrapper)
	if !ok {
		return Marker{}, nil, false
	}
	return w.WrapperMarker(), w.WrappedType(), true
}
