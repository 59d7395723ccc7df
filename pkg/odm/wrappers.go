// SPDX-License-Identifier: Apache-2.0

package odm

import (
	"reflect"

	"github.com/xataio/esodm/pkg/odm/field"
)

// Object holds an inner model indexed as an object field. Values are
// validated as T.
type Object[T any] struct {
	Value T
}

func (Object[T]) WrapperMarker() field.Marker { return field.ObjectOf(reflect.TypeFor[T]()) }
func (Object[T]) WrappedType() reflect.Type   { return reflect.TypeFor[T]() }
func (o Object[T]) WrappedValue() any         { return o.Value }

// Nested holds inner models indexed as a nested field, each element matched
// independently.
type Nested[T any] struct {
	Value []T
}

func (Nested[T]) WrapperMarker() field.Marker { return field.NestedOf(reflect.TypeFor[T]()) }
func (Nested[T]) WrappedType() reflect.Type   { return reflect.TypeFor[[]T]() }
func (n Nested[T]) WrappedValue() any         { return n.Value }

// Keyword holds a value indexed as a keyword field whatever its type.
type Keyword[T any] struct {
	Value T
}

func (Keyword[T]) WrapperMarker() field.Marker { return field.KeywordMarker() }
func (Keyword[T]) WrappedType() reflect.Type   { return reflect.TypeFor[T]() }
func (k Keyword[T]) WrappedValue() any         { return k.Value }

// Common holds a value validated as T. It is indexed as T too, unless the
// attribute descriptor names a fallback type.
type Common[T any] struct {
	Value T
}

func (Common[T]) WrapperMarker() field.Marker { return field.Marker{Kind: field.MarkerCommon} }
func (Common[T]) WrappedType() reflect.Type   { return reflect.TypeFor[T]() }
func (c Common[T]) WrappedValue() any         { return c.Value }

func NewObject[T any](v T) Object[T] { return Object[T]{Value: v} }

func NewNested[T any](v ...T) Nested[T] { return Nested[T]{Value: v} }

func NewKeyword[T any](v T) Keyword[T] { return Keyword[T]{Value: v} }

func NewCommon[T any](v T) Common[T] { return Common[T]{Value: v} }
