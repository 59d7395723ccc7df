// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"math/big"
	"reflect"
	"time"

	"github.com/xataio/esodm/pkg/odm/field"
)

// Enum is implemented by enumerated types. Values are validated against the
// returned set and indexed as keywords.
type Enum interface {
	EnumValues() []string
}

var (
	enumType     = reflect.TypeFor[Enum]()
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	bigFloatType = reflect.TypeFor[big.Float]()
	bigRatType   = reflect.TypeFor[big.Rat]()
	bigIntType   = reflect.TypeFor[big.Int]()
)

func IsEnum(t reflect.Type) bool {
	return t != nil && t.Implements(enumType)
}

// EnumValues returns the allowed values of an enumerated type.
func EnumValues(t reflect.Type) []string {
	if !IsEnum(t) {
		return nil
	}
	e, ok := reflect.Zero(t).Interface().(Enum)
	if !ok {
		return nil
	}
	return e.EnumValues()
}

func IsTime(t reflect.Type) bool { return t == timeType }

func IsDuration(t reflect.Type) bool { return t == durationType }

// IsDecimal reports whether t is an arbitrary precision number.
func IsDecimal(t reflect.Type) bool {
	return t == bigFloatType || t == bigRatType || t == bigIntType
}

func IsBytes(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// Deref strips pointers.
func Deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// Elem strips pointers and containers, byte slices excepted.
func Elem(t reflect.Type) reflect.Type {
	for t != nil {
		switch {
		case t.Kind() == reflect.Pointer:
			t = t.Elem()
		case (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && !IsBytes(t):
			t = t.Elem()
		default:
			return t
		}
	}
	return nil
}

// IsModel reports whether values of t are validated as an inner model.
func IsModel(t reflect.Type) bool {
	t = Deref(t)
	if t == nil || t.Kind() != reflect.Struct || IsTime(t) || IsDecimal(t) {
		return false
	}
	_, _, isWrapper := field.WrapperOf(t)
	return !isWrapper
}

// Nillable reports whether the zero value of t is nil.
func Nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	default:
		return false
	}
}

// Supported reports whether values of t can be validated without allowing
// arbitrary types.
func Supported(t reflect.Type) bool {
	return supported(t, map[reflect.Type]bool{})
}

func supported(t reflect.Type, seen map[reflect.Type]bool) bool {
	if t == nil {
		return false
	}
	if seen[t] {
		return true
	}
	seen[t] = true

	if _, wrapped, ok := field.WrapperOf(t); ok {
		return supported(wrapped, seen)
	}
	if IsTime(t) || IsDecimal(t) || IsEnum(t) {
		return true
	}

	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Interface:
		return true
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return supported(t.Elem(), seen)
	case reflect.Map:
		return t.Key().Kind() == reflect.String && supported(t.Elem(), seen)
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get(field.TagKey) == "-" {
				continue
			}
			if !supported(f.Type, seen) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
