// SPDX-License-Identifier: Apache-2.0

package odm

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/xataio/esodm/pkg/odm/field"
	"github.com/xataio/esodm/pkg/odm/schema"
)

// decodeModel sets the struct fields of v from validated data, walking the
// declaration so that inner models and wrapper types are decoded the same
// way at any depth. Leaves are decoded with mapstructure. input is the
// value data was validated from; the attributes it holds are recorded on v
// so that explicit nulls are dumped back.
func decodeModel(v reflect.Value, decl *schema.Declaration, data map[string]any, input any, r schema.Resolver) error {
	in, known := inputMap(input)
	present := make([]string, 0, len(decl.Attributes))
	for _, attr := range decl.Attributes {
		sub, found := inputAttribute(in, attr)
		if !known {
			_, found = data[attr.Name]
		}
		if found {
			present = append(present, attr.Name)
		}

		raw, found := data[attr.Name]
		if !found || attr.Index == nil {
			continue
		}
		fv := v.FieldByIndex(attr.Index)
		if err := decodeValue(fv, raw, sub, r); err != nil {
			return fmt.Errorf("%s: %w", attr.Name, err)
		}
	}
	schema.MarkPresent(v, present)
	return nil
}

func decodeValue(v reflect.Value, raw, input any, r schema.Resolver) error {
	t := v.Type()
	if raw == nil {
		v.Set(reflect.Zero(t))
		return nil
	}

	if _, _, ok := field.WrapperOf(t); ok {
		return decodeValue(v.FieldByName("Value"), raw, input, r)
	}

	// mapstructure goes through a map for struct to struct conversions,
	// which loses unexported state such as in time.Time or big.Float.
	rv := reflect.ValueOf(raw)
	switch {
	case rv.Type().AssignableTo(t):
		v.Set(rv)
		return nil
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(t):
		v.Set(rv.Elem())
		return nil
	}

	switch {
	case t.Kind() == reflect.Pointer:
		elem := reflect.New(t.Elem())
		if err := decodeValue(elem.Elem(), raw, input, r); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	case schema.IsModel(t):
		data, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("expected a map for %v, got %T", t, raw)
		}
		decl, found := r.DeclarationOf(t)
		if !found {
			return fmt.Errorf("no declaration for %v", t)
		}
		return decodeModel(v, decl, data, input, r)
	case (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && needsWalk(t.Elem()):
		items, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("expected a list for %v, got %T", t, raw)
		}
		inputs := inputList(input, len(items))
		if t.Kind() == reflect.Slice {
			v.Set(reflect.MakeSlice(t, len(items), len(items)))
		}
		for i := 0; i < len(items) && i < v.Len(); i++ {
			if err := decodeValue(v.Index(i), items[i], inputs[i], r); err != nil {
				return fmt.Errorf("%d: %w", i, err)
			}
		}
		return nil
	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String && needsWalk(t.Elem()):
		data, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("expected a map for %v, got %T", t, raw)
		}
		in, _ := inputMap(input)
		m := reflect.MakeMapWithSize(t, len(data))
		for key, item := range data {
			elem := reflect.New(t.Elem()).Elem()
			if err := decodeValue(elem, item, in[key], r); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			m.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
		}
		v.Set(m)
		return nil
	}

	return decodeLeaf(v, raw)
}

// inputAttribute returns the input value of attr, looked up the way the
// validator does: the alias wins over the attribute name.
func inputAttribute(in map[string]any, attr *schema.Attribute) (any, bool) {
	value, found := in[attr.Name]
	if alias := attr.Info.Alias(); alias != "" {
		if aliased, ok := in[alias]; ok {
			value, found = aliased, true
		}
	}
	return value, found
}

func inputMap(input any) (map[string]any, bool) {
	if m, ok := input.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(input)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

// inputList returns n input items. A single map stands for a one item list,
// as nested attributes accept it.
func inputList(input any, n int) []any {
	out := make([]any, n)
	if _, ok := inputMap(input); ok && n == 1 {
		out[0] = input
		return out
	}
	rv := reflect.ValueOf(input)
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() != n {
		return out
	}
	for i := range n {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// needsWalk reports whether values of t hold inner models or wrappers that
// mapstructure cannot decode on its own.
func needsWalk(t reflect.Type) bool {
	t = schema.Deref(t)
	if _, _, ok := field.WrapperOf(t); ok {
		return true
	}
	return schema.IsModel(t)
}

func decodeLeaf(v reflect.Value, raw any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: v.Addr().Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05.999999999Z07:00"),
			stringToBytesHookFunc(),
			decimalHookFunc(),
		),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

func stringToBytesHookFunc() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || !schema.IsBytes(to) {
			return data, nil
		}
		return []byte(data.(string)), nil
	}
}

// decimalHookFunc decodes numbers and numeric strings into arbitrary
// precision numbers.
func decimalHookFunc() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if !schema.IsDecimal(to) || schema.IsDecimal(schema.Deref(from)) {
			return data, nil
		}
		s := strings.TrimSpace(fmt.Sprint(data))
		switch to {
		case reflect.TypeFor[big.Float]():
			f, _, err := big.ParseFloat(s, 10, 0, big.ToNearestEven)
			if err != nil {
				return nil, err
			}
			return *f, nil
		case reflect.TypeFor[big.Rat]():
			rat, ok := new(big.Rat).SetString(s)
			if !ok {
				return nil, fmt.Errorf("invalid decimal %q", s)
			}
			return *rat, nil
		default:
			n, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return nil, fmt.Errorf("invalid integer %q", s)
			}
			return *n, nil
		}
	}
}

func dumpModel(v reflect.Value, decl *schema.Declaration, r schema.Resolver) map[string]any {
	out := make(map[string]any, len(decl.Attributes))
	for _, attr := range decl.Attributes {
		if attr.Index == nil {
			continue
		}
		fv, ok := fieldByIndex(v, attr.Index)
		if !ok {
			continue
		}
		value, ok := dumpValue(fv, r)
		switch {
		case ok:
			out[attr.Name] = value
		case schema.WasPresent(v, attr.Name):
			out[attr.Name] = nil
		}
	}
	return out
}

// dumpValue returns the plain value of v, false when v is a nil pointer,
// map, slice or interface.
func dumpValue(v reflect.Value, r schema.Resolver) (any, bool) {
	t := v.Type()
	if schema.Nillable(t) && v.IsNil() {
		return nil, false
	}
	if _, _, ok := field.WrapperOf(t); ok {
		return dumpValue(v.FieldByName("Value"), r)
	}

	switch {
	case t.Kind() == reflect.Pointer:
		if schema.IsDecimal(t.Elem()) {
			return v.Interface(), true
		}
		return dumpValue(v.Elem(), r)
	case t.Kind() == reflect.Interface:
		return dumpValue(v.Elem(), r)
	case schema.IsModel(t):
		if r == nil {
			return v.Interface(), true
		}
		decl, found := r.DeclarationOf(t)
		if !found {
			return v.Interface(), true
		}
		return dumpModel(v, decl, r), true
	case (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && !schema.IsBytes(t):
		items := make([]any, 0, v.Len())
		for i := range v.Len() {
			item, ok := dumpValue(v.Index(i), r)
			if !ok {
				item = nil
			}
			items = append(items, item)
		}
		return items, true
	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String && t.Elem().Kind() != reflect.Interface:
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			item, ok := dumpValue(iter.Value(), r)
			if !ok {
				item = nil
			}
			out[iter.Key().String()] = item
		}
		return out, true
	}
	return v.Interface(), true
}

// fieldByIndex is reflect.Value.FieldByIndex without the panic on nil
// embedded pointers.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}
