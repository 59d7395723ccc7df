// SPDX-License-Identifier: Apache-2.0

// Package validator validates plain values against a model declaration.
package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xataio/esodm/pkg/odm/field"
	"github.com/xataio/esodm/pkg/odm/schema"
)

// Validator validates input maps against a declaration, inner models
// included. It is safe for concurrent use.
type Validator struct {
	decl     *schema.Declaration
	resolver schema.Resolver
}

func New(decl *schema.Declaration, r schema.Resolver) *Validator {
	return &Validator{
		decl:     decl,
		resolver: r,
	}
}

// Validate checks the input and returns it normalised: absent attributes get
// their default, aliases are replaced by attribute names and extra keys are
// handled as configured. Every failure is reported in a *ValidationError.
func (v *Validator) Validate(data map[string]any) (map[string]any, error) {
	s := &state{resolver: v.resolver}
	out := s.model(v.decl, data, nil)
	if len(s.errs) > 0 {
		return nil, &ValidationError{Model: v.decl.Name, Errors: s.errs}
	}
	return out, nil
}

type state struct {
	resolver schema.Resolver
	errs     []FieldError
	// verbatim is set while validating a model whose value is stored as the
	// plain map it came in as. Such maps keep their keys as given.
	verbatim bool
}

func (s *state) fork() *state {
	return &state{resolver: s.resolver, verbatim: s.verbatim}
}

func (s *state) add(loc []any, typ, format string, args ...any) {
	s.errs = append(s.errs, FieldError{
		Loc:  slices.Clone(loc),
		Msg:  fmt.Sprintf(format, args...),
		Type: typ,
	})
}

func at(loc []any, elem any) []any {
	return append(slices.Clone(loc), elem)
}

func (s *state) model(decl *schema.Declaration, data map[string]any, loc []any) map[string]any {
	out := make(map[string]any, len(decl.Attributes))
	known := make(map[string]bool, len(decl.Attributes))

	for _, attr := range decl.Attributes {
		known[attr.Name] = true
		raw, present := data[attr.Name]
		if alias := attr.Info.Alias(); alias != "" {
			known[alias] = true
			if aliased, found := data[alias]; found {
				raw, present = aliased, true
			}
		}

		attrLoc := at(loc, attr.Name)
		if !present {
			if def, ok := attr.Info.DefaultValue(); ok && !s.verbatim {
				out[attr.Name] = def
				continue
			}
			if attr.Required() {
				s.add(attrLoc, "value_error.missing", "field required")
			}
			continue
		}
		out[attr.Name] = s.attribute(decl.Config, attr, raw, attrLoc)
	}

	for _, key := range sortedKeys(data) {
		if known[key] {
			continue
		}
		switch decl.Config.ExtraMode() {
		case schema.ExtraForbid:
			s.add(at(loc, key), "value_error.extra", "extra fields not permitted")
		default:
			if s.verbatim || decl.Config.ExtraMode() == schema.ExtraAllow {
				out[key] = data[key]
			}
		}
	}
	return out
}

func (s *state) attribute(cfg schema.Config, attr *schema.Attribute, raw any, loc []any) any {
	info := attr.Info
	if attr.IsWrapper() {
		loc = at(loc, InnerLocation)
	}

	if raw == nil {
		nullable, _ := info.Nullable()
		if !nullable && !schema.Nillable(attr.ValueType()) {
			s.add(loc, "type_error.none.not_allowed", "none is not an allowed value")
		}
		return nil
	}
	if info.Const() && info.HasDefault() && !reflect.DeepEqual(raw, info.Default()) {
		s.add(loc, "value_error.const", "unexpected value; permitted: %v", info.Default())
		return raw
	}

	members := attr.Members()
	nominal := members[0]
	if nominal.Kind == field.MarkerObject || nominal.Kind == field.MarkerNested {
		if decl, found := schema.DeclarationOfMember(nominal, s.resolver); found {
			return s.modelMember(cfg, attr, nominal.Kind, decl, raw, loc)
		}
	}
	return s.value(cfg, info, attr.ValueType(), raw, loc)
}

// modelMember validates the value as the model behind an object or nested
// marker. When that fails and the plain data type is not the model itself,
// the value is accepted if it is valid for the plain type.
func (s *state) modelMember(cfg schema.Config, attr *schema.Attribute, kind field.MarkerKind, decl *schema.Declaration, raw any, loc []any) any {
	sub := s.fork()
	if !schema.IsModel(schema.Elem(attr.ValueType())) {
		sub.verbatim = true
	}
	var out any
	if kind == field.MarkerNested {
		out = sub.nested(decl, raw, loc)
	} else {
		out = sub.object(decl, raw, loc)
	}
	if len(sub.errs) == 0 {
		return out
	}

	if !schema.IsModel(schema.Elem(attr.ValueType())) {
		plain := s.fork()
		value := plain.value(cfg, attr.Info, attr.ValueType(), raw, loc)
		if len(plain.errs) == 0 {
			return value
		}
	}
	s.errs = append(s.errs, sub.errs...)
	return raw
}

func (s *state) object(decl *schema.Declaration, raw any, loc []any) any {
	data, ok := asMap(raw)
	if !ok {
		s.add(loc, "type_error.dict", "value is not a valid dict")
		return raw
	}
	return s.model(decl, data, loc)
}

func (s *state) nested(decl *schema.Declaration, raw any, loc []any) any {
	if data, ok := asMap(raw); ok {
		return []any{s.model(decl, data, loc)}
	}
	items, ok := asSlice(raw)
	if !ok {
		s.add(loc, "type_error.list", "value is not a valid list")
		return raw
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = s.object(decl, item, at(loc, i))
	}
	return out
}

func (s *state) value(cfg schema.Config, info *field.Info, t reflect.Type, raw any, loc []any) any {
	if raw == nil {
		if t == nil || schema.Nillable(t) {
			return nil
		}
		s.add(loc, "type_error.none.not_allowed", "none is not an allowed value")
		return nil
	}

	t = schema.Deref(t)
	if t == nil || t.Kind() == reflect.Interface {
		return raw
	}
	if _, wrapped, ok := field.WrapperOf(t); ok {
		return s.value(cfg, info, wrapped, raw, at(loc, InnerLocation))
	}

	switch {
	case schema.IsEnum(t):
		return s.enum(t, raw, loc)
	case schema.IsTime(t):
		return s.time(raw, loc)
	case schema.IsDuration(t):
		return s.duration(raw, loc)
	case schema.IsDecimal(t):
		return s.decimal(info, raw, loc)
	case schema.IsBytes(t):
		return s.bytes(info, raw, loc)
	case schema.IsModel(t):
		return s.inner(t, raw, loc)
	}

	switch t.Kind() {
	case reflect.String:
		return s.string(cfg, info, raw, loc)
	case reflect.Bool:
		return s.bool(raw, loc)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return s.int(info, t, raw, loc)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return s.uint(info, t, raw, loc)
	case reflect.Float32, reflect.Float64:
		return s.float(info, raw, loc)
	case reflect.Map:
		return s.mapping(cfg, info, t, raw, loc)
	case reflect.Slice, reflect.Array:
		return s.list(cfg, info, t, raw, loc)
	}

	if rv := reflect.ValueOf(raw); rv.Type().AssignableTo(t) {
		return raw
	}
	s.add(loc, "type_error.arbitrary_type", "instance of %s expected", t)
	return raw
}

func (s *state) inner(t reflect.Type, raw any, loc []any) any {
	if s.resolver == nil {
		return raw
	}
	decl, found := s.resolver.DeclarationOf(t)
	if !found {
		return raw
	}
	return s.object(decl, raw, loc)
}

func (s *state) enum(t reflect.Type, raw any, loc []any) any {
	values := schema.EnumValues(t)
	if !slices.Contains(values, fmt.Sprint(raw)) {
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = strconv.Quote(v)
		}
		s.add(loc, "type_error.enum", "value is not a valid enumeration member; permitted: %s", strings.Join(quoted, ", "))
	}
	return raw
}

var timeLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly, time.TimeOnly}

func (s *state) time(raw any, loc []any) any {
	switch v := raw.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	default:
		if n, ok := toFloat(raw); ok {
			sec, frac := math.Modf(n)
			return time.Unix(int64(sec), int64(frac*1e9)).UTC()
		}
	}
	s.add(loc, "value_error.datetime", "invalid datetime format")
	return raw
}

func (s *state) duration(raw any, loc []any) any {
	switch v := raw.(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	default:
		if n, ok := toFloat(raw); ok && n == math.Trunc(n) {
			return time.Duration(int64(n))
		}
	}
	s.add(loc, "value_error.duration", "invalid duration format")
	return raw
}

func (s *state) decimal(info *field.Info, raw any, loc []any) any {
	var f *big.Float
	switch v := raw.(type) {
	case *big.Float:
		f = v
	case *big.Rat:
		f = new(big.Float).SetRat(v)
	case *big.Int:
		f = new(big.Float).SetInt(v)
	case string:
		parsed, _, err := big.ParseFloat(strings.TrimSpace(v), 10, 0, big.ToNearestEven)
		if err != nil {
			s.add(loc, "type_error.decimal", "value is not a valid decimal")
			return raw
		}
		f = parsed
	default:
		n, ok := toFloat(raw)
		if !ok {
			s.add(loc, "type_error.decimal", "value is not a valid decimal")
			return raw
		}
		f = big.NewFloat(n)
	}
	n, _ := f.Float64()
	s.bounds(info, n, loc)
	return raw
}

func (s *state) bytes(info *field.Info, raw any, loc []any) any {
	var length int
	switch v := raw.(type) {
	case []byte:
		length = len(v)
	case string:
		length = len(v)
	default:
		s.add(loc, "type_error.bytes", "byte type expected")
		return raw
	}
	s.length(info, schema.Config{}, length, loc)
	return raw
}

func (s *state) string(cfg schema.Config, info *field.Info, raw any, loc []any) any {
	v, ok := raw.(string)
	if !ok {
		s.add(loc, "type_error.str", "str type expected")
		return raw
	}
	if cfg.AnystrStripWhitespace {
		v = strings.TrimSpace(v)
	}
	s.length(info, cfg, utf8.RuneCountInString(v), loc)
	if pattern := info.Pattern(); pattern != nil && !pattern.MatchString(v) {
		s.add(loc, "value_error.str.regex", "string does not match regex %q", info.Regex())
	}
	return v
}

func (s *state) length(info *field.Info, cfg schema.Config, n int, loc []any) {
	minimum, maximum := cfg.MinAnystrLength, cfg.MaxAnystrLength
	if l := info.MinLength(); l != nil {
		minimum = *l
	}
	if l := info.MaxLength(); l != nil {
		maximum = *l
	}
	if n < minimum {
		s.add(loc, "value_error.any_str.min_length", "ensure this value has at least %d characters", minimum)
	}
	if maximum > 0 && n > maximum {
		s.add(loc, "value_error.any_str.max_length", "ensure this value has at most %d characters", maximum)
	}
}

func (s *state) bool(raw any, loc []any) any {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	s.add(loc, "type_error.bool", "value could not be parsed to a boolean")
	return raw
}

func (s *state) int(info *field.Info, t reflect.Type, raw any, loc []any) any {
	switch reflect.ValueOf(raw).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := reflect.ValueOf(raw).Int()
		if reflect.New(t).Elem().OverflowInt(n) {
			s.add(loc, "value_error.number.overflow", "ensure this value fits in %s", t)
		}
		s.bounds(info, float64(n), loc)
		return raw
	}

	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		s.add(loc, "type_error.integer", "value is not a valid integer")
		return raw
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		s.add(loc, "value_error.number.overflow", "ensure this value fits in %s", t)
		return raw
	}
	n := int64(f)
	if reflect.New(t).Elem().OverflowInt(n) {
		s.add(loc, "value_error.number.overflow", "ensure this value fits in %s", t)
	}
	s.bounds(info, f, loc)
	return n
}

func (s *state) uint(info *field.Info, t reflect.Type, raw any, loc []any) any {
	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) || f < 0 || math.IsInf(f, 0) {
		s.add(loc, "type_error.integer", "value is not a valid unsigned integer")
		return raw
	}
	if f >= math.MaxUint64 {
		s.add(loc, "value_error.number.overflow", "ensure this value fits in %s", t)
		return raw
	}
	if reflect.New(t).Elem().OverflowUint(uint64(f)) {
		s.add(loc, "value_error.number.overflow", "ensure this value fits in %s", t)
	}
	s.bounds(info, f, loc)
	if k := reflect.ValueOf(raw).Kind(); k >= reflect.Uint && k <= reflect.Uint64 {
		return raw
	}
	return uint64(f)
}

func (s *state) float(info *field.Info, raw any, loc []any) any {
	f, ok := toFloat(raw)
	if !ok {
		s.add(loc, "type_error.float", "value is not a valid float")
		return raw
	}
	s.bounds(info, f, loc)
	if k := reflect.ValueOf(raw).Kind(); k == reflect.Float32 || k == reflect.Float64 {
		return raw
	}
	return f
}

func (s *state) bounds(info *field.Info, n float64, loc []any) {
	if gt := info.Gt(); gt != nil && n <= *gt {
		s.add(loc, "value_error.number.not_gt", "ensure this value is greater than %v", *gt)
	}
	if ge := info.Ge(); ge != nil && n < *ge {
		s.add(loc, "value_error.number.not_ge", "ensure this value is greater than or equal to %v", *ge)
	}
	if lt := info.Lt(); lt != nil && n >= *lt {
		s.add(loc, "value_error.number.not_lt", "ensure this value is less than %v", *lt)
	}
	if le := info.Le(); le != nil && n > *le {
		s.add(loc, "value_error.number.not_le", "ensure this value is less than or equal to %v", *le)
	}
	if m := info.MultipleOf(); m != nil {
		if r := math.Mod(n, *m); math.Abs(r) > 1e-9 && math.Abs(r-*m) > 1e-9 {
			s.add(loc, "value_error.number.not_multiple", "ensure this value is a multiple of %v", *m)
		}
	}
}

func (s *state) mapping(cfg schema.Config, info *field.Info, t reflect.Type, raw any, loc []any) any {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		s.add(loc, "type_error.dict", "value is not a valid dict")
		return raw
	}
	if t.Elem().Kind() == reflect.Interface {
		return raw
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		out[key] = s.value(cfg, info, t.Elem(), iter.Value().Interface(), at(loc, key))
	}
	return out
}

func (s *state) list(cfg schema.Config, info *field.Info, t reflect.Type, raw any, loc []any) any {
	items, ok := asSlice(raw)
	if !ok {
		s.add(loc, "type_error.list", "value is not a valid list")
		return raw
	}
	if n := info.MinItems(); n != nil && len(items) < *n {
		s.add(loc, "value_error.list.min_items", "ensure this value has at least %d items", *n)
	}
	if n := info.MaxItems(); n != nil && len(items) > *n {
		s.add(loc, "value_error.list.max_items", "ensure this value has at most %d items", *n)
	}
	if t.Kind() == reflect.Array && len(items) != t.Len() {
		s.add(loc, "value_error.list.length", "ensure this value has exactly %d items", t.Len())
	}

	out := make([]any, len(items))
	for i, item := range items {
		out[i] = s.value(cfg, info, t.Elem(), item, at(loc, i))
	}
	return out
}

func asMap(raw any) (map[string]any, bool) {
	if m, ok := raw.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func asSlice(raw any) ([]any, bool) {
	if items, ok := raw.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range rv.Len() {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case bool:
		return 0, false
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
