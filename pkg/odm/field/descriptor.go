// SPDX-License-Identifier: Apache-2.0

package field

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/xataio/esodm/internal/searchstore"
)

// Undefined is the default of a descriptor declared without one. It is
// distinct from nil, which is a valid default.
var Undefined = undefined{}

type undefined struct{}

func (undefined) String() string { return "Undefined" }

// Info is the descriptor attached to a declared attribute: validation
// constraints plus indexing metadata. It is immutable once built by New.
type Info struct {
	def            any
	defaultFactory func() any

	alias         string
	title         string
	description   string
	exclude       any
	include       any
	constant      bool
	gt, ge        *float64
	lt, le        *float64
	multipleOf    *float64
	minItems      *int
	maxItems      *int
	minLength     *int
	maxLength     *int
	allowMutation bool
	regex         string
	pattern       *regexp.Regexp
	schemaExtra   map[string]any
	extra         map[string]any

	primaryKey     bool
	nullable       *bool
	foreignKey     any
	index          *bool
	saColumn       any
	saColumnArgs   []any
	saColumnKwargs map[string]any
	saColumnSet    bool
	saArgsSet      bool
	saKwargsSet    bool

	keyword bool
	fields  map[string]any
	suggest bool

	marker    Marker
	fieldType string
	dims      int

	opts []Option
}

// New builds a descriptor from a default value and declaration options. Use
// Undefined for attributes without a default. The descriptor is checked
// before being returned: combining a column object with separate column
// arguments is a *ConfigurationError, inconsistent constraints a *SchemaError.
func New(defaultValue any, opts ...Option) (*Info, error) {
	info := &Info{
		def:           defaultValue,
		allowMutation: true,
	}
	for _, opt := range opts {
		opt(info)
	}

	if err := info.checkColumns(); err != nil {
		return nil, err
	}
	if err := info.validate(); err != nil {
		return nil, err
	}
	info.opts = slices.Clone(opts)
	return info, nil
}

// MustNew is like New but panics on error. Meant for package level model
// declarations.
func MustNew(defaultValue any, opts ...Option) *Info {
	info, err := New(defaultValue, opts...)
	if err != nil {
		panic(err)
	}
	return info
}

// With returns a new descriptor with the given options applied on top of the
// ones this descriptor was built with.
func (i *Info) With(opts ...Option) (*Info, error) {
	return New(i.def, append(slices.Clone(i.opts), opts...)...)
}

// Merge combines a descriptor derived from struct tags with a programmatic
// one. Options of declared win, and so does its default when it has one.
func Merge(tagged, declared *Info) (*Info, error) {
	switch {
	case declared == nil:
		return tagged, nil
	case tagged == nil:
		return declared, nil
	}
	opts := append(slices.Clone(tagged.opts), declared.opts...)
	if declared.HasDefault() {
		def := declared.def
		opts = append(opts, func(i *Info) { i.def = def })
	}
	return New(tagged.def, opts...)
}

func (i *Info) checkColumns() error {
	if !i.saColumnSet {
		return nil
	}
	if i.saArgsSet {
		return &ConfigurationError{Reason: "passing sa_column_args is not supported when also passing a sa_column"}
	}
	if i.saKwargsSet {
		return &ConfigurationError{Reason: "passing sa_column_kwargs is not supported when also passing a sa_column"}
	}
	return nil
}

func (i *Info) validate() error {
	if i.HasDefault() && i.defaultFactory != nil {
		return schemaErrorf("cannot specify both default and default_factory")
	}

	if err := checkBounds(i.gt, i.ge, i.lt, i.le); err != nil {
		return err
	}
	if i.multipleOf != nil && *i.multipleOf <= 0 {
		return schemaErrorf("multiple_of must be greater than 0, got %v", *i.multipleOf)
	}
	if err := checkLengths("length", i.minLength, i.maxLength); err != nil {
		return err
	}
	if err := checkLengths("items", i.minItems, i.maxItems); err != nil {
		return err
	}

	if i.regex != "" {
		pattern, err := regexp.Compile(i.regex)
		if err != nil {
			return schemaErrorf("invalid regex %q: %v", i.regex, err)
		}
		i.pattern = pattern
	}

	if err := i.checkMarker(); err != nil {
		return err
	}
	return i.checkFieldType()
}

func checkBounds(gt, ge, lt, le *float64) error {
	switch {
	case gt != nil && lt != nil && *gt >= *lt:
		return schemaErrorf("gt (%v) must be lower than lt (%v)", *gt, *lt)
	case ge != nil && le != nil && *ge > *le:
		return schemaErrorf("ge (%v) must be lower or equal to le (%v)", *ge, *le)
	case gt != nil && le != nil && *gt >= *le:
		return schemaErrorf("gt (%v) must be lower than le (%v)", *gt, *le)
	case ge != nil && lt != nil && *ge >= *lt:
		return schemaErrorf("ge (%v) must be lower than lt (%v)", *ge, *lt)
	}
	return nil
}

func checkLengths(what string, minimum, maximum *int) error {
	if minimum != nil && *minimum < 0 {
		return schemaErrorf("min_%s must not be negative, got %d", what, *minimum)
	}
	if maximum != nil && *maximum < 0 {
		return schemaErrorf("max_%s must not be negative, got %d", what, *maximum)
	}
	if minimum != nil && maximum != nil && *minimum > *maximum {
		return schemaErrorf("min_%s (%d) must be lower or equal to max_%s (%d)", what, *minimum, what, *maximum)
	}
	return nil
}

func (i *Info) checkMarker() error {
	if _, found := markerNames[i.marker.Kind]; !found {
		return schemaErrorf("unknown marker kind %v", i.marker.Kind)
	}
	switch i.marker.Kind {
	case MarkerObject, MarkerNested:
	default:
		if i.marker.Model != "" || i.marker.Inner != nil {
			return schemaErrorf("model reference only applies to object and nested markers, got %v", i.marker.Kind)
		}
	}
	if i.marker.Model != "" && i.marker.Inner != nil {
		return schemaErrorf("marker cannot reference both model %q and type %v", i.marker.Model, i.marker.Inner)
	}
	return nil
}

func (i *Info) checkFieldType() error {
	if i.fieldType == "" {
		return nil
	}
	t, found := searchstore.ParseType(i.fieldType)
	if !found {
		return schemaErrorf("unknown field type %q", i.fieldType)
	}
	if t == searchstore.DenseVectorType && i.dims <= 0 {
		return schemaErrorf("field type %s requires dims greater than 0", i.fieldType)
	}
	return nil
}

// HasDefault reports whether the descriptor was declared with a default
// value, nil included.
func (i *Info) HasDefault() bool {
	_, isUndefined := i.def.(undefined)
	return !isUndefined
}

func (i *Info) Default() any { return i.def }

func (i *Info) DefaultFactory() func() any { return i.defaultFactory }

// HasDefaultValue reports whether an absent attribute gets a value, either a
// default or a factory.
func (i *Info) HasDefaultValue() bool {
	return i.HasDefault() || i.defaultFactory != nil
}

// DefaultValue returns the value an absent attribute takes.
func (i *Info) DefaultValue() (any, bool) {
	switch {
	case i.defaultFactory != nil:
		return i.defaultFactory(), true
	case i.HasDefault():
		return cloneValue(i.def), true
	default:
		return nil, false
	}
}

func (i *Info) Alias() string               { return i.alias }
func (i *Info) Title() string               { return i.title }
func (i *Info) Description() string         { return i.description }
func (i *Info) Exclude() any                { return i.exclude }
func (i *Info) Include() any                { return i.include }
func (i *Info) Const() bool                 { return i.constant }
func (i *Info) Gt() *float64                { return copyPtr(i.gt) }
func (i *Info) Ge() *float64                { return copyPtr(i.ge) }
func (i *Info) Lt() *float64                { return copyPtr(i.lt) }
func (i *Info) Le() *float64                { return copyPtr(i.le) }
func (i *Info) MultipleOf() *float64        { return copyPtr(i.multipleOf) }
func (i *Info) MinItems() *int              { return copyPtr(i.minItems) }
func (i *Info) MaxItems() *int              { return copyPtr(i.maxItems) }
func (i *Info) MinLength() *int             { return copyPtr(i.minLength) }
func (i *Info) MaxLength() *int             { return copyPtr(i.maxLength) }
func (i *Info) AllowMutation() bool         { return i.allowMutation }
func (i *Info) Regex() string               { return i.regex }
func (i *Info) Pattern() *regexp.Regexp     { return i.pattern }
func (i *Info) SchemaExtra() map[string]any { return cloneMap(i.schemaExtra) }
func (i *Info) Extra() map[string]any       { return cloneMap(i.extra) }

func (i *Info) PrimaryKey() bool { return i.primaryKey }

// Nullable returns the nullable flag and whether it was set at all.
func (i *Info) Nullable() (nullable bool, set bool) {
	if i.nullable == nil {
		return false, false
	}
	return *i.nullable, true
}

func (i *Info) ForeignKey() any { return i.foreignKey }

// Index returns the index flag and whether it was set at all.
func (i *Info) Index() (index bool, set bool) {
	if i.index == nil {
		return false, false
	}
	return *i.index, true
}

func (i *Info) SAColumn() any                  { return i.saColumn }
func (i *Info) SAColumnArgs() []any            { return slices.Clone(i.saColumnArgs) }
func (i *Info) SAColumnKwargs() map[string]any { return cloneMap(i.saColumnKwargs) }

func (i *Info) Keyword() bool { return i.keyword }

// Fields returns a copy of the custom sub-field definitions.
func (i *Info) Fields() map[string]any { return cloneMap(i.fields) }

func (i *Info) Suggest() bool { return i.suggest }

func (i *Info) Marker() Marker { return i.marker }

// FieldType returns the explicit search field type override, if any.
func (i *Info) FieldType() (searchstore.Type, int, bool) {
	if i.fieldType == "" {
		return 0, 0, false
	}
	t, found := searchstore.ParseType(i.fieldType)
	return t, i.dims, found
}

func (i *Info) String() string {
	return fmt.Sprintf("Info(default=%v, primary_key=%t, keyword=%t, marker=%v)", i.def, i.primaryKey, i.keyword, i.marker.Kind)
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
