// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"reflect"

	"github.com/xataio/esodm/pkg/odm/field"
)

// Attribute is a declared model attribute: the record both the validation
// and the mapping passes work from.
type Attribute struct {
	// Name is the attribute name on the wire.
	Name string
	// GoName and Index locate the struct field for attributes extracted from
	// a Go type. Both are empty for dynamic declarations.
	GoName string
	Index  []int
	// Type is the declared data type.
	Type reflect.Type
	Info *field.Info
}

// NewAttribute builds an attribute with no backing struct field.
func NewAttribute(name string, t reflect.Type, info *field.Info) (*Attribute, error) {
	if name == "" {
		return nil, &field.SchemaError{Reason: "attribute name must not be empty"}
	}
	if t == nil {
		return nil, &field.SchemaError{Field: name, Reason: "attribute type must not be nil"}
	}
	if info == nil {
		info = field.MustNew(field.Undefined)
	}
	return &Attribute{Name: name, Type: t, Info: info}, nil
}

// Member is one alternative of an attribute type. Marker members carry the
// marker kind and the model they reference, plain members the data type.
type Member struct {
	Kind field.MarkerKind
	Type reflect.Type
	// Ref names a registered model referenced by an object or nested marker.
	Ref string
}

func (m Member) IsMarker() bool {
	return m.Kind != field.MarkerPlain
}

func (m Member) String() string {
	switch {
	case !m.IsMarker():
		return fmt.Sprintf("%v", m.Type)
	case m.Ref != "":
		return fmt.Sprintf("%s[%s]", m.Kind, m.Ref)
	case m.Type != nil:
		return fmt.Sprintf("%s[%v]", m.Kind, m.Type)
	default:
		return m.Kind.String()
	}
}

// Members returns the alternatives of the attribute type, nominal first.
// An attribute carrying a marker, either through its descriptor or through a
// wrapper type, is a two member union of the marker and the plain data type.
// Anything else has a single plain member.
func (a *Attribute) Members() []Member {
	marker := a.Info.Marker()
	valueType := a.ValueType()
	if wrapperMarker, _, ok := field.WrapperOf(a.Type); ok && marker.Kind == field.MarkerPlain {
		fallback := marker.Fallback
		marker = wrapperMarker
		if fallback != nil {
			marker.Fallback = fallback
		}
	}

	if marker.Kind == field.MarkerPlain {
		plain := valueType
		if marker.Fallback != nil {
			plain = marker.Fallback
		}
		return []Member{{Kind: field.MarkerPlain, Type: plain}}
	}

	nominal := Member{Kind: marker.Kind, Ref: marker.Model}
	switch marker.Kind {
	case field.MarkerObject, field.MarkerNested:
		switch {
		case marker.Model != "":
		case marker.Inner != nil:
			nominal.Type = marker.Inner
		case IsModel(Elem(valueType)):
			nominal.Type = Deref(Elem(valueType))
		}
	case field.MarkerKeyword, field.MarkerCommon:
		nominal.Type = valueType
	}

	plain := valueType
	if marker.Fallback != nil {
		plain = marker.Fallback
	}
	return []Member{nominal, {Kind: field.MarkerPlain, Type: plain}}
}

// IsUnion reports whether the attribute type has more than one alternative.
func (a *Attribute) IsUnion() bool {
	return len(a.Members()) > 1
}

// ValueType returns the type values are validated as: the wrapped type for
// wrapper types, the declared type otherwise.
func (a *Attribute) ValueType() reflect.Type {
	if _, wrapped, ok := field.WrapperOf(a.Type); ok {
		return wrapped
	}
	return a.Type
}

// IsWrapper reports whether the attribute is declared with a wrapper type.
func (a *Attribute) IsWrapper() bool {
	_, _, ok := field.WrapperOf(a.Type)
	return ok
}

// Required reports whether a value must be supplied.
func (a *Attribute) Required() bool {
	if a.Info.HasDefaultValue() {
		return false
	}
	if nullable, _ := a.Info.Nullable(); nullable {
		return false
	}
	return !Nillable(a.ValueType())
}

// Reference returns the model referenced by the attribute's marker, if any.
func (a *Attribute) Reference() (string, bool) {
	for _, m := range a.Members() {
		if m.Ref != "" {
			return m.Ref, true
		}
	}
	return "", false
}

func (a *Attribute) String() string {
	members := a.Members()
	if len(members) == 1 {
		return fmt.Sprintf("%s: %s", a.Name, members[0])
	}
	return fmt.Sprintf("%s: Union[%s, %s]", a.Name, members[0], members[1])
}
