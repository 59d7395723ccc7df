// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"fmt"
	"maps"
)

// Mapper renders resolved fields into the wire mapping of a search store
// flavour.
type Mapper interface {
	GetDefaultIndexSettings() map[string]any
	FieldMapping(*Field) (map[string]any, error)
}

// Field is the resolved search field for a declared attribute. Object and
// nested fields carry their sub-properties in declaration order, text fields
// may carry sub-fields (multi-fields).
type Field struct {
	SearchType Type
	// Fields holds sub-field definitions. Values are either *Field or raw
	// map[string]any definitions passed through as declared.
	Fields     map[string]any
	Properties []Property
	Metadata   Metadata
}

type Property struct {
	Name  string
	Field *Field
}

type Metadata struct {
	VectorDimension int
}

type Type uint

const (
	TextType Type = iota
	KeywordType
	IntegerType
	FloatType
	BoolType
	DateType
	ByteType
	ObjectType
	NestedType
	DateRangeType
	CompletionType
	DenseVectorType
)

var typeNames = map[Type]string{
	TextType:        "text",
	KeywordType:     "keyword",
	IntegerType:     "integer",
	FloatType:       "float",
	BoolType:        "boolean",
	DateType:        "date",
	ByteType:        "byte",
	ObjectType:      "object",
	NestedType:      "nested",
	DateRangeType:   "date_range",
	CompletionType:  "completion",
	DenseVectorType: "dense_vector",
}

func (t Type) String() string {
	if name, found := typeNames[t]; found {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint(t))
}

// ParseType returns the search type with the given wire name.
func ParseType(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

func NewField(t Type) *Field {
	return &Field{SearchType: t}
}

// Property returns the sub-property with the given name, or nil.
func (f *Field) Property(name string) *Field {
	for _, p := range f.Properties {
		if p.Name == name {
			return p.Field
		}
	}
	return nil
}

// PropertiesMapping renders an ordered property list into a properties map.
func PropertiesMapping(m Mapper, props []Property) (map[string]any, error) {
	out := make(map[string]any, len(props))
	for _, p := range props {
		fm, err := m.FieldMapping(p.Field)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
		out[p.Name] = fm
	}
	return out, nil
}

// SubFieldsMapping renders the sub-fields of a text field. Raw definitions are
// copied so the rendered mapping never aliases the declaration.
func SubFieldsMapping(m Mapper, fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for name, sub := range fields {
		switch s := sub.(type) {
		case *Field:
			fm, err := m.FieldMapping(s)
			if err != nil {
				return nil, fmt.Errorf("sub-field %s: %w", name, err)
			}
			out[name] = fm
		case map[string]any:
			out[name] = maps.Clone(s)
		default:
			out[name] = s
		}
	}
	return out, nil
}

// RenderField renders the parts of a field mapping shared by every flavour:
// the wire type name, text sub-fields and object/nested properties.
func RenderField(m Mapper, field *Field, typeName string) (map[string]any, error) {
	mapping := map[string]any{"type": typeName}
	if len(field.Fields) > 0 {
		fields, err := SubFieldsMapping(m, field.Fields)
		if err != nil {
			return nil, err
		}
		mapping["fields"] = fields
	}
	if len(field.Properties) > 0 {
		props, err := PropertiesMapping(m, field.Properties)
		if err != nil {
			return nil, err
		}
		mapping["properties"] = props
	}
	return mapping, nil
}
