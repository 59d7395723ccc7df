// SPDX-License-Identifier: Apache-2.0

// Package classifier turns declared attributes into search field types. It
// never fails: types it does not know about are indexed as text.
package classifier

import (
	"maps"
	"reflect"

	"github.com/xataio/esodm/internal/searchstore"
	"github.com/xataio/esodm/pkg/odm/field"
	"github.com/xataio/esodm/pkg/odm/schema"
)

const keywordSubField = "keyword"

// Classify returns the search field of an attribute. Object and nested
// fields get their properties from the referenced model, looked up with the
// resolver. It is safe for concurrent use as long as the resolver is.
func Classify(attr *schema.Attribute, r schema.Resolver) *searchstore.Field {
	c := newClassifier(r)
	return c.classify(attr)
}

// Properties classifies every attribute of a declaration, in declaration
// order.
func Properties(decl *schema.Declaration, r schema.Resolver) []searchstore.Property {
	c := newClassifier(r)
	return c.properties(decl)
}

type classifier struct {
	resolver schema.Resolver
	// visiting holds the declarations being classified, keyed by Go type
	// when there is one, to stop on reference cycles.
	visiting map[any]bool
}

func newClassifier(r schema.Resolver) *classifier {
	return &classifier{
		resolver: r,
		visiting: map[any]bool{},
	}
}

func (c *classifier) properties(decl *schema.Declaration) []searchstore.Property {
	if decl == nil {
		return nil
	}
	var key any = decl
	if decl.Type != nil {
		key = decl.Type
	}
	if c.visiting[key] {
		return nil
	}
	c.visiting[key] = true
	defer delete(c.visiting, key)

	props := make([]searchstore.Property, 0, len(decl.Attributes))
	for _, attr := range decl.Attributes {
		props = append(props, searchstore.Property{
			Name:  attr.Name,
			Field: c.classify(attr),
		})
	}
	return props
}

func (c *classifier) classify(attr *schema.Attribute) (f *searchstore.Field) {
	defer func() {
		if r := recover(); r != nil {
			f = searchstore.NewField(searchstore.TextType)
		}
	}()

	if t, dims, found := attr.Info.FieldType(); found {
		f = searchstore.NewField(t)
		f.Metadata.VectorDimension = dims
		return f
	}

	effective := resolveUnion(attr.Members())
	return c.dispatch(effective, attr.Info)
}

// resolveUnion picks the member the attribute is indexed as: the first one,
// unless it is a common marker, in which case the second.
func resolveUnion(members []schema.Member) schema.Member {
	if len(members) > 1 && members[0].Kind == field.MarkerCommon {
		return members[1]
	}
	return members[0]
}

func (c *classifier) dispatch(m schema.Member, info *field.Info) *searchstore.Field {
	switch m.Kind {
	case field.MarkerObject:
		return c.modelField(searchstore.ObjectType, m)
	case field.MarkerNested:
		return c.modelField(searchstore.NestedType, m)
	case field.MarkerKeyword:
		return searchstore.NewField(searchstore.KeywordType)
	case field.MarkerCommon:
		// a common marker that is not part of a union has no type to fall
		// back to
		return searchstore.NewField(searchstore.TextType)
	}
	return dispatchType(m.Type, info)
}

func (c *classifier) modelField(t searchstore.Type, m schema.Member) *searchstore.Field {
	f := searchstore.NewField(t)
	decl, found := schema.DeclarationOfMember(m, c.resolver)
	if !found {
		return f
	}
	f.Properties = c.properties(decl)
	return f
}

func dispatchType(t reflect.Type, info *field.Info) *searchstore.Field {
	t = schema.Elem(t)
	switch {
	case t == nil:
		return searchstore.NewField(searchstore.TextType)
	case schema.IsEnum(t):
		return searchstore.NewField(searchstore.KeywordType)
	case schema.IsDuration(t):
		return searchstore.NewField(searchstore.IntegerType)
	case schema.IsTime(t):
		return searchstore.NewField(searchstore.DateType)
	case schema.IsBytes(t):
		return searchstore.NewField(searchstore.ByteType)
	case schema.IsDecimal(t):
		return searchstore.NewField(searchstore.FloatType)
	}

	switch t.Kind() {
	case reflect.String:
		return textField(info)
	case reflect.Float32, reflect.Float64:
		return searchstore.NewField(searchstore.FloatType)
	case reflect.Bool:
		return searchstore.NewField(searchstore.BoolType)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return searchstore.NewField(searchstore.IntegerType)
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return searchstore.NewField(searchstore.ObjectType)
		}
	}
	return searchstore.NewField(searchstore.TextType)
}

// textField builds a text field with the generated keyword sub-field and the
// custom ones. Custom sub-fields without a type are text, and a custom entry
// named keyword replaces the generated one.
func textField(info *field.Info) *searchstore.Field {
	f := searchstore.NewField(searchstore.TextType)
	custom := info.Fields()
	if !info.Keyword() && len(custom) == 0 {
		return f
	}

	f.Fields = make(map[string]any, len(custom)+1)
	if info.Keyword() {
		f.Fields[keywordSubField] = searchstore.NewField(searchstore.KeywordType)
	}
	for name, def := range custom {
		f.Fields[name] = subField(def)
	}
	return f
}

func subField(def any) any {
	raw, ok := def.(map[string]any)
	if !ok {
		return searchstore.NewField(searchstore.TextType)
	}
	out := maps.Clone(raw)
	if _, found := out["type"]; !found {
		out["type"] = searchstore.TextType.String()
	}
	return out
}
