// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/xataio/esodm/pkg/odm/field"
)

// DescriptorProvider is implemented by models declaring descriptors in code
// rather than, or on top of, struct tags. Keys are Go field names or
// attribute names.
type DescriptorProvider interface {
	FieldDescriptors() map[string]*field.Info
}

var descriptorProviderType = reflect.TypeFor[DescriptorProvider]()

// FromType extracts the declaration of a Go struct type. Embedded Document
// and InnerDocument markers set the declaration kind, other embedded structs
// are flattened. Descriptors from the type's FieldDescriptors method are
// merged with the struct tags, and so are the given overrides, which win.
func FromType(t reflect.Type, overrides map[string]*field.Info) (*Declaration, error) {
	t = Deref(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &field.SchemaError{Reason: fmt.Sprintf("model must be a struct type, got %v", t)}
	}

	decl := &Declaration{
		Name: t.Name(),
		Type: t,
	}

	declared := map[string]*field.Info{}
	if t.Implements(descriptorProviderType) || reflect.PointerTo(t).Implements(descriptorProviderType) {
		provider, _ := reflect.New(t).Interface().(DescriptorProvider)
		for k, v := range provider.FieldDescriptors() {
			declared[k] = v
		}
	}
	for k, v := range overrides {
		if existing, found := declared[k]; found {
			merged, err := field.Merge(existing, v)
			if err != nil {
				return nil, withField(err, k)
			}
			v = merged
		}
		declared[k] = v
	}

	e := &extractor{
		decl:     decl,
		declared: declared,
		used:     map[string]bool{},
		names:    map[string]bool{},
	}
	if err := e.walk(t, nil); err != nil {
		return nil, err
	}

	for key := range declared {
		if !e.used[key] {
			return nil, &field.SchemaError{Field: key, Reason: fmt.Sprintf("descriptor matches no attribute of %s", decl.Name)}
		}
	}
	if decl.Kind != KindInnerDocument {
		decl.Bases = nil
	}
	return decl, nil
}

type extractor struct {
	decl     *Declaration
	declared map[string]*field.Info
	used     map[string]bool
	names    map[string]bool
	marked   bool
}

func (e *extractor) walk(t reflect.Type, index []int) error {
	for i := range t.NumField() {
		sf := t.Field(i)
		idx := append(slices.Clone(index), i)

		if sf.Anonymous {
			handled, err := e.embedded(sf, idx)
			if err != nil {
				return err
			}
			if handled {
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if err := e.attribute(sf, idx); err != nil {
			return err
		}
	}
	return nil
}

func (e *extractor) embedded(sf reflect.StructField, idx []int) (bool, error) {
	switch sf.Type {
	case documentType, innerDocumentType:
		if e.marked {
			return true, &field.SchemaError{Reason: fmt.Sprintf("%s embeds more than one document marker", e.decl.Name)}
		}
		e.marked = true
		if sf.Type == innerDocumentType {
			e.decl.Kind = KindInnerDocument
		}
		e.decl.Bases = append(e.decl.Bases, sf.Type.Name())
		return true, nil
	}
	if sf.Type.Kind() != reflect.Struct || sf.Tag.Get(field.TagKey) != "" {
		return false, nil
	}
	e.decl.Bases = append(e.decl.Bases, sf.Type.Name())
	return true, e.walk(sf.Type, idx)
}

func (e *extractor) attribute(sf reflect.StructField, idx []int) error {
	name, skip, opts, err := field.ParseTag(sf.Tag.Get(field.TagKey), sf.Type)
	if err != nil {
		return withField(err, sf.Name)
	}
	if skip {
		return nil
	}
	if name == "" {
		name = SnakeCase(sf.Name)
	}
	if e.names[name] {
		return &field.SchemaError{Field: name, Reason: fmt.Sprintf("duplicate attribute in %s", e.decl.Name)}
	}
	e.names[name] = true

	info, err := field.New(field.Undefined, opts...)
	if err != nil {
		return withField(err, name)
	}
	for _, key := range []string{sf.Name, name} {
		declared, found := e.declared[key]
		if !found {
			continue
		}
		e.used[key] = true
		if info, err = field.Merge(info, declared); err != nil {
			return withField(err, name)
		}
	}

	e.decl.Attributes = append(e.decl.Attributes, &Attribute{
		Name:   name,
		GoName: sf.Name,
		Index:  idx,
		Type:   sf.Type,
		Info:   info,
	})
	return nil
}

func withField(err error, name string) error {
	if schemaErr, ok := err.(*field.SchemaError); ok && schemaErr.Field == "" {
		return &field.SchemaError{Field: name, Reason: schemaErr.Reason}
	}
	return err
}

// SnakeCase converts a Go identifier to the default attribute name, keeping
// acronyms together: UserID becomes user_id, HTTPServer http_server.
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
