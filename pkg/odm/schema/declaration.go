// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"reflect"
)

// Kind tells standalone documents from embeddable inner documents.
type Kind uint8

const (
	KindDocument Kind = iota
	KindInnerDocument
)

func (k Kind) String() string {
	if k == KindInnerDocument {
		return "inner_document"
	}
	return "document"
}

// Document is embedded by standalone document models.
type Document struct {
	presence
}

// InnerDocument is embedded by models meant to be embedded in documents as
// object or nested fields.
type InnerDocument struct {
	presence
}

// presence records the attributes a model value was parsed from, so that
// attributes explicitly set to null survive an export.
type presence struct {
	fields map[string]struct{}
}

func (p *presence) presentFields() *presence { return p }

type presenceHolder interface {
	presentFields() *presence
}

func holderOf(v reflect.Value) (presenceHolder, bool) {
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return nil, false
	}
	if !v.CanAddr() {
		cp := reflect.New(v.Type())
		cp.Elem().Set(v)
		v = cp.Elem()
	}
	h, ok := v.Addr().Interface().(presenceHolder)
	return h, ok
}

// MarkPresent records the attribute names found in the input v is built
// from. It is a no-op for models embedding neither Document nor
// InnerDocument.
func MarkPresent(v reflect.Value, names []string) {
	h, ok := holderOf(v)
	if !ok || !v.CanAddr() {
		return
	}
	p := h.presentFields()
	p.fields = make(map[string]struct{}, len(names))
	for _, name := range names {
		p.fields[name] = struct{}{}
	}
}

// WasPresent reports whether the named attribute was part of the input v
// was parsed from.
func WasPresent(v reflect.Value, name string) bool {
	h, ok := holderOf(v)
	if !ok {
		return false
	}
	_, found := h.presentFields().fields[name]
	return found
}

var (
	documentType      = reflect.TypeFor[Document]()
	innerDocumentType = reflect.TypeFor[InnerDocument]()
)

// Declaration is the intermediate representation of a model, extracted once
// and shared by the validation and mapping passes.
type Declaration struct {
	Name string
	Kind Kind
	// Type is nil for declarations built without a Go type.
	Type       reflect.Type
	Attributes []*Attribute
	// Bases lists the embedded types of inner documents.
	Bases  []string
	Config Config
	Index  Index
}

// Attribute returns the attribute with the given wire name.
func (d *Declaration) Attribute(name string) (*Attribute, bool) {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// PrimaryKey returns the attribute marked as the document identifier.
func (d *Declaration) PrimaryKey() (*Attribute, bool) {
	for _, a := range d.Attributes {
		if a.Info.PrimaryKey() {
			return a, true
		}
	}
	return nil, false
}

// References returns the model names referenced by the declaration's
// attributes, in declaration order and without duplicates.
func (d *Declaration) References() []string {
	seen := map[string]bool{}
	refs := []string{}
	for _, a := range d.Attributes {
		if ref, ok := a.Reference(); ok && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

func (d *Declaration) IsInner() bool {
	return d.Kind == KindInnerDocument
}

// Resolver looks up the declarations referenced by attributes.
type Resolver interface {
	// Resolve returns the declaration registered under the given name.
	Resolve(name string) (*Declaration, bool)
	// DeclarationOf returns the declaration of a Go model type.
	DeclarationOf(t reflect.Type) (*Declaration, bool)
}

// DeclarationOfMember returns the declaration of the model a marker member
// stands for: the referenced model if any, else the member's own type.
func DeclarationOfMember(m Member, r Resolver) (*Declaration, bool) {
	if r == nil {
		return nil, false
	}
	if m.Ref != "" {
		return r.Resolve(m.Ref)
	}
	if m.Type != nil && IsModel(m.Type) {
		return r.DeclarationOf(Deref(m.Type))
	}
	return nil, false
}
