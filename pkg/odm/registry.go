// SPDX-License-Identifier: Apache-2.0

package odm

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/xataio/esodm/internal/indexname"
	"github.com/xataio/esodm/internal/searchstore"
	"github.com/xataio/esodm/internal/searchstore/elasticsearch"
	loglib "github.com/xataio/esodm/pkg/log"
	"github.com/xataio/esodm/pkg/odm/field"
	"github.com/xataio/esodm/pkg/odm/schema"
)

// Registry holds registered models and resolves the references between them.
// References are resolved lazily, so models can be registered in any order.
type Registry struct {
	mu         sync.RWMutex
	schemas    map[string]*Schema
	order      []string
	byType     map[reflect.Type]*schema.Declaration
	unresolved map[string][]string

	logger loglib.Logger
	mapper searchstore.Mapper
	names  *indexname.Renderer
}

type RegistryOption func(*Registry)

// DefaultRegistry is used by Register and MustRegister when no registry is
// given.
var DefaultRegistry = NewRegistry()

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas:    map[string]*Schema{},
		byType:     map[reflect.Type]*schema.Declaration{},
		unresolved: map[string][]string{},
		logger:     loglib.NewNoopLogger(),
		mapper:     elasticsearch.NewMapper(),
		names:      indexname.NewRenderer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithLogger(l loglib.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "odm_registry",
		})
	}
}

// WithMapper sets the search store flavour mappings are rendered for.
func WithMapper(m searchstore.Mapper) RegistryOption {
	return func(r *Registry) {
		r.mapper = m
	}
}

// WithClock sets the clock index name templates are rendered with.
func WithClock(clock clockwork.Clock) RegistryOption {
	return func(r *Registry) {
		r.names = indexname.NewRenderer(indexname.WithClock(clock))
	}
}

// Declare registers a declaration built without a Go type, such as one read
// from a model declaration file.
func (r *Registry) Declare(decl *schema.Declaration) (*Schema, error) {
	if decl == nil || decl.Name == "" {
		return nil, &field.SchemaError{Reason: "declaration must have a name"}
	}
	if !decl.Config.ArbitraryTypesAllowed {
		if err := checkSupported(decl); err != nil {
			return nil, err
		}
	}
	s := newSchema(r, decl)
	if err := r.add(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Registry) add(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.decl.Name
	if _, found := r.schemas[name]; found {
		return &field.SchemaError{Reason: fmt.Sprintf("model %s already registered", name)}
	}
	r.schemas[name] = s
	r.order = append(r.order, name)
	if s.decl.Type != nil {
		r.byType[s.decl.Type] = s.decl
	}
	if refs := s.decl.References(); len(refs) > 0 {
		r.unresolved[name] = refs
	}

	r.logger.Debug("model registered", loglib.Fields{
		loglib.ModelField: name,
		"kind":            s.decl.Kind.String(),
		"attributes":      len(s.decl.Attributes),
	})
	return nil
}

// Schema returns the model registered under the given name.
func (r *Registry) Schema(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, found := r.schemas[name]
	return s, found
}

// Schemas returns the registered models in registration order.
func (r *Registry) Schemas() []*Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Schema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.schemas[name])
	}
	return out
}

// Resolve returns the declaration registered under the given name.
func (r *Registry) Resolve(name string) (*schema.Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, found := r.schemas[name]
	if !found {
		return nil, false
	}
	return s.decl, true
}

// DeclarationOf returns the declaration of a Go model type. Types that were
// not registered are extracted on first use and cached.
func (r *Registry) DeclarationOf(t reflect.Type) (*schema.Declaration, bool) {
	t = schema.Deref(t)
	r.mu.RLock()
	decl, found := r.byType[t]
	r.mu.RUnlock()
	if found {
		return decl, true
	}

	decl, err := schema.FromType(t, nil)
	if err != nil {
		r.logger.Warn(err, "extracting inner model declaration", loglib.Fields{loglib.ModelField: t})
		return nil, false
	}
	decl.Config = modelConfig(t)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, found := r.byType[t]; found {
		return existing, true
	}
	r.byType[t] = decl
	return decl, true
}

// TryResolveReferences resolves the pending model references it can. The
// ones that are still missing stay pending; this is not an error.
func (r *Registry) TryResolveReferences() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		refs, pending := r.unresolved[name]
		if !pending {
			continue
		}
		missing := slices.DeleteFunc(slices.Clone(refs), func(ref string) bool {
			_, found := r.schemas[ref]
			return found
		})
		if len(missing) == 0 {
			delete(r.unresolved, name)
			r.logger.Debug("model references resolved", loglib.Fields{loglib.ModelField: name})
			continue
		}
		r.unresolved[name] = missing
		r.logger.Debug("model references pending", loglib.Fields{
			loglib.ModelField: name,
			"unresolved":      missing,
		})
	}
}

// Unresolved returns the references still pending, by referencing model.
func (r *Registry) Unresolved() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]string, len(r.unresolved))
	for name, refs := range r.unresolved {
		out[name] = slices.Clone(refs)
	}
	return out
}

func (r *Registry) unresolvedOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.unresolved[name])
}

func checkSupported(decl *schema.Declaration) error {
	for _, attr := range decl.Attributes {
		if !schema.Supported(attr.Type) {
			return &field.SchemaError{
				Field:  attr.Name,
				Reason: fmt.Sprintf("no validator found for %v, allow arbitrary types to use it", attr.Type),
			}
		}
	}
	return nil
}
