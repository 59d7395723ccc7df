// SPDX-License-Identifier: Apache-2.0

package odm

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/xataio/esodm/pkg/odm/field"
	"github.com/xataio/esodm/pkg/odm/schema"
)

// Option configures a model registration.
type Option func(*registration)

type registration struct {
	name        string
	options     map[string]any
	descriptors map[string]*field.Info
}

// WithName registers the model under a name other than its Go type name.
func WithName(name string) Option {
	return func(r *registration) {
		r.name = name
	}
}

// WithOption sets a declaration option. Validation configuration keys (see
// schema.ConfigKeys) configure the validator, anything else configures the
// index: name (or index), settings and aliases.
func WithOption(key string, value any) Option {
	return func(r *registration) {
		r.options[key] = value
	}
}

// WithOptions sets several declaration options, see WithOption.
func WithOptions(options map[string]any) Option {
	return func(r *registration) {
		maps.Copy(r.options, options)
	}
}

// WithDescriptors declares attribute descriptors, keyed by Go field name or
// attribute name. They are merged on top of the struct tags.
func WithDescriptors(descriptors map[string]*field.Info) Option {
	return func(r *registration) {
		if r.descriptors == nil {
			r.descriptors = map[string]*field.Info{}
		}
		maps.Copy(r.descriptors, descriptors)
	}
}

// indexOptions are the declaration options that configure the index.
type indexOptions struct {
	Name     string         `mapstructure:"name"`
	Index    string         `mapstructure:"index"`
	Settings map[string]any `mapstructure:"settings"`
	Aliases  map[string]any `mapstructure:"aliases"`
}

// Register declares T as a model. The declaration is extracted once from
// T and both the validator and the index mapping are derived from it.
// References to other models by name are resolved when first needed.
func Register[T any](r *Registry, opts ...Option) (*Model[T], error) {
	if r == nil {
		r = DefaultRegistry
	}
	reg := &registration{options: map[string]any{}}
	for _, opt := range opts {
		opt(reg)
	}

	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, &field.SchemaError{Reason: fmt.Sprintf("model must be a struct type, got %v", t)}
	}
	decl, err := schema.FromType(t, reg.descriptors)
	if err != nil {
		return nil, fmt.Errorf("registering model %v: %w", t, err)
	}
	if reg.name != "" {
		decl.Name = reg.name
	}

	configOpts, indexOpts := splitOptions(reg.options)
	if decl.Config, err = schema.DecodeConfig(modelConfig(t), configOpts); err != nil {
		return nil, fmt.Errorf("registering model %s: %w", decl.Name, err)
	}
	if !decl.Config.ArbitraryTypesAllowed {
		if err := checkSupported(decl); err != nil {
			return nil, fmt.Errorf("registering model %s: %w", decl.Name, err)
		}
	}
	if decl.Index, err = modelIndex(t, indexOpts); err != nil {
		return nil, fmt.Errorf("registering model %s: %w", decl.Name, err)
	}
	if decl.IsInner() && !decl.Index.IsZero() {
		return nil, &field.SchemaError{Reason: fmt.Sprintf("inner document %s cannot declare an index", decl.Name)}
	}

	s := newSchema(r, decl)
	if err := r.add(s); err != nil {
		return nil, err
	}
	return &Model[T]{Schema: s}, nil
}

// MustRegister is like Register but panics on error. Meant for package level
// model declarations.
func MustRegister[T any](r *Registry, opts ...Option) *Model[T] {
	m, err := Register[T](r, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// splitOptions separates validation configuration keys from index keys.
func splitOptions(options map[string]any) (configOpts, indexOpts map[string]any) {
	configOpts = map[string]any{}
	indexOpts = map[string]any{}
	for k, v := range options {
		if schema.IsConfigKey(k) {
			configOpts[k] = v
			continue
		}
		indexOpts[k] = v
	}
	return configOpts, indexOpts
}

// modelConfig returns the declared configuration of a model type. Models
// without one get the default configuration, which allows arbitrary types
// since wrapper types are not models themselves.
func modelConfig(t reflect.Type) Config {
	if provider, ok := reflect.New(t).Interface().(ConfigProvider); ok {
		return provider.ModelConfig()
	}
	return Config{
		ArbitraryTypesAllowed: true,
		OrmMode:               true,
	}
}

func modelIndex(t reflect.Type, options map[string]any) (Index, error) {
	var idx Index
	if provider, ok := reflect.New(t).Interface().(IndexProvider); ok {
		idx = provider.IndexConfig()
		idx.Settings = maps.Clone(idx.Settings)
		idx.Aliases = maps.Clone(idx.Aliases)
	}
	if len(options) == 0 {
		return idx, nil
	}

	var opts indexOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &opts,
		ErrorUnused: true,
	})
	if err != nil {
		return Index{}, err
	}
	if err := decoder.Decode(options); err != nil {
		return Index{}, &field.SchemaError{Reason: fmt.Sprintf("invalid index options: %v", err)}
	}

	switch {
	case opts.Name != "":
		idx.Name = opts.Name
	case opts.Index != "":
		idx.Name = opts.Index
	}
	if opts.Settings != nil {
		if idx.Settings == nil {
			idx.Settings = map[string]any{}
		}
		maps.Copy(idx.Settings, opts.Settings)
	}
	if opts.Aliases != nil {
		if idx.Aliases == nil {
			idx.Aliases = map[string]any{}
		}
		maps.Copy(idx.Aliases, opts.Aliases)
	}
	return idx, nil
}
