// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/xataio/esodm/pkg/odm/field"
	"github.com/xataio/esodm/pkg/odm/schema"
)

type YAMLConfig struct {
	Models ModelsConfig `mapstructure:"models" yaml:"models"`
	Output OutputConfig `mapstructure:"output" yaml:"output"`
}

type ModelsConfig struct {
	// File is a model declarations file, see ModelsFile.
	File        string        `mapstructure:"file" yaml:"file"`
	Definitions []ModelConfig `mapstructure:"definitions" yaml:"definitions"`
}

type OutputConfig struct {
	Target string `mapstructure:"target" yaml:"target"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ModelsFile is the format of model declaration files.
type ModelsFile struct {
	Models []ModelConfig `yaml:"models"`
}

type ModelConfig struct {
	Name   string         `mapstructure:"name" yaml:"name"`
	Kind   string         `mapstructure:"kind" yaml:"kind"`
	Config map[string]any `mapstructure:"config" yaml:"config"`
	Index  *IndexConfig   `mapstructure:"index" yaml:"index"`
	Fields []FieldConfig  `mapstructure:"fields" yaml:"fields"`
}

type IndexConfig struct {
	Name     string         `mapstructure:"name" yaml:"name"`
	Settings map[string]any `mapstructure:"settings" yaml:"settings"`
	Aliases  map[string]any `mapstructure:"aliases" yaml:"aliases"`
}

type FieldConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	// Type is a scalar type name, see field.LookupScalar.
	Type string `mapstructure:"type" yaml:"type"`
	List bool   `mapstructure:"list" yaml:"list"`
	// Default is only applied when not null.
	Default any `mapstructure:"default" yaml:"default"`

	PrimaryKey bool           `mapstructure:"primary_key" yaml:"primary_key"`
	Keyword    bool           `mapstructure:"keyword" yaml:"keyword"`
	Suggest    bool           `mapstructure:"suggest" yaml:"suggest"`
	Nullable   *bool          `mapstructure:"nullable" yaml:"nullable"`
	Index      *bool          `mapstructure:"index" yaml:"index"`
	Fields     map[string]any `mapstructure:"fields" yaml:"fields"`

	As       string `mapstructure:"as" yaml:"as"`
	Model    string `mapstructure:"model" yaml:"model"`
	Fallback string `mapstructure:"fallback" yaml:"fallback"`

	Alias       string   `mapstructure:"alias" yaml:"alias"`
	Title       string   `mapstructure:"title" yaml:"title"`
	Description string   `mapstructure:"description" yaml:"description"`
	Const       bool     `mapstructure:"const" yaml:"const"`
	Gt          *float64 `mapstructure:"gt" yaml:"gt"`
	Ge          *float64 `mapstructure:"ge" yaml:"ge"`
	Lt          *float64 `mapstructure:"lt" yaml:"lt"`
	Le          *float64 `mapstructure:"le" yaml:"le"`
	MultipleOf  *float64 `mapstructure:"multiple_of" yaml:"multiple_of"`
	MinLength   *int     `mapstructure:"min_length" yaml:"min_length"`
	MaxLength   *int     `mapstructure:"max_length" yaml:"max_length"`
	MinItems    *int     `mapstructure:"min_items" yaml:"min_items"`
	MaxItems    *int     `mapstructure:"max_items" yaml:"max_items"`
	Regex       string   `mapstructure:"regex" yaml:"regex"`

	FieldType string `mapstructure:"field_type" yaml:"field_type"`
	Dims      int    `mapstructure:"dims" yaml:"dims"`
}

var (
	errUnsupportedTarget    = errors.New("unsupported output target, must be one of elasticsearch, opensearch")
	errUnsupportedFormat    = errors.New("unsupported output format, must be one of json, yaml")
	errUnsupportedModelKind = errors.New("unsupported model kind, must be one of document, inner_document")
	errUnsupportedFieldType = errors.New("unsupported field type")
	errUnsupportedMarker    = errors.New("unsupported marker, must be one of object, nested, keyword, common")
	errMissingModelName     = errors.New("model name is required")
	errMissingFieldName     = errors.New("field name is required")
	errDuplicateModel       = errors.New("model declared more than once")
)

func (c *YAMLConfig) toConfig() (*Config, error) {
	output, err := c.Output.toOutput()
	if err != nil {
		return nil, err
	}

	definitions := c.Models.Definitions
	if c.Models.File != "" {
		fromFile, err := ParseModelsFile(c.Models.File)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, fromFile...)
	}

	models, err := declarations(definitions)
	if err != nil {
		return nil, err
	}
	return &Config{
		Models: models,
		Output: output,
	}, nil
}

func (c OutputConfig) toOutput() (Output, error) {
	out := Output{Target: c.Target, Format: c.Format}
	switch out.Target {
	case "":
		out.Target = TargetElasticsearch
	case TargetElasticsearch, TargetOpenSearch:
	default:
		return Output{}, fmt.Errorf("%w: %q", errUnsupportedTarget, c.Target)
	}
	switch out.Format {
	case "":
		out.Format = FormatJSON
	case FormatJSON, FormatYAML:
	default:
		return Output{}, fmt.Errorf("%w: %q", errUnsupportedFormat, c.Format)
	}
	return out, nil
}

// ParseModelsFile reads model declarations from a YAML file.
func ParseModelsFile(path string) ([]ModelConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading models file: %w", err)
	}
	defer f.Close()
	return ParseModels(f)
}

func ParseModels(r io.Reader) ([]ModelConfig, error) {
	var file ModelsFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing models: %w", err)
	}
	return file.Models, nil
}

func declarations(models []ModelConfig) ([]*schema.Declaration, error) {
	seen := make(map[string]bool, len(models))
	decls := make([]*schema.Declaration, 0, len(models))
	for _, m := range models {
		decl, err := m.ToDeclaration()
		if err != nil {
			return nil, err
		}
		if seen[decl.Name] {
			return nil, fmt.Errorf("%w: %s", errDuplicateModel, decl.Name)
		}
		seen[decl.Name] = true
		decls = append(decls, decl)
	}
	return decls, nil
}

// ToDeclaration builds the model declaration. Models declared in files get
// the default configuration of models without one.
func (m ModelConfig) ToDeclaration() (*schema.Declaration, error) {
	if m.Name == "" {
		return nil, errMissingModelName
	}

	decl := &schema.Declaration{Name: m.Name}
	switch m.Kind {
	case "", "document":
		decl.Kind = schema.KindDocument
	case "inner_document":
		decl.Kind = schema.KindInnerDocument
		decl.Bases = []string{reflect.TypeFor[schema.InnerDocument]().Name()}
	default:
		return nil, fmt.Errorf("model %s: %w: %q", m.Name, errUnsupportedModelKind, m.Kind)
	}

	cfg, err := schema.DecodeConfig(schema.Config{ArbitraryTypesAllowed: true, OrmMode: true}, m.Config)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", m.Name, err)
	}
	decl.Config = cfg

	if m.Index != nil {
		decl.Index = schema.Index{
			Name:     m.Index.Name,
			Settings: m.Index.Settings,
			Aliases:  m.Index.Aliases,
		}
	}

	for _, f := range m.Fields {
		attr, err := f.toAttribute()
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Name, err)
		}
		if _, found := decl.Attribute(attr.Name); found {
			return nil, &field.SchemaError{Field: attr.Name, Reason: fmt.Sprintf("duplicate attribute in %s", m.Name)}
		}
		decl.Attributes = append(decl.Attributes, attr)
	}
	return decl, nil
}

func (f FieldConfig) toAttribute() (*schema.Attribute, error) {
	if f.Name == "" {
		return nil, errMissingFieldName
	}

	typeName := f.Type
	if typeName == "" {
		typeName = "string"
	}
	t, found := field.LookupScalar(typeName)
	if !found {
		return nil, fmt.Errorf("field %s: %w: %q", f.Name, errUnsupportedFieldType, f.Type)
	}
	if f.List {
		t = reflect.SliceOf(t)
	}

	opts, err := f.options()
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.Name, err)
	}
	def := f.Default
	if def == nil {
		def = field.Undefined
	}
	info, err := field.New(def, opts...)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.Name, err)
	}
	return schema.NewAttribute(f.Name, t, info)
}

func (f FieldConfig) options() ([]field.Option, error) {
	opts := []field.Option{}
	add := func(set bool, opt field.Option) {
		if set {
			opts = append(opts, opt)
		}
	}

	add(f.PrimaryKey, field.WithPrimaryKey())
	add(f.Keyword, field.WithKeyword())
	add(f.Suggest, field.WithSuggest())
	add(f.Const, field.WithConst())
	add(len(f.Fields) > 0, field.WithFields(f.Fields))
	add(f.Alias != "", field.WithAlias(f.Alias))
	add(f.Title != "", field.WithTitle(f.Title))
	add(f.Description != "", field.WithDescription(f.Description))
	add(f.Regex != "", field.WithRegex(f.Regex))
	add(f.FieldType != "", field.WithFieldType(f.FieldType))
	add(f.Dims > 0, field.WithDims(f.Dims))
	if f.Nullable != nil {
		opts = append(opts, field.WithNullable(*f.Nullable))
	}
	if f.Index != nil {
		opts = append(opts, field.WithIndex(*f.Index))
	}

	floats := []struct {
		value *float64
		opt   func(float64) field.Option
	}{
		{f.Gt, field.WithGt},
		{f.Ge, field.WithGe},
		{f.Lt, field.WithLt},
		{f.Le, field.WithLe},
		{f.MultipleOf, field.WithMultipleOf},
	}
	for _, fl := range floats {
		if fl.value != nil {
			opts = append(opts, fl.opt(*fl.value))
		}
	}
	ints := []struct {
		value *int
		opt   func(int) field.Option
	}{
		{f.MinLength, field.WithMinLength},
		{f.MaxLength, field.WithMaxLength},
		{f.MinItems, field.WithMinItems},
		{f.MaxItems, field.WithMaxItems},
	}
	for _, in := range ints {
		if in.value != nil {
			opts = append(opts, in.opt(*in.value))
		}
	}

	marker, err := f.marker()
	if err != nil {
		return nil, err
	}
	add(!marker.IsZero(), field.WithMarker(marker))
	return opts, nil
}

func (f FieldConfig) marker() (field.Marker, error) {
	var marker field.Marker
	switch f.As {
	case "":
		if f.Model != "" {
			marker = field.Object(f.Model)
		}
	case "object":
		marker = field.Object(f.Model)
	case "nested":
		marker = field.Nested(f.Model)
	case "keyword":
		marker = field.KeywordMarker()
	case "common":
		marker = field.Marker{Kind: field.MarkerCommon}
	default:
		return field.Marker{}, fmt.Errorf("%w: %q", errUnsupportedMarker, f.As)
	}

	if f.Fallback != "" {
		fallback, found := field.LookupScalar(f.Fallback)
		if !found {
			return field.Marker{}, fmt.Errorf("fallback: %w: %q", errUnsupportedFieldType, f.Fallback)
		}
		marker.Fallback = fallback
	}
	return marker, nil
}
