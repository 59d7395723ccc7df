// SPDX-License-Identifier: Apache-2.0

package odm

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/opensearch-project/opensearch-go/opensearchapi"

	"github.com/xataio/esodm/internal/indexname"
	"github.com/xataio/esodm/internal/json"
	"github.com/xataio/esodm/internal/searchstore"
	"github.com/xataio/esodm/internal/searchstore/elasticsearch"
	"github.com/xataio/esodm/internal/searchstore/opensearch"
	loglib "github.com/xataio/esodm/pkg/log"
	"github.com/xataio/esodm/pkg/odm/classifier"
	"github.com/xataio/esodm/pkg/odm/schema"
	"github.com/xataio/esodm/pkg/odm/validator"
)

var ErrInnerDocumentIndex = errors.New("inner documents have no index")

// Schema is a registered model: its declaration, the validator built from
// it, and the mapping derived from it.
type Schema struct {
	registry  *Registry
	decl      *schema.Declaration
	validator *validator.Validator
}

func newSchema(r *Registry, decl *schema.Declaration) *Schema {
	return &Schema{
		registry:  r,
		decl:      decl,
		validator: validator.New(decl, r),
	}
}

func (s *Schema) Name() string { return s.decl.Name }

func (s *Schema) Kind() Kind { return s.decl.Kind }

// Declaration returns the model declaration. It must not be modified.
func (s *Schema) Declaration() *schema.Declaration { return s.decl }

// Attributes returns the declared attributes in declaration order.
func (s *Schema) Attributes() []*schema.Attribute {
	return slices.Clone(s.decl.Attributes)
}

// Bases returns the embedded types of an inner document.
func (s *Schema) Bases() []string {
	return slices.Clone(s.decl.Bases)
}

func (s *Schema) Config() Config { return s.decl.Config }

func (s *Schema) Index() Index {
	idx := s.decl.Index
	idx.Settings = maps.Clone(idx.Settings)
	idx.Aliases = maps.Clone(idx.Aliases)
	return idx
}

// Describe returns the model name.
func (s *Schema) Describe() string {
	return s.decl.Name
}

// IndexName renders the index name. Without a declared name the index is
// named after the model.
func (s *Schema) IndexName() (string, error) {
	if s.decl.IsInner() {
		return "", ErrInnerDocumentIndex
	}
	name := s.decl.Index.Name
	if name == "" {
		name = schema.SnakeCase(s.decl.Name)
	}
	return s.registry.names.Render(name, indexname.Data{Model: s.decl.Name})
}

// Validate validates the input against the model and returns it
// normalised. Failures are reported as a *validator.ValidationError.
func (s *Schema) Validate(data map[string]any) (map[string]any, error) {
	return s.validator.Validate(data)
}

// Properties classifies the model attributes. Pending model references are
// resolved first; the ones still missing are mapped without properties.
func (s *Schema) Properties() []searchstore.Property {
	s.registry.TryResolveReferences()
	if missing := s.registry.unresolvedOf(s.decl.Name); len(missing) > 0 {
		s.registry.logger.Warn(nil, "unresolved model references, mapping them without properties", loglib.Fields{
			loglib.ModelField: s.decl.Name,
			"unresolved":      missing,
		})
	}
	return classifier.Properties(s.decl, s.registry)
}

// Mapping returns the index mapping rendered by the registry flavour:
// {"settings": {...}, "mappings": {"properties": {...}}}.
func (s *Schema) Mapping() (map[string]any, error) {
	return s.MappingFor(s.registry.mapper)
}

// MappingFor returns the index mapping rendered by the given flavour.
// Settings and aliases are only included when declared.
func (s *Schema) MappingFor(m searchstore.Mapper) (map[string]any, error) {
	props, err := searchstore.PropertiesMapping(m, s.Properties())
	if err != nil {
		return nil, fmt.Errorf("mapping model %s: %w", s.decl.Name, err)
	}

	mapping := map[string]any{
		"mappings": map[string]any{"properties": props},
	}
	if len(s.decl.Index.Settings) > 0 {
		mapping["settings"] = maps.Clone(s.decl.Index.Settings)
	}
	if len(s.decl.Index.Aliases) > 0 {
		mapping["aliases"] = maps.Clone(s.decl.Index.Aliases)
	}
	return mapping, nil
}

// MappingJSON returns the index mapping as JSON, keys sorted.
func (s *Schema) MappingJSON() ([]byte, error) {
	mapping, err := s.Mapping()
	if err != nil {
		return nil, err
	}
	return json.Marshal(mapping)
}

// TypedMapping returns the mapping as go-elasticsearch typed properties.
func (s *Schema) TypedMapping() (*types.TypeMapping, error) {
	return elasticsearch.TypedMapping(s.Properties())
}

// ElasticsearchCreateIndexRequest builds the request creating the model
// index on Elasticsearch. Declared settings override the defaults.
func (s *Schema) ElasticsearchCreateIndexRequest() (*esapi.IndicesCreateRequest, error) {
	name, body, err := s.createIndexBody(elasticsearch.NewMapper())
	if err != nil {
		return nil, err
	}
	return elasticsearch.CreateIndexRequest(name, body)
}

// OpenSearchCreateIndexRequest builds the request creating the model index
// on OpenSearch. Declared settings override the defaults.
func (s *Schema) OpenSearchCreateIndexRequest() (*opensearchapi.IndicesCreateRequest, error) {
	name, body, err := s.createIndexBody(opensearch.NewMapper())
	if err != nil {
		return nil, err
	}
	return opensearch.CreateIndexRequest(name, body)
}

func (s *Schema) createIndexBody(m searchstore.Mapper) (string, map[string]any, error) {
	name, err := s.IndexName()
	if err != nil {
		return "", nil, err
	}
	props, err := searchstore.PropertiesMapping(m, s.Properties())
	if err != nil {
		return "", nil, fmt.Errorf("mapping model %s: %w", s.decl.Name, err)
	}
	settings := searchstore.MergeSettings(m.GetDefaultIndexSettings(), s.decl.Index.Settings)
	return name, searchstore.IndexBody(settings, s.decl.Index.Aliases, props), nil
}
