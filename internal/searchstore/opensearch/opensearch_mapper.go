// SPDX-License-Identifier: Apache-2.0

package opensearch

import (
	"github.com/xataio/esodm/internal/searchstore"
)

type Mapper struct{}

const openSearchDefaultEFSearch = 100

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) GetDefaultIndexSettings() map[string]any {
	return map[string]any{
		"number_of_shards":                 1,
		"number_of_replicas":               1,
		"index.mapping.total_fields.limit": 2000,
		"index.knn":                        true,
		"knn.algo_param.ef_search":         openSearchDefaultEFSearch,
	}
}

func (m *Mapper) FieldMapping(field *searchstore.Field) (map[string]any, error) {
	switch field.SearchType {
	case searchstore.TextType,
		searchstore.KeywordType,
		searchstore.IntegerType,
		searchstore.FloatType,
		searchstore.BoolType,
		searchstore.DateType,
		searchstore.ByteType,
		searchstore.ObjectType,
		searchstore.NestedType,
		searchstore.DateRangeType,
		searchstore.CompletionType:
		return searchstore.RenderField(m, field, field.SearchType.String())
	case searchstore.DenseVectorType:
		// opensearch has no dense_vector, vectors are indexed with the knn plugin
		if field.Metadata.VectorDimension <= 0 {
			return nil, searchstore.ErrInvalidVectorDimension{Dimension: field.Metadata.VectorDimension}
		}
		return map[string]any{
			"type":      "knn_vector",
			"dimension": field.Metadata.VectorDimension,
		}, nil
	default:
		return nil, searchstore.ErrUnsupportedSearchFieldType
	}
}
