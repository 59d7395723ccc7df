// SPDX-License-Identifier: Apache-2.0

package elasticsearch

import (
	"github.com/xataio/esodm/internal/searchstore"
)

type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) GetDefaultIndexSettings() map[string]any {
	return map[string]any{
		"number_of_shards":                 1,
		"number_of_replicas":               1,
		"index.mapping.total_fields.limit": 2000,
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
		if field.Metadata.VectorDimension <= 0 {
			return nil, searchstore.ErrInvalidVectorDimension{Dimension: field.Metadata.VectorDimension}
		}
		return map[string]any{
			"type": "dense_vector",
			"dims": field.Metadata.VectorDimension,
		}, nil
	default:
		return nil, searchstore.ErrUnsupportedSearchFieldType
	}
}
