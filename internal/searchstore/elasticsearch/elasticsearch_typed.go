// SPDX-License-Identifier: Apache-2.0

package elasticsearch

import (
	"fmt"
	"maps"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/xataio/esodm/internal/searchstore"
)

// TypedMapping converts resolved properties into the go-elasticsearch typed
// API mapping, for callers that build requests with the typed client.
func TypedMapping(props []searchstore.Property) (*types.TypeMapping, error) {
	properties, err := typedProperties(props)
	if err != nil {
		return nil, err
	}
	return &types.TypeMapping{Properties: properties}, nil
}

// TypedProperty converts a single resolved field into its typed API property.
func TypedProperty(field *searchstore.Field) (types.Property, error) {
	switch field.SearchType {
	case searchstore.TextType:
		p := types.NewTextProperty()
		if p.Fields == nil {
			p.Fields = make(map[string]types.Property, len(field.Fields))
		}
		for name, sub := range field.Fields {
			typedSub, err := typedSubField(sub)
			if err != nil {
				return nil, fmt.Errorf("sub-field %s: %w", name, err)
			}
			p.Fields[name] = typedSub
		}
		return p, nil
	case searchstore.KeywordType:
		return types.NewKeywordProperty(), nil
	case searchstore.IntegerType:
		return types.NewIntegerNumberProperty(), nil
	case searchstore.FloatType:
		return types.NewFloatNumberProperty(), nil
	case searchstore.BoolType:
		return types.NewBooleanProperty(), nil
	case searchstore.DateType:
		return types.NewDateProperty(), nil
	case searchstore.ByteType:
		return types.NewByteNumberProperty(), nil
	case searchstore.ObjectType:
		p := types.NewObjectProperty()
		properties, err := typedProperties(field.Properties)
		if err != nil {
			return nil, err
		}
		p.Properties = properties
		return p, nil
	case searchstore.NestedType:
		p := types.NewNestedProperty()
		properties, err := typedProperties(field.Properties)
		if err != nil {
			return nil, err
		}
		p.Properties = properties
		return p, nil
	case searchstore.DateRangeType:
		return types.NewDateRangeProperty(), nil
	case searchstore.CompletionType:
		return types.NewCompletionProperty(), nil
	case searchstore.DenseVectorType:
		if field.Metadata.VectorDimension <= 0 {
			return nil, searchstore.ErrInvalidVectorDimension{Dimension: field.Metadata.VectorDimension}
		}
		p := types.NewDenseVectorProperty()
		dims := field.Metadata.VectorDimension
		p.Dims = &dims
		return p, nil
	default:
		return nil, searchstore.ErrUnsupportedSearchFieldType
	}
}

func typedProperties(props []searchstore.Property) (map[string]types.Property, error) {
	out := make(map[string]types.Property, len(props))
	for _, prop := range props {
		p, err := TypedProperty(prop.Field)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop.Name, err)
		}
		out[prop.Name] = p
	}
	return out, nil
}

// raw sub-field definitions (custom analyzers and the like) are kept as plain
// maps, the typed API accepts any value as a property.
func typedSubField(sub any) (types.Property, error) {
	switch s := sub.(type) {
	case *searchstore.Field:
		return TypedProperty(s)
	case map[string]any:
		return maps.Clone(s), nil
	default:
		return s, nil
	}
}
