// SPDX-License-Identifier: Apache-2.0

package classifier

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/xataio/esodm/internal/searchstore"
	"github.com/xataio/esodm/pkg/odm/field"
	"github.com/xataio/esodm/pkg/odm/schema"
)

// Property-based tests for the classifier: it must be total and deterministic
// over any combination of type and descriptor flags.

var candidateTypes = []reflect.Type{
	reflect.TypeFor[string](),
	reflect.TypeFor[*string](),
	reflect.TypeFor[[]string](),
	reflect.TypeFor[int](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[uint64](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[bool](),
	reflect.TypeFor[time.Time](),
	reflect.TypeFor[time.Duration](),
	reflect.TypeFor[[]byte](),
	reflect.TypeFor[map[string]any](),
	reflect.TypeFor[map[int]int](),
	reflect.TypeFor[any](),
	reflect.TypeFor[chan string](),
	reflect.TypeFor[func()](),
	reflect.TypeFor[status](),
	reflect.TypeFor[address](),
	reflect.TypeFor[[]*address](),
	reflect.TypeFor[node](),
}

var candidateMarkers = []field.Marker{
	{},
	field.Object("address"),
	field.Nested("node"),
	field.Object("unknown"),
	field.ObjectOf(reflect.TypeFor[address]()),
	{Kind: field.MarkerObject},
	{Kind: field.MarkerNested},
	field.KeywordMarker(),
	field.Common(reflect.TypeFor[int64]()),
	{Kind: field.MarkerCommon},
}

func genAttribute(t *rapid.T) *schema.Attribute {
	goType := rapid.SampledFrom(candidateTypes).Draw(t, "type")
	marker := rapid.SampledFrom(candidateMarkers).Draw(t, "marker")

	opts := []field.Option{field.WithMarker(marker)}
	if rapid.Bool().Draw(t, "keyword") {
		opts = append(opts, field.WithKeyword())
	}
	if rapid.Bool().Draw(t, "primary_key") {
		opts = append(opts, field.WithPrimaryKey())
	}
	if rapid.Bool().Draw(t, "fields") {
		name := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "sub_field")
		opts = append(opts, field.WithFields(map[string]any{name: map[string]any{"analyzer": "standard"}}))
	}

	attr, err := schema.NewAttribute("attr", goType, field.MustNew(field.Undefined, opts...))
	if err != nil {
		t.Fatalf("building attribute: %v", err)
	}
	return attr
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	addressDecl, err := schema.FromType(reflect.TypeFor[address](), nil)
	require.NoError(t, err)
	addressDecl.Name = "address"
	nodeDecl, err := schema.FromType(reflect.TypeFor[node](), nil)
	require.NoError(t, err)
	resolver := newTestResolver(addressDecl, nodeDecl)

	rapid.Check(t, func(t *rapid.T) {
		attr := genAttribute(t)

		first := Classify(attr, resolver)
		if first == nil {
			t.Fatalf("nil field for %v", attr)
		}
		if _, found := searchstore.ParseType(first.SearchType.String()); !found {
			t.Fatalf("unknown search type %v for %v", first.SearchType, attr)
		}
		second := Classify(attr, resolver)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("classification is not deterministic for %v", attr)
		}
	})
}

func TestClassify_TextSubFieldsAreAdditive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfDistinct(rapid.StringMatching(`[a-z]{2,8}`), func(s string) string { return s }).Draw(t, "names")
		keyword := rapid.Bool().Draw(t, "keyword")

		custom := make(map[string]any, len(names))
		for _, n := range names {
			custom[n] = map[string]any{"analyzer": n}
		}
		opts := []field.Option{field.WithFields(custom)}
		if keyword {
			opts = append(opts, field.WithKeyword())
		}
		attr, err := schema.NewAttribute("attr", reflect.TypeFor[string](), field.MustNew(field.Undefined, opts...))
		if err != nil {
			t.Fatalf("building attribute: %v", err)
		}

		got := Classify(attr, nil)
		for _, n := range names {
			sub, ok := got.Fields[n].(map[string]any)
			if !ok {
				if n == "keyword" {
					continue
				}
				t.Fatalf("missing custom sub-field %q", n)
			}
			if sub["type"] != "text" {
				t.Fatalf("custom sub-field %q defaults to %v, want text", n, sub["type"])
			}
		}
		if keyword {
			if _, found := got.Fields["keyword"]; !found {
				t.Fatalf("missing generated keyword sub-field")
			}
		}
	})
}
