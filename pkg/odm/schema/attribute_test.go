// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xataio/esodm/pkg/odm/field"
)

type wrapped[T any] struct {
	Value T
}

func (wrapped[T]) WrapperMarker() field.Marker { return field.KeywordMarker() }
func (wrapped[T]) WrappedType() reflect.Type   { return reflect.TypeFor[T]() }
func (w wrapped[T]) WrappedValue() any         { return w.Value }

func TestAttribute_Members(t *testing.T) {
	t.Parallel()

	mapType := reflect.TypeFor[map[string]any]()
	profileType := reflect.TypeFor[testProfile]()

	tests := map[string]struct {
		attr *Attribute
		want []Member
	}{
		"plain": {
			attr: mustAttribute(t, "a", reflect.TypeFor[int](), nil),
			want: []Member{{Kind: field.MarkerPlain, Type: reflect.TypeFor[int]()}},
		},
		"object reference with dict fallback": {
			attr: mustAttribute(t, "profile", mapType, field.MustNew(field.Undefined, field.WithMarker(field.Object("testProfile")))),
			want: []Member{
				{Kind: field.MarkerObject, Ref: "testProfile"},
				{Kind: field.MarkerPlain, Type: mapType},
			},
		},
		"nested over a slice of models": {
			attr: mustAttribute(t, "profiles", reflect.TypeFor[[]*testProfile](), field.MustNew(field.Undefined, field.WithMarker(field.Marker{Kind: field.MarkerNested}))),
			want: []Member{
				{Kind: field.MarkerNested, Type: profileType},
				{Kind: field.MarkerPlain, Type: reflect.TypeFor[[]*testProfile]()},
			},
		},
		"common with fallback": {
			attr: mustAttribute(t, "c", reflect.TypeFor[string](), field.MustNew(field.Undefined, field.WithMarker(field.Common(reflect.TypeFor[int64]())))),
			want: []Member{
				{Kind: field.MarkerCommon, Type: reflect.TypeFor[string]()},
				{Kind: field.MarkerPlain, Type: reflect.TypeFor[int64]()},
			},
		},
		"wrapper type": {
			attr: mustAttribute(t, "w", reflect.TypeFor[wrapped[string]](), nil),
			want: []Member{
				{Kind: field.MarkerKeyword, Type: reflect.TypeFor[string]()},
				{Kind: field.MarkerPlain, Type: reflect.TypeFor[string]()},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, tc.attr.Members())
			require.Equal(t, len(tc.want) > 1, tc.attr.IsUnion())
		})
	}
}

func TestAttribute_Required(t *testing.T) {
	t.Parallel()

	require.True(t, mustAttribute(t, "a", reflect.TypeFor[int](), nil).Required())
	require.False(t, mustAttribute(t, "a", reflect.TypeFor[*int](), nil).Required())
	require.False(t, mustAttribute(t, "a", reflect.TypeFor[int](), field.MustNew(0)).Required())
	require.False(t, mustAttribute(t, "a", reflect.TypeFor[int](), field.MustNew(field.Undefined, field.WithNullable(true))).Required())
	require.False(t, mustAttribute(t, "a", reflect.TypeFor[map[string]any](), nil).Required())
}

func TestNewAttribute_errors(t *testing.T) {
	t.Parallel()

	_, err := NewAttribute("", reflect.TypeFor[int](), nil)
	require.ErrorIs(t, err, field.ErrSchema)
	_, err = NewAttribute("a", nil, nil)
	require.ErrorIs(t, err, field.ErrSchema)
}

func mustAttribute(t *testing.T, name string, typ reflect.Type, info *field.Info) *Attribute {
	t.Helper()
	a, err := NewAttribute(name, typ, info)
	require.NoError(t, err)
	return a
}
