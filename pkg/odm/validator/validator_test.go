// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xataio/esodm/pkg/odm/field"
	"github.com/xataio/esodm/pkg/odm/schema"
)

type mapResolver map[string]*schema.Declaration

func (r mapResolver) Resolve(name string) (*schema.Declaration, bool) {
	d, found := r[name]
	return d, found
}

func (r mapResolver) DeclarationOf(t reflect.Type) (*schema.Declaration, bool) {
	for _, d := range r {
		if d.Type == t {
			return d, true
		}
	}
	return nil, false
}

type level string

func (level) EnumValues() []string { return []string{"debug", "info"} }

type profile struct {
	schema.InnerDocument
	UserID   int    `esodm:"user_id"`
	Nickname string `esodm:"nickname,keyword,min_length=2"`
}

type user struct {
	schema.Document
	ID       int            `esodm:"id,pk,gt=0"`
	Username string         `esodm:"username,keyword,regex=^[a-z]+$"`
	Profile  map[string]any `esodm:"profile,model=profile"`
	Friends  []profile      `esodm:"friends,as=nested"`
	Level    level          `esodm:"level,default=info"`
	Score    *float64       `esodm:"score,ge=0,le=1"`
	Tags     []string       `esodm:"tags,max_items=2"`
	Timeout  time.Duration  `esodm:"timeout,default=0"`
	Seen     *time.Time     `esodm:"seen"`
	Offset   *int64         `esodm:"offset"`
	Count    *uint64        `esodm:"count"`
}

func newUserValidator(t *testing.T, cfg schema.Config) *Validator {
	t.Helper()

	profileDecl, err := schema.FromType(reflect.TypeFor[profile](), nil)
	require.NoError(t, err)
	userDecl, err := schema.FromType(reflect.TypeFor[user](), nil)
	require.NoError(t, err)
	userDecl.Config = cfg

	return New(userDecl, mapResolver{"profile": profileDecl, "user": userDecl})
}

func validUser() map[string]any {
	return map[string]any{
		"id":       1,
		"username": "jdoe",
		"profile":  map[string]any{"user_id": 1, "nickname": "jd"},
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	seen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		config  schema.Config
		input   func() map[string]any
		want    map[string]any
		wantErr []FieldError
	}{
		"valid input gets defaults": {
			input: validUser,
			want: map[string]any{
				"id":       1,
				"username": "jdoe",
				"profile":  map[string]any{"user_id": 1, "nickname": "jd"},
				"level":    level("info"),
				"timeout":  time.Duration(0),
			},
		},
		"coercion": {
			input: func() map[string]any {
				in := validUser()
				in["id"] = float64(7)
				in["score"] = "0.5"
				in["timeout"] = "1m"
				in["seen"] = "2024-05-01T10:00:00Z"
				in["friends"] = []any{map[string]any{"user_id": 2, "nickname": "bob"}}
				return in
			},
			want: map[string]any{
				"id":       int64(7),
				"username": "jdoe",
				"profile":  map[string]any{"user_id": 1, "nickname": "jd"},
				"friends":  []any{map[string]any{"user_id": 2, "nickname": "bob"}},
				"level":    level("info"),
				"score":    0.5,
				"timeout":  time.Minute,
				"seen":     seen,
			},
		},
		"dict fallback for the referenced model": {
			input: func() map[string]any {
				in := validUser()
				in["profile"] = map[string]any{"anything": true}
				return in
			},
			want: map[string]any{
				"id":       1,
				"username": "jdoe",
				"profile":  map[string]any{"anything": true},
				"level":    level("info"),
				"timeout":  time.Duration(0),
			},
		},
		"missing and invalid values": {
			input: func() map[string]any {
				return map[string]any{
					"id":       0,
					"username": "JDoe",
					"level":    "trace",
					"score":    2,
					"tags":     []any{"a", "b", "c"},
				}
			},
			wantErr: []FieldError{
				{Loc: []any{"id"}, Msg: "ensure this value is greater than 0", Type: "value_error.number.not_gt"},
				{Loc: []any{"username"}, Msg: `string does not match regex "^[a-z]+$"`, Type: "value_error.str.regex"},
				{Loc: []any{"level"}, Msg: `value is not a valid enumeration member; permitted: "debug", "info"`, Type: "type_error.enum"},
				{Loc: []any{"score"}, Msg: "ensure this value is less than or equal to 1", Type: "value_error.number.not_le"},
				{Loc: []any{"tags"}, Msg: "ensure this value has at most 2 items", Type: "value_error.list.max_items"},
			},
		},
		"nested model errors carry their location": {
			input: func() map[string]any {
				in := validUser()
				in["friends"] = []any{
					map[string]any{"user_id": 2, "nickname": "bob"},
					map[string]any{"user_id": "two", "nickname": "b"},
				}
				return in
			},
			wantErr: []FieldError{
				{Loc: []any{"friends", 1, "user_id"}, Msg: "value is not a valid integer", Type: "type_error.integer"},
				{Loc: []any{"friends", 1, "nickname"}, Msg: "ensure this value has at least 2 characters", Type: "value_error.any_str.min_length"},
			},
		},
		"integers out of range": {
			input: func() map[string]any {
				in := validUser()
				in["offset"] = 1e20
				in["count"] = 1e25
				return in
			},
			wantErr: []FieldError{
				{Loc: []any{"offset"}, Msg: "ensure this value fits in int64", Type: "value_error.number.overflow"},
				{Loc: []any{"count"}, Msg: "ensure this value fits in uint64", Type: "value_error.number.overflow"},
			},
		},
		"negative integer out of range": {
			input: func() map[string]any {
				in := validUser()
				in["offset"] = -1e19
				return in
			},
			wantErr: []FieldError{
				{Loc: []any{"offset"}, Msg: "ensure this value fits in int64", Type: "value_error.number.overflow"},
			},
		},
		"integers within range": {
			input: func() map[string]any {
				in := validUser()
				in["offset"] = float64(-1 << 62)
				in["count"] = float64(1 << 63)
				return in
			},
			want: map[string]any{
				"id":       1,
				"username": "jdoe",
				"profile":  map[string]any{"user_id": 1, "nickname": "jd"},
				"level":    level("info"),
				"timeout":  time.Duration(0),
				"offset":   int64(-1 << 62),
				"count":    uint64(1 << 63),
			},
		},
		"required attribute": {
			input: func() map[string]any {
				return map[string]any{"username": "jdoe"}
			},
			wantErr: []FieldError{
				{Loc: []any{"id"}, Msg: "field required", Type: "value_error.missing"},
			},
		},
		"none on a required attribute": {
			input: func() map[string]any {
				in := validUser()
				in["id"] = nil
				in["score"] = nil
				return in
			},
			wantErr: []FieldError{
				{Loc: []any{"id"}, Msg: "none is not an allowed value", Type: "type_error.none.not_allowed"},
			},
		},
		"extra keys forbidden": {
			config: schema.Config{Extra: schema.ExtraForbid},
			input: func() map[string]any {
				in := validUser()
				in["unknown"] = 1
				return in
			},
			wantErr: []FieldError{
				{Loc: []any{"unknown"}, Msg: "extra fields not permitted", Type: "value_error.extra"},
			},
		},
		"extra keys allowed": {
			config: schema.Config{Extra: schema.ExtraAllow},
			input: func() map[string]any {
				in := validUser()
				in["unknown"] = 1
				return in
			},
			want: map[string]any{
				"id":       1,
				"username": "jdoe",
				"profile":  map[string]any{"user_id": 1, "nickname": "jd"},
				"level":    level("info"),
				"timeout":  time.Duration(0),
				"unknown":  1,
			},
		},
		"whitespace stripped": {
			config: schema.Config{AnystrStripWhitespace: true},
			input: func() map[string]any {
				in := validUser()
				in["username"] = "  jdoe "
				return in
			},
			want: map[string]any{
				"id":       1,
				"username": "jdoe",
				"profile":  map[string]any{"user_id": 1, "nickname": "jd"},
				"level":    level("info"),
				"timeout":  time.Duration(0),
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v := newUserValidator(t, tc.config)
			got, err := v.Validate(tc.input())
			if tc.wantErr != nil {
				require.ErrorIs(t, err, ErrValidation)
				var validationErr *ValidationError
				require.True(t, errors.As(err, &validationErr))
				require.Equal(t, "user", validationErr.Model)
				require.Equal(t, tc.wantErr, validationErr.Errors)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

type contact struct {
	schema.InnerDocument
	Email string  `esodm:"email,default=nobody@example.com"`
	Phone *string `esodm:"phone"`
}

type member struct {
	schema.Document
	Contact map[string]any `esodm:"contact,model=contact"`
	Primary contact        `esodm:"primary,as=object"`
}

func TestValidator_plainMapKeepsInputKeys(t *testing.T) {
	t.Parallel()

	contactDecl, err := schema.FromType(reflect.TypeFor[contact](), nil)
	require.NoError(t, err)
	memberDecl, err := schema.FromType(reflect.TypeFor[member](), nil)
	require.NoError(t, err)
	v := New(memberDecl, mapResolver{"contact": contactDecl, "member": memberDecl})

	got, err := v.Validate(map[string]any{
		"contact": map[string]any{"phone": nil, "note": "call after 5"},
		"primary": map[string]any{"phone": nil},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"contact": map[string]any{"phone": nil, "note": "call after 5"},
		"primary": map[string]any{"email": "nobody@example.com", "phone": nil},
	}, got)
}

type keywordWrapper[T any] struct {
	Value T
}

func (keywordWrapper[T]) WrapperMarker() field.Marker { return field.KeywordMarker() }
func (keywordWrapper[T]) WrappedType() reflect.Type   { return reflect.TypeFor[T]() }
func (w keywordWrapper[T]) WrappedValue() any         { return w.Value }

func TestValidator_wrapperLocation(t *testing.T) {
	t.Parallel()

	type model struct {
		Code keywordWrapper[int] `esodm:"code"`
	}

	decl, err := schema.FromType(reflect.TypeFor[model](), nil)
	require.NoError(t, err)

	_, err = New(decl, nil).Validate(map[string]any{"code": "abc"})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Len(t, validationErr.Errors, 1)
	require.Equal(t, []any{"code", InnerLocation}, validationErr.Errors[0].Loc)
	require.Equal(t, "code.inner", validationErr.Errors[0].Location())

	got, err := New(decl, nil).Validate(map[string]any{"code": 3})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"code": 3}, got)
}

func TestValidator_aliasAndConst(t *testing.T) {
	t.Parallel()

	type model struct {
		Kind string `esodm:"kind,alias=type,const,default=user"`
	}

	decl, err := schema.FromType(reflect.TypeFor[model](), nil)
	require.NoError(t, err)
	v := New(decl, nil)

	got, err := v.Validate(map[string]any{"type": "user"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"kind": "user"}, got)

	_, err = v.Validate(map[string]any{"kind": "admin"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	err := &ValidationError{
		Model: "user",
		Errors: []FieldError{
			{Loc: []any{"profile", InnerLocation, "user_id"}, Msg: "value is not a valid integer", Type: "type_error.integer"},
		},
	}
	require.Equal(t, "1 validation error for user\nprofile.inner.user_id\n  value is not a valid integer (type=type_error.integer)", err.Error())
}
