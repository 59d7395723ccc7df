// SPDX-License-Identifier: Apache-2.0

package field

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tag    string
		goType reflect.Type

		wantName string
		wantSkip bool
		check    func(t *testing.T, info *Info)
		wantErr  error
	}{
		"skip": {
			tag:      "-",
			wantSkip: true,
		},
		"empty": {
			tag:    "",
			goType: reflect.TypeFor[string](),
			check: func(t *testing.T, info *Info) {
				require.False(t, info.HasDefault())
			},
		},
		"name and flags": {
			tag:      "username,keyword,pk,nullable,index",
			goType:   reflect.TypeFor[string](),
			wantName: "username",
			check: func(t *testing.T, info *Info) {
				require.True(t, info.Keyword())
				require.True(t, info.PrimaryKey())
				nullable, _ := info.Nullable()
				require.True(t, nullable)
				index, _ := info.Index()
				require.True(t, index)
			},
		},
		"constraints": {
			tag:      "age,ge=0,lt=150,multiple_of=1",
			goType:   reflect.TypeFor[int](),
			wantName: "age",
			check: func(t *testing.T, info *Info) {
				require.Equal(t, 0.0, *info.Ge())
				require.Equal(t, 150.0, *info.Lt())
				require.Equal(t, 1.0, *info.MultipleOf())
			},
		},
		"typed int default": {
			tag:    ",default=18",
			goType: reflect.TypeFor[*int32](),
			check: func(t *testing.T, info *Info) {
				require.Equal(t, int32(18), info.Default())
			},
		},
		"string default": {
			tag:    ",default=anonymous",
			goType: reflect.TypeFor[string](),
			check: func(t *testing.T, info *Info) {
				require.Equal(t, "anonymous", info.Default())
			},
		},
		"raw default for non scalar kinds": {
			tag:    ",default=2024-01-01T00:00:00Z",
			goType: reflect.TypeFor[time.Time](),
			check: func(t *testing.T, info *Info) {
				require.Equal(t, "2024-01-01T00:00:00Z", info.Default())
			},
		},
		"regex with commas": {
			tag:      "code,min_length=2,regex=^[a-z]{2,4}$",
			goType:   reflect.TypeFor[string](),
			wantName: "code",
			check: func(t *testing.T, info *Info) {
				require.Equal(t, "^[a-z]{2,4}$", info.Regex())
				require.Equal(t, 2, *info.MinLength())
			},
		},
		"object marker with model": {
			tag:      "profile,as=object,model=UserProfile",
			wantName: "profile",
			check: func(t *testing.T, info *Info) {
				require.Equal(t, Object("UserProfile"), info.Marker())
			},
		},
		"model implies object": {
			tag: ",model=UserProfile",
			check: func(t *testing.T, info *Info) {
				require.Equal(t, MarkerObject, info.Marker().Kind)
			},
		},
		"common marker with fallback": {
			tag:    ",as=common,fallback=int",
			goType: reflect.TypeFor[string](),
			check: func(t *testing.T, info *Info) {
				require.Equal(t, Common(reflect.TypeFor[int64]()), info.Marker())
			},
		},
		"field type override": {
			tag: ",type=dense_vector,dims=3",
			check: func(t *testing.T, info *Info) {
				_, dims, found := info.FieldType()
				require.True(t, found)
				require.Equal(t, 3, dims)
			},
		},
		"unknown flag": {
			tag:     "name,sortable",
			wantErr: ErrSchema,
		},
		"unknown marker": {
			tag:     "name,as=geo",
			wantErr: ErrSchema,
		},
		"unknown fallback": {
			tag:     "name,as=common,fallback=uuid",
			wantErr: ErrSchema,
		},
		"bad number": {
			tag:     "name,gt=ten",
			wantErr: ErrSchema,
		},
		"bad default": {
			tag:     "name,default=yes-please",
			goType:  reflect.TypeFor[bool](),
			wantErr: ErrSchema,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			gotName, skip, opts, err := ParseTag(tc.tag, tc.goType)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantName, gotName)
			require.Equal(t, tc.wantSkip, skip)
			if tc.check == nil {
				return
			}
			info, err := New(Undefined, opts...)
			require.NoError(t, err)
			tc.check(t, info)
		})
	}
}

func TestLookupScalar(t *testing.T) {
	t.Parallel()

	got, found := LookupScalar(" Boolean ")
	require.True(t, found)
	require.Equal(t, reflect.TypeFor[bool](), got)

	_, found = LookupScalar("uuid")
	require.False(t, found)
}
