// SPDX-License-Identifier: Apache-2.0

package field

import (
	"math/big"
	"reflect"
	"strings"
	"time"
)

var scalarTypes = map[string]reflect.Type{
	"string":    reflect.TypeFor[string](),
	"str":       reflect.TypeFor[string](),
	"text":      reflect.TypeFor[string](),
	"int":       reflect.TypeFor[int64](),
	"integer":   reflect.TypeFor[int64](),
	"float":     reflect.TypeFor[float64](),
	"bool":      reflect.TypeFor[bool](),
	"boolean":   reflect.TypeFor[bool](),
	"datetime":  reflect.TypeFor[time.Time](),
	"date":      reflect.TypeFor[time.Time](),
	"time":      reflect.TypeFor[time.Time](),
	"duration":  reflect.TypeFor[time.Duration](),
	"timedelta": reflect.TypeFor[time.Duration](),
	"bytes":     reflect.TypeFor[[]byte](),
	"decimal":   reflect.TypeFor[*big.Float](),
	"dict":      reflect.TypeFor[map[string]any](),
	"object":    reflect.TypeFor[map[string]any](),
	"map":       reflect.TypeFor[map[string]any](),
	"any":       reflect.TypeFor[any](),
}

// LookupScalar returns the Go type standing for a scalar type name, as used
// by the fallback tag option and by model declaration files.
func LookupScalar(name string) (reflect.Type, bool) {
	t, found := scalarTypes[strings.ToLower(strings.TrimSpace(name))]
	return t, found
}
