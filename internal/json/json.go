// SPDX-License-Identifier: Apache-2.0

package json

import (
	"github.com/bytedance/sonic"
)

// std sorts map keys, which keeps rendered mappings stable between runs.
var std = sonic.ConfigStd

func Unmarshal(b []byte, v any) error {
	return std.Unmarshal(b, v)
}

func Marshal(v any) ([]byte, error) {
	return std.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return std.MarshalIndent(v, prefix, indent)
}
