// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"bytes"
	"fmt"
	"maps"

	"github.com/xataio/esodm/internal/json"
)

// IndexBody builds the body of an index creation request. Empty sections are
// left out.
func IndexBody(settings, aliases, properties map[string]any) map[string]any {
	body := map[string]any{}
	if len(settings) > 0 {
		body["settings"] = settings
	}
	if len(aliases) > 0 {
		body["aliases"] = aliases
	}
	if len(properties) > 0 {
		body["mappings"] = map[string]any{"properties": properties}
	}
	return body
}

// MergeSettings overlays the given settings on top of the flavour defaults.
func MergeSettings(defaults, settings map[string]any) map[string]any {
	merged := maps.Clone(defaults)
	if merged == nil {
		merged = make(map[string]any, len(settings))
	}
	maps.Copy(merged, settings)
	return merged
}

// CreateReader returns a reader on the JSON representation of the given value.
func CreateReader(value any) (*bytes.Reader, error) {
	bytesValue, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("unexpected marshaling error: %w", err)
	}
	return bytes.NewReader(bytesValue), nil
}
