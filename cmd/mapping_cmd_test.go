// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xataio/esodm/cmd/config"
	loglib "github.com/xataio/esodm/pkg/log"
)

const testUserMapping = `{
	"settings": {"number_of_shards": 1},
	"mappings": {
		"properties": {
			"id": {"type": "integer"},
			"username": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"profile": {
				"type": "object",
				"properties": {
					"user_id": {"type": "integer"},
					"nickname": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
					"gender": {"type": "integer"},
					"address": {"type": "text", "fields": {"keyword": {"type": "keyword"}}}
				}
			}
		}
	}
}`

func TestRenderMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts mappingOptions

		wantJSON string
		wantErr  error
	}{
		{
			name:     "ok - single model",
			opts:     mappingOptions{model: "UserODM"},
			wantJSON: testUserMapping,
		},
		{
			name:     "ok - all documents",
			opts:     mappingOptions{},
			wantJSON: `{"UserODM": ` + testUserMapping + `}`,
		},
		{
			name:     "ok - path",
			opts:     mappingOptions{model: "UserODM", path: "mappings.properties.profile.properties.nickname.fields"},
			wantJSON: `{"keyword": {"type": "keyword"}}`,
		},
		{
			name: "ok - overrides",
			opts: mappingOptions{
				model: "UserODM",
				set:   []string{"settings.number_of_replicas=0", "mappings.dynamic=strict"},
				path:  "settings",
			},
			wantJSON: `{"number_of_shards": 1, "number_of_replicas": 0}`,
		},
		{
			name: "ok - override string value",
			opts: mappingOptions{
				model: "UserODM",
				set:   []string{"mappings.dynamic=strict"},
				path:  "mappings.dynamic",
			},
			wantJSON: `"strict"`,
		},
		{
			name:     "ok - inner document selected by name",
			opts:     mappingOptions{model: "UserProfileODM", path: "mappings.properties.gender"},
			wantJSON: `{"type": "integer"}`,
		},
		{
			name:    "error - unknown model",
			opts:    mappingOptions{model: "GroupODM"},
			wantErr: errUnknownModel,
		},
		{
			name:    "error - path not found",
			opts:    mappingOptions{model: "UserODM", path: "mappings.properties.email"},
			wantErr: errPathNotFound,
		},
		{
			name:    "error - invalid override",
			opts:    mappingOptions{model: "UserODM", set: []string{"settings.number_of_replicas"}},
			wantErr: errInvalidOverride,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRegistry(t, config.TargetElasticsearch)
			doc, err := renderMapping(r, tc.opts)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.JSONEq(t, tc.wantJSON, string(doc))
		})
	}
}

func TestRenderMapping_request(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, config.TargetOpenSearch)
	doc, err := renderMapping(r, mappingOptions{
		model:   "UserODM",
		target:  config.TargetOpenSearch,
		request: true,
		path:    "index",
	})
	require.NoError(t, err)
	require.JSONEq(t, `"test-index-name"`, string(doc))

	doc, err = renderMapping(r, mappingOptions{
		model:   "UserODM",
		target:  config.TargetOpenSearch,
		request: true,
		path:    "body.settings",
	})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"number_of_shards": 1,
		"number_of_replicas": 1,
		"index.mapping.total_fields.limit": 2000,
		"index.knn": true,
		"knn.algo_param.ef_search": 100
	}`, string(doc))
}

func TestRenderMapping_yaml(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, config.TargetElasticsearch)
	doc, err := renderMapping(r, mappingOptions{
		model:  "UserODM",
		format: config.FormatYAML,
		path:   "mappings.properties.username",
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(doc, &got))
	require.Equal(t, map[string]any{
		"type":   "text",
		"fields": map[string]any{"keyword": map[string]any{"type": "keyword"}},
	}, got)
}

func TestNewRegistry_noModels(t *testing.T) {
	t.Parallel()

	_, err := newRegistry(&config.Config{}, loglib.NewNoopLogger())
	require.ErrorIs(t, err, errNoModels)
}
