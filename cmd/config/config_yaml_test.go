// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/xataio/esodm/pkg/odm/field"
	"github.com/xataio/esodm/pkg/odm/schema"
)

func TestYAMLConfig_toConfig(t *testing.T) {
	require.NoError(t, LoadFile("test/test_config.yaml"))
	defer viper.Reset()

	cfg, err := ParseConfig()
	require.NoError(t, err)

	require.Equal(t, Output{Target: TargetOpenSearch, Format: FormatYAML}, cfg.Output)
	require.Len(t, cfg.Models, 3)

	names := make([]string, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		names = append(names, m.Name)
	}
	require.Equal(t, []string{"tag", "UserProfileODM", "UserODM"}, names)

	tag := cfg.Models[0]
	require.Equal(t, schema.ExtraForbid, tag.Config.Extra)
	require.True(t, tag.Config.AnystrStripWhitespace)
	require.True(t, tag.Config.ArbitraryTypesAllowed)
	require.Equal(t, "tags-{{ .Model }}", tag.Index.Name)
	require.Equal(t, map[string]any{"tags": map[string]any{}}, tag.Index.Aliases)

	name, found := tag.Attribute("name")
	require.True(t, found)
	require.Equal(t, reflect.TypeFor[string](), name.Type)
	require.True(t, name.Info.Keyword())
	require.Equal(t, map[string]any{"pinyin": map[string]any{"analyzer": "pinyin_analyzer"}}, name.Info.Fields())

	weight, found := tag.Attribute("weight")
	require.True(t, found)
	require.Equal(t, 1.5, weight.Info.Default())
	require.False(t, weight.Required())

	labels, found := tag.Attribute("labels")
	require.True(t, found)
	require.Equal(t, reflect.TypeFor[[]string](), labels.Type)
	require.Equal(t, 3, *labels.Info.MaxItems())

	owner, found := tag.Attribute("owner")
	require.True(t, found)
	ref, ok := owner.Reference()
	require.True(t, ok)
	require.Equal(t, "UserProfileODM", ref)
	require.False(t, owner.Required())

	score, found := tag.Attribute("score")
	require.True(t, found)
	members := score.Members()
	require.Len(t, members, 2)
	require.Equal(t, field.MarkerCommon, members[0].Kind)
	require.Equal(t, reflect.TypeFor[int64](), members[1].Type)
}

func TestEnvConfig(t *testing.T) {
	viper.Set("ESODM_MODELS_FILE", "test/test_models.yaml")
	viper.Set("ESODM_OUTPUT_FORMAT", "yaml")
	defer viper.Reset()

	cfg, err := ParseConfig()
	require.NoError(t, err)
	require.Equal(t, Output{Target: TargetElasticsearch, Format: FormatYAML}, cfg.Output)
	require.Len(t, cfg.Models, 2)
	require.Equal(t, schema.KindInnerDocument, cfg.Models[0].Kind)
	require.Equal(t, []string{"InnerDocument"}, cfg.Models[0].Bases)
	require.Equal(t, schema.KindDocument, cfg.Models[1].Kind)
	require.Equal(t, "test-index-name", cfg.Models[1].Index.Name)
	require.Equal(t, map[string]any{"number_of_shards": 1}, cfg.Models[1].Index.Settings)

	pk, found := cfg.Models[1].PrimaryKey()
	require.True(t, found)
	require.Equal(t, "id", pk.Name)
}

func TestParseModels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string

		wantModels int
		wantErr    bool
	}{
		{
			name:       "ok - empty document",
			yaml:       "",
			wantModels: 0,
		},
		{
			name: "ok - models",
			yaml: `
models:
  - name: a
    fields:
      - name: b
`,
			wantModels: 1,
		},
		{
			name: "error - unknown key",
			yaml: `
models:
  - name: a
    feilds: []
`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			models, err := ParseModels(strings.NewReader(tc.yaml))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, models, tc.wantModels)
		})
	}
}

func TestModelConfig_ToDeclaration_ErrorCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config ModelConfig

		wantErr error
	}{
		{
			name:    "err - missing model name",
			config:  ModelConfig{},
			wantErr: errMissingModelName,
		},
		{
			name:    "err - invalid model kind",
			config:  ModelConfig{Name: "a", Kind: "invalid"},
			wantErr: errUnsupportedModelKind,
		},
		{
			name:    "err - missing field name",
			config:  ModelConfig{Name: "a", Fields: []FieldConfig{{Type: "int"}}},
			wantErr: errMissingFieldName,
		},
		{
			name:    "err - invalid field type",
			config:  ModelConfig{Name: "a", Fields: []FieldConfig{{Name: "b", Type: "complex"}}},
			wantErr: errUnsupportedFieldType,
		},
		{
			name:    "err - invalid fallback type",
			config:  ModelConfig{Name: "a", Fields: []FieldConfig{{Name: "b", As: "common", Fallback: "complex"}}},
			wantErr: errUnsupportedFieldType,
		},
		{
			name:    "err - invalid marker",
			config:  ModelConfig{Name: "a", Fields: []FieldConfig{{Name: "b", As: "flat"}}},
			wantErr: errUnsupportedMarker,
		},
		{
			name:    "err - invalid config key",
			config:  ModelConfig{Name: "a", Config: map[string]any{"shards": 1}},
			wantErr: nil,
		},
		{
			name: "err - duplicate field",
			config: ModelConfig{Name: "a", Fields: []FieldConfig{
				{Name: "b"},
				{Name: "b"},
			}},
			wantErr: field.ErrSchema,
		},
		{
			name:    "err - inconsistent constraints",
			config:  ModelConfig{Name: "a", Fields: []FieldConfig{{Name: "b", MinLength: ptr(3), MaxLength: ptr(1)}}},
			wantErr: field.ErrSchema,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := tc.config.ToDeclaration()
			require.Error(t, err)
			if tc.wantErr != nil {
				require.True(t, errors.Is(err, tc.wantErr), err.Error())
			}
		})
	}
}

func TestOutputConfig_toOutput(t *testing.T) {
	t.Parallel()

	_, err := OutputConfig{Target: "solr"}.toOutput()
	require.ErrorIs(t, err, errUnsupportedTarget)

	_, err = OutputConfig{Format: "toml"}.toOutput()
	require.ErrorIs(t, err, errUnsupportedFormat)

	out, err := OutputConfig{}.toOutput()
	require.NoError(t, err)
	require.Equal(t, Output{Target: TargetElasticsearch, Format: FormatJSON}, out)
}

func TestDeclarations_duplicateModel(t *testing.T) {
	t.Parallel()

	_, err := declarations([]ModelConfig{{Name: "a"}, {Name: "a"}})
	require.ErrorIs(t, err, errDuplicateModel)
}

func ptr[T any](v T) *T { return &v }
