// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// Extra controls how validation treats keys that match no attribute.
type Extra string

const (
	ExtraIgnore Extra = "ignore"
	ExtraForbid Extra = "forbid"
	ExtraAllow  Extra = "allow"
)

// Config is the validation configuration of a model.
type Config struct {
	ArbitraryTypesAllowed bool   `mapstructure:"arbitrary_types_allowed" yaml:"arbitrary_types_allowed"`
	Extra                 Extra  `mapstructure:"extra" yaml:"extra"`
	Title                 string `mapstructure:"title" yaml:"title"`
	AnystrStripWhitespace bool   `mapstructure:"anystr_strip_whitespace" yaml:"anystr_strip_whitespace"`
	MinAnystrLength       int    `mapstructure:"min_anystr_length" yaml:"min_anystr_length"`
	// MaxAnystrLength of 0 means no limit.
	MaxAnystrLength    int  `mapstructure:"max_anystr_length" yaml:"max_anystr_length"`
	OrmMode            bool `mapstructure:"orm_mode" yaml:"orm_mode"`
	ValidateAssignment bool `mapstructure:"validate_assignment" yaml:"validate_assignment"`
}

const configTag = "mapstructure"

var configKeys = func() []string {
	t := reflect.TypeFor[Config]()
	keys := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		keys = append(keys, t.Field(i).Tag.Get(configTag))
	}
	return keys
}()

// ConfigKeys returns the public configuration option names.
func ConfigKeys() []string {
	return slices.Clone(configKeys)
}

// IsConfigKey reports whether the option name belongs to the validation
// configuration rather than to the index configuration.
func IsConfigKey(key string) bool {
	return slices.Contains(configKeys, key)
}

// DecodeConfig decodes configuration options on top of base.
func DecodeConfig(base Config, values map[string]any) (Config, error) {
	cfg := base
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          configTag,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(values); err != nil {
		return Config{}, fmt.Errorf("decoding model config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Extra {
	case "", ExtraIgnore, ExtraForbid, ExtraAllow:
	default:
		return fmt.Errorf("invalid extra option %q: must be one of ignore, forbid or allow", c.Extra)
	}
	if c.MinAnystrLength < 0 || c.MaxAnystrLength < 0 {
		return fmt.Errorf("anystr lengths must not be negative")
	}
	if c.MaxAnystrLength > 0 && c.MinAnystrLength > c.MaxAnystrLength {
		return fmt.Errorf("min_anystr_length (%d) must be lower or equal to max_anystr_length (%d)", c.MinAnystrLength, c.MaxAnystrLength)
	}
	return nil
}

// ExtraMode returns the extra behaviour, defaulting to ignore.
func (c Config) ExtraMode() Extra {
	if c.Extra == "" {
		return ExtraIgnore
	}
	return c.Extra
}

// Index is the index configuration of a document model.
type Index struct {
	// Name of the index. It can be a template, see the indexname package.
	Name     string         `mapstructure:"name" yaml:"name"`
	Settings map[string]any `mapstructure:"settings" yaml:"settings"`
	Aliases  map[string]any `mapstructure:"aliases" yaml:"aliases"`
}

func (i Index) IsZero() bool {
	return i.Name == "" && len(i.Settings) == 0 && len(i.Aliases) == 0
}
