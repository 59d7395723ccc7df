// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/xataio/esodm/pkg/odm/schema"
)

// Config is the resolved CLI configuration: the declared models and how
// mappings are rendered.
type Config struct {
	Models []*schema.Declaration
	Output Output
}

type Output struct {
	Target string
	Format string
}

const (
	TargetElasticsearch = "elasticsearch"
	TargetOpenSearch    = "opensearch"

	FormatJSON = "json"
	FormatYAML = "yaml"
)

func Load() error {
	return LoadFile(viper.GetString("config"))
}

func LoadFile(file string) error {
	if file != "" {
		viper.SetConfigFile(file)
		viper.SetConfigType(filepath.Ext(file)[1:])
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func ModelsFile() string {
	switch {
	case viper.GetString("models.file") != "":
		// yaml config or CLI argument
		return viper.GetString("models.file")
	default:
		// env config
		return viper.GetString("ESODM_MODELS_FILE")
	}
}

func ParseConfig() (*Config, error) {
	cfgFile := viper.GetViper().ConfigFileUsed()
	switch ext := filepath.Ext(cfgFile); ext {
	case ".yml", ".yaml":
		yamlCfg := YAMLConfig{}
		if err := viper.Unmarshal(&yamlCfg); err != nil {
			return nil, err
		}
		return yamlCfg.toConfig()
	default:
		return envConfig()
	}
}

func envConfig() (*Config, error) {
	yamlCfg := YAMLConfig{
		Models: ModelsConfig{
			File: ModelsFile(),
		},
		Output: OutputConfig{
			Target: viper.GetString("ESODM_OUTPUT_TARGET"),
			Format: viper.GetString("ESODM_OUTPUT_FORMAT"),
		},
	}
	return yamlCfg.toConfig()
}
