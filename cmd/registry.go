// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/xataio/esodm/cmd/config"
	"github.com/xataio/esodm/internal/log/zerolog"
	"github.com/xataio/esodm/internal/searchstore"
	"github.com/xataio/esodm/internal/searchstore/elasticsearch"
	"github.com/xataio/esodm/internal/searchstore/opensearch"
	loglib "github.com/xataio/esodm/pkg/log"
	"github.com/xataio/esodm/pkg/odm"
)

var (
	errNoModels     = errors.New("no models declared, use --models-file or the models section of the config file")
	errUnknownModel = errors.New("unknown model")
)

func newLogger() loglib.Logger {
	logger := zerolog.NewLogger(&zerolog.Config{
		LogLevel: viper.GetString("ESODM_LOG_LEVEL"),
	})
	zerolog.SetGlobalLogger(logger)
	return zerolog.NewStdLogger(logger)
}

// loadRegistry parses the configuration and declares its models.
func loadRegistry() (*odm.Registry, *config.Config, error) {
	cfg, err := config.ParseConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	r, err := newRegistry(cfg, newLogger())
	if err != nil {
		return nil, nil, err
	}
	return r, cfg, nil
}

func newRegistry(cfg *config.Config, logger loglib.Logger) (*odm.Registry, error) {
	if len(cfg.Models) == 0 {
		return nil, errNoModels
	}

	r := odm.NewRegistry(
		odm.WithLogger(logger),
		odm.WithMapper(newMapper(cfg.Output.Target)),
	)
	for _, decl := range cfg.Models {
		if _, err := r.Declare(decl); err != nil {
			return nil, fmt.Errorf("declaring model %s: %w", decl.Name, err)
		}
	}
	r.TryResolveReferences()
	return r, nil
}

func newMapper(target string) searchstore.Mapper {
	if target == config.TargetOpenSearch {
		return opensearch.NewMapper()
	}
	return elasticsearch.NewMapper()
}

// selectSchemas returns the named model, or every document model when no
// name is given.
func selectSchemas(r *odm.Registry, name string, documentsOnly bool) ([]*odm.Schema, error) {
	if name != "" {
		s, found := r.Schema(name)
		if !found {
			return nil, fmt.Errorf("%w: %s", errUnknownModel, name)
		}
		return []*odm.Schema{s}, nil
	}

	schemas := []*odm.Schema{}
	for _, s := range r.Schemas() {
		if documentsOnly && s.Kind() != odm.KindDocument {
			continue
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}
