// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xataio/esodm/cmd/config"
	loglib "github.com/xataio/esodm/pkg/log"
	"github.com/xataio/esodm/pkg/odm"
)

const testModelsFile = "config/test/test_models.yaml"

func newTestRegistry(t *testing.T, target string) *odm.Registry {
	t.Helper()

	models, err := config.ParseModelsFile(testModelsFile)
	require.NoError(t, err)

	cfg := &config.Config{Output: config.Output{Target: target, Format: config.FormatJSON}}
	for _, m := range models {
		decl, err := m.ToDeclaration()
		require.NoError(t, err)
		cfg.Models = append(cfg.Models, decl)
	}

	r, err := newRegistry(cfg, loglib.NewNoopLogger())
	require.NoError(t, err)
	return r
}
