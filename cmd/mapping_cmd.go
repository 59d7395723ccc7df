// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/xataio/esodm/cmd/config"
	"github.com/xataio/esodm/internal/json"
	"github.com/xataio/esodm/pkg/odm"
)

var mappingCmd = &cobra.Command{
	Use:    "mapping",
	Short:  "Renders the index mapping of the declared models",
	PreRun: outputFlagBinding,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, cfg, err := loadRegistry()
		if err != nil {
			return err
		}

		set, err := cmd.Flags().GetStringSlice("set")
		if err != nil {
			return err
		}
		request, err := cmd.Flags().GetBool("request")
		if err != nil {
			return err
		}

		doc, err := renderMapping(r, mappingOptions{
			model:   cmd.Flags().Lookup("model").Value.String(),
			target:  cfg.Output.Target,
			format:  cfg.Output.Format,
			path:    cmd.Flags().Lookup("path").Value.String(),
			set:     set,
			request: request,
		})
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), string(doc)) //nolint:forbidigo
		return nil
	},
	Example: `
	esodm mapping -f models.yaml
	esodm mapping -f models.yaml --model UserODM --target opensearch
	esodm mapping -f models.yaml --model UserODM --path mappings.properties.profile
	esodm mapping -f models.yaml --model UserODM --set settings.number_of_replicas=0 --format yaml
	esodm mapping -c esodm.yaml --model UserODM --request
	`,
}

var (
	errPathNotFound    = errors.New("path not found in the rendered mapping")
	errInvalidOverride = errors.New("invalid override, must be in the format <path>=<value>")
)

type mappingOptions struct {
	model   string
	target  string
	format  string
	path    string
	set     []string
	request bool
}

// renderMapping renders the mapping of the selected model, or the mappings
// of every document keyed by model name.
func renderMapping(r *odm.Registry, opts mappingOptions) ([]byte, error) {
	schemas, err := selectSchemas(r, opts.model, true)
	if err != nil {
		return nil, err
	}

	mapper := newMapper(opts.target)
	mappings := make(map[string]any, len(schemas))
	for _, s := range schemas {
		var m any
		if opts.request {
			m, err = createIndexRequest(s, opts.target)
		} else {
			m, err = s.MappingFor(mapper)
		}
		if err != nil {
			return nil, err
		}
		mappings[s.Name()] = m
	}

	var out any = mappings
	if opts.model != "" {
		out = mappings[opts.model]
	}
	doc, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}

	if doc, err = applyOverrides(doc, opts.set); err != nil {
		return nil, err
	}
	if opts.path != "" {
		res := gjson.GetBytes(doc, opts.path)
		if !res.Exists() {
			return nil, fmt.Errorf("%w: %s", errPathNotFound, opts.path)
		}
		doc = []byte(res.Raw)
	}
	return formatDocument(doc, opts.format)
}

// createIndexRequest returns the index name and body of the request creating
// the model index.
func createIndexRequest(s *odm.Schema, target string) (map[string]any, error) {
	var (
		index string
		body  io.Reader
	)
	switch target {
	case config.TargetOpenSearch:
		req, err := s.OpenSearchCreateIndexRequest()
		if err != nil {
			return nil, err
		}
		index, body = req.Index, req.Body
	default:
		req, err := s.ElasticsearchCreateIndexRequest()
		if err != nil {
			return nil, err
		}
		index, body = req.Index, req.Body
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return map[string]any{
		"index": index,
		"body":  decoded,
	}, nil
}

func applyOverrides(doc []byte, overrides []string) ([]byte, error) {
	for _, override := range overrides {
		path, value, found := strings.Cut(override, "=")
		if !found || path == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidOverride, override)
		}

		var err error
		if gjson.Valid(value) {
			doc, err = sjson.SetRawBytes(doc, path, []byte(value))
		} else {
			doc, err = sjson.SetBytes(doc, path, value)
		}
		if err != nil {
			return nil, fmt.Errorf("applying override %q: %w", override, err)
		}
	}
	return doc, nil
}

func formatDocument(doc []byte, format string) ([]byte, error) {
	if format != config.FormatYAML {
		return []byte(gjson.GetBytes(doc, "@pretty").Raw), nil
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}
