// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/esodm/internal/searchstore"
	"github.com/xataio/esodm/pkg/odm"
	"github.com/xataio/esodm/pkg/odm/schema"
)

var inspectCmd = &cobra.Command{
	Use:    "inspect",
	Short:  "Describes the declared models: attributes, descriptors and resolved search types",
	PreRun: outputFlagBinding,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := loadRegistry()
		if err != nil {
			return err
		}

		inspection, err := inspectModels(r, cmd.Flags().Lookup("model").Value.String())
		if err != nil {
			return err
		}
		return print(cmd, inspection)
	},
	Example: `
	esodm inspect -f models.yaml
	esodm inspect -f models.yaml --model UserODM --json
	`,
}

type modelsInspection struct {
	Models []modelInspection `json:"models"`
}

type modelInspection struct {
	Name       string                `json:"name"`
	Kind       string                `json:"kind"`
	Bases      []string              `json:"bases,omitempty"`
	Attributes []attributeInspection `json:"attributes"`
}

type attributeInspection struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	SearchType string   `json:"search_type"`
	Required   bool     `json:"required"`
	Default    string   `json:"default,omitempty"`
	Options    []string `json:"options,omitempty"`
}

func inspectModels(r *odm.Registry, name string) (*modelsInspection, error) {
	schemas, err := selectSchemas(r, name, false)
	if err != nil {
		return nil, err
	}

	inspection := &modelsInspection{}
	for _, s := range schemas {
		inspection.Models = append(inspection.Models, inspectModel(s))
	}
	return inspection, nil
}

func inspectModel(s *odm.Schema) modelInspection {
	searchTypes := map[string]searchstore.Type{}
	for _, p := range s.Properties() {
		searchTypes[p.Name] = p.Field.SearchType
	}

	m := modelInspection{
		Name:  s.Describe(),
		Kind:  s.Kind().String(),
		Bases: s.Bases(),
	}
	for _, attr := range s.Attributes() {
		ai := attributeInspection{
			Name:       attr.Name,
			Type:       strings.TrimPrefix(attr.String(), attr.Name+": "),
			SearchType: searchTypes[attr.Name].String(),
			Required:   attr.Required(),
			Options:    attributeOptions(attr),
		}
		if attr.Info.HasDefault() {
			ai.Default = fmt.Sprint(attr.Info.Default())
		}
		m.Attributes = append(m.Attributes, ai)
	}
	return m
}

func attributeOptions(attr *schema.Attribute) []string {
	info := attr.Info
	opts := []string{}
	if info.PrimaryKey() {
		opts = append(opts, "primary_key")
	}
	if info.Keyword() {
		opts = append(opts, "keyword")
	}
	if fields := info.Fields(); len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		opts = append(opts, "fields="+strings.Join(names, "|"))
	}
	if info.Suggest() {
		opts = append(opts, "suggest")
	}
	if nullable, set := info.Nullable(); set {
		opts = append(opts, fmt.Sprintf("nullable=%t", nullable))
	}
	if alias := info.Alias(); alias != "" {
		opts = append(opts, "alias="+alias)
	}
	return opts
}

func (m *modelsInspection) PrettyPrint() string {
	var b strings.Builder
	for i, model := range m.Models {
		if i > 0 {
			b.WriteString("\n")
		}
		header := fmt.Sprintf("%s (%s)", model.Name, model.Kind)
		if len(model.Bases) > 0 {
			header += " bases: " + strings.Join(model.Bases, ", ")
		}
		b.WriteString(header + "\n")

		data := pterm.TableData{{"ATTRIBUTE", "TYPE", "SEARCH TYPE", "REQUIRED", "DEFAULT", "OPTIONS"}}
		for _, attr := range model.Attributes {
			data = append(data, []string{
				attr.Name,
				attr.Type,
				attr.SearchType,
				fmt.Sprint(attr.Required),
				attr.Default,
				strings.Join(attr.Options, ", "),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err.Error()
		}
		b.WriteString(table)
	}
	return b.String()
}
