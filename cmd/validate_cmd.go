// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/esodm/internal/json"
	"github.com/xataio/esodm/pkg/odm"
	"github.com/xataio/esodm/pkg/odm/validator"
)

// parent command for validation subcommands
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate documents and model declarations",
}

var (
	errNoModel         = errors.New("a model is required for document validation")
	errInvalidDocument = errors.New("document is not a JSON object")
)

var validateDocumentCmd = &cobra.Command{
	Use:   "document",
	Short: "Validates a JSON document against a declared model",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, _ := pterm.DefaultSpinner.WithText("validating document...").Start()

		err := func() error {
			model := cmd.Flags().Lookup("model").Value.String()
			if model == "" {
				return errNoModel
			}

			r, _, err := loadRegistry()
			if err != nil {
				return err
			}

			doc, err := readDocument(cmd.Flags().Lookup("doc").Value.String(), cmd.InOrStdin())
			if err != nil {
				return err
			}

			result, err := validateDocument(r, model, doc)
			if err != nil {
				return err
			}

			if result.Valid {
				sp.Success("document is valid for model ", model)
			} else {
				sp.Warning(fmt.Sprintf("document validation identified %d issue(s) for model %s", len(result.Errors), model))
			}

			if err := print(cmd, result); err != nil {
				return fmt.Errorf("failed to format validation result: %w", err)
			}
			return nil
		}()
		if err != nil {
			sp.Fail(err.Error())
		}

		return err
	},
	Example: `
	esodm validate document -f models.yaml --model UserODM --doc user.json
	cat user.json | esodm validate document -f models.yaml --model UserODM --json
	`,
}

var validateModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Validates the model declarations and the references between them",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, _ := pterm.DefaultSpinner.WithText("validating models...").Start()

		r, _, err := loadRegistry()
		if err != nil {
			sp.Fail(err.Error())
			return err
		}

		status := checkModels(r)
		if issues := status.issues(); len(issues) == 0 {
			sp.Success("model declarations are valid")
		} else {
			sp.Warning("model validation identified issues with ", strings.Join(issues, ", "))
		}

		if err := print(cmd, status); err != nil {
			sp.Fail("failed to format models status")
			return err
		}
		return nil
	},
	Example: `
	esodm validate models -f models.yaml
	esodm validate models -c esodm.yaml --json
	`,
}

func readDocument(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

type validationResult struct {
	Model    string            `json:"model"`
	Valid    bool              `json:"valid"`
	Errors   []validationIssue `json:"errors,omitempty"`
	Document map[string]any    `json:"document,omitempty"`
}

type validationIssue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
	Type     string `json:"type"`
}

func validateDocument(r *odm.Registry, model string, doc []byte) (*validationResult, error) {
	s, found := r.Schema(model)
	if !found {
		return nil, fmt.Errorf("%w: %s", errUnknownModel, model)
	}

	var data map[string]any
	if err := json.Unmarshal(doc, &data); err != nil || data == nil {
		return nil, errInvalidDocument
	}

	out, err := s.Validate(data)
	var validationErr *validator.ValidationError
	switch {
	case err == nil:
		return &validationResult{Model: model, Valid: true, Document: out}, nil
	case errors.As(err, &validationErr):
		result := &validationResult{Model: model}
		for _, fe := range validationErr.Errors {
			result.Errors = append(result.Errors, validationIssue{
				Location: fe.Location(),
				Message:  fe.Msg,
				Type:     fe.Type,
			})
		}
		return result, nil
	default:
		return nil, err
	}
}

func (v *validationResult) PrettyPrint() string {
	if v.Valid {
		doc, err := json.MarshalIndent(v.Document, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v.Document)
		}
		return string(doc)
	}

	data := pterm.TableData{{"LOCATION", "MESSAGE", "TYPE"}}
	for _, issue := range v.Errors {
		data = append(data, []string{issue.Location, issue.Message, issue.Type})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err.Error()
	}
	return table
}

type modelsStatus struct {
	Models []modelStatus `json:"models"`
}

type modelStatus struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Index      string   `json:"index,omitempty"`
	Attributes int      `json:"attributes"`
	Unresolved []string `json:"unresolved,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

func checkModels(r *odm.Registry) *modelsStatus {
	r.TryResolveReferences()
	unresolved := r.Unresolved()

	status := &modelsStatus{}
	for _, s := range r.Schemas() {
		ms := modelStatus{
			Name:       s.Name(),
			Kind:       s.Kind().String(),
			Attributes: len(s.Attributes()),
			Unresolved: unresolved[s.Name()],
		}
		if s.Kind() == odm.KindDocument {
			index, err := s.IndexName()
			if err != nil {
				ms.Errors = append(ms.Errors, err.Error())
			}
			ms.Index = index
		}
		if _, err := s.Mapping(); err != nil {
			ms.Errors = append(ms.Errors, err.Error())
		}
		status.Models = append(status.Models, ms)
	}
	return status
}

func (s *modelsStatus) issues() []string {
	issues := []string{}
	for _, m := range s.Models {
		if len(m.Unresolved) > 0 || len(m.Errors) > 0 {
			issues = append(issues, m.Name)
		}
	}
	return issues
}

func (s *modelsStatus) PrettyPrint() string {
	data := pterm.TableData{{"MODEL", "KIND", "INDEX", "ATTRIBUTES", "UNRESOLVED", "ERRORS"}}
	for _, m := range s.Models {
		data = append(data, []string{
			m.Name,
			m.Kind,
			m.Index,
			fmt.Sprint(m.Attributes),
			strings.Join(m.Unresolved, ", "),
			strings.Join(m.Errors, "; "),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err.Error()
	}
	return table
}
