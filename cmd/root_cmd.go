// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xataio/esodm/cmd/config"
)

// Version is the esodm version
var (
	Version = "development"
	Env     string
)

func Prepare() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "esodm",
		Short:        "Derives search index mappings from model declarations and validates documents against them",
		SilenceUsage: true,
		Version:      version(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			return nil
		},
	}

	viper.SetEnvPrefix("ESODM")
	viper.AutomaticEnv()

	// Flag definition

	// root cmd
	rootCmd.PersistentFlags().StringP("config", "c", "", ".env or .yaml config file to use with esodm if any")
	rootCmd.PersistentFlags().String("log-level", "info", "log level for the application. One of trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().StringP("models-file", "f", "", "YAML file with the model declarations")

	// mapping cmd
	mappingCmd.Flags().String("model", "", "Model to render the mapping of. All documents if not specified")
	mappingCmd.Flags().String("target", "", "Target search store. One of elasticsearch, opensearch")
	mappingCmd.Flags().String("format", "", "Output format. One of json, yaml")
	mappingCmd.Flags().String("path", "", "gjson path selecting the part of the rendered mapping to output")
	mappingCmd.Flags().StringSlice("set", nil, "Overrides applied to the rendered mapping, in the format <sjson path>=<value>. JSON values are set as is, anything else as a string")
	mappingCmd.Flags().Bool("request", false, "Render the create index request, default index settings included")

	// validate cmd
	// validate document cmd
	validateDocumentCmd.Flags().String("model", "", "Model to validate the document against")
	validateDocumentCmd.Flags().String("doc", "-", "JSON document to validate, - reads it from stdin")
	validateDocumentCmd.Flags().Bool("json", false, "Output the validation result in JSON format")
	validateCmd.AddCommand(validateDocumentCmd)

	// validate models cmd
	validateModelsCmd.Flags().Bool("json", false, "Output the models status in JSON format")
	validateCmd.AddCommand(validateModelsCmd)

	// inspect cmd
	inspectCmd.Flags().String("model", "", "Model to inspect. All models if not specified")
	inspectCmd.Flags().String("target", "", "Target search store. One of elasticsearch, opensearch")
	inspectCmd.Flags().Bool("json", false, "Output the model description in JSON format")

	// Flag binding for root cmd
	rootFlagBinding(rootCmd)

	// register subcommands
	rootCmd.AddCommand(mappingCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	cmd := Prepare()
	return cmd.Execute()
}

func rootFlagBinding(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	bindFlag(flags.Lookup("config"), "config")
	bindFlag(flags.Lookup("log-level"), "ESODM_LOG_LEVEL")

	// to be able to overwrite configuration with flags when either a yaml
	// config file, an env config file or no configuration is provided
	bindFlag(flags.Lookup("models-file"), "models.file", "ESODM_MODELS_FILE")
}

func outputFlagBinding(cmd *cobra.Command, _ []string) {
	bindFlag(cmd.Flags().Lookup("target"), "output.target", "ESODM_OUTPUT_TARGET")
	bindFlag(cmd.Flags().Lookup("format"), "output.format", "ESODM_OUTPUT_FORMAT")
}

// bindFlag binds the flag to every configuration key it overrides. Missing
// flags are ignored so commands can share bindings.
func bindFlag(flag *pflag.Flag, keys ...string) {
	if flag == nil {
		return
	}
	for _, key := range keys {
		viper.BindPFlag(key, flag)
	}
}

func version() string {
	if Env != "" {
		return Env + " (" + Version + ")"
	}
	return Version
}
