package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"studysnatcher/pkg/config"
	"studysnatcher/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage StudySnatcher configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (STUDYSNATCHER_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as
'.studysnatcher.yaml' unless a different path is specified with the
--config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run:   runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".studysnatcher.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		os.Exit(1)
	}

	exampleConfig := `# StudySnatcher Configuration File
#
# All options can also be set via environment variables prefixed with
# STUDYSNATCHER_, for example STUDYSNATCHER_OUTPUT_DIR.

studydrive:
  # Account email; the password comes from stored credentials or the
  # STUDYSNATCHER_PASSWORD environment variable
  email: ""

rate_limit:
  # Wait applied to a 429 response without a usable retry-after header
  default_retry_after: 60s

download:
  # Streaming chunk size in bytes
  chunk_size: 8192
  # Timeout for API calls (file streaming is not bounded by this)
  api_timeout: 30s
  # Request PDF-converted files, falling back to the original format
  prefer_pdf: false

output:
  # Course folders are created below this directory
  base_directory: "."

logging:
  # debug, info, warn, error
  level: info
  # Optional log file; console output stays on
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to write configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to render configuration", err.Error())
		os.Exit(1)
	}

	fmt.Print(string(data))
}
