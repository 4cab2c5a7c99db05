package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livepaste/livepaste/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the LivePaste configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  livepasted config validate

  # Validate specific config file
  livepasted config validate --config /etc/livepaste/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string

	if cfg.Auth.Secret == "" {
		warnings = append(warnings, "Token secret not configured - room tokens expire on restart")
	}
	if cfg.Logging.Output == "stdout" || cfg.Logging.Output == "stderr" {
		warnings = append(warnings, "Logging to "+cfg.Logging.Output+" - 'livepasted logs' requires a file path")
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Database type:   %s\n", cfg.Store.Type)
	fmt.Printf("  HTTP port:       %d\n", cfg.Server.Port)
	fmt.Printf("  Retention hours: %d\n", cfg.Retention.Hours)
	fmt.Printf("  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
