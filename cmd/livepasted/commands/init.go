package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/livepaste/livepaste/internal/cli/prompt"
	"github.com/livepaste/livepaste/pkg/config"
	"github.com/livepaste/livepaste/pkg/store"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample LivePaste configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/livepaste/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  livepasted init

  # Walk through the main settings interactively
  livepasted init --interactive

  # Initialize with custom path
  livepasted init --config /etc/livepaste/config.yaml

  # Force overwrite existing config
  livepasted init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the main settings instead of writing defaults")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		ok, err := prompt.ConfirmWithForce(
			fmt.Sprintf("Configuration file %s already exists. Overwrite?", configPath), false)
		if err != nil {
			if prompt.IsAborted(err) {
				return nil
			}
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	var err error
	if initInteractive {
		err = runInteractiveInit(configPath)
	} else {
		_, err = config.InitConfig(configPath, true)
	}
	if err != nil {
		if prompt.IsAborted(err) {
			return nil
		}
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: livepasted start")
	fmt.Printf("  3. Or specify custom config: livepasted start --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  Without a token secret, room tokens are signed with an ephemeral key")
	fmt.Println("  and expire on restart. For stable tokens across restarts:")
	fmt.Println("    # Generates a 64-character hex string (32 bytes of entropy)")
	fmt.Println("    export LIVEPASTE_AUTH_TOKEN_SECRET=$(openssl rand -hex 32)")

	return nil
}

// runInteractiveInit collects the main settings through prompts and
// writes the resulting configuration.
func runInteractiveInit(configPath string) error {
	cfg := config.GetDefaultConfig()

	port, err := prompt.InputPort("HTTP port", cfg.Server.Port)
	if err != nil {
		return err
	}
	cfg.Server.Port = port

	backend, err := prompt.Select("Database backend", []prompt.SelectOption{
		{Label: "SQLite", Value: "sqlite", Description: "Single-node, zero setup. Rooms live in a local file."},
		{Label: "PostgreSQL", Value: "postgres", Description: "Shared database for multi-instance deployments."},
	})
	if err != nil {
		return err
	}

	switch backend {
	case "postgres":
		cfg.Store.Type = store.DatabaseTypePostgres
		url, err := prompt.Input("PostgreSQL connection URL", "postgres://localhost:5432/livepaste")
		if err != nil {
			return err
		}
		cfg.Store.Postgres.URL = url
	default:
		cfg.Store.Type = store.DatabaseTypeSQLite
		path, err := prompt.Input("SQLite database path", cfg.Store.SQLite.Path)
		if err != nil {
			return err
		}
		cfg.Store.SQLite.Path = path
	}

	hours, err := prompt.InputInt("Room retention (hours)", cfg.Retention.Hours)
	if err != nil {
		return err
	}
	cfg.Retention.Hours = hours

	secret, err := prompt.InputOptional("Room token secret")
	if err != nil {
		return err
	}
	cfg.Auth.Secret = secret

	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	return config.SaveConfig(cfg, configPath)
}
