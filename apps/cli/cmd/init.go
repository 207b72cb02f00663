package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/movement"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a stripcheck configuration",
	Long: `Initialize stripcheck in the current directory.

This creates:
  - stripcheck.yaml          - Configuration with the default selectors and storage keys
  - fixtures/connect.json    - The seeded 3-element formation, for stripcheck validate

Examples:
  stripcheck init
  stripcheck init --force`,
	Args: usageArgs(cobra.NoArgs),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "stripcheck.yaml")
	fixtureFile := filepath.Join(cwd, "fixtures", "connect.json")

	if !forceInit {
		for _, f := range []string{configFile, fixtureFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.HistoryDB = config.StringPtr(filepath.Join(cfg.ArtifactsDir, config.DefaultHistoryFile))
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	now := time.Now()
	fixture, err := movement.NewEnvelope(now, movement.Connect(3, now)).Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode fixture: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(fixtureFile), 0755); err != nil {
		return fmt.Errorf("failed to create fixtures directory: %w", err)
	}
	if err := os.WriteFile(fixtureFile, []byte(fixture+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to create fixture file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", fixtureFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nstripcheck initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Start the strip board at %s and run 'stripcheck run'.\n", cfg.BaseURL)

	return nil
}
