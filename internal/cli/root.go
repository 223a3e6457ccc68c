package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"labmate-cli/internal/api"
	"labmate-cli/internal/config"
	"labmate-cli/internal/creds"
	"labmate-cli/internal/tui"
)

type App struct {
	API        string
	ConfigDir  string
	TimeoutSec int
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "labmate",
		Short:        "LabMate research-network dashboard (terminal client)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the dashboard
  labmate

  # Point a one-off run at a staging deployment
  labmate --api https://labmate-staging.example.org`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.API, "api", "", "Service base URL (overrides config and LABMATE_API)")
	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("LABMATE_CONFIG_DIR", ""), "Config/state directory (default ~/.labmate)")
	cmd.PersistentFlags().IntVar(&app.TimeoutSec, "timeout", 0, "Per-request timeout in seconds (overrides config)")

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	if strings.TrimSpace(app.ConfigDir) != "" {
		// config.Dir resolves through the env; the flag is an alias.
		os.Setenv("LABMATE_CONFIG_DIR", app.ConfigDir)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if strings.TrimSpace(app.API) != "" {
		cfg.APIBase = strings.TrimRight(strings.TrimSpace(app.API), "/")
	}
	if app.TimeoutSec > 0 {
		cfg.TimeoutSeconds = app.TimeoutSec
	}

	path, err := config.CredentialsPath()
	if err != nil {
		return err
	}
	store, err := creds.Open(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer store.Close()

	client := api.New(cfg.APIBase, cfg.Timeout(), store)
	return tui.Run(cfg, client, store)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
