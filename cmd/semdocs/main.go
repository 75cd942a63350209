package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/semdocs/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

// globalFlags are shared by the client-side commands.
type globalFlags struct {
	server  string
	token   string
	noColor bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "semdocs",
		Short:         "Semantic document ingestion and search service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			noColor = flags.noColor || os.Getenv("NO_COLOR") != ""
		},
	}

	root.PersistentFlags().StringVar(&flags.server, "server", envOr("SEMDOCS_URL", "http://localhost:8080"),
		"semdocs server base URL")
	root.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("SEMDOCS_TOKEN"),
		"bearer token (see `semdocs token`)")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newServeCmd(),
		newTokenCmd(),
		newIngestCmd(flags),
		newSearchCmd(flags),
		newVersionCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadConfig(env string) (config.Config, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
