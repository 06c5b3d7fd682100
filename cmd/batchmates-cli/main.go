package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/batchmates/batchmates/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:8080"

var (
	apiClient   *client.Client
	flagURL     string
	flagFmt     string
	flagBreaker bool
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("batchmates version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("batchmates version %s-dev", version)
}

type configFile struct {
	URL     string `yaml:"url"`
	Breaker bool   `yaml:"breaker"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "batchmates",
		Short:   "Explore who shares which interests in your batch",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			apiClient = newAPIClient()
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	addGlobalFlags(rootCmd)
	addCommands(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "batchmates server URL (env: BATCHMATES_URL)")
	root.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")
	root.PersistentFlags().BoolVar(&flagBreaker, "breaker", false, "Stop calling the server after repeated failures")
}

func addCommands(root *cobra.Command) {
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newProfilesCmd())
	root.AddCommand(newInterestsCmd())
	root.AddCommand(newPersonCmd())
	root.AddCommand(newInterestCmd())
	root.AddCommand(newExploreCmd())
	root.AddCommand(newSessionCmd())
}

func newAPIClient() *client.Client {
	var opts []client.Option
	if flagBreaker {
		opts = append(opts, client.WithCircuitBreaker("batchmates-cli"))
	}
	return client.New(flagURL, opts...)
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".batchmates", "config.yaml"), nil
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagURL == defaultURL {
		if v := os.Getenv("BATCHMATES_URL"); v != "" {
			flagURL = v
		}
	}

	cfgPath, err := configPath()
	if err != nil {
		return
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring %s: %v\n", cfgPath, err)
		return
	}
	if flagURL == defaultURL && cfg.URL != "" {
		flagURL = cfg.URL
	}
	if !flagBreaker && cfg.Breaker {
		flagBreaker = true
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
