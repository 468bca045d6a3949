package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/duskroseSouthAfrica/sheetdash/internal/config"
	"github.com/duskroseSouthAfrica/sheetdash/internal/web"
)

// Flag values. The engine flags are shared by serve and analyze.
var (
	serveAddr         string
	flagRules         string
	flagStrictPeriods bool
	flagSkipColumns   int
)

// serveCmd runs the web dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Long: `Run the upload-and-chart dashboard. Settings come from SHEETDASH_*
environment variables (a .env file in the working directory is read first);
flags given on the command line take precedence.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default :8080)")
	addEngineFlags(serveCmd)
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagRules, "rules", "", "YAML file with column role rules")
	cmd.Flags().BoolVar(&flagStrictPeriods, "strict-periods", false, "reject files whose date columns mix dates and other values")
	cmd.Flags().IntVar(&flagSkipColumns, "skip-columns", 1, "columns skipped between the row label and the data in row selections")
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	_ = godotenv.Load()
	cfg := config.Load()

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = serveAddr
	}
	if flags.Changed("rules") {
		cfg.RulesFile = flagRules
	}
	if flags.Changed("strict-periods") {
		cfg.StrictPeriods = flagStrictPeriods
	}
	if flags.Changed("skip-columns") {
		cfg.SkipColumns = flagSkipColumns
	}

	if err := cfg.Validate(); err != nil {
		return nil, exitError(ExitInvalidArgs, "sheetdash: %v", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return exitError(ExitInvalidArgs, "sheetdash: %v", err)
	}

	web.Version = Version
	srv, err := web.New(cfg, rules)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting sheetdash",
		"version", Version,
		"addr", cfg.Addr,
		"max_file_size", cfg.MaxFileSize,
		"session_ttl", cfg.SessionTTL,
		"rules_file", cfg.RulesFile,
	)
	return srv.Run(ctx)
}
