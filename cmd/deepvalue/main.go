package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/newthinker/deepvalue/internal/app"
	"github.com/newthinker/deepvalue/internal/config"
	"github.com/newthinker/deepvalue/internal/core"
	"github.com/newthinker/deepvalue/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile     string
	envFile     string
	metricsFile string
	archive     bool
	jsonOutput  bool
	debug       bool
)

var rootCmd = &cobra.Command{
	Use:   "deepvalue <ticker>",
	Short: "deepvalue - Graham and Schloss deep value report",
	Long: `deepvalue fetches fundamentals for one ticker from Financial Modeling Prep
and Alpha Vantage and prints the classic deep value checklist: net-net working
capital, financial condition, earnings stability, dividend record, EPS growth
and the P/E, P/B and debt ratios.

API keys are read from API_KEY_FMP and API_KEY_ALPHA, or from a .env file.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReport,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with API keys")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this path")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	rootCmd.Flags().BoolVar(&archive, "archive", false, "archive the snapshot and report of this run")
}

func runReport(cmd *cobra.Command, args []string) error {
	symbol := args[0]
	if strings.TrimSpace(symbol) == "" {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("ticker must not be empty"))
	}

	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if metricsFile != "" {
		cfg.Metrics.Textfile = metricsFile
	}
	if archive {
		cfg.Archive.Enabled = true
	}
	if jsonOutput {
		cfg.Report.Format = "json"
	}

	log := logger.Must(debug)
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Debug("running report", zap.String("symbol", symbol))
	return a.Run(ctx, symbol, cmd.OutOrStdout())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(core.ExitCode(err))
	}
}
