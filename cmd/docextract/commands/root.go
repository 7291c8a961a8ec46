// Package commands implements the docextract command line tool.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/doc-extractor/internal/app"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

var rootCmd = &cobra.Command{
	Use:   "docextract",
	Short: "Extract fields from PDF, DOCX, image and text documents",
	Long: `docextract pulls named fields out of documents using rules.

Rules come from an XLSX, YAML or JSON file. Each rule has a field name and
one of four extraction types: exact, regex, after_pattern or nlp.

Examples:
  # Write a starter rules workbook
  docextract rules template rules.xlsx

  # Apply rules to one file without a database
  docextract extract invoice.pdf -r rules.xlsx

  # Store rules, then ingest a folder and export everything
  docextract rules import rules.xlsx
  docextract ingest ./inbox --parallel 4
  docextract export -o results.xlsx`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default ./docextract.yaml)")
	pf.String("db-driver", "", "database driver: sqlite or postgres")
	pf.String("db", "", "database DSN")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")

	_ = viper.BindPFlag("config", pf.Lookup("config"))
	_ = viper.BindPFlag("database.driver", pf.Lookup("db-driver"))
	_ = viper.BindPFlag("database.dsn", pf.Lookup("db"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

func initConfig() {
	v := viper.GetViper()
	common.SetDefaults(v)
	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("docextract")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logError("read config: %v", err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig merges defaults, config file, environment and flags, and
// installs the configured logger as the default.
func loadConfig() (*common.Config, *slog.Logger) {
	cfg := common.ConfigFromViper(viper.GetViper())
	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, logger := loadConfig()
	return app.Open(ctx, cfg, logger)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
