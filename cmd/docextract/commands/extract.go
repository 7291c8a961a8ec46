package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-extractor/internal/app"
	"github.com/joseph-ayodele/doc-extractor/internal/export"
	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Apply a rules file to one document without storing anything",
	Long: `Read a document, apply the rules in --rules and print the matches.

Without --rules the extracted page text is printed instead.

Examples:
  docextract extract invoice.pdf -r rules.xlsx
  docextract extract scan.png -r rules.yaml -f json
  docextract extract contract.docx -r rules.xlsx -f xlsx -o fields.xlsx
  docextract extract letter.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	f := extractCmd.Flags()
	f.StringP("rules", "r", "", "rules file (.xlsx, .yaml, .yml or .json)")
	f.StringP("format", "f", formatTable, "output format: table, json, xlsx or text")
	f.StringP("output", "o", "", "write output to this file instead of stdout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	cfg, logger := loadConfig()

	path := args[0]
	rulesPath, _ := cmd.Flags().GetString("rules")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	if format == formatXLSX && output == "" {
		return fmt.Errorf("--format xlsx needs --output")
	}

	// Load rules before the document so configuration errors surface first.
	var rs []rules.Rule
	if rulesPath != "" {
		var err error
		if rs, err = rules.LoadFile(rulesPath); err != nil {
			return err
		}
	}

	text, err := app.NewReader(cfg.OCR, logger).Extract(ctx, path)
	if err != nil {
		return err
	}
	for _, w := range text.Warnings {
		logger.Warn(w, "path", path)
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if rulesPath == "" || format == formatText {
		for _, n := range text.Pages.Numbers() {
			fmt.Fprintf(w, "--- page %d (%s) ---\n%s\n", n, text.SourceType, text.Pages[n])
		}
		return nil
	}

	eng, err := app.NewEngine(cfg.Extraction, logger)
	if err != nil {
		return err
	}
	results, err := eng.Run(ctx, text.Pages, rs)
	if err != nil {
		return err
	}
	rows := storedFromResults(filepath.Base(path), results)
	if format == formatXLSX {
		if err := export.WriteResults(w, rows); err != nil {
			return err
		}
		logger.Info("results written", "path", output, "rows", len(rows))
		return nil
	}
	return writeResults(w, format, rows, false)
}
