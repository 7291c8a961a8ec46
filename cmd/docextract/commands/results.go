package commands

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results [document-id]",
	Short: "Show stored extraction results",
	Long: `Show the stored results of one document, or of every document when no
id is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		format, _ := cmd.Flags().GetString("format")

		var docID *uuid.UUID
		if len(args) == 1 {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			docID = &ids[0]
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if docID != nil {
			if _, err := a.Documents.Get(ctx, *docID); err != nil {
				return err
			}
		}
		rows, err := a.Results.ListAll(ctx, docID)
		if err != nil {
			return err
		}
		return writeResults(cmd.OutOrStdout(), format, rows, docID == nil)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored results to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()
		output, _ := cmd.Flags().GetString("output")
		document, _ := cmd.Flags().GetString("document")

		var docID *uuid.UUID
		if document != "" {
			ids, err := parseIDs([]string{document})
			if err != nil {
				return err
			}
			docID = &ids[0]
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		n, err := a.Exporter.ExportResults(ctx, docID, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(output)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d results to %s\n", n, output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd, exportCmd)
	resultsCmd.Flags().StringP("format", "f", formatTable, "output format: table or json")

	ef := exportCmd.Flags()
	ef.StringP("output", "o", "results.xlsx", "workbook to write")
	ef.String("document", "", "only this document id")
}
