package commands

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "List, re-extract and delete stored documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()
		statusFlag, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		format, _ := cmd.Flags().GetString("format")

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		docs, err := a.Documents.List(ctx, repository.ListOptions{
			Status: constants.DocumentStatus(strings.ToUpper(statusFlag)),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		return writeDocuments(cmd.OutOrStdout(), format, docs)
	},
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>...",
	Short: "Delete documents with their pages and results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		for _, id := range ids {
			if err := a.Documents.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		}
		return nil
	},
}

var documentsReextractCmd = &cobra.Command{
	Use:   "reextract <document-id>",
	Short: "Apply a rule set again to a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		ruleSetID, err := resolveRuleSet(cmd, a)
		if err != nil {
			return err
		}
		doc, err := a.Documents.Get(ctx, ids[0])
		if err != nil {
			return err
		}
		results, err := a.Processor.Reextract(ctx, doc.ID, ruleSetID)
		if err != nil {
			return err
		}
		return writeResults(cmd.OutOrStdout(), format, storedFromResults(doc.Filename, results), false)
	},
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.AddCommand(documentsListCmd, documentsDeleteCmd, documentsReextractCmd)

	lf := documentsListCmd.Flags()
	lf.String("status", "", "only documents in this status (pending, text_extracted, completed, failed)")
	lf.Int("limit", 50, "maximum number of documents")
	lf.Int("offset", 0, "skip this many documents")
	lf.StringP("format", "f", formatTable, "output format: table or json")

	rf := documentsReextractCmd.Flags()
	rf.StringP("rules", "r", "", "import this rules file and use it")
	rf.String("rule-set", "", "id of a stored rule set")
	rf.StringP("format", "f", formatTable, "output format: table or json")
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, a := range args {
		id, err := uuid.Parse(strings.TrimSpace(a))
		if err != nil {
			return nil, fmt.Errorf("%q is not a document id: %w", a, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
