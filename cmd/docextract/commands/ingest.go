package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-extractor/internal/app"
	"github.com/joseph-ayodele/doc-extractor/internal/ingest"
	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-directory>",
	Short: "Store documents and extract their fields",
	Long: `Ingest a file or every supported file under a directory.

Text is extracted and stored, then the rule set is applied. By default the
newest stored rule set is used; --rules imports a rules file first and uses
it, --rule-set picks a stored set by id.

Examples:
  docextract ingest invoice.pdf
  docextract ingest ./inbox --parallel 4 --rules rules.xlsx
  docextract ingest ./inbox --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	f := ingestCmd.Flags()
	f.StringP("rules", "r", "", "import this rules file and use it")
	f.String("rule-set", "", "id of a stored rule set")
	f.IntP("parallel", "p", 1, "files processed at once")
	f.StringSlice("ext", nil, "only these extensions (e.g. pdf,docx)")
	f.Bool("include-hidden", false, "descend into hidden files and directories")
	f.Bool("watch", false, "keep watching the directory for new files")
	f.Duration("debounce", 0, "coalesce bursts of file events when watching")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ruleSetID, err := resolveRuleSet(cmd, a)
	if err != nil {
		return err
	}

	root := args[0]
	st, err := os.Stat(root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !st.IsDir() {
		res, err := a.Ingestor.IngestPath(ctx, root, ruleSetID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  document=%s  results=%d  deduplicated=%t\n", res.Path, res.DocumentID, res.Results, res.Deduplicated)
		return nil
	}

	includeHidden, _ := cmd.Flags().GetBool("include-hidden")
	exts, _ := cmd.Flags().GetStringSlice("ext")
	parallel, _ := cmd.Flags().GetInt("parallel")
	results, stats, err := a.Ingestor.IngestDirectory(ctx, root, ingest.DirOptions{
		RuleSetID:   ruleSetID,
		IncludeExts: exts,
		SkipHidden:  !includeHidden,
		Parallelism: parallel,
	})
	for _, r := range results {
		if r.Err != "" {
			fmt.Fprintf(out, "FAILED  %s: %s\n", r.Path, r.Err)
		}
	}
	fmt.Fprintf(out, "scanned=%d matched=%d succeeded=%d deduplicated=%d failed=%d\n",
		stats.Scanned, stats.Matched, stats.Succeeded, stats.Deduplicated, stats.Failed)
	if err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		debounce, _ := cmd.Flags().GetDuration("debounce")
		err := a.Ingestor.Watch(ctx, ingest.WatchConfig{Roots: []string{root}, Debounce: debounce}, ruleSetID)
		if errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	}
	return nil
}

// resolveRuleSet returns the rule set selected by --rules or --rule-set, or
// uuid.Nil for the newest stored set.
func resolveRuleSet(cmd *cobra.Command, a *app.App) (uuid.UUID, error) {
	rulesPath, _ := cmd.Flags().GetString("rules")
	setID, _ := cmd.Flags().GetString("rule-set")
	if rulesPath != "" && setID != "" {
		return uuid.Nil, errors.New("use either --rules or --rule-set")
	}
	if setID = strings.TrimSpace(setID); setID != "" {
		id, err := uuid.Parse(setID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("--rule-set must be a UUID: %w", err)
		}
		if _, err := a.RuleSets.GetSet(cmd.Context(), id); err != nil {
			return uuid.Nil, err
		}
		return id, nil
	}
	if rulesPath == "" {
		return uuid.Nil, nil
	}
	rs, err := rules.LoadFile(rulesPath)
	if err != nil {
		return uuid.Nil, err
	}
	set, err := a.RuleSets.SaveSet(cmd.Context(), rulesPath, rulesPath, rs)
	if err != nil {
		return uuid.Nil, err
	}
	return set.ID, nil
}
