package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Create, check and store extraction rules",
}

var rulesTemplateCmd = &cobra.Command{
	Use:   "template [file.xlsx]",
	Short: "Write a rules workbook with sample rows",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := "rules.xlsx"
		if len(args) == 1 {
			out = args[0]
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := rules.WriteTemplate(f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <rules-file>...",
	Short: "Check rules files without storing them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			rs, err := rules.LoadFile(path)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "INVALID  %s\n  %v\n", path, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK       %s (%d rules)\n", path, len(rs))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d rules files are invalid", failed, len(args))
		}
		return nil
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <rules-file>",
	Short: "Store a rules file as a new rule set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		path := args[0]
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = filepath.Base(path)
		}
		rs, err := rules.LoadFile(path)
		if err != nil {
			return err
		}
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		set, err := a.RuleSets.SaveSet(ctx, name, path, rs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rule set %s (%s): %d rules\n", set.ID, set.Name, len(set.Rules))
		return nil
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rule sets, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		sets, err := a.RuleSets.ListSets(ctx)
		if err != nil {
			return err
		}
		table := newTable(cmd.OutOrStdout(), []string{"ID", "Name", "Source", "Created"})
		for _, s := range sets {
			table.Append([]string{s.ID.String(), s.Name, s.Source, s.CreatedAt.Format("2006-01-02 15:04:05")})
		}
		table.Render()
		return nil
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export <rule-set-id> <file>",
	Short: "Write a stored rule set to an XLSX or YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		ids, err := parseIDs(args[:1])
		if err != nil {
			return err
		}
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		set, err := a.RuleSets.GetSet(ctx, ids[0])
		if err != nil {
			return err
		}

		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		switch filepath.Ext(args[1]) {
		case ".yaml", ".yml":
			rs, err := rules.FromRecords(set.Name, set.Rules)
			if err != nil {
				return err
			}
			return rules.WriteYAML(f, set.Name, rs)
		case ".xlsx":
			return rules.WriteXLSX(f, set.Rules)
		}
		return fmt.Errorf("unsupported output %q (want .xlsx or .yaml)", args[1])
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesTemplateCmd, rulesValidateCmd, rulesImportCmd, rulesListCmd, rulesExportCmd)
	rulesImportCmd.Flags().String("name", "", "rule set name (default: file name)")
}
