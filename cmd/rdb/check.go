package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run store integrity checks",
}

var checkSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Verify schema version, table set, and foreign keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := st.CheckSchema(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			if err := printJSON(report); err != nil {
				return err
			}
		} else if report.OK {
			fmt.Printf("%s schema v%d, all tables present, no FK violations\n",
				ui.RenderPass("✓"), report.SchemaVersion)
		} else {
			fmt.Printf("%s schema check failed\n", ui.RenderFail("✗"))
			for _, p := range report.Problems {
				fmt.Printf("  %s\n", p)
			}
			for _, t := range report.MissingTables {
				fmt.Printf("  missing table %s\n", t)
			}
		}
		if !report.OK {
			return fmt.Errorf("schema check failed")
		}
		return nil
	},
}

var checkVariantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "Report untranslated rows per language variant",
	Long: `List every invariant row that lacks a translation for some variant.

Gaps are informational, not failures: a freshly imported variant legitimately
has none of the other variants' translations yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := st.CheckVariants(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(report)
		}

		fmt.Printf("%s, %s\n", plural(report.Sets, "resume set"), plural(report.Versions, "variant"))
		if len(report.Gaps) == 0 {
			fmt.Printf("%s every variant fully translated\n", ui.RenderPass("✓"))
			return nil
		}
		for _, g := range report.Gaps {
			fmt.Printf("  %s (%s, %s) %s row %d untranslated\n",
				ui.RenderWarn("gap"), g.ResumeKey, g.Language, g.Table, g.RowID)
		}
		return nil
	},
}

func init() {
	checkCmd.AddCommand(checkSchemaCmd)
	checkCmd.AddCommand(checkVariantsCmd)
	rootCmd.AddCommand(checkCmd)
}
