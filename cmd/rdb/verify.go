package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/document"
	"github.com/resumedb/resumedb/internal/exporter"
	"github.com/resumedb/resumedb/internal/store"
	"github.com/resumedb/resumedb/internal/ui"
	"github.com/resumedb/resumedb/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file.json>",
	Short: "Verify a document round-trips through the store",
	Long: `Compare a source document against its reconstruction from the store.

The comparison is semantic: key order, whitespace runs, 8-vs-8.0, and the
element order of tag arrays are tolerated; everything else must match. A
clean result is the round-trip guarantee; any diff is listed with its path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read document %s: %w", args[0], err)
		}

		doc, err := document.Decode(source)
		if err != nil {
			return err
		}
		id, err := document.ResolveIdentity(doc, args[0], cfg.DefaultLanguage, store.IsSupportedLanguage)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		exported, err := exporter.New(st).ExportDocument(cmd.Context(), id.ResumeKey, id.Language)
		if err != nil {
			return err
		}

		result, err := verify.Documents(source, exported, verify.DefaultOptions())
		if err != nil {
			return err
		}
		opLogger.Printf("verified %s against (%s, %s): matches=%v",
			args[0], id.ResumeKey, id.Language, result.Matches)

		if flagJSON {
			if err := printJSON(result); err != nil {
				return err
			}
		} else {
			renderVerifyResult(args[0], id, result)
		}
		if !result.Matches {
			return fmt.Errorf("round-trip verification failed for (%s, %s)", id.ResumeKey, id.Language)
		}
		return nil
	},
}

func renderVerifyResult(path string, id document.Identity, result *verify.Result) {
	if result.Matches {
		fmt.Printf("%s %s matches (%s, %s)\n", ui.RenderPass("✓"), path,
			ui.RenderAccent(id.ResumeKey), ui.RenderAccent(id.Language))
		return
	}

	fmt.Printf("%s %s diverges from (%s, %s)\n", ui.RenderFail("✗"), path,
		ui.RenderAccent(id.ResumeKey), ui.RenderAccent(id.Language))
	for _, k := range result.MissingKeys {
		fmt.Printf("  missing  %s\n", k)
	}
	for _, k := range result.ExtraKeys {
		fmt.Printf("  extra    %s\n", k)
	}
	for _, d := range result.ValueDiffs {
		fmt.Printf("  value    %s: %s != %s\n", d.Path, d.Want, d.Got)
	}
	for _, d := range result.TypeDiffs {
		fmt.Printf("  type     %s: %s != %s\n", d.Path, d.Want, d.Got)
	}
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
