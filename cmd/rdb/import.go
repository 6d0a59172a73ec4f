package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/importer"
	"github.com/resumedb/resumedb/internal/ui"
)

var importCmd = &cobra.Command{
	Use:   "import <file-or-dir>",
	Short: "Import documents into the store",
	Long: `Import one document or every *.json document in a directory.

Each document is one transaction; in a directory batch one document's
failure never stops or rolls back the others. Importing the same document
twice is a no-op for row counts. Identity comes from the document's config
block when present, otherwise from a name[-_]<lang>.json filename pattern.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		im := importer.New(st, importer.Options{
			DefaultLanguage: cfg.DefaultLanguage,
			Logger:          opLogger,
		})

		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", args[0], err)
		}

		if info.IsDir() {
			batch, err := im.ImportDir(cmd.Context(), args[0], dryRun)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(batch)
			}
			for _, res := range batch.Files {
				renderImportResult(res)
			}
			fmt.Printf("\n%s imported, %s failed\n",
				plural(batch.Imported, "document"), plural(batch.Failed, "document"))
			if batch.Failed > 0 {
				return fmt.Errorf("%d of %d documents failed", batch.Failed, len(batch.Files))
			}
			return nil
		}

		res, err := im.ImportFile(cmd.Context(), args[0], dryRun)
		if flagJSON {
			if res != nil {
				printJSON(res)
			}
			return err
		}
		if res != nil {
			renderImportResult(res)
		}
		return err
	},
}

func renderImportResult(res *importer.ImportResult) {
	if !res.Success {
		fmt.Printf("%s %s: %s\n", ui.RenderFail("✗"), res.Source, res.Error)
		return
	}

	marker := ui.RenderPass("✓")
	note := ""
	if res.DryRun {
		note = ui.RenderMuted(" (dry run, rolled back)")
	}
	fmt.Printf("%s %s → (%s, %s)%s\n", marker, res.Source,
		ui.RenderAccent(res.ResumeKey), ui.RenderAccent(res.Language), note)

	var sections []string
	for name := range res.SectionCounts {
		sections = append(sections, name)
	}
	sort.Strings(sections)
	for _, name := range sections {
		fmt.Printf("  %s %s\n", ui.RenderMuted(name), ui.RenderMuted(fmt.Sprint(res.SectionCounts[name])))
	}
	for _, w := range res.Warnings {
		fmt.Printf("  %s %s\n", ui.RenderWarn("warning:"), w)
	}
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "execute every write, then roll back")
	rootCmd.AddCommand(importCmd)
}
