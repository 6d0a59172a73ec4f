package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/exporter"
	"github.com/resumedb/resumedb/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export [resume-key] [language]",
	Short: "Reconstruct documents from the store",
	Long: `Export documents with canonical key order.

With a key and language, the single variant goes to stdout (or --out).
With --variants, every language of the key is written to the output
directory as <key>_<lang>.json. With --all, every variant of every key is.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		variants, _ := cmd.Flags().GetBool("variants")
		outDir, _ := cmd.Flags().GetString("out")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		ex := exporter.New(st)

		switch {
		case all:
			if len(args) != 0 {
				return fmt.Errorf("--all takes no arguments")
			}
			docs, err := ex.ExportAll(cmd.Context())
			if err != nil {
				return err
			}
			return writeDocuments(docs, outDir)

		case variants:
			if len(args) != 1 {
				return fmt.Errorf("--variants needs exactly a resume key")
			}
			byLang, err := ex.ExportVariants(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			docs := make(map[string][]byte, len(byLang))
			for lang, data := range byLang {
				docs[fmt.Sprintf("%s_%s", args[0], lang)] = data
			}
			return writeDocuments(docs, outDir)

		default:
			if len(args) != 2 {
				return fmt.Errorf("export needs <resume-key> <language> (or --variants / --all)")
			}
			data, err := ex.ExportDocument(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			opLogger.Printf("exported (%s, %s)", args[0], args[1])
			if outDir != "" {
				path := filepath.Join(outDir, fmt.Sprintf("%s_%s.json", args[0], args[1]))
				return writeDocument(path, data)
			}
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}
	},
}

func writeDocuments(docs map[string][]byte, outDir string) error {
	if outDir == "" {
		outDir = "."
	}
	var names []string
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writeDocument(filepath.Join(outDir, name+".json"), docs[name]); err != nil {
			return err
		}
	}
	if !flagJSON {
		fmt.Printf("%s exported %s to %s\n",
			ui.RenderPass("✓"), plural(len(docs), "document"), ui.RenderAccent(outDir))
	}
	return nil
}

func writeDocument(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	opLogger.Printf("wrote %s", path)
	return nil
}

func init() {
	exportCmd.Flags().Bool("all", false, "export every variant of every resume key")
	exportCmd.Flags().Bool("variants", false, "export every language variant of one key")
	exportCmd.Flags().String("out", "", "output directory (stdout for a single variant)")
	rootCmd.AddCommand(exportCmd)
}
