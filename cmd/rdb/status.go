package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the store's contents at a glance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		version, _, err := st.GetSchemaVersion(ctx)
		if err != nil {
			return err
		}
		keys, err := st.ListResumeKeys(ctx)
		if err != nil {
			return err
		}

		type setInfo struct {
			ResumeKey string   `json:"resume_key"`
			Languages []string `json:"languages"`
		}
		var sets []setInfo
		for _, key := range keys {
			versions, err := st.ListVersions(ctx, key)
			if err != nil {
				return err
			}
			var langs []string
			for _, v := range versions {
				langs = append(langs, v.Language)
			}
			sets = append(sets, setInfo{ResumeKey: key, Languages: langs})
		}

		counts, err := st.TableCounts(ctx)
		if err != nil {
			return err
		}
		var fileSize int64
		if info, err := os.Stat(st.Path()); err == nil {
			fileSize = info.Size()
		}

		if flagJSON {
			return printJSON(map[string]any{
				"store":          st.Path(),
				"schema_version": version,
				"file_size":      fileSize,
				"sets":           sets,
				"table_counts":   counts,
			})
		}

		fmt.Printf("store %s (schema v%d, %d bytes)\n", ui.RenderAccent(st.Path()), version, fileSize)
		if len(sets) == 0 {
			fmt.Println(ui.RenderMuted("no resumes imported yet"))
			return nil
		}
		for _, s := range sets {
			fmt.Printf("  %s  [%s]\n", ui.RenderAccent(s.ResumeKey), strings.Join(s.Languages, ", "))
		}

		var nonEmpty []string
		for table, n := range counts {
			if n > 0 {
				nonEmpty = append(nonEmpty, fmt.Sprintf("%s=%d", table, n))
			}
		}
		sort.Strings(nonEmpty)
		fmt.Printf("%s %s\n", ui.RenderMuted("rows:"), ui.RenderMuted(strings.Join(nonEmpty, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
