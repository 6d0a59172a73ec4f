package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/migrate"
	"github.com/resumedb/resumedb/internal/ui"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a legacy store to the normalized schema",
	Long: `Transform a legacy single-language store in place.

A file-level backup is taken first (unless --no-backup); the migration
itself is one transaction, so a failure anywhere leaves the store exactly
as it was. Person slugs are re-keyed through the same language-suffix rule
the importer applies to filenames.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noBackup, _ := cmd.Flags().GetBool("no-backup")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		result, err := migrate.Run(cmd.Context(), st, migrate.Options{
			DefaultLanguage: cfg.DefaultLanguage,
			DisableBackup:   noBackup,
			BackupDir:       cfg.BackupDir,
		})
		if result != nil && result.BackupPath != "" {
			opLogger.Printf("migration backup at %s", result.BackupPath)
		}
		if flagJSON && result != nil {
			printJSON(result)
		}
		if err != nil {
			if result != nil && result.BackupPath != "" && !flagJSON {
				fmt.Printf("%s backup kept at %s\n", ui.RenderWarn("!"), ui.RenderAccent(result.BackupPath))
			}
			return err
		}
		opLogger.Printf("migrated %d persons into %d resume sets", result.Persons, result.ResumeSets)

		if !flagJSON {
			fmt.Printf("%s migrated %s into %s\n", ui.RenderPass("✓"),
				plural(result.Persons, "person"), plural(result.ResumeSets, "resume set"))
			var sections []string
			for name := range result.SectionCounts {
				sections = append(sections, name)
			}
			sort.Strings(sections)
			for _, name := range sections {
				fmt.Printf("  %s %d\n", ui.RenderMuted(name), result.SectionCounts[name])
			}
			if result.Skipped > 0 {
				fmt.Printf("  %s %d empty markers\n", ui.RenderMuted("skipped"), result.Skipped)
			}
			for _, w := range result.Warnings {
				fmt.Printf("  %s %s\n", ui.RenderWarn("warning:"), w)
			}
			if result.BackupPath != "" {
				fmt.Printf("  backup %s\n", ui.RenderAccent(result.BackupPath))
			}
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("no-backup", false, "skip the file-level backup")
	rootCmd.AddCommand(migrateCmd)
}
