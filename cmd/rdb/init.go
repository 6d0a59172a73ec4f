package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/config"
	"github.com/resumedb/resumedb/internal/store"
	"github.com/resumedb/resumedb/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the store and a starter config",
	Long: `Create the store file, its full schema, and the language seed.

Safe to run on an existing store: tables are only created, never dropped.
A starter config is written to .resumedb/config.yaml unless one exists or
--no-config is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		noConfig, _ := cmd.Flags().GetBool("no-config")

		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Initialize(cmd.Context(), force); err != nil {
			return err
		}
		opLogger.Printf("initialized store %s", cfg.StorePath)

		if !noConfig && flagConfig == "" {
			path := filepath.Join(".resumedb", "config.yaml")
			if err := config.WriteStarter(path, cfg); err == nil {
				fmt.Printf("%s wrote %s\n", ui.RenderPass("✓"), ui.RenderAccent(path))
			}
		}

		if flagJSON {
			return printJSON(map[string]any{
				"store":          cfg.StorePath,
				"schema_version": store.SchemaVersion,
				"languages":      len(store.SupportedLanguages),
			})
		}
		fmt.Printf("%s store %s ready (schema v%d, %s seeded)\n",
			ui.RenderPass("✓"), ui.RenderAccent(cfg.StorePath),
			store.SchemaVersion, plural(len(store.SupportedLanguages), "language"))
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "re-stamp a store with a mismatched schema version")
	initCmd.Flags().Bool("no-config", false, "skip writing the starter config")
	rootCmd.AddCommand(initCmd)
}
