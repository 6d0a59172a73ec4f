package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/config"
	"github.com/resumedb/resumedb/internal/store"
)

var (
	cfg      config.Config
	opLogger *log.Logger

	flagConfig string
	flagStore  string
	flagLang   string
	flagJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "rdb",
	Short: "Multi-language resume store",
	Long: `rdb keeps portable resume JSON documents in a normalized SQLite store.

Documents round-trip losslessly: what comes out of export is what went into
import, key order included, verified by the built-in differ. One resume key
holds any number of language variants sharing structure and tags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagStore != "" {
			cfg.StorePath = flagStore
		}
		if flagLang != "" {
			cfg.DefaultLanguage = flagLang
		}
		opLogger = config.NewLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default .resumedb/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "store file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "default language (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "machine-readable output")
}

// openStore opens the configured store, which must already exist and be
// initialized. Commands that create the store use store.Open directly.
func openStore() (*store.Store, error) {
	return store.OpenExisting(cfg.StorePath)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
