package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/ui"
)

var removeCmd = &cobra.Command{
	Use:   "remove <resume-key> <language>",
	Short: "Remove one language variant",
	Long: `Delete a language variant and its translations.

Invariant rows stay, they belong to the whole set. Removing the last
variant requires --force, which deletes the entire set with it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.RemoveVariant(cmd.Context(), args[0], args[1], force); err != nil {
			return err
		}
		opLogger.Printf("removed variant (%s, %s)", args[0], args[1])

		if flagJSON {
			return printJSON(map[string]any{
				"removed":    true,
				"resume_key": args[0],
				"language":   args[1],
			})
		}
		fmt.Printf("%s removed (%s, %s)\n", ui.RenderPass("✓"),
			ui.RenderAccent(args[0]), ui.RenderAccent(args[1]))
		return nil
	},
}

func init() {
	removeCmd.Flags().Bool("force", false, "allow removing the last variant (deletes the whole set)")
	rootCmd.AddCommand(removeCmd)
}
