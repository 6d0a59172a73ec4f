// Command rdb maintains a normalized multi-language resume store: it
// imports portable JSON documents, exports them back byte-for-byte in
// canonical order, verifies round trips, and migrates legacy stores.
package main

import (
	"fmt"
	"os"

	"github.com/resumedb/resumedb/internal/ui"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("error:"), err)
		os.Exit(1)
	}
}
