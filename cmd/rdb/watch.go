package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/resumedb/resumedb/internal/importer"
	"github.com/resumedb/resumedb/internal/ui"
	"github.com/resumedb/resumedb/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-import documents as they change",
	Long: `Watch a directory and import every created or modified *.json file.

Save bursts are debounced, so an editor writing a file in several chunks
triggers one import. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		im := importer.New(st, importer.Options{
			DefaultLanguage: cfg.DefaultLanguage,
			Logger:          opLogger,
		})

		w, err := watch.New(im, watch.Config{
			Dir:              args[0],
			DebounceInterval: time.Duration(cfg.WatchDebounceMS) * time.Millisecond,
			Logger:           opLogger,
			OnResult: func(res *importer.ImportResult, err error) {
				if err != nil || res == nil || !res.Success {
					detail := ""
					if res != nil {
						detail = res.Source + ": " + res.Error
					} else if err != nil {
						detail = err.Error()
					}
					fmt.Printf("%s %s\n", ui.RenderFail("✗"), detail)
					return
				}
				fmt.Printf("%s %s → (%s, %s)\n", ui.RenderPass("✓"), res.Source,
					ui.RenderAccent(res.ResumeKey), ui.RenderAccent(res.Language))
			},
		})
		if err != nil {
			return err
		}

		if err := w.Start(); err != nil {
			return err
		}
		fmt.Printf("watching %s, press Ctrl+C to stop\n", ui.RenderAccent(args[0]))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		fmt.Println("\nstopping...")
		return w.Stop()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
