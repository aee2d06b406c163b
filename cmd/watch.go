package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalepail/smol-sc/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the marketplace database for changes",
	Long:  `Watches the marketplace database file and prints a line whenever another process commits a change. Stops on Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		if _, err := os.Stat(cfg.DBPath); err != nil {
			return fmt.Errorf("database not found at %s", cfg.DBPath)
		}

		w, err := watcher.New(watcher.Config{DBPath: cfg.DBPath, DebounceDur: debounce})
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()

		onChange, err := w.Start()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", cfg.DBPath)
		for {
			select {
			case <-onChange:
				fmt.Fprintf(cmd.OutOrStdout(), "%s database changed\n", time.Now().Format(time.RFC3339))
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", time.Second, "Quiet period before reporting a burst of writes")
	rootCmd.AddCommand(watchCmd)
}
