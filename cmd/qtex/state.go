package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the resolved configuration and component state as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		rt, cfg, err := newRuntime(context.Background(), true)
		if err != nil {
			fatal("Error initializing", err)
		}
		defer rt.Close()

		if cfg.Store.DSN != "" {
			cfg.Store.DSN = "***"
		}
		out := map[string]any{
			"config":  cfg,
			"service": rt.Service.State(),
			"grading": rt.Grader().Name(),
		}
		if store := rt.Store(); store != nil {
			out[store.ComponentType()] = store.State()
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
