package main

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtex/internal/platform"
	"github.com/aretw0/qtex/pkg/adapters/archive"
	"github.com/aretw0/qtex/pkg/adapters/fs"
	qlifecycle "github.com/aretw0/qtex/pkg/adapters/lifecycle"
	"github.com/aretw0/qtex/pkg/core"
)

var (
	watchPattern string
	watchOut     string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-convert QuestionTeX documents to Moodle XML when they change",
	Long: `Watch a directory tree and write <name>.xml next to every QuestionTeX
document (or into --out) each time the document is created or saved.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		dir, err := filepath.Abs(dir)
		if err != nil {
			fatal("Error resolving directory", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, _, err := newRuntime(ctx, false)
		if err != nil {
			fatal("Error initializing", err)
		}
		defer rt.Close()

		watcher := fs.NewWatcher(dir,
			fs.WithPattern(watchPattern),
			fs.WithWatchLogger(slog.Default()),
		)
		events, err := watcher.Watch(ctx)
		if err != nil {
			fatal("Error starting watcher", err)
		}

		src := qlifecycle.NewSource(events, qlifecycle.Only(core.EventCreate, core.EventModify))
		if err := src.Start(ctx); err != nil {
			fatal("Error starting event source", err)
		}

		slog.Info("watching", "dir", dir, "pattern", watchPattern)
		for e := range src.Events() {
			event, ok := e.(core.Event)
			if !ok {
				continue
			}
			if err := convertFile(rt, dir, event.Path); err != nil {
				slog.Error("conversion failed", "path", event.Path, "error", err)
			}
		}
		slog.Info("watch stopped", "state", watcher.State())
	},
}

// convertFile converts dir/rel and writes the XML beside it or under --out.
func convertFile(rt *platform.Runtime, dir, rel string) error {
	src := filepath.Join(dir, filepath.FromSlash(rel))
	bundle, err := fs.Load(src, archive.WithSettings(rt.Settings()), archive.WithLogger(rt.Logger))
	if err != nil {
		return err
	}
	qs, warnings, err := rt.ImportBundle(bundle)
	if err != nil {
		return err
	}
	codec, err := rt.XMLFor(bundle)
	if err != nil {
		return err
	}
	doc, _, err := rt.Service.Export(codec, qs)
	if err != nil {
		return err
	}

	target := strings.TrimSuffix(src, filepath.Ext(src)) + ".xml"
	if watchOut != "" {
		target = filepath.Join(watchOut, strings.TrimSuffix(filepath.FromSlash(rel), filepath.Ext(rel))+".xml")
	}
	if err := fs.WriteFile(target, []byte(doc)); err != nil {
		return err
	}
	slog.Info("converted", "path", rel, "questions", len(qs), "warnings", len(warnings), "output", target)
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", fs.DefaultPattern, "Glob of documents to convert")
	watchCmd.Flags().StringVar(&watchOut, "out", "", "Output directory (default: beside each document)")
}
