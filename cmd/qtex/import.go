package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtex/pkg/adapters/archive"
	"github.com/aretw0/qtex/pkg/adapters/fs"
	"github.com/aretw0/qtex/pkg/core"
)

var (
	importOut   string
	importJSON  bool
	importStore string
)

var importCmd = &cobra.Command{
	Use:   "import [file.tex|file.zip]",
	Short: "Convert a QuestionTeX document or archive to Moodle XML",
	Long: `Parse a QuestionTeX document (or a zip holding one document, its images and
an optional JSON parameter file) and write Moodle XML. Images next to a plain
.tex file are embedded too. Use --json for the question records instead and
--store to keep them in the question bank.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		rt, _, err := newRuntime(ctx, importStore != "")
		if err != nil {
			fatal("Error initializing", err)
		}
		defer rt.Close()

		bundle, err := fs.Load(args[0], archive.WithSettings(rt.Settings()), archive.WithLogger(rt.Logger))
		if err != nil {
			fatal("Error reading input", err)
		}

		qs, warnings, err := rt.ImportBundle(bundle)
		if err != nil {
			fatal("Error parsing document", err)
		}

		var out []byte
		if importJSON {
			out, err = core.MarshalQuestions(qs)
		} else {
			codec, cerr := rt.XMLFor(bundle)
			if cerr != nil {
				fatal("Error reading parameters", cerr)
			}
			var doc string
			doc, _, err = rt.Service.Export(codec, qs)
			out = []byte(doc)
		}
		if err != nil {
			fatal("Error writing output", err)
		}

		if importStore != "" {
			if err := rt.Service.Store(ctx, importStore, qs); err != nil {
				fatal("Error storing questions", err)
			}
			slog.Info("questions stored", "bank", importStore, "count", len(qs))
		}

		if err := writeOutput(importOut, out); err != nil {
			fatal("Error writing output", err)
		}
		slog.Debug("import finished", "questions", len(qs), "warnings", len(warnings))
	},
}

// writeOutput writes to stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := fs.WriteFile(path, data); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importOut, "output", "o", "", "Output file (default: stdout)")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "Output question records as JSON")
	importCmd.Flags().StringVar(&importStore, "store", "", "Also save the questions in this bank")
}
