package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtex/pkg/adapters/fs"
	"github.com/aretw0/qtex/pkg/core"
)

var (
	exportOut  string
	exportBank string
)

var exportCmd = &cobra.Command{
	Use:   "export [file.xml]",
	Short: "Convert Moodle XML or a stored bank to QuestionTeX",
	Long: `Write QuestionTeX from a Moodle XML file or, with --bank, from the question
bank. An output ending in .zip receives the document and its images; any other
output path receives the document with the images written beside it.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if (len(args) == 0) == (exportBank == "") {
			fatal("Invalid arguments", errors.New("give either an XML file or --bank"))
		}

		rt, _, err := newRuntime(ctx, exportBank != "")
		if err != nil {
			fatal("Error initializing", err)
		}
		defer rt.Close()

		var qs []core.Question
		if exportBank != "" {
			qs, err = rt.Service.Load(ctx, exportBank)
		} else {
			var data []byte
			data, err = os.ReadFile(args[0])
			if err == nil {
				qs, _, err = rt.Service.Import(rt.XML(), string(data))
			}
		}
		if err != nil {
			fatal("Error reading questions", err)
		}

		switch {
		case strings.EqualFold(filepath.Ext(exportOut), ".zip"):
			var buf bytes.Buffer
			if err := rt.ExportArchive(&buf, qs); err != nil {
				fatal("Error writing archive", err)
			}
			err = writeOutput(exportOut, buf.Bytes())
		case exportOut == "" || exportOut == "-":
			doc, payloads, serr := rt.Service.Export(rt.Serializer(), qs)
			if serr != nil {
				fatal("Error writing document", serr)
			}
			if len(payloads) > 0 {
				slog.Warn("images dropped when writing to stdout", "count", len(payloads))
			}
			err = writeOutput("", []byte(doc))
		default:
			doc, payloads, serr := rt.Service.Export(rt.Serializer(), qs)
			if serr != nil {
				fatal("Error writing document", serr)
			}
			err = fs.WriteBundle(filepath.Dir(exportOut), filepath.Base(exportOut), doc, payloads)
		}
		if err != nil {
			fatal("Error writing output", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output .tex or .zip (default: stdout)")
	exportCmd.Flags().StringVar(&exportBank, "bank", "", "Export a stored bank instead of an XML file")
}
