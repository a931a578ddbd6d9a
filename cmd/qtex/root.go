package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose   bool
	configDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qtex",
	Short: "Convert QuestionTeX quizzes to and from Moodle question banks",
	Long: `qtex reads multiple-choice quizzes written with the QuestionTeX macros,
grades their answers and writes Moodle XML. It also turns Moodle XML back into
QuestionTeX and can keep converted quizzes in an SQL question bank.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Directory holding qtex.yaml (default: nearest project root)")
	rootCmd.PersistentFlags().StringVar(&renderEngine, "render-engine", "", "Formula dialect: tex, mathjax or jsmath")
	rootCmd.PersistentFlags().StringVar(&gradingScheme, "grading-scheme", "", "Grading scheme: default, akveld or akveld-exam")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store-driver", "", "Question bank driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&storeDSN, "store-dsn", "", "Question bank connection string")
}
