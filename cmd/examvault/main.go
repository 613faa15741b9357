// Package main provides the examvault CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/examvault/cli"
	"github.com/richinex/examvault/model"
)

var (
	// Global flags
	configPath string
	logLevel   string
	dataDir    string
	mediaDirs  []string
	dbPath     string
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "examvault",
		Short: "Locate exam audio and assemble fragmented listening papers",
		Long: `A CLI for the exam content layout on disk.

Two jobs:
- Audio resolution: find the best audio file for a paper across category
  folders, historical folder aliases and naming conventions
- Paper assembly: merge listening papers split across batch files
  (paper_1.json, paper_2.json, ...) into one renumbered question list`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Listening dataset root (year directories)")
	rootCmd.PersistentFlags().StringArrayVar(&mediaDirs, "media-dir", nil, "Audio base directory (repeatable, probed in order)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Paper catalog database path")

	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(rescanCmd())
	rootCmd.AddCommand(checkAudioCmd())
	rootCmd.AddCommand(papersCmd())
	rootCmd.AddCommand(paperCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		DataDir:    dataDir,
		MediaDirs:  mediaDirs,
		DBPath:     dbPath,
	}
}

func resolveCmd() *cobra.Command {
	var d model.Descriptor
	var paperID string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Find the audio file for one paper",
		Long: `Find the audio file for one paper.

Every plausible filename is probed under every category folder; hits are
scored (+10 category tag, +5 category folder, +3/+2/+1 date specificity) and
the first highest-scoring hit wins. A miss prints every filename and folder
that was tried.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if paperID == "" && (d.Category == "" || d.Year == 0 || d.Month == 0) {
				return fmt.Errorf("either --paper or --type, --year and --month are required")
			}
			if d.Month < 0 || d.Month > 12 {
				return fmt.Errorf("invalid month: %d", d.Month)
			}
			return cli.Resolve(cmd.Context(), d, paperID, options())
		},
	}

	cmd.Flags().StringVar(&paperID, "paper", "", "Paper id in the catalog database")
	cmd.Flags().StringVarP(&d.Category, "type", "t", "", "Exam type (e.g. CET-4, CET-6)")
	cmd.Flags().IntVarP(&d.Year, "year", "y", 0, "Exam year")
	cmd.Flags().IntVarP(&d.Month, "month", "M", 0, "Exam month (1-12)")
	cmd.Flags().IntVarP(&d.SequenceIndex, "number", "n", 1, "Paper number within the sitting")
	cmd.Flags().StringVar(&d.Title, "title", "", "Display title")

	return cmd
}

func rescanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rescan",
		Short: "Resolve audio for every listening paper in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Rescan(cmd.Context(), options())
		},
	}
}

func checkAudioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-audio [filename]",
		Short: "Report which category folder holds an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.CheckAudio(args[0], options())
		},
	}
}

func papersCmd() *cobra.Command {
	var prefix string
	var watch bool

	cmd := &cobra.Command{
		Use:   "papers",
		Short: "List logical listening papers in the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Papers(cmd.Context(), prefix, watch, options())
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Only papers whose id starts with this prefix")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print the list again whenever the dataset changes")

	return cmd
}

func paperCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paper [id]",
		Short: "Print one listening paper merged from its fragment files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Paper(args[0], options())
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the listening dataset on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Status(options())
		},
	}
}
