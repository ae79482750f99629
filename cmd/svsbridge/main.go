// Package main is the entry point for the svsbridge CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/james-see/svsbridge/pkg/api"
	"github.com/james-see/svsbridge/pkg/config"
	"github.com/james-see/svsbridge/pkg/converter"
	"github.com/james-see/svsbridge/pkg/converter/formats"
	"github.com/james-see/svsbridge/pkg/metrics"
	"github.com/james-see/svsbridge/pkg/model"
	"github.com/james-see/svsbridge/pkg/report"
	"github.com/james-see/svsbridge/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile     string
	envFile        string
	sensitivity    int
	lyricEncoding  string
	reportTemplate string
	serverPort     int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "svsbridge",
	Short: "Convert and merge singing voice synthesis projects",
	Long: `svsbridge converts singing voice synthesis projects between standard MIDI
files and the svsbridge YAML project format, keeping notes, lyrics, tempo,
time signatures and pitch curves.

Examples:
  svsbridge convert song.mid -o song.yaml
  svsbridge merge verse.yaml chorus.mid -o song.mid
  svsbridge info song.mid
  svsbridge tui
  svsbridge serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Automatically detects input format and converts to the output format based on file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var mergeCmd = &cobra.Command{
	Use:   "merge <input>...",
	Short: "Merge several projects into one",
	Long: `Merges projects in order. The first project's tempo map and time signatures
are kept; singing tracks are merged pairwise. Notes that collide across projects
fail the merge.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

var infoCmd = &cobra.Command{
	Use:   "info <input>",
	Short: "Print a summary of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Configuration file")
	rootCmd.PersistentFlags().IntVar(&sensitivity, "pitch-bend-sensitivity", 0, "MIDI pitch bend range in semitones (overrides config)")
	rootCmd.PersistentFlags().StringVar(&lyricEncoding, "lyric-encoding", "", "MIDI lyric encoding: utf-8 or shift-jis (overrides config)")

	// Convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	// Merge command
	mergeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = mergeCmd.MarkFlagRequired("output")

	// Info command
	infoCmd.Flags().StringVarP(&reportTemplate, "template", "t", "", "Go template file for the report")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")

	// Add commands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}
	if sensitivity != 0 {
		if sensitivity < 1 {
			return cfg, fmt.Errorf("pitch bend sensitivity must be at least 1, got %d", sensitivity)
		}
		cfg.PitchBendSensitivity = sensitivity
	}
	if lyricEncoding != "" {
		if _, err := formats.LookupEncoding(lyricEncoding); err != nil {
			return cfg, err
		}
		cfg.LyricEncoding = lyricEncoding
	}
	return cfg, nil
}

func newConverter(cfg config.Config) *converter.Converter {
	return converter.New(formats.NewMIDI(cfg.MIDIOptions()), formats.NewYAML())
}

// setup loads the configuration and starts Sentry; the returned func
// flushes pending events.
func setup() (config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	flush, err := metrics.Init(cfg.SentryDSN, cfg.SentryEnvironment, version)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, flush, nil
}

func printWarnings(warnings []model.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	input := args[0]
	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	result, err := newConverter(cfg).ConvertFile(input, outputFile)
	if err != nil {
		metrics.CaptureError(err)
		return err
	}
	printWarnings(result.Warnings)
	fmt.Println("Conversion complete!")
	return nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	fmt.Printf("Merging %s -> %s\n", strings.Join(args, ", "), outputFile)
	result, err := newConverter(cfg).MergeFiles(args, outputFile)
	if err != nil {
		metrics.CaptureError(err)
		return err
	}
	printWarnings(result.Warnings)
	fmt.Printf("Merged %d projects into %d tracks\n", len(args), len(result.Project.TrackList))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tmpl := report.DefaultTemplate
	if reportTemplate != "" {
		data, err := os.ReadFile(reportTemplate)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		tmpl = string(data)
	}

	input := args[0]
	project, warnings, err := newConverter(cfg).LoadFile(input)
	if err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), tmpl, report.Summarize(filepath.Base(input), project, warnings))
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return tui.Run(newConverter(cfg))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	if serverPort != 0 {
		cfg.Port = serverPort
	}
	fmt.Printf("Starting API server on port %d...\n", cfg.Port)
	return api.StartServer(cfg)
}
