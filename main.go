package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	settingsFile string
	language     string
	outputPath   string
	workers      int
	modelDir     string
	debugMode    bool
)

var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "wikicorpus [keywords...]",
	Short: "Builds a text corpus from seed keywords via Wikidata and Wikipedia",
	Long: `wikicorpus expands each seed keyword, resolves it through Wikidata entities
to Wikipedia articles and their categories, crawls the category members
concurrently, and writes the cleaned article text to a single corpus file.`,
	Run: func(cmd *cobra.Command, args []string) {
		if debugMode {
			logger.SetLevel(logrus.DebugLevel)
		}

		if err := ensureConfigExists(); err != nil {
			logger.Fatalf("Failed to prepare config: %v", err)
		}

		var settings *Settings
		var err error
		if settingsFile != "" {
			settings, err = loadSettingsRequired(settingsFile)
		} else {
			settings, err = loadSettings(getConfigPath("settings.yaml"))
		}
		if err != nil {
			logger.Fatalf("Failed to load settings: %v", err)
		}

		// Flags override the settings file.
		if language != "" {
			settings.Language = language
		}
		if outputPath != "" {
			settings.OutputPath = outputPath
		}
		if workers > 0 {
			settings.Workers = workers
		}
		if modelDir != "" {
			settings.ModelDir = modelDir
		}

		keywords := args
		if len(keywords) == 0 {
			keywords = settings.Keywords
		}
		if len(keywords) == 0 {
			logger.Fatal("No seed keywords: pass them as arguments or set them in settings.yaml")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		builder := NewBuilder(settings, logger)
		report, err := builder.Run(ctx, keywords)
		if err != nil {
			if errors.Is(err, ErrStageExhausted) {
				logger.Fatalf("Run produced an empty corpus: %v", err)
			}
			logger.Fatalf("Run failed: %v", err)
		}

		logger.Infof("Done: %d keywords, %d articles, %d bytes, %d failed fetches -> %s",
			report.Keywords, report.Articles, report.CorpusBytes, report.FailedFetches(), report.OutputPath)
	},
}

func init() {
	rootCmd.Flags().StringVar(&settingsFile, "config", "", "Path to a settings file (default .wikicorpus/settings.yaml)")
	rootCmd.Flags().StringVarP(&language, "language", "l", "", "Target Wikipedia language code")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path of the corpus output file")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Maximum concurrent fetches per stage")
	rootCmd.Flags().StringVar(&modelDir, "model-dir", "", "Directory holding word vector models")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
