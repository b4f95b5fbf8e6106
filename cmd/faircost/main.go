package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Raymond2967/faircost/internal/app"
	"github.com/Raymond2967/faircost/internal/request"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		requestPath string
		outputPath  string
		configPath  string
		llmBaseURL  string
		llmModel    string
		searchModel string
		reportModel string
		llmKey      string
		cacheDir    string
		timeout     time.Duration
		parallel    bool
		verbose     bool
	)

	flag.StringVar(&requestPath, "request", "request.yaml", "Path to the estimation request file (YAML or JSON)")
	flag.StringVar(&outputPath, "output", "report.json", "Path to write the cost estimate report")
	flag.StringVar(&configPath, "config", "", "Optional YAML config file; explicit flags take precedence")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL (e.g. OpenRouter)")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Extraction/analysis model name")
	flag.StringVar(&searchModel, "llm.searchModel", os.Getenv("LLM_SEARCH_MODEL"), "Search-capable model name (defaults to llm.model)")
	flag.StringVar(&reportModel, "llm.reportModel", os.Getenv("LLM_REPORT_MODEL"), "Recommendation model name (defaults to llm.model)")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for the OpenAI-compatible server")
	flag.StringVar(&cacheDir, "cache.dir", "", "Oracle response cache directory (empty disables caching)")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "Overall estimation deadline")
	flag.BoolVar(&parallel, "parallel", false, "Run the four resolvers concurrently")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		RequestPath: requestPath,
		OutputPath:  outputPath,
		LLMBaseURL:  llmBaseURL,
		LLMModel:    llmModel,
		SearchModel: searchModel,
		ReportModel: reportModel,
		LLMAPIKey:   llmKey,
		Parallel:    parallel,
		Timeout:     timeout,
		CacheDir:    cacheDir,
		Verbose:     verbose,
	}
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadFileConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		fc.Apply(&cfg)
	}

	// Level is decided after the config merge so verbose: true in the file
	// takes effect too.
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg); err != nil {
		var ve *request.ValidationError
		if errors.As(err, &ve) {
			for _, p := range ve.Problems {
				log.Error().Msg(p)
			}
			os.Exit(2)
		}
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	rep, err := a.Run(context.Background())
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(cfg.OutputPath, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("output", cfg.OutputPath).Msg("report written")
	return nil
}
