// Package app wires the oracle gateway, resolvers, coordinator and report
// synthesizer together from a Config.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Raymond2967/faircost/internal/estimate"
	"github.com/Raymond2967/faircost/internal/llm"
	"github.com/Raymond2967/faircost/internal/oracle"
	"github.com/Raymond2967/faircost/internal/report"
	"github.com/Raymond2967/faircost/internal/request"
	"github.com/Raymond2967/faircost/internal/resolver"
)

// App bundles the constructed pipeline for one process.
type App struct {
	cfg         Config
	Coordinator *estimate.Coordinator
	Runner      *estimate.Runner
}

// New constructs the pipeline. The oracle model is the only hard
// requirement; everything else has a default.
func New(cfg Config) (*App, error) {
	if cfg.LLMModel == "" {
		return nil, errors.New("oracle model is required (set -llm.model or LLM_MODEL)")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.TaskTTL <= 0 {
		cfg.TaskTTL = 15 * time.Minute
	}

	gateway := &oracle.Gateway{
		Client:      llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey),
		Model:       cfg.LLMModel,
		SearchModel: cfg.SearchModel,
	}
	if cfg.CacheDir != "" {
		gateway.Cache = &oracle.Cache{Dir: cfg.CacheDir}
	}

	coord := &estimate.Coordinator{
		Tuition:       &resolver.Tuition{Oracle: gateway},
		Accommodation: &resolver.Accommodation{Oracle: gateway},
		Living:        &resolver.Living{Oracle: gateway},
		Fees:          &resolver.Fees{Oracle: gateway},
		Reporter:      &report.Synthesizer{Oracle: gateway, Model: cfg.ReportModel},
		Parallel:      cfg.Parallel,
	}

	return &App{
		cfg:         cfg,
		Coordinator: coord,
		Runner:      estimate.NewRunner(coord, cfg.Timeout, cfg.TaskTTL, cfg.TaskCapacity),
	}, nil
}

// Run loads the request file and executes one estimation bounded by the
// configured timeout, logging progress as it goes.
func (a *App) Run(ctx context.Context) (*report.Report, error) {
	in, err := request.Load(a.cfg.RequestPath)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	return a.Coordinator.Run(ctx, in, func(p estimate.Progress) {
		log.Info().Str("step", p.Step).Int("progress", p.Progress).Msg(p.Message)
	})
}
