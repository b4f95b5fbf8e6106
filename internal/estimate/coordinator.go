// Package estimate orchestrates the four cost resolvers and the report
// synthesizer into one estimation run.
package estimate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Raymond2967/faircost/internal/costs"
	"github.com/Raymond2967/faircost/internal/directory"
	"github.com/Raymond2967/faircost/internal/report"
	"github.com/Raymond2967/faircost/internal/request"
)

// Progress is one progress event. Progress values are monotonically
// non-decreasing within a run.
type Progress struct {
	Step     string `json:"step"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// ProgressFunc consumes progress events. It is fire-and-forget; a nil
// callback is valid.
type ProgressFunc func(Progress)

// Resolver interfaces let tests substitute failing doubles and keep the
// coordinator independent of how each category is actually resolved.
type (
	TuitionResolver interface {
		Resolve(ctx context.Context, in request.Input) (costs.TuitionRecord, error)
	}
	AccommodationResolver interface {
		Resolve(ctx context.Context, in request.Input) (costs.AccommodationCost, error)
	}
	LivingResolver interface {
		Resolve(ctx context.Context, in request.Input) (costs.LivingFigure, error)
	}
	FeeResolver interface {
		Resolve(ctx context.Context, in request.Input) (costs.OtherCosts, error)
	}
	ReportSynthesizer interface {
		Synthesize(ctx context.Context, in request.Input, tuition costs.TuitionRecord, living costs.LivingCosts, fees costs.OtherCosts) (*report.Report, error)
	}
)

// Coordinator owns one estimation run: it validates the request, drives the
// resolvers sequentially or in parallel, substitutes emergency data for any
// resolver that fails outright, and hands the merged record to the
// synthesizer.
type Coordinator struct {
	Tuition       TuitionResolver
	Accommodation AccommodationResolver
	Living        LivingResolver
	Fees          FeeResolver
	Reporter      ReportSynthesizer
	// Parallel switches to the settle-all concurrent strategy.
	Parallel bool
}

// Validate runs the pre-launch gate: required-field validation plus the
// university directory check. All problems are reported at once; nothing is
// sent to the oracle for an invalid request.
func (c *Coordinator) Validate(in request.Input) error {
	var problems []string
	if err := in.Validate(); err != nil {
		ve := err.(*request.ValidationError)
		problems = append(problems, ve.Problems...)
	} else if _, ok := directory.Find(in.Country, in.University); !ok {
		problems = append(problems, fmt.Sprintf("university %q not found in the %s directory", in.University, in.Country))
	}
	if len(problems) > 0 {
		return &request.ValidationError{Problems: problems}
	}
	return nil
}

// Run executes one estimation and returns the finished report. The caller
// receives either a complete report or an error; never a partial report.
func (c *Coordinator) Run(ctx context.Context, in request.Input, onProgress ProgressFunc) (*report.Report, error) {
	if err := c.Validate(in); err != nil {
		return nil, err
	}
	if c.Parallel {
		return c.runParallel(ctx, in, onProgress)
	}
	return c.runSequential(ctx, in, onProgress)
}

func (c *Coordinator) runSequential(ctx context.Context, in request.Input, onProgress ProgressFunc) (*report.Report, error) {
	emit := emitter(onProgress)

	emit(Progress{Step: "tuition", Progress: 10, Message: "Querying program tuition information..."})
	tuition, err := c.Tuition.Resolve(ctx, in)
	if err != nil {
		logResolverFailure("tuition", err)
		tuition = emergencyTuition(in)
	}
	emit(Progress{Step: "tuition", Progress: 30, Message: "Tuition lookup complete"})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emit(Progress{Step: "living", Progress: 40, Message: "Analyzing personalized living costs..."})
	accommodation, err := c.Accommodation.Resolve(ctx, in)
	if err != nil {
		logResolverFailure("accommodation", err)
		accommodation = emergencyAccommodation(in)
	}
	livingFigure, err := c.Living.Resolve(ctx, in)
	if err != nil {
		logResolverFailure("living", err)
		livingFigure = emergencyLivingFigure(in)
	}
	emit(Progress{Step: "living", Progress: 60, Message: "Living cost analysis complete"})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emit(Progress{Step: "other", Progress: 70, Message: "Calculating application, visa and other fees..."})
	fees, err := c.Fees.Resolve(ctx, in)
	if err != nil {
		logResolverFailure("fees", err)
		fees = emergencyFees(in)
	}
	emit(Progress{Step: "other", Progress: 80, Message: "Fee calculation complete"})

	return c.finish(ctx, in, tuition, mergeLiving(in, accommodation, livingFigure), fees, emit)
}

// runParallel launches all four resolvers concurrently and waits for every
// one to settle. A resolver that fails is individually replaced with its
// emergency dataset; one total failure never suppresses the other three.
func (c *Coordinator) runParallel(ctx context.Context, in request.Input, onProgress ProgressFunc) (*report.Report, error) {
	emit := emitter(onProgress)
	emit(Progress{Step: "tuition", Progress: 10, Message: "Querying all cost components in parallel..."})

	var (
		tuition       costs.TuitionRecord
		accommodation costs.AccommodationCost
		livingFigure  costs.LivingFigure
		fees          costs.OtherCosts
		errs          [4]error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sub := make(chan struct{}, 4)
		go func() { tuition, errs[0] = c.Tuition.Resolve(ctx, in); sub <- struct{}{} }()
		go func() { accommodation, errs[1] = c.Accommodation.Resolve(ctx, in); sub <- struct{}{} }()
		go func() { livingFigure, errs[2] = c.Living.Resolve(ctx, in); sub <- struct{}{} }()
		go func() { fees, errs[3] = c.Fees.Resolve(ctx, in); sub <- struct{}{} }()
		for i := 0; i < 4; i++ {
			<-sub
		}
	}()
	select {
	case <-done:
	case <-ctx.Done():
		// The run is abandoned; settled partial results are discarded.
		return nil, ctx.Err()
	}

	if errs[0] != nil {
		logResolverFailure("tuition", errs[0])
		tuition = emergencyTuition(in)
	}
	if errs[1] != nil {
		logResolverFailure("accommodation", errs[1])
		accommodation = emergencyAccommodation(in)
	}
	if errs[2] != nil {
		logResolverFailure("living", errs[2])
		livingFigure = emergencyLivingFigure(in)
	}
	if errs[3] != nil {
		logResolverFailure("fees", errs[3])
		fees = emergencyFees(in)
	}
	emit(Progress{Step: "living", Progress: 70, Message: "Data collection complete, aggregating..."})

	return c.finish(ctx, in, tuition, mergeLiving(in, accommodation, livingFigure), fees, emit)
}

func (c *Coordinator) finish(ctx context.Context, in request.Input, tuition costs.TuitionRecord, living costs.LivingCosts, fees costs.OtherCosts, emit ProgressFunc) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emit(Progress{Step: "report", Progress: 90, Message: "Generating personalized report and recommendations..."})
	rep, err := c.Reporter.Synthesize(ctx, in, tuition, living, fees)
	if err != nil {
		return nil, fmt.Errorf("synthesize report: %w", err)
	}
	emit(Progress{Step: "complete", Progress: 100, Message: "Cost estimate report ready"})
	return rep, nil
}

func emitter(f ProgressFunc) ProgressFunc {
	if f == nil {
		return func(Progress) {}
	}
	return f
}

func logResolverFailure(name string, err error) {
	log.Error().Str("stage", "coordinator").Str("resolver", name).Err(err).Msg("resolver failed, substituting emergency data")
}

// mergeLiving folds the accommodation range and the excluding-rent figure
// into the composite living record.
func mergeLiving(in request.Input, acc costs.AccommodationCost, fig costs.LivingFigure) costs.LivingCosts {
	var sources []string
	for _, s := range []string{fig.Source, acc.Source} {
		if s != "" {
			sources = append(sources, s)
		}
	}
	conf := fig.Confidence
	if acc.Confidence > 0 && (conf == 0 || acc.Confidence < conf) {
		conf = acc.Confidence
	}
	return costs.LivingCosts{
		Total:         costs.Estimate{Amount: fig.Amount, Range: fig.Range},
		Accommodation: acc,
		Currency:      in.Country.Currency(),
		Sources:       sources,
		Confidence:    conf,
	}
}
