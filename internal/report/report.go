// Package report assembles the final cost-estimate report: the three summary
// aggregates, prose recommendations and the deduplicated source bibliography.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Raymond2967/faircost/internal/costs"
	"github.com/Raymond2967/faircost/internal/oracle"
	"github.com/Raymond2967/faircost/internal/request"
)

// Breakdown splits the annual figure per category.
type Breakdown struct {
	Tuition int `json:"tuition"`
	Living  int `json:"living"`
	Other   int `json:"other"`
}

// ProgramCost is the whole-program aggregate with its duration.
type ProgramCost struct {
	Amount   int         `json:"amount"`
	Range    costs.Range `json:"range"`
	Duration float64     `json:"duration"`
}

// Summary carries the three cost aggregates. The formulas intentionally add
// one-time fees undiminished into both the annual and the total figure;
// callers replicating the arithmetic must do the same.
type Summary struct {
	TotalAnnualCost  costs.Estimate `json:"totalAnnualCost"`
	TotalMonthlyCost costs.Estimate `json:"totalMonthlyCost"`
	TotalCost        ProgramCost    `json:"totalCost"`
	Currency         costs.Currency `json:"currency"`
	Breakdown        Breakdown      `json:"breakdown"`
}

// Report is the terminal aggregate returned to the caller. Created once,
// immutable thereafter.
type Report struct {
	Input           request.Input       `json:"userInput"`
	Tuition         costs.TuitionRecord `json:"tuition"`
	LivingCosts     costs.LivingCosts   `json:"livingCosts"`
	OtherCosts      costs.OtherCosts    `json:"otherCosts"`
	Summary         Summary             `json:"summary"`
	Recommendations []string            `json:"recommendations"`
	GeneratedAt     time.Time           `json:"generatedAt"`
	Sources         []string            `json:"sources"`
}

// Synthesizer builds reports. Model selects the recommendation model; when
// empty the gateway's extraction model is used.
type Synthesizer struct {
	Oracle *oracle.Gateway
	Model  string
	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

func (s *Synthesizer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Synthesize merges the resolver outputs into the final report.
func (s *Synthesizer) Synthesize(ctx context.Context, in request.Input, tuition costs.TuitionRecord, living costs.LivingCosts, fees costs.OtherCosts) (*Report, error) {
	duration := tuition.ProgramDuration
	if duration <= 0 {
		// Guard the divisions below; upstream guarantees positive duration.
		duration = in.Level.DefaultDuration()
	}
	livingMonthly := living.MonthlyTotal()
	oneTime := fees.OneTimeTotal()

	annual := costs.Round(float64(tuition.Total)/duration + float64(livingMonthly)*12 + float64(oneTime))
	monthly := costs.Round(float64(tuition.Total)/duration/12 + float64(livingMonthly) + float64(oneTime)/12)
	total := costs.Round(float64(tuition.Total) + float64(livingMonthly)*12*duration + float64(oneTime))

	summary := Summary{
		TotalAnnualCost:  costs.Estimate{Amount: annual, Range: costs.Band(annual)},
		TotalMonthlyCost: costs.Estimate{Amount: monthly, Range: costs.Band(monthly)},
		TotalCost:        ProgramCost{Amount: total, Range: costs.Band(total), Duration: duration},
		Currency:         tuition.Currency,
		Breakdown: Breakdown{
			Tuition: costs.Round(float64(tuition.Total) / duration),
			Living:  livingMonthly * 12,
			Other:   oneTime,
		},
	}

	return &Report{
		Input:           in,
		Tuition:         tuition,
		LivingCosts:     living,
		OtherCosts:      fees,
		Summary:         summary,
		Recommendations: s.recommendations(ctx, in, tuition, living, fees),
		GeneratedAt:     s.now(),
		Sources:         collectSources(tuition, living, fees),
	}, nil
}

// recommendations prefers oracle-generated, situation-specific suggestions
// and falls back to the categorical static list. The result is never empty
// and always carries an insurance-verification note when the insurance fee
// is structurally absent.
func (s *Synthesizer) recommendations(ctx context.Context, in request.Input, tuition costs.TuitionRecord, living costs.LivingCosts, fees costs.OtherCosts) []string {
	list, err := s.oracleRecommendations(ctx, in, tuition, living, fees)
	if err != nil || len(list) < 3 {
		if err != nil {
			log.Debug().Str("stage", "report").Err(err).Msg("oracle recommendations unavailable, using static list")
		}
		list = staticRecommendations(in, tuition, living, fees)
	}
	if fees.HealthInsurance == nil && !mentionsInsurance(list) {
		list = append(list, insuranceNote(in))
	}
	return list
}

func (s *Synthesizer) oracleRecommendations(ctx context.Context, in request.Input, tuition costs.TuitionRecord, living costs.LivingCosts, fees costs.OtherCosts) ([]string, error) {
	model := s.Model
	if model == "" {
		model = s.Oracle.Model
	}
	currency := tuition.Currency
	prompt := fmt.Sprintf(`A student is planning to study %s (%s) at %s in %s. Their profile: %s lifestyle, %s accommodation, %s preference. Estimated figures: tuition %s total over %.1f years, monthly living costs about %s, one-time fees %s.

Give 3 to 8 short, practical, situation-specific cost recommendations. Never recommend a choice the student has already made (they already chose %s accommodation and a %s lifestyle). Return ONLY a JSON array of strings.`,
		in.Program, in.Level, in.University, in.Country,
		in.Lifestyle, in.Accommodation, in.LocationPreference,
		costs.Format(currency, tuition.Total), tuition.ProgramDuration,
		costs.Format(currency, living.MonthlyTotal()), costs.Format(currency, fees.OneTimeTotal()),
		in.Accommodation, in.Lifestyle)

	raw, err := s.Oracle.Chat(ctx, model,
		"You are a study abroad financial advisor. Respond with a strict JSON array of recommendation strings, no narration.",
		prompt, 0.5, 1500)
	if err != nil {
		return nil, err
	}
	var list []string
	if err := json.Unmarshal([]byte(oracle.StripFences(raw)), &list); err != nil {
		return nil, fmt.Errorf("parse recommendations: %w", err)
	}
	out := list[:0]
	for _, item := range list {
		if strings.TrimSpace(item) != "" {
			out = append(out, strings.TrimSpace(item))
		}
	}
	if len(out) > 8 {
		out = out[:8]
	}
	return out, nil
}

// staticRecommendations assembles the categorical default list. The
// unconditional entries guarantee at least three items.
func staticRecommendations(in request.Input, tuition costs.TuitionRecord, living costs.LivingCosts, fees costs.OtherCosts) []string {
	var recs []string
	switch in.Lifestyle {
	case request.Economy:
		recs = append(recs, "With an economy lifestyle, cooking at home, public transport and student discounts will stretch your budget furthest")
	case request.Comfortable:
		recs = append(recs, "With a comfortable lifestyle, plan entertainment spending deliberately so it does not crowd out essentials")
	}
	if in.Accommodation != request.Dormitory {
		recs = append(recs, "Consider a university dormitory: usually cheaper than off-campus housing and a faster way to settle into campus life")
	}
	if in.Accommodation != request.Apartment {
		recs = append(recs, "If your budget allows, an off-campus apartment offers more privacy and independence")
	}
	if living.MonthlyTotal() > 2000 {
		recs = append(recs, fmt.Sprintf("Living costs in your city run around %s per month; keep a detailed monthly budget", costs.Format(living.Currency, living.MonthlyTotal())))
	}
	if tuition.Confidence < 0.5 {
		recs = append(recs, "The tuition figure is an estimate; confirm current fees on the university's official website before committing")
	}
	if fees.HealthInsurance != nil && fees.HealthInsurance.Amount > 1000 {
		recs = append(recs, "Health insurance is a significant cost here; compare plans from several providers")
	}
	recs = append(recs,
		"Apply early for scholarships and assistantships to offset tuition",
		"Look for student deals and seasonal discounts to keep day-to-day spending down")
	return recs
}

func insuranceNote(in request.Input) string {
	return fmt.Sprintf("Health insurance costs could not be verified from official sources; confirm requirements and pricing with %s before budgeting", in.University)
}

func mentionsInsurance(list []string) bool {
	for _, item := range list {
		if strings.Contains(strings.ToLower(item), "insurance") {
			return true
		}
	}
	return false
}

// collectSources builds the deduplicated bibliography from every non-empty
// source field, preserving first-seen order.
func collectSources(tuition costs.TuitionRecord, living costs.LivingCosts, fees costs.OtherCosts) []string {
	var lines []string
	if tuition.Source != "" {
		kind := "official data"
		if tuition.IsEstimate {
			kind = "estimate"
		}
		lines = append(lines, fmt.Sprintf("Tuition: %s (%s, confidence %.0f%%)", tuition.Source, kind, tuition.Confidence*100))
	}
	for _, src := range living.Sources {
		if strings.TrimSpace(src) != "" {
			lines = append(lines, "Living costs: "+src)
		}
	}
	if living.Accommodation.Source != "" {
		lines = append(lines, "Accommodation: "+living.Accommodation.Source)
	}
	if fees.ApplicationFee.Source != "" {
		lines = append(lines, fmt.Sprintf("Application fee: %s (confidence %.0f%%)", fees.ApplicationFee.Source, fees.ApplicationFee.Confidence*100))
	}
	if fees.VisaFee.Source != "" {
		lines = append(lines, fmt.Sprintf("Visa fee: %s (confidence %.0f%%)", fees.VisaFee.Source, fees.VisaFee.Confidence*100))
	}
	if fees.HealthInsurance != nil && fees.HealthInsurance.Source != "" {
		lines = append(lines, fmt.Sprintf("Health insurance: %s (confidence %.0f%%)", fees.HealthInsurance.Source, fees.HealthInsurance.Confidence*100))
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
