package resolver

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Raymond2967/faircost/internal/costs"
	"github.com/Raymond2967/faircost/internal/directory"
	"github.com/Raymond2967/faircost/internal/oracle"
	"github.com/Raymond2967/faircost/internal/request"
)

// Fees resolves the one-time ancillary costs: application fee, visa fee and
// optional health insurance. The three sub-lookups are independent and run
// concurrently.
type Fees struct {
	Oracle *oracle.Gateway
}

const applicationFeeSchema = `{
  "application_fee": 85,
  "source_url": "https://www.stanford.edu/admission/apply",
  "confidence": 0.8
}`

type applicationFeeReply struct {
	ApplicationFee float64 `json:"application_fee"`
	SourceURL      string  `json:"source_url"`
	Confidence     float64 `json:"confidence"`
}

const insuranceSchema = `{
  "annual_premium": 2500,
  "mandatory": true,
  "source_url": "https://www.stanford.edu/insurance",
  "confidence": 0.8
}`

type insuranceReply struct {
	AnnualPremium float64 `json:"annual_premium"`
	Mandatory     bool    `json:"mandatory"`
	SourceURL     string  `json:"source_url"`
	Confidence    float64 `json:"confidence"`
}

// Resolve returns the OtherCosts bundle. It cannot fail: the visa fee is a
// static authoritative table, and the oracle-backed sub-lookups degrade to
// defaults (application fee) or structural absence (insurance).
func (r *Fees) Resolve(ctx context.Context, in request.Input) (costs.OtherCosts, error) {
	var (
		wg  sync.WaitGroup
		app costs.FeeItem
		ins *costs.FeeItem
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		app = r.applicationFee(ctx, in)
	}()
	go func() {
		defer wg.Done()
		ins = r.healthInsurance(ctx, in)
	}()

	amount, source := directory.VisaFee(in.Country)
	visa := costs.FeeItem{Amount: amount, Source: source, Confidence: 0.9}

	wg.Wait()
	return costs.OtherCosts{
		ApplicationFee:  app,
		VisaFee:         visa,
		HealthInsurance: ins,
		Currency:        in.Country.Currency(),
	}, nil
}

// applicationFee searches the university's official domain, first for the
// exact program and then for general admissions, gating each answer on
// confidence above 0.6. The static per-country table is the final fallback.
func (r *Fees) applicationFee(ctx context.Context, in request.Input) costs.FeeItem {
	uni, ok := directory.Find(in.Country, in.University)
	if !ok {
		return costs.FeeItem{
			Amount:     directory.ApplicationFeeDefault(in.Country, in.Level),
			Source:     fmt.Sprintf("Typical %s %s application fee", in.Country, in.Level),
			Confidence: 0.5,
		}
	}
	domain := hostOf(uni.Website)
	queries := []string{
		fmt.Sprintf("%s %s %s application fee international students site:%s", uni.Name, in.Program, in.Level, domain),
		fmt.Sprintf("%s application fee %s international students site:%s", uni.Name, in.Level, domain),
	}
	for _, q := range queries {
		found := r.Oracle.Search(ctx, q, "no data available")
		reply := oracle.Extract(ctx, r.Oracle, "application fee", found, applicationFeeSchema, applicationFeeReply{})
		if reply.ApplicationFee > 0 && reply.Confidence > 0.6 {
			source := reply.SourceURL
			if !oracle.ValidSourceURL(source) {
				source = uni.Website
			}
			return costs.FeeItem{
				Amount:     costs.Round(reply.ApplicationFee),
				Source:     source,
				Confidence: clamp01(reply.Confidence),
			}
		}
	}
	log.Debug().Str("stage", "fees").Str("university", uni.Name).Msg("no confident application fee, using country default")
	return costs.FeeItem{
		Amount:     directory.ApplicationFeeDefault(in.Country, in.Level),
		Source:     fmt.Sprintf("%s application fee estimate", uni.Name),
		Confidence: 0.5,
	}
}

// healthInsurance looks for the university's official insurance requirement.
// The fee is reported only when the oracle is confident AND cites a real
// source; otherwise nil, meaning "unknown or not required". Guessing a wrong
// premium is worse than omitting one.
func (r *Fees) healthInsurance(ctx context.Context, in request.Input) *costs.FeeItem {
	uni, ok := directory.Find(in.Country, in.University)
	if !ok {
		return nil
	}
	query := fmt.Sprintf("%s health insurance requirement cost international students site:%s", uni.Name, hostOf(uni.Website))
	found := r.Oracle.Search(ctx, query, "no data available")
	reply := oracle.Extract(ctx, r.Oracle, "health insurance", found, insuranceSchema, insuranceReply{})
	if reply.AnnualPremium <= 0 || reply.Confidence <= 0.7 || !oracle.ValidSourceURL(reply.SourceURL) {
		log.Debug().Str("stage", "fees").Str("university", uni.Name).Msg("no reliable insurance source, omitting")
		return nil
	}
	return &costs.FeeItem{
		Amount:     costs.Round(reply.AnnualPremium),
		Source:     reply.SourceURL,
		Confidence: clamp01(reply.Confidence),
	}
}

func hostOf(website string) string {
	if u, err := url.Parse(website); err == nil && u.Host != "" {
		return u.Host
	}
	return website
}
