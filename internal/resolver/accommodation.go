package resolver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Raymond2967/faircost/internal/costs"
	"github.com/Raymond2967/faircost/internal/directory"
	"github.com/Raymond2967/faircost/internal/oracle"
	"github.com/Raymond2967/faircost/internal/request"
)

// Accommodation derives a monthly rent range from cost-of-living index data
// for four bedroom categories, scaled by a housing-type ratio.
type Accommodation struct {
	Oracle *oracle.Gateway
}

const rentSchema = `{
  "cityCentre1Bed": {"average": 1200.00, "range": {"min": 1000.00, "max": 1500.00}},
  "outsideCityCentre1Bed": {"average": 900.00, "range": {"min": 700.00, "max": 1200.00}},
  "cityCentre3Bed": {"average": 2400.00, "range": {"min": 2000.00, "max": 3000.00}},
  "outsideCityCentre3Bed": {"average": 1800.00, "range": {"min": 1500.00, "max": 2500.00}},
  "currency": "USD",
  "source": "https://www.numbeo.com/cost-of-living/in/CityName",
  "confidence": 0.9,
  "reasoning": "Rent Per Month table for the specified city"
}`

type rentBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type rentEntry struct {
	Average float64    `json:"average"`
	Range   rentBounds `json:"range"`
}

type rentIndexReply struct {
	CityCentre1Bed        rentEntry `json:"cityCentre1Bed"`
	OutsideCityCentre1Bed rentEntry `json:"outsideCityCentre1Bed"`
	CityCentre3Bed        rentEntry `json:"cityCentre3Bed"`
	OutsideCityCentre3Bed rentEntry `json:"outsideCityCentre3Bed"`
	Currency              string    `json:"currency"`
	Source                string    `json:"source"`
	Confidence            float64   `json:"confidence"`
	Reasoning             string    `json:"reasoning"`
}

// Resolve returns the monthly rent range for the request's housing type and
// location preference. It cannot fail: a dead oracle degrades to the static
// baseline table.
func (r *Accommodation) Resolve(ctx context.Context, in request.Input) (costs.AccommodationCost, error) {
	city := directory.CityFor(in)
	if city == "" {
		return r.fallback(in), nil
	}

	task := fmt.Sprintf(`Find the exact monthly rental prices from the "Rent Per Month" section of the numbeo.com cost-of-living page for %s, %s.

Extract the average and the exact min-max range for all four categories: 1 bedroom in city centre, 1 bedroom outside centre, 3 bedrooms in city centre, 3 bedrooms outside centre. Use the exact values shown on the page without rounding, identify the currency, and cite the direct URL of the page the data comes from. Never invent numbers.`, city, in.Country)

	reply := oracle.Extract(ctx, r.Oracle, "rent index", task, rentSchema, rentIndexReply{})
	if reply.Confidence <= 0 || reply.CityCentre1Bed.Range.Max <= 0 {
		return r.fallback(in), nil
	}

	oneBed := reply.CityCentre1Bed.Range
	threeBed := reply.CityCentre3Bed.Range
	if in.LocationPreference == request.OutsideCityCentre {
		oneBed = reply.OutsideCityCentre1Bed.Range
		threeBed = reply.OutsideCityCentre3Bed.Range
	}

	var (
		selected rentBounds
		note     string
	)
	switch in.Accommodation {
	case request.Dormitory:
		// Dormitories price below an open-market 1-bed due to subsidies.
		selected = rentBounds{Min: oneBed.Min * 0.7, Max: oneBed.Max * 0.7}
		note = "1 bedroom rate reduced by 30% for dormitory pricing"
	case request.Shared:
		// Two occupants split a 1-bed-equivalent rent.
		selected = rentBounds{Min: oneBed.Min / 2, Max: oneBed.Max / 2}
		note = "1 bedroom rate split between 2 occupants"
	case request.Apartment:
		selected = threeBed
		note = "3 bedroom apartment rate"
	default: // studio
		selected = oneBed
		note = "1 bedroom apartment rate"
	}

	reasoning := fmt.Sprintf("Based on %s data for %s: %s", locationLabel(in.LocationPreference), city, note)
	if reply.Reasoning != "" {
		reasoning += ". " + reply.Reasoning
	}

	source := reply.Source
	if !oracle.ValidSourceURL(source) {
		log.Debug().Str("stage", "accommodation").Str("source", source).Msg("rejecting rent index source")
		return r.fallback(in), nil
	}

	return costs.AccommodationCost{
		MonthlyRange: costs.Range{Min: costs.Round(selected.Min), Max: costs.Round(selected.Max)},
		Currency:     in.Country.Currency(),
		Source:       source,
		Confidence:   clamp01(reply.Confidence),
		Reasoning:    reasoning,
	}, nil
}

func (r *Accommodation) fallback(in request.Input) costs.AccommodationCost {
	source := "https://www.numbeo.com/cost-of-living/"
	if city := directory.CityFor(in); city != "" {
		source += "in/" + city
	}
	return costs.AccommodationCost{
		MonthlyRange: directory.AccommodationBaseline(in.Country, in.Accommodation, in.LocationPreference),
		Currency:     in.Country.Currency(),
		Source:       source,
		Confidence:   0.4,
		Reasoning:    "Fallback estimate based on general market data for the region",
	}
}

func locationLabel(p request.LocationPreference) string {
	if p == request.OutsideCityCentre {
		return "outside city centre"
	}
	return "city centre"
}
