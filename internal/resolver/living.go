package resolver

import (
	"context"
	"fmt"

	"github.com/Raymond2967/faircost/internal/costs"
	"github.com/Raymond2967/faircost/internal/directory"
	"github.com/Raymond2967/faircost/internal/oracle"
	"github.com/Raymond2967/faircost/internal/request"
)

// Living resolves one aggregate monthly cost-of-living figure excluding rent
// for the target city.
type Living struct {
	Oracle *oracle.Gateway
}

const livingSchema = `{
  "monthly_excluding_rent": 1014,
  "range_min": 900,
  "range_max": 1200,
  "currency": "USD",
  "source": "https://www.numbeo.com/cost-of-living/in/CityName",
  "confidence": 0.85
}`

type livingReply struct {
	MonthlyExcludingRent float64 `json:"monthly_excluding_rent"`
	RangeMin             float64 `json:"range_min"`
	RangeMax             float64 `json:"range_max"`
	Currency             string  `json:"currency"`
	Source               string  `json:"source"`
	Confidence           float64 `json:"confidence"`
}

// Resolve returns the monthly excluding-rent figure. It cannot fail: when the
// oracle path yields nothing the per-country baseline scaled by the lifestyle
// multiplier takes over.
func (r *Living) Resolve(ctx context.Context, in request.Input) (costs.LivingFigure, error) {
	city := directory.CityFor(in)
	if city == "" {
		return r.fallback(in), nil
	}

	task := fmt.Sprintf(`Find the published monthly "cost of living excluding rent" figure for a single person in %s, %s, as reported by a cost-of-living index such as numbeo.com. Report the point figure, the stated range if the source provides one (otherwise report 0 for both bounds), the currency, and the direct URL of the source page.`, city, in.Country)

	reply := oracle.Extract(ctx, r.Oracle, "living costs", task, livingSchema, livingReply{})
	if reply.MonthlyExcludingRent <= 0 {
		return r.fallback(in), nil
	}

	amount := costs.Round(reply.MonthlyExcludingRent)
	rng := costs.Range{Min: costs.Round(reply.RangeMin), Max: costs.Round(reply.RangeMax)}
	if rng.Min <= 0 || rng.Max <= 0 {
		// Only a point figure was published; synthesize a ±20% spread.
		rng = costs.RangeAround(reply.MonthlyExcludingRent, 0.2)
	}
	fig := costs.LivingFigure{
		Amount:     amount,
		Range:      rng,
		Source:     reply.Source,
		Confidence: clamp01(reply.Confidence),
	}
	return fig.Clamp(), nil
}

func (r *Living) fallback(in request.Input) costs.LivingFigure {
	base := float64(directory.MonthlyLivingBaseline(in.Country)) * in.Lifestyle.Multiplier()
	fig := costs.LivingFigure{
		Amount:     costs.Round(base),
		Range:      costs.RangeAround(base, 0.2),
		Source:     fmt.Sprintf("Regional baseline for %s, %s lifestyle", in.Country, in.Lifestyle),
		Confidence: 0.4,
	}
	return fig.Clamp()
}
