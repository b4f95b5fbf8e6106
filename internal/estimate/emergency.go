package estimate

import (
	"time"

	"github.com/Raymond2967/faircost/internal/costs"
	"github.com/Raymond2967/faircost/internal/directory"
	"github.com/Raymond2967/faircost/internal/request"
)

// Emergency datasets are the hardcoded last line of defence: substituted by
// the coordinator when a resolver fails outright, so the run still completes
// with a fully populated report.

const emergencySource = "Emergency fallback dataset"

func emergencyTuition(in request.Input) costs.TuitionRecord {
	duration := in.Level.DefaultDuration()
	annual := directory.EmergencyAnnualTuition(in.Country, in.Level)
	return costs.TuitionRecord{
		Total:           costs.Round(float64(annual) * duration),
		Currency:        in.Country.Currency(),
		ProgramDuration: duration,
		Source:          emergencySource,
		IsEstimate:      true,
		Confidence:      0.3,
		LastUpdated:     time.Now(),
	}
}

func emergencyAccommodation(in request.Input) costs.AccommodationCost {
	return costs.AccommodationCost{
		MonthlyRange: directory.AccommodationBaseline(in.Country, in.Accommodation, in.LocationPreference),
		Currency:     in.Country.Currency(),
		Source:       emergencySource,
		Confidence:   0.3,
		Reasoning:    "Static regional baseline for the chosen housing type",
	}
}

func emergencyLivingFigure(in request.Input) costs.LivingFigure {
	base := float64(directory.MonthlyLivingBaseline(in.Country)) * in.Lifestyle.Multiplier()
	fig := costs.LivingFigure{
		Amount:     costs.Round(base),
		Range:      costs.RangeAround(base, 0.2),
		Source:     emergencySource,
		Confidence: 0.3,
	}
	return fig.Clamp()
}

func emergencyFees(in request.Input) costs.OtherCosts {
	visaAmount, visaSource := directory.VisaFee(in.Country)
	return costs.OtherCosts{
		ApplicationFee: costs.FeeItem{
			Amount:     directory.ApplicationFeeDefault(in.Country, in.Level),
			Source:     emergencySource,
			Confidence: 0.3,
		},
		VisaFee: costs.FeeItem{Amount: visaAmount, Source: visaSource, Confidence: 0.9},
		// Insurance stays absent: the emergency path must not invent a
		// premium either.
		Currency: in.Country.Currency(),
	}
}
