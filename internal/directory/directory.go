// Package directory serves the static read-only datasets every resolver's
// fallback path assumes: the per-country university directory plus the
// authoritative fee and baseline tables. The directory is configuration, not
// computed data; it ships embedded so the binary is self-contained.
package directory

import (
	_ "embed"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v3"

	"github.com/Raymond2967/faircost/internal/costs"
	"github.com/Raymond2967/faircost/internal/request"
)

//go:embed universities.yaml
var universitiesYAML []byte

// University is one directory entry.
type University struct {
	Name     string   `yaml:"name"`
	City     string   `yaml:"city"`
	Website  string   `yaml:"website"`
	Programs []string `yaml:"programs"`
}

var (
	loadOnce sync.Once
	byCntry  map[request.Country][]University
)

func load() {
	loadOnce.Do(func() {
		raw := map[string][]University{}
		if err := yaml.Unmarshal(universitiesYAML, &raw); err != nil {
			// The file is embedded and covered by tests; a parse failure is a
			// build defect, not a runtime condition.
			panic("directory: parse universities.yaml: " + err.Error())
		}
		byCntry = make(map[request.Country][]University, len(raw))
		for k, v := range raw {
			byCntry[request.Country(k)] = v
		}
	})
}

// Universities lists the directory entries for a country.
func Universities(c request.Country) []University {
	load()
	return byCntry[c]
}

// Find looks up a university by name within a country. Matching is
// case-insensitive on the full name.
func Find(c request.Country, name string) (University, bool) {
	load()
	want := strings.ToLower(strings.TrimSpace(name))
	for _, u := range byCntry[c] {
		if strings.ToLower(u.Name) == want {
			return u, true
		}
	}
	return University{}, false
}

// CityFor resolves the target city for a request: the explicit city when
// given, otherwise the chosen university's home city.
func CityFor(in request.Input) string {
	if strings.TrimSpace(in.City) != "" {
		return in.City
	}
	if u, ok := Find(in.Country, in.University); ok {
		return u.City
	}
	return ""
}

// VisaFee returns the country-fixed student visa fee and its official source.
// These are published government figures, hence the high confidence attached
// by the fee resolver.
func VisaFee(c request.Country) (amount int, source string) {
	switch c {
	case request.US:
		return 350, "https://travel.state.gov"
	case request.AU:
		return 650, "https://immi.homeaffairs.gov.au"
	case request.UK:
		return 490, "https://www.gov.uk/student-visa"
	case request.CA:
		return 150, "https://www.canada.ca/en/immigration-refugees-citizenship"
	case request.DE:
		return 75, "https://www.auswaertiges-amt.de"
	case request.HK:
		return 600, "https://www.immd.gov.hk"
	case request.MO:
		return 300, "https://www.fsm.gov.mo"
	case request.SG:
		return 90, "https://www.ica.gov.sg"
	}
	return 0, ""
}

// TuitionBand is an annual international-student tuition band distinguishing
// public and private institutions.
type TuitionBand struct {
	Public  int
	Private int
}

// AnnualTuitionBand returns the per-country, per-level band used as the
// tuition resolver's last-resort table.
func AnnualTuitionBand(c request.Country, l request.Level) TuitionBand {
	type bands struct{ under, grad TuitionBand }
	var b bands
	switch c {
	case request.US:
		b = bands{TuitionBand{35000, 55000}, TuitionBand{45000, 65000}}
	case request.AU:
		b = bands{TuitionBand{35000, 45000}, TuitionBand{40000, 50000}}
	case request.UK:
		b = bands{TuitionBand{22000, 35000}, TuitionBand{25000, 40000}}
	case request.CA:
		b = bands{TuitionBand{30000, 45000}, TuitionBand{20000, 40000}}
	case request.DE:
		b = bands{TuitionBand{1500, 20000}, TuitionBand{1500, 25000}}
	case request.HK:
		b = bands{TuitionBand{145000, 198000}, TuitionBand{160000, 330000}}
	case request.MO:
		b = bands{TuitionBand{80000, 120000}, TuitionBand{90000, 140000}}
	case request.SG:
		b = bands{TuitionBand{30000, 45000}, TuitionBand{35000, 55000}}
	}
	if l == request.Graduate {
		return b.grad
	}
	return b.under
}

// EmergencyAnnualTuition is the hardcoded per-country, per-level annual
// figure the coordinator substitutes when the tuition resolver fails
// entirely.
func EmergencyAnnualTuition(c request.Country, l request.Level) int {
	band := AnnualTuitionBand(c, l)
	// Conservative: lean toward the private band so the estimate errs high.
	return band.Private
}

// AccommodationBaseline returns the static monthly rent range for a housing
// type and location preference, in the country's currency.
func AccommodationBaseline(c request.Country, a request.Accommodation, p request.LocationPreference) costs.Range {
	centre := p == request.CityCentre
	pick := func(centreRange, outsideRange costs.Range) costs.Range {
		if centre {
			return centreRange
		}
		return outsideRange
	}
	switch c {
	case request.US:
		switch a {
		case request.Dormitory:
			return pick(costs.Range{Min: 800, Max: 1400}, costs.Range{Min: 600, Max: 1100})
		case request.Shared:
			return pick(costs.Range{Min: 500, Max: 900}, costs.Range{Min: 400, Max: 700})
		case request.Studio:
			return pick(costs.Range{Min: 1400, Max: 2200}, costs.Range{Min: 1000, Max: 1700})
		case request.Apartment:
			return pick(costs.Range{Min: 2000, Max: 3500}, costs.Range{Min: 1500, Max: 2800})
		}
	case request.AU:
		switch a {
		case request.Dormitory:
			return pick(costs.Range{Min: 700, Max: 1200}, costs.Range{Min: 500, Max: 900})
		case request.Shared:
			return pick(costs.Range{Min: 450, Max: 750}, costs.Range{Min: 350, Max: 600})
		case request.Studio:
			return pick(costs.Range{Min: 1200, Max: 1800}, costs.Range{Min: 900, Max: 1400})
		case request.Apartment:
			return pick(costs.Range{Min: 1800, Max: 3000}, costs.Range{Min: 1300, Max: 2200})
		}
	case request.UK:
		switch a {
		case request.Dormitory:
			return pick(costs.Range{Min: 600, Max: 1100}, costs.Range{Min: 500, Max: 900})
		case request.Shared:
			return pick(costs.Range{Min: 400, Max: 700}, costs.Range{Min: 300, Max: 600})
		case request.Studio:
			return pick(costs.Range{Min: 900, Max: 1500}, costs.Range{Min: 700, Max: 1200})
		case request.Apartment:
			return pick(costs.Range{Min: 1400, Max: 2500}, costs.Range{Min: 1100, Max: 2000})
		}
	case request.CA:
		switch a {
		case request.Dormitory:
			return pick(costs.Range{Min: 700, Max: 1200}, costs.Range{Min: 600, Max: 1000})
		case request.Shared:
			return pick(costs.Range{Min: 500, Max: 800}, costs.Range{Min: 400, Max: 700})
		case request.Studio:
			return pick(costs.Range{Min: 1100, Max: 1700}, costs.Range{Min: 900, Max: 1400})
		case request.Apartment:
			return pick(costs.Range{Min: 1600, Max: 2800}, costs.Range{Min: 1300, Max: 2200})
		}
	case request.DE:
		switch a {
		case request.Dormitory:
			return pick(costs.Range{Min: 300, Max: 600}, costs.Range{Min: 250, Max: 500})
		case request.Shared:
			return pick(costs.Range{Min: 350, Max: 650}, costs.Range{Min: 300, Max: 550})
		case request.Studio:
			return pick(costs.Range{Min: 500, Max: 900}, costs.Range{Min: 400, Max: 750})
		case request.Apartment:
			return pick(costs.Range{Min: 700, Max: 1300}, costs.Range{Min: 600, Max: 1100})
		}
	case request.HK:
		switch a {
		case request.Dormitory:
			return pick(costs.Range{Min: 6000, Max: 10000}, costs.Range{Min: 4000, Max: 8000})
		case request.Shared:
			return pick(costs.Range{Min: 8000, Max: 12000}, costs.Range{Min: 6000, Max: 10000})
		case request.Studio:
			return pick(costs.Range{Min: 10000, Max: 15000}, costs.Range{Min: 8000, Max: 12000})
		case request.Apartment:
			return pick(costs.Range{Min: 12000, Max: 20000}, costs.Range{Min: 10000, Max: 16000})
		}
	case request.MO:
		switch a {
		case request.Dormitory:
			return pick(costs.Range{Min: 4000, Max: 8000}, costs.Range{Min: 3000, Max: 6000})
		case request.Shared:
			return pick(costs.Range{Min: 6000, Max: 10000}, costs.Range{Min: 5000, Max: 8000})
		case request.Studio:
			return pick(costs.Range{Min: 8000, Max: 12000}, costs.Range{Min: 7000, Max: 10000})
		case request.Apartment:
			return pick(costs.Range{Min: 10000, Max: 16000}, costs.Range{Min: 8000, Max: 13000})
		}
	case request.SG:
		switch a {
		case request.Dormitory:
			return pick(costs.Range{Min: 800, Max: 1200}, costs.Range{Min: 600, Max: 1000})
		case request.Shared:
			return pick(costs.Range{Min: 1000, Max: 1500}, costs.Range{Min: 800, Max: 1200})
		case request.Studio:
			return pick(costs.Range{Min: 1200, Max: 1800}, costs.Range{Min: 1000, Max: 1500})
		case request.Apartment:
			return pick(costs.Range{Min: 1500, Max: 2500}, costs.Range{Min: 1200, Max: 2000})
		}
	}
	return costs.Range{}
}

// MonthlyLivingBaseline is the per-country baseline monthly cost of living
// excluding rent, before the lifestyle multiplier is applied.
func MonthlyLivingBaseline(c request.Country) int {
	switch c {
	case request.US:
		return 1200
	case request.AU:
		return 1100
	case request.UK:
		return 1000
	case request.CA:
		return 1000
	case request.DE:
		return 900
	case request.HK:
		return 7500
	case request.MO:
		return 6500
	case request.SG:
		return 1300
	}
	return 0
}

// ApplicationFeeDefault is the per-country, per-level table used when the
// oracle lookup cannot produce a confident application fee.
func ApplicationFeeDefault(c request.Country, l request.Level) int {
	grad := l == request.Graduate
	switch c {
	case request.US:
		if grad {
			return 110
		}
		return 85
	case request.AU:
		if grad {
			return 125
		}
		return 100
	case request.UK:
		if grad {
			return 80
		}
		return 27
	case request.CA:
		if grad {
			return 120
		}
		return 100
	case request.DE:
		return 75
	case request.HK:
		if grad {
			return 400
		}
		return 450
	case request.MO:
		return 300
	case request.SG:
		if grad {
			return 100
		}
		return 20
	}
	return 0
}
