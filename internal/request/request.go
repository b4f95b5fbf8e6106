// Package request models the student's estimation request and its validation.
package request

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/Raymond2967/faircost/internal/costs"
)

// Country is the closed set of supported destination countries. Keeping this
// a typed enum means a misspelled country is rejected at parse time instead of
// surfacing as a missing table entry deep inside a resolver.
type Country string

const (
	US Country = "US"
	AU Country = "AU"
	UK Country = "UK"
	CA Country = "CA"
	DE Country = "DE"
	HK Country = "HK"
	MO Country = "MO"
	SG Country = "SG"
)

// Countries lists every supported country in a stable order.
func Countries() []Country {
	return []Country{US, AU, UK, CA, DE, HK, MO, SG}
}

// Valid reports whether c is one of the supported countries.
func (c Country) Valid() bool {
	switch c {
	case US, AU, UK, CA, DE, HK, MO, SG:
		return true
	}
	return false
}

// Currency maps a country to the single currency all figures for that
// destination are expressed in.
func (c Country) Currency() costs.Currency {
	switch c {
	case US:
		return costs.USD
	case AU:
		return costs.AUD
	case UK:
		return costs.GBP
	case CA:
		return costs.CAD
	case DE:
		return costs.EUR
	case HK:
		return costs.HKD
	case MO:
		return costs.MOP
	case SG:
		return costs.SGD
	}
	return costs.USD
}

// Level is the degree level.
type Level string

const (
	Undergraduate Level = "undergraduate"
	Graduate      Level = "graduate"
)

func (l Level) Valid() bool { return l == Undergraduate || l == Graduate }

// DefaultDuration is the typical whole-program length in years for the level,
// used when no better figure is available. Never zero.
func (l Level) DefaultDuration() float64 {
	if l == Graduate {
		return 2
	}
	return 4
}

// Lifestyle selects the spending profile.
type Lifestyle string

const (
	Economy     Lifestyle = "economy"
	Standard    Lifestyle = "standard"
	Comfortable Lifestyle = "comfortable"
)

func (l Lifestyle) Valid() bool {
	return l == Economy || l == Standard || l == Comfortable
}

// Multiplier scales baseline living costs for the lifestyle.
func (l Lifestyle) Multiplier() float64 {
	switch l {
	case Economy:
		return 0.8
	case Comfortable:
		return 1.25
	}
	return 1.0
}

// Accommodation is the housing type.
type Accommodation string

const (
	Dormitory Accommodation = "dormitory"
	Shared    Accommodation = "shared"
	Studio    Accommodation = "studio"
	Apartment Accommodation = "apartment"
)

func (a Accommodation) Valid() bool {
	switch a {
	case Dormitory, Shared, Studio, Apartment:
		return true
	}
	return false
}

// LocationPreference selects city-centre or outside-centre pricing.
type LocationPreference string

const (
	CityCentre        LocationPreference = "cityCentre"
	OutsideCityCentre LocationPreference = "outsideCityCentre"
)

func (p LocationPreference) Valid() bool {
	return p == CityCentre || p == OutsideCityCentre
}

// Input is the immutable estimation request. Country, University, Program,
// Level, Lifestyle, Accommodation and LocationPreference are all required for
// a valid run; City, Diet and Transportation are optional refinements.
type Input struct {
	Country            Country            `json:"country" yaml:"country"`
	University         string             `json:"university" yaml:"university"`
	Program            string             `json:"program" yaml:"program"`
	Level              Level              `json:"level" yaml:"level"`
	Lifestyle          Lifestyle          `json:"lifestyle" yaml:"lifestyle"`
	Accommodation      Accommodation      `json:"accommodation" yaml:"accommodation"`
	LocationPreference LocationPreference `json:"locationPreference" yaml:"locationPreference"`

	City           string `json:"city,omitempty" yaml:"city,omitempty"`
	Diet           string `json:"diet,omitempty" yaml:"diet,omitempty"`
	Transportation string `json:"transportation,omitempty" yaml:"transportation,omitempty"`
}

// ValidationError aggregates every problem found in one pass so the caller
// can surface all of them at once instead of one at a time.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

// Validate checks the required fields and enum values. It returns a
// *ValidationError listing every problem, or nil when the input is complete.
func (in Input) Validate() error {
	var problems []string
	switch {
	case in.Country == "":
		problems = append(problems, "country is required")
	case !in.Country.Valid():
		problems = append(problems, fmt.Sprintf("unsupported country %q", string(in.Country)))
	}
	if strings.TrimSpace(in.University) == "" {
		problems = append(problems, "university is required")
	}
	if strings.TrimSpace(in.Program) == "" {
		problems = append(problems, "program is required")
	}
	switch {
	case in.Level == "":
		problems = append(problems, "level is required")
	case !in.Level.Valid():
		problems = append(problems, fmt.Sprintf("unknown level %q", string(in.Level)))
	}
	switch {
	case in.Lifestyle == "":
		problems = append(problems, "lifestyle is required")
	case !in.Lifestyle.Valid():
		problems = append(problems, fmt.Sprintf("unknown lifestyle %q", string(in.Lifestyle)))
	}
	switch {
	case in.Accommodation == "":
		problems = append(problems, "accommodation is required")
	case !in.Accommodation.Valid():
		problems = append(problems, fmt.Sprintf("unknown accommodation %q", string(in.Accommodation)))
	}
	switch {
	case in.LocationPreference == "":
		problems = append(problems, "locationPreference is required")
	case !in.LocationPreference.Valid():
		problems = append(problems, fmt.Sprintf("unknown locationPreference %q", string(in.LocationPreference)))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Load reads an estimation request from a YAML (or JSON, which YAML accepts)
// file. The request is parsed strictly so a typoed field name is an error
// rather than a silently ignored preference.
func Load(path string) (Input, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read request: %w", err)
	}
	return Parse(b)
}

// Parse decodes a request document.
func Parse(b []byte) (Input, error) {
	var in Input
	dec := yaml.NewDecoder(strings.NewReader(string(b)))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return Input{}, fmt.Errorf("parse request: %w", err)
	}
	return in, nil
}
