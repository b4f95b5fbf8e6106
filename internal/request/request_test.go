package request

import (
	"strings"
	"testing"

	"github.com/Raymond2967/faircost/internal/costs"
)

func validInput() Input {
	return Input{
		Country:            US,
		University:         "Stanford University",
		Program:            "MS Computer Science",
		Level:              Graduate,
		Lifestyle:          Standard,
		Accommodation:      Shared,
		LocationPreference: OutsideCityCentre,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validInput().Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	err := Input{}.Validate()
	if err == nil {
		t.Fatal("expected validation error for empty input")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	// Every required field must be reported in the single pass.
	if len(ve.Problems) != 7 {
		t.Fatalf("expected 7 problems, got %d: %v", len(ve.Problems), ve.Problems)
	}
	for _, want := range []string{"country", "university", "program", "level", "lifestyle", "accommodation", "locationPreference"} {
		found := false
		for _, p := range ve.Problems {
			if strings.Contains(p, want) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing problem for %q in %v", want, ve.Problems)
		}
	}
}

func TestValidate_UnknownEnumValues(t *testing.T) {
	in := validInput()
	in.Country = "FR"
	in.Lifestyle = "luxury"
	err := in.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, `unsupported country "FR"`) {
		t.Fatalf("missing country problem: %v", msg)
	}
	if !strings.Contains(msg, `unknown lifestyle "luxury"`) {
		t.Fatalf("missing lifestyle problem: %v", msg)
	}
}

func TestCountry_Currency(t *testing.T) {
	cases := map[Country]costs.Currency{
		US: costs.USD, AU: costs.AUD, UK: costs.GBP, CA: costs.CAD,
		DE: costs.EUR, HK: costs.HKD, MO: costs.MOP, SG: costs.SGD,
	}
	for c, want := range cases {
		if got := c.Currency(); got != want {
			t.Fatalf("%s.Currency() = %s, want %s", c, got, want)
		}
	}
}

func TestLevel_DefaultDuration(t *testing.T) {
	if Undergraduate.DefaultDuration() != 4 {
		t.Fatal("undergraduate default duration must be 4 years")
	}
	if Graduate.DefaultDuration() != 2 {
		t.Fatal("graduate default duration must be 2 years")
	}
}

func TestLifestyle_Multiplier(t *testing.T) {
	cases := map[Lifestyle]float64{Economy: 0.8, Standard: 1.0, Comfortable: 1.25}
	for l, want := range cases {
		if got := l.Multiplier(); got != want {
			t.Fatalf("%s.Multiplier() = %v, want %v", l, got, want)
		}
	}
}

func TestParse_YAML(t *testing.T) {
	doc := `
country: AU
university: University of Melbourne
program: Master of Engineering
level: graduate
lifestyle: economy
accommodation: shared
locationPreference: cityCentre
city: Melbourne
`
	in, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if in.Country != AU || in.City != "Melbourne" || in.Lifestyle != Economy {
		t.Fatalf("unexpected input: %+v", in)
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("parsed input should validate: %v", err)
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	doc := "country: US\nuniverzity: typo\n"
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParse_AcceptsJSON(t *testing.T) {
	doc := `{"country":"US","university":"Stanford University","program":"MS CS","level":"graduate","lifestyle":"standard","accommodation":"dormitory","locationPreference":"outsideCityCentre"}`
	in, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if in.Accommodation != Dormitory {
		t.Fatalf("unexpected accommodation: %q", in.Accommodation)
	}
}
