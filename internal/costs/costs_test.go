package costs

import "testing"

func TestRound_HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{2.5, 3},
		{2.4, 2},
		{-2.5, -3},
		{0, 0},
		{5333.333, 5333},
	}
	for _, c := range cases {
		if got := Round(c.in); got != c.want {
			t.Fatalf("Round(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRangeAround_Symmetric(t *testing.T) {
	r := RangeAround(1000, 0.2)
	if r.Min != 800 || r.Max != 1200 {
		t.Fatalf("got %+v, want [800,1200]", r)
	}
}

func TestBand_TenPercent(t *testing.T) {
	r := Band(64000)
	if r.Min != 57600 || r.Max != 70400 {
		t.Fatalf("got %+v, want [57600,70400]", r)
	}
	if !r.Contains(64000) {
		t.Fatalf("band must contain its centre amount")
	}
}

func TestRange_ScaleAndMid(t *testing.T) {
	r := Range{Min: 1000, Max: 1500}
	if got := r.Scale(0.7); got.Min != 700 || got.Max != 1050 {
		t.Fatalf("Scale(0.7) = %+v", got)
	}
	if got := r.Scale(0.5); got.Min != 500 || got.Max != 750 {
		t.Fatalf("Scale(0.5) = %+v", got)
	}
	if got := r.Mid(); got != 1250 {
		t.Fatalf("Mid() = %d, want 1250", got)
	}
}

func TestLivingFigure_Clamp(t *testing.T) {
	f := LivingFigure{Amount: 2000, Range: Range{Min: 900, Max: 1200}}.Clamp()
	if f.Amount != 1200 {
		t.Fatalf("amount above range should clamp to max, got %d", f.Amount)
	}
	f = LivingFigure{Amount: 500, Range: Range{Min: 900, Max: 1200}}.Clamp()
	if f.Amount != 900 {
		t.Fatalf("amount below range should clamp to min, got %d", f.Amount)
	}
	// Inverted bounds are repaired before clamping.
	f = LivingFigure{Amount: 1000, Range: Range{Min: 1200, Max: 900}}.Clamp()
	if f.Range.Min != 900 || f.Range.Max != 1200 || f.Amount != 1000 {
		t.Fatalf("inverted range not repaired: %+v", f)
	}
}

func TestLivingCosts_MonthlyTotal(t *testing.T) {
	l := LivingCosts{
		Total:         Estimate{Amount: 1014},
		Accommodation: AccommodationCost{MonthlyRange: Range{Min: 400, Max: 600}},
	}
	if got := l.MonthlyTotal(); got != 1514 {
		t.Fatalf("MonthlyTotal() = %d, want 1514", got)
	}
}

func TestOtherCosts_OneTimeTotal(t *testing.T) {
	o := OtherCosts{
		ApplicationFee: FeeItem{Amount: 100},
		VisaFee:        FeeItem{Amount: 350},
	}
	if got := o.OneTimeTotal(); got != 450 {
		t.Fatalf("without insurance: got %d, want 450", got)
	}
	o.HealthInsurance = &FeeItem{Amount: 2500}
	if got := o.OneTimeTotal(); got != 2950 {
		t.Fatalf("with insurance: got %d, want 2950", got)
	}
}
