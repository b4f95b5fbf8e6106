package costs

import "testing"

func TestFormat_ThousandsSeparators(t *testing.T) {
	cases := []struct {
		c      Currency
		amount int
		want   string
	}{
		{USD, 45000, "$45,000"},
		{AUD, 1200, "A$1,200"},
		{GBP, 999, "£999"},
		{EUR, 1500000, "€1,500,000"},
		{HKD, 7500, "HK$7,500"},
	}
	for _, c := range cases {
		if got := Format(c.c, c.amount); got != c.want {
			t.Fatalf("Format(%s, %d) = %q, want %q", c.c, c.amount, got, c.want)
		}
	}
}

func TestFormatRange(t *testing.T) {
	got := FormatRange(USD, Range{Min: 1000, Max: 1500})
	if got != "$1,000 - $1,500" {
		t.Fatalf("got %q", got)
	}
}
