package declaration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name     string
		income   float64
		expenses float64
		want     float64
	}{
		{name: "regular base", income: 1000, expenses: 400, want: 114.00},
		{name: "negative base clamps to zero", income: 0, expenses: 500, want: 0},
		{name: "zero everything", income: 0, expenses: 0, want: 0},
		{name: "expenses equal income", income: 1200, expenses: 1200, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Estimate(tt.income, tt.expenses), 1e-9)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain number", input: "1500.50", want: 1500.50},
		{name: "comma decimal separator", input: "1500,50", want: 1500.50},
		{name: "surrounding whitespace", input: "  42  ", want: 42},
		{name: "empty input is zero", input: "", want: 0},
		{name: "garbage is zero", input: "abc", want: 0},
		{name: "negative is zero", input: "-10", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseAmount(tt.input), 1e-9)
		})
	}
}
