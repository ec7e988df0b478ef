package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeLine(t *testing.T) {
	cases := []struct {
		name                string
		price, tax, qty     string
		wantSub, wantTax    string
	}{
		{"taxed line", "10.00", "13", "2", "20.00", "2.60"},
		{"untaxed line", "5.50", "0", "3", "16.50", "0"},
		{"fractional qty", "1.25", "13", "0.5", "0.625", "0.08125"},
		{"zero price", "0", "13", "4", "0", "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sub, tax := ComputeLine(dec(c.price), dec(c.tax), dec(c.qty))
			assert.True(t, sub.Equal(dec(c.wantSub)), "subtotal %s", sub)
			assert.True(t, tax.Equal(dec(c.wantTax)), "tax %s", tax)
		})
	}
}

// Accumulating many exact decimal lines must not drift the way binary floats do.
func TestAccumulationStaysExact(t *testing.T) {
	price, rate, qty := dec("0.10"), dec("13"), dec("1")
	var sub, tax decimal.Decimal
	for i := 0; i < 1000; i++ {
		s, tx := ComputeLine(price, rate, qty)
		sub = sub.Add(s)
		tax = tax.Add(tx)
	}
	require.True(t, sub.Equal(dec("100.00")), "subtotal %s", sub)
	require.True(t, tax.Equal(dec("13.00")), "tax %s", tax)
}

// The documented reference case: subtotal 36.50, tax 2.60, total 39.10.
func TestReferenceTotals(t *testing.T) {
	s1, t1 := ComputeLine(dec("10.00"), dec("13"), dec("2"))
	s2, t2 := ComputeLine(dec("5.50"), dec("0"), dec("3"))
	sub := s1.Add(s2)
	tax := t1.Add(t2)
	assert.Equal(t, "36.50", sub.Round(2).StringFixed(2))
	assert.Equal(t, "2.60", tax.Round(2).StringFixed(2))
	assert.Equal(t, "39.10", sub.Add(tax).Round(2).StringFixed(2))
}
