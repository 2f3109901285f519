package market

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBasePrice(t *testing.T) {
	tests := []struct {
		code string
		want int64
	}{
		{code: "", want: 5},
		{code: "A", want: 70},              // 65
		{code: "AAPL", want: 5 + 286%200},  // 65+65+80+76
		{code: "GOOGL", want: 5 + 376%200}, // 71+79+79+71+76
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.True(t, decimal.NewFromInt(tt.want).Equal(BasePrice(tt.code)), "got %s", BasePrice(tt.code))
		})
	}
}

func TestOracle_PriceFor(t *testing.T) {
	oracle := NewOracleWithSource(rand.NewPCG(1, 2))

	for _, code := range []string{"AAPL", "GOOGL", "MSFT", "X", "VTSAX"} {
		base := BasePrice(code)
		low := base.Mul(decimal.RequireFromString("0.85")).Round(2)
		high := base.Mul(decimal.RequireFromString("1.15")).Round(2)

		for i := 0; i < 200; i++ {
			price := oracle.PriceFor(code)
			assert.True(t, price.GreaterThanOrEqual(low), "%s: %s below %s", code, price, low)
			assert.True(t, price.LessThanOrEqual(high), "%s: %s above %s", code, price, high)
			assert.LessOrEqual(t, -price.Exponent(), int32(2), "%s: %s has more than two decimals", code, price)
			assert.True(t, price.GreaterThanOrEqual(minPrice))
		}
	}
}

func TestOracle_Reproducible(t *testing.T) {
	a := NewOracleWithSource(rand.NewPCG(7, 7))
	b := NewOracleWithSource(rand.NewPCG(7, 7))

	for i := 0; i < 10; i++ {
		assert.True(t, a.PriceFor("AAPL").Equal(b.PriceFor("AAPL")))
	}
}

func TestFixedPrices(t *testing.T) {
	prices := FixedPrices{"AAPL": decimal.RequireFromString("155.25")}

	assert.True(t, decimal.RequireFromString("155.25").Equal(prices.PriceFor("AAPL")))
	assert.True(t, BasePrice("MSFT").Equal(prices.PriceFor("MSFT")))
}
