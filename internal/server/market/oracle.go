// Package market simulates market prices for asset codes.
package market

import (
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	basePriceOffset = decimal.NewFromInt(5)
	minPrice        = decimal.RequireFromString("0.01")
	maxVariation    = 0.15
)

// PriceOracle возвращает текущую цену актива по коду
type PriceOracle interface {
	PriceFor(code string) decimal.Decimal
}

// Oracle derives a stable base price from the asset code and perturbs it
// by up to ±15% on every call.
type Oracle struct {
	rnd *rand.Rand
	mu  sync.Mutex
}

// NewOracle creates an oracle seeded from the runtime.
func NewOracle() *Oracle {
	return NewOracleWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewOracleWithSource creates an oracle over src, for reproducible prices.
func NewOracleWithSource(src rand.Source) *Oracle {
	return &Oracle{rnd: rand.New(src)}
}

// BasePrice is 5 + (sum of the code's runes mod 200).
func BasePrice(code string) decimal.Decimal {
	var sum int64
	for _, r := range code {
		sum += int64(r)
	}
	return basePriceOffset.Add(decimal.NewFromInt(sum % 200))
}

// PriceFor returns the simulated price rounded to two decimals, never below 0.01.
func (o *Oracle) PriceFor(code string) decimal.Decimal {
	base := BasePrice(code)

	o.mu.Lock()
	// равномерно в [-0.15, 0.15)
	factor := (o.rnd.Float64()*2 - 1) * maxVariation
	o.mu.Unlock()

	price := base.Add(base.Mul(decimal.NewFromFloat(factor))).Round(2)
	if price.LessThan(minPrice) {
		return minPrice
	}
	return price
}

// FixedPrices is a PriceOracle over a static table. Unknown codes fall back to BasePrice.
type FixedPrices map[string]decimal.Decimal

func (f FixedPrices) PriceFor(code string) decimal.Decimal {
	if p, ok := f[code]; ok {
		return p
	}
	return BasePrice(code)
}
