package decimalx

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Mean 算术平均, 空切片返回 0
func Mean(ds []decimal.Decimal) decimal.Decimal {
	if len(ds) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, ds...).Div(decimal.NewFromInt(int64(len(ds))))
}

// Floats converts every value with InexactFloat64.
func Floats(ds []decimal.Decimal) []float64 {
	res := make([]float64, len(ds))
	for i, d := range ds {
		res[i] = d.InexactFloat64()
	}
	return res
}

// PctChange returns (cur-base)/base*100. ok is false when base or cur is not positive.
func PctChange(cur, base decimal.Decimal) (pct decimal.Decimal, ok bool) {
	if !base.IsPositive() || !cur.IsPositive() {
		return decimal.Zero, false
	}
	return cur.Sub(base).Div(base).Mul(hundred), true
}
