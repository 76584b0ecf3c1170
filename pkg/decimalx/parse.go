package decimalx

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func MustFromString(s string) decimal.Decimal {
	res, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return res
}

// ParseAll 按顺序解析, 任意一个失败即返回错误
func ParseAll(ss ...string) ([]decimal.Decimal, error) {
	res := make([]decimal.Decimal, len(ss))
	for i, s := range ss {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("parse decimal %q: %w", s, err)
		}
		res[i] = d
	}
	return res, nil
}
