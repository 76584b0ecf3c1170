package breadth

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bucket 涨跌幅分布区间
type Bucket string

const (
	BucketUpLimit   Bucket = "up_limit"
	BucketUp7To10   Bucket = "up_7_10"
	BucketUp5To7    Bucket = "up_5_7"
	BucketUp2To5    Bucket = "up_2_5"
	BucketUp0To2    Bucket = "up_0_2"
	BucketZero      Bucket = "zero"
	BucketDown0To2  Bucket = "down_0_2"
	BucketDown2To5  Bucket = "down_2_5"
	BucketDown5To7  Bucket = "down_5_7"
	BucketDown7To10 Bucket = "down_7_10"
	BucketDownLimit Bucket = "down_limit"
)

// Buckets 从涨停到跌停的展示顺序
var Buckets = []Bucket{
	BucketUpLimit, BucketUp7To10, BucketUp5To7, BucketUp2To5, BucketUp0To2,
	BucketZero,
	BucketDown0To2, BucketDown2To5, BucketDown5To7, BucketDown7To10, BucketDownLimit,
}

var (
	limitPct = decimal.RequireFromString("9.9")
	flatPct  = decimal.RequireFromString("0.01")
	seven    = decimal.NewFromInt(7)
	five     = decimal.NewFromInt(5)
	two      = decimal.NewFromInt(2)
)

// BucketOf 按涨跌幅(百分比)归入唯一区间
func BucketOf(pct decimal.Decimal) Bucket {
	switch {
	case pct.GreaterThanOrEqual(limitPct):
		return BucketUpLimit
	case pct.GreaterThanOrEqual(seven):
		return BucketUp7To10
	case pct.GreaterThanOrEqual(five):
		return BucketUp5To7
	case pct.GreaterThanOrEqual(two):
		return BucketUp2To5
	case pct.IsPositive():
		return BucketUp0To2
	case pct.IsZero():
		return BucketZero
	case pct.GreaterThan(two.Neg()):
		return BucketDown0To2
	case pct.GreaterThan(five.Neg()):
		return BucketDown2To5
	case pct.GreaterThan(seven.Neg()):
		return BucketDown5To7
	case pct.GreaterThan(limitPct.Neg()):
		return BucketDown7To10
	default:
		return BucketDownLimit
	}
}

type Counts struct {
	Up   int `json:"up"`
	Down int `json:"down"`
	Flat int `json:"flat"`
}

func (c Counts) Total() int {
	return c.Up + c.Down + c.Flat
}

// count |pct| <= 0.01 视为平盘
func (c *Counts) count(pct decimal.Decimal) {
	switch {
	case pct.GreaterThan(flatPct):
		c.Up++
	case pct.LessThan(flatPct.Neg()):
		c.Down++
	default:
		c.Flat++
	}
}

// Index 跟踪的指数, Sector 为其成分股所在板块
type Index struct {
	Code   string `mapstructure:"code"`
	Name   string `mapstructure:"name"`
	Sector string `mapstructure:"sector"`
}

// Leading 指数实际点位与成分股等权模拟点位的对比
type Leading struct {
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Actual    decimal.Decimal `json:"white"`
	Fair      decimal.Decimal `json:"yellow"`
	DiffPct   decimal.Decimal `json:"diff_pct"`
	Direction string          `json:"dir"`
	Signals   []string        `json:"signals"`
}

type Stats struct {
	Timestamp    time.Time      `json:"timestamp"`
	Distribution map[Bucket]int `json:"distribution"`
	Counts       Counts         `json:"counts"`
	Leading      []Leading      `json:"leading"`
}
