package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound             = errors.New("marketdata: not found")
	ErrUnsupportedTimeframe = errors.New("marketdata: unsupported timeframe")
	ErrMalformedSnapshot    = errors.New("marketdata: malformed snapshot")
)

// Timeframe K线周期, 或者逐笔 tick
type Timeframe string

func (t Timeframe) ToString() string {
	return string(t)
}

func (t Timeframe) IsTick() bool {
	return t == TimeframeTick
}

const (
	TimeframeTick Timeframe = "tick"
	Timeframe1m   Timeframe = "1m"
	Timeframe5m   Timeframe = "5m"
	Timeframe15m  Timeframe = "15m"
	Timeframe30m  Timeframe = "30m"
	Timeframe1h   Timeframe = "1h"
	Timeframe1d   Timeframe = "1d"
	Timeframe1w   Timeframe = "1w"
	Timeframe1mon Timeframe = "1mon"
)

var supportedTimeframes = map[Timeframe]struct{}{
	TimeframeTick: {},
	Timeframe1m:   {},
	Timeframe5m:   {},
	Timeframe15m:  {},
	Timeframe30m:  {},
	Timeframe1h:   {},
	Timeframe1d:   {},
	Timeframe1w:   {},
	Timeframe1mon: {},
}

// ParseTimeframe validates a configured timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.TrimSpace(s))
	if _, ok := supportedTimeframes[tf]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTimeframe, s)
	}
	return tf, nil
}

// Bar 一根K线, Time 为开盘时间
type Bar struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// StableBars drops the trailing provisional bar of a live feed.
func StableBars(bars []Bar) []Bar {
	if len(bars) == 0 {
		return nil
	}
	return bars[:len(bars)-1]
}

func Closes(bars []Bar) []float64 {
	res := make([]float64, len(bars))
	for i, b := range bars {
		res[i] = b.Close.InexactFloat64()
	}
	return res
}

func Opens(bars []Bar) []float64 {
	res := make([]float64, len(bars))
	for i, b := range bars {
		res[i] = b.Open.InexactFloat64()
	}
	return res
}

// Level 盘口一档
type Level struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
}

// Snapshot 盘口快照, 档位从优到劣排列, 成交量单位为手
type Snapshot struct {
	Code       string
	LastPrice  decimal.Decimal
	LastVolume decimal.Decimal
	PrevClose  decimal.Decimal
	BidPrice   []decimal.Decimal
	BidVolume  []decimal.Decimal
	AskPrice   []decimal.Decimal
	AskVolume  []decimal.Decimal
	Time       time.Time
}

// NewSnapshot builds a snapshot from per-side ladders so that price and volume
// arrays always have the same length. Negative values are rejected.
func NewSnapshot(code string, last, lastVol, prevClose decimal.Decimal, bids, asks []Level, ts time.Time) (Snapshot, error) {
	if last.IsNegative() || lastVol.IsNegative() || prevClose.IsNegative() {
		return Snapshot{}, fmt.Errorf("%w: %s negative last trade", ErrMalformedSnapshot, code)
	}
	snap := Snapshot{
		Code:       code,
		LastPrice:  last,
		LastVolume: lastVol,
		PrevClose:  prevClose,
		BidPrice:   make([]decimal.Decimal, 0, len(bids)),
		BidVolume:  make([]decimal.Decimal, 0, len(bids)),
		AskPrice:   make([]decimal.Decimal, 0, len(asks)),
		AskVolume:  make([]decimal.Decimal, 0, len(asks)),
		Time:       ts,
	}
	for _, l := range bids {
		if l.Price.IsNegative() || l.Volume.IsNegative() {
			return Snapshot{}, fmt.Errorf("%w: %s negative bid level", ErrMalformedSnapshot, code)
		}
		snap.BidPrice = append(snap.BidPrice, l.Price)
		snap.BidVolume = append(snap.BidVolume, l.Volume)
	}
	for _, l := range asks {
		if l.Price.IsNegative() || l.Volume.IsNegative() {
			return Snapshot{}, fmt.Errorf("%w: %s negative ask level", ErrMalformedSnapshot, code)
		}
		snap.AskPrice = append(snap.AskPrice, l.Price)
		snap.AskVolume = append(snap.AskVolume, l.Volume)
	}
	return snap, nil
}

// Instrument 标的代码与名称
type Instrument struct {
	Code string
	Name string
}

// Quote 实时价格与涨跌幅(百分比)
type Quote struct {
	Code      string
	Price     decimal.Decimal
	ChangePct decimal.Decimal
}

// MarketService 行情数据. 空结果是正常情况, 不是错误
type MarketService interface {
	Bars(ctx context.Context, code string, tf Timeframe, count int) ([]Bar, error)
	// Snapshot returns ErrNotFound when the provider has no book for code.
	Snapshot(ctx context.Context, code string) (Snapshot, error)
	FullSnapshot(ctx context.Context, codes []string) (map[string]Snapshot, error)
	Quotes(ctx context.Context, codes []string) (map[string]Quote, error)
}

type SymbolService interface {
	// Resolve maps user input (code or name) to an instrument, ErrNotFound if unknown.
	Resolve(ctx context.Context, text string) (Instrument, error)
	SectorMembers(ctx context.Context, sector string) ([]string, error)
}

type Provider interface {
	MarketService
	SymbolService
}
