package binance

import (
	"fmt"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/KNICEX/market-monitor/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
)

// rawLevel 原始盘口档位, 价格与数量均为字符串
type rawLevel struct {
	Price    string
	Quantity string
}

func convertKlines(klines []*binance.Kline) ([]marketdata.Bar, error) {
	bars := make([]marketdata.Bar, 0, len(klines))
	for _, k := range klines {
		if k == nil {
			continue
		}
		vals, err := decimalx.ParseAll(k.Open, k.High, k.Low, k.Close, k.Volume)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", k.OpenTime, err)
		}
		bars = append(bars, marketdata.Bar{
			Time:   time.UnixMilli(k.OpenTime),
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return bars, nil
}

func convertLevels(raw []rawLevel) ([]marketdata.Level, error) {
	levels := make([]marketdata.Level, 0, len(raw))
	for _, l := range raw {
		vals, err := decimalx.ParseAll(l.Price, l.Quantity)
		if err != nil {
			return nil, err
		}
		levels = append(levels, marketdata.Level{Price: vals[0], Volume: vals[1]})
	}
	return levels, nil
}

// buildSnapshot 使用24h统计补全最新成交与昨收, 盘口档位来自深度接口;
// 未提供深度时退化为统计中的买一卖一
func buildSnapshot(stats *binance.PriceChangeStats, bids, asks []rawLevel, ts time.Time) (marketdata.Snapshot, error) {
	vals, err := decimalx.ParseAll(stats.LastPrice, stats.LastQty, stats.PrevClosePrice)
	if err != nil {
		return marketdata.Snapshot{}, fmt.Errorf("%s stats: %w", stats.Symbol, err)
	}
	if bids == nil && stats.BidPrice != "" {
		bids = []rawLevel{{Price: stats.BidPrice, Quantity: stats.BidQty}}
	}
	if asks == nil && stats.AskPrice != "" {
		asks = []rawLevel{{Price: stats.AskPrice, Quantity: stats.AskQty}}
	}
	bidLevels, err := convertLevels(bids)
	if err != nil {
		return marketdata.Snapshot{}, fmt.Errorf("%s bids: %w", stats.Symbol, err)
	}
	askLevels, err := convertLevels(asks)
	if err != nil {
		return marketdata.Snapshot{}, fmt.Errorf("%s asks: %w", stats.Symbol, err)
	}
	return marketdata.NewSnapshot(stats.Symbol, vals[0], vals[1], vals[2], bidLevels, askLevels, ts)
}

func buildQuote(stats *binance.PriceChangeStats) (marketdata.Quote, error) {
	vals, err := decimalx.ParseAll(stats.LastPrice, stats.PriceChangePercent)
	if err != nil {
		return marketdata.Quote{}, fmt.Errorf("%s quote: %w", stats.Symbol, err)
	}
	return marketdata.Quote{
		Code:      stats.Symbol,
		Price:     vals[0],
		ChangePct: vals[1].Round(2),
	}, nil
}

// binanceInterval 将周期转换为币安 K 线 interval
func binanceInterval(tf marketdata.Timeframe) (string, error) {
	switch tf {
	case marketdata.Timeframe1m, marketdata.Timeframe5m, marketdata.Timeframe15m, marketdata.Timeframe30m,
		marketdata.Timeframe1h, marketdata.Timeframe1d, marketdata.Timeframe1w:
		return tf.ToString(), nil
	case marketdata.Timeframe1mon:
		return "1M", nil
	default:
		return "", fmt.Errorf("%w: %s has no kline interval", marketdata.ErrUnsupportedTimeframe, tf)
	}
}
