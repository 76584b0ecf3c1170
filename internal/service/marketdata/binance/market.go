package binance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/adshao/go-binance/v2"
	"github.com/samber/lo"
)

var _ marketdata.MarketService = (*MarketService)(nil)

// 24h ticker 批量查询单次最多携带的 symbol 数
const statsBatchSize = 100

type MarketService struct {
	cli        *binance.Client
	depthLimit int
}

// NewMarketService 创建行情服务, depthLimit 为盘口档数
func NewMarketService(cli *binance.Client, depthLimit int) *MarketService {
	if depthLimit <= 0 {
		depthLimit = 5
	}
	return &MarketService{cli: cli, depthLimit: depthLimit}
}

func (m *MarketService) Bars(ctx context.Context, code string, tf marketdata.Timeframe, count int) ([]marketdata.Bar, error) {
	interval, err := binanceInterval(tf)
	if err != nil {
		return nil, err
	}
	res, err := m.cli.NewKlinesService().Symbol(code).Interval(interval).Limit(count).Do(ctx)
	if err != nil {
		return nil, err
	}
	return convertKlines(res)
}

func (m *MarketService) Snapshot(ctx context.Context, code string) (marketdata.Snapshot, error) {
	stats, err := m.cli.NewListPriceChangeStatsService().Symbol(code).Do(ctx)
	if err != nil {
		return marketdata.Snapshot{}, err
	}
	if len(stats) == 0 || stats[0] == nil {
		return marketdata.Snapshot{}, marketdata.ErrNotFound
	}
	depth, err := m.cli.NewDepthService().Symbol(code).Limit(m.depthLimit).Do(ctx)
	if err != nil {
		return marketdata.Snapshot{}, err
	}
	bids := lo.Map(depth.Bids, func(item binance.Bid, index int) rawLevel {
		return rawLevel{Price: item.Price, Quantity: item.Quantity}
	})
	asks := lo.Map(depth.Asks, func(item binance.Ask, index int) rawLevel {
		return rawLevel{Price: item.Price, Quantity: item.Quantity}
	})
	return buildSnapshot(stats[0], bids, asks, time.Now())
}

// FullSnapshot 全市场快照只包含买一卖一, 按批次请求 24h 统计
func (m *MarketService) FullSnapshot(ctx context.Context, codes []string) (map[string]marketdata.Snapshot, error) {
	res := make(map[string]marketdata.Snapshot, len(codes))
	now := time.Now()
	err := m.eachStats(ctx, codes, func(stats *binance.PriceChangeStats) {
		snap, err := buildSnapshot(stats, nil, nil, now)
		if err != nil {
			slog.Warn("skip malformed ticker", "symbol", stats.Symbol, "error", err)
			return
		}
		res[stats.Symbol] = snap
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (m *MarketService) Quotes(ctx context.Context, codes []string) (map[string]marketdata.Quote, error) {
	res := make(map[string]marketdata.Quote, len(codes))
	err := m.eachStats(ctx, codes, func(stats *binance.PriceChangeStats) {
		q, err := buildQuote(stats)
		if err != nil {
			slog.Warn("skip malformed quote", "symbol", stats.Symbol, "error", err)
			return
		}
		res[stats.Symbol] = q
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (m *MarketService) eachStats(ctx context.Context, codes []string, fn func(stats *binance.PriceChangeStats)) error {
	codes = lo.Uniq(lo.Compact(codes))
	if len(codes) == 0 {
		return nil
	}
	batches := lo.Chunk(codes, statsBatchSize)
	var errs []error
	for _, batch := range batches {
		stats, err := m.cli.NewListPriceChangeStatsService().Symbols(batch).Do(ctx)
		if err != nil {
			// 单个批次失败不影响其它批次
			errs = append(errs, err)
			continue
		}
		for _, s := range stats {
			if s != nil {
				fn(s)
			}
		}
	}
	if len(errs) == len(batches) {
		return errors.Join(errs...)
	}
	if len(errs) > 0 {
		slog.Warn("partial ticker batches failed", "failed", len(errs), "error", errors.Join(errs...))
	}
	return nil
}
