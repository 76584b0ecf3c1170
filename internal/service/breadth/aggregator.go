package breadth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KNICEX/market-monitor/internal/metrics"
	"github.com/KNICEX/market-monitor/internal/schedule"
	"github.com/KNICEX/market-monitor/internal/service/indicator"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/KNICEX/market-monitor/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

type Config struct {
	Interval time.Duration
	// Universe 全市场板块名
	Universe   string
	Indices    []Index
	Timeframes []marketdata.Timeframe
	BarCount   int
}

func DefaultConfig() Config {
	return Config{
		Interval:   15 * time.Second,
		Universe:   "ALL",
		Timeframes: []marketdata.Timeframe{marketdata.Timeframe1m, marketdata.Timeframe5m},
		BarCount:   200,
	}
}

// Aggregator 定时统计全市场涨跌分布和指数领先对比. 板块成分首次解析后缓存
type Aggregator struct {
	provider marketdata.Provider
	cfg      Config
	now      func() time.Time

	sectorMu sync.Mutex
	sectors  map[string][]string

	mu    sync.RWMutex
	stats Stats
}

var _ schedule.Task = (*Aggregator)(nil)

func NewAggregator(provider marketdata.Provider, cfg Config) *Aggregator {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Universe == "" {
		cfg.Universe = def.Universe
	}
	if len(cfg.Timeframes) == 0 {
		cfg.Timeframes = def.Timeframes
	}
	if cfg.BarCount <= indicator.MinTDBars {
		cfg.BarCount = def.BarCount
	}
	return &Aggregator{
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
		sectors:  make(map[string][]string),
		stats:    emptyStats(time.Time{}),
	}
}

func (a *Aggregator) Name() string {
	return "breadth"
}

func (a *Aggregator) Interval() time.Duration {
	return a.cfg.Interval
}

// Stats returns the last successfully computed result.
func (a *Aggregator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// Run 计算一轮统计, 失败时保留上一轮结果
func (a *Aggregator) Run(ctx context.Context) error {
	stats, err := a.Compute(ctx)
	if err != nil {
		metrics.BreadthErrors.Inc()
		return err
	}
	a.mu.Lock()
	a.stats = stats
	a.mu.Unlock()

	metrics.BreadthCounts.WithLabelValues(DirectionUp).Set(float64(stats.Counts.Up))
	metrics.BreadthCounts.WithLabelValues(DirectionDown).Set(float64(stats.Counts.Down))
	metrics.BreadthCounts.WithLabelValues("flat").Set(float64(stats.Counts.Flat))
	slog.Debug("breadth updated", "up", stats.Counts.Up, "down", stats.Counts.Down,
		"flat", stats.Counts.Flat, "indices", len(stats.Leading))
	return nil
}

func (a *Aggregator) Compute(ctx context.Context) (Stats, error) {
	universe, err := a.members(ctx, a.cfg.Universe)
	if err != nil {
		return Stats{}, err
	}
	if len(universe) == 0 {
		return Stats{}, errors.New("breadth: empty universe")
	}
	snaps, err := a.provider.FullSnapshot(ctx, universe)
	if err != nil {
		return Stats{}, fmt.Errorf("breadth: full snapshot: %w", err)
	}

	stats := emptyStats(a.now())
	Distribute(snaps, stats.Distribution, &stats.Counts)
	stats.Leading = a.leading(ctx, snaps)
	return stats, nil
}

// Distribute 统计分布与涨跌家数, 价格或昨收缺失的标的不计入
func Distribute(snaps map[string]marketdata.Snapshot, dist map[Bucket]int, counts *Counts) {
	for _, snap := range snaps {
		pct, ok := decimalx.PctChange(snap.LastPrice, snap.PrevClose)
		if !ok {
			continue
		}
		counts.count(pct)
		dist[BucketOf(pct)]++
	}
}

// FairValue 昨收 * (1 + 成分股平均涨跌幅), 没有有效成分股时 ok 为 false
func FairValue(prevClose decimal.Decimal, members []string, snaps map[string]marketdata.Snapshot) (decimal.Decimal, bool) {
	pcts := make([]decimal.Decimal, 0, len(members))
	for _, code := range members {
		snap, ok := snaps[code]
		if !ok {
			continue
		}
		if pct, ok := decimalx.PctChange(snap.LastPrice, snap.PrevClose); ok {
			pcts = append(pcts, pct)
		}
	}
	if len(pcts) == 0 || !prevClose.IsPositive() {
		return decimal.Zero, false
	}
	ratio := decimalx.Mean(pcts).Div(decimal.NewFromInt(100))
	return prevClose.Mul(decimal.NewFromInt(1).Add(ratio)), true
}

func (a *Aggregator) leading(ctx context.Context, snaps map[string]marketdata.Snapshot) []Leading {
	if len(a.cfg.Indices) == 0 {
		return []Leading{}
	}
	codes := lo.Uniq(lo.Map(a.cfg.Indices, func(idx Index, _ int) string {
		return idx.Code
	}))
	idxSnaps, err := a.provider.FullSnapshot(ctx, codes)
	if err != nil {
		slog.Warn("breadth: failed to get index snapshot", "error", err)
		return []Leading{}
	}

	res := make([]Leading, 0, len(a.cfg.Indices))
	for _, idx := range a.cfg.Indices {
		members, err := a.members(ctx, idx.Sector)
		if err != nil {
			slog.Warn("breadth: skip index", "index", idx.Code, "error", err)
			continue
		}
		snap, ok := idxSnaps[idx.Code]
		if !ok || !snap.LastPrice.IsPositive() {
			continue
		}
		fair, ok := FairValue(snap.PrevClose, members, snaps)
		if !ok {
			continue
		}
		row := Leading{
			Name:      idx.Name,
			Code:      idx.Code,
			Actual:    snap.LastPrice.Round(2),
			Fair:      fair.Round(2),
			DiffPct:   fair.Sub(snap.LastPrice).Div(snap.LastPrice).Mul(decimal.NewFromInt(100)).Round(2),
			Direction: DirectionDown,
			Signals:   a.indexSignals(ctx, idx.Code),
		}
		if fair.GreaterThan(snap.LastPrice) {
			row.Direction = DirectionUp
		}
		res = append(res, row)
	}
	return res
}

// indexSignals 指数自身K线上的九转与背离, 只作展示不入库
func (a *Aggregator) indexSignals(ctx context.Context, code string) []string {
	signals := []string{}
	for _, tf := range a.cfg.Timeframes {
		bars, err := a.provider.Bars(ctx, code, tf, a.cfg.BarCount)
		if err != nil {
			slog.Debug("breadth: failed to get index bars", "index", code, "timeframe", tf, "error", err)
			continue
		}
		signals = append(signals, SignalLabels(tf, marketdata.StableBars(bars))...)
	}
	if len(signals) > 0 {
		slog.Info("index signals", "index", code, "signals", signals)
	}
	return signals
}

// SignalLabels 形如 "1m buy9", "5m bear-div"
func SignalLabels(tf marketdata.Timeframe, stable []marketdata.Bar) []string {
	if len(stable) < indicator.MinTDBars {
		return nil
	}
	var labels []string
	td := indicator.TDSequential(marketdata.Closes(stable))
	if td.Buy9 {
		labels = append(labels, fmt.Sprintf("%s buy9", tf))
	}
	if td.Sell9 {
		labels = append(labels, fmt.Sprintf("%s sell9", tf))
	}
	div := indicator.Divergence(stable)
	if div.Bullish {
		labels = append(labels, fmt.Sprintf("%s bull-div", tf))
	}
	if div.Bearish {
		labels = append(labels, fmt.Sprintf("%s bear-div", tf))
	}
	return labels
}

// members 板块成分在一个会话内视为不变, 解析成功后缓存
func (a *Aggregator) members(ctx context.Context, sector string) ([]string, error) {
	a.sectorMu.Lock()
	defer a.sectorMu.Unlock()
	if codes, ok := a.sectors[sector]; ok {
		return codes, nil
	}
	codes, err := a.provider.SectorMembers(ctx, sector)
	if err != nil {
		return nil, fmt.Errorf("breadth: sector %s members: %w", sector, err)
	}
	if len(codes) > 0 {
		a.sectors[sector] = codes
	}
	return codes, nil
}

func emptyStats(ts time.Time) Stats {
	dist := make(map[Bucket]int, len(Buckets))
	for _, b := range Buckets {
		dist[b] = 0
	}
	return Stats{
		Timestamp:    ts,
		Distribution: dist,
		Leading:      []Leading{},
	}
}
