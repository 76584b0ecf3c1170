package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KNICEX/market-monitor/internal/entity"
	"github.com/KNICEX/market-monitor/internal/repo"
)

// DefaultTickWindow tick 信号同一标的同一类型一分钟内只报一次
const DefaultTickWindow = time.Minute

// Gateway 信号去重与入库. 先查后写, 并发下的重复写入由唯一索引拒绝
type Gateway struct {
	signals   repo.SignalRepo
	watchlist repo.WatchlistRepo
	window    time.Duration
	now       func() time.Time
}

type GatewayOption func(g *Gateway)

func WithTickWindow(window time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.window = window
	}
}

func WithGatewayClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.now = now
	}
}

func NewGateway(signals repo.SignalRepo, watchlist repo.WatchlistRepo, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		signals:   signals,
		watchlist: watchlist,
		window:    DefaultTickWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit stores a novel signal and returns the alert to forward. accepted is
// false for duplicates. A non-nil error means the store is unavailable and the
// signal must be dropped for this cycle.
func (g *Gateway) Submit(ctx context.Context, sig Signal) (alert Alert, accepted bool, err error) {
	now := g.now()
	exists, err := g.exists(ctx, sig, now)
	if err != nil {
		return Alert{}, false, fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return Alert{}, false, nil
	}

	name, err := g.watchlist.DisplayName(ctx, sig.Code)
	if err != nil {
		return Alert{}, false, fmt.Errorf("lookup name: %w", err)
	}

	id, err := g.signals.Create(ctx, entity.Signal{
		Code:        sig.Code,
		Timeframe:   sig.Timeframe.ToString(),
		Kind:        sig.Kind.ToString(),
		BarTime:     sig.EventTime,
		Price:       sig.Price.String(),
		Description: sig.Description,
		CreatedAt:   now,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return Alert{}, false, nil
	}
	if err != nil {
		return Alert{}, false, fmt.Errorf("insert signal: %w", err)
	}

	return Alert{
		Id:          id,
		Code:        sig.Code,
		Name:        name,
		Timeframe:   sig.Timeframe.ToString(),
		Kind:        sig.Kind.ToString(),
		Price:       sig.Price,
		Description: sig.Description,
		EventTime:   sig.EventTime,
		Timestamp:   now,
	}, true, nil
}

func (g *Gateway) exists(ctx context.Context, sig Signal, now time.Time) (bool, error) {
	if sig.Timeframe.IsTick() {
		return g.signals.ExistsTickSince(ctx, sig.Code, sig.Kind.ToString(), now.Add(-g.window))
	}
	return g.signals.ExistsBar(ctx, sig.Code, sig.Timeframe.ToString(), sig.Kind.ToString(), sig.EventTime)
}
