package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/KNICEX/market-monitor/internal/entity"
	"github.com/KNICEX/market-monitor/internal/repo"
	"github.com/KNICEX/market-monitor/internal/repo/sqlitetest"
	"github.com/KNICEX/market-monitor/internal/service/indicator"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestGateway(t *testing.T, clock *fakeClock) (*Gateway, repo.WatchlistRepo) {
	db := sqlitetest.Open(t)
	watchlist := repo.NewWatchlistRepo(db)
	return NewGateway(repo.NewSignalRepo(db), watchlist, WithGatewayClock(clock.Now)), watchlist
}

func TestGatewayBarSignal(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	gw, watchlist := newTestGateway(t, clock)
	require.NoError(t, watchlist.Create(ctx, entity.WatchedSymbol{Code: "BTCUSDT", Name: "Bitcoin"}))

	barTime := time.Date(2024, 3, 1, 9, 55, 0, 0, time.UTC)
	sig := Signal{
		Code:        "BTCUSDT",
		Timeframe:   marketdata.Timeframe5m,
		Kind:        indicator.KindTDBuy9,
		Price:       decimal.RequireFromString("61234.5"),
		EventTime:   barTime,
		Description: "5m TD buy 9",
	}

	alert, accepted, err := gw.Submit(ctx, sig)
	require.NoError(t, err)
	require.True(t, accepted)
	assert.Positive(t, alert.Id)
	assert.Equal(t, "Bitcoin", alert.Name)
	assert.Equal(t, "td_buy9", alert.Kind)
	assert.Equal(t, "5m", alert.Timeframe)
	assert.True(t, alert.Price.Equal(sig.Price))
	assert.Equal(t, clock.now, alert.Timestamp)

	// 同一根K线无论过多久都不再重复
	clock.Advance(time.Hour)
	_, accepted, err = gw.Submit(ctx, sig)
	require.NoError(t, err)
	assert.False(t, accepted)

	// 不同类型或不同K线是新信号
	other := sig
	other.Kind = indicator.KindTDSell9
	_, accepted, err = gw.Submit(ctx, other)
	require.NoError(t, err)
	assert.True(t, accepted)

	next := sig
	next.EventTime = barTime.Add(5 * time.Minute)
	_, accepted, err = gw.Submit(ctx, next)
	require.NoError(t, err)
	assert.True(t, accepted)
}

func TestGatewayTickWindow(t *testing.T) {
	testCases := []struct {
		name    string
		gap     time.Duration
		wantDup bool
	}{
		{name: "30s later", gap: 30 * time.Second, wantDup: true},
		{name: "just under a minute", gap: 59*time.Second + 999*time.Millisecond, wantDup: true},
		{name: "exactly a minute", gap: time.Minute},
		{name: "61s later", gap: 61 * time.Second},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
			gw, _ := newTestGateway(t, clock)

			_, accepted, err := gw.Submit(ctx, wallTick(clock.Now()))
			require.NoError(t, err)
			require.True(t, accepted)

			clock.Advance(tc.gap)
			_, accepted, err = gw.Submit(ctx, wallTick(clock.Now()))
			require.NoError(t, err)
			assert.Equal(t, !tc.wantDup, accepted)
		})
	}
}

func TestGatewayTickKindsIndependent(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	gw, _ := newTestGateway(t, clock)

	alert, accepted, err := gw.Submit(ctx, wallTick(clock.Now()))
	require.NoError(t, err)
	require.True(t, accepted)
	assert.Empty(t, alert.Name)

	clock.Advance(10 * time.Second)
	depth := wallTick(clock.Now())
	depth.Kind = indicator.KindDepth
	_, accepted, err = gw.Submit(ctx, depth)
	require.NoError(t, err)
	assert.True(t, accepted)

	other := wallTick(clock.Now())
	other.Code = "BTCUSDT"
	_, accepted, err = gw.Submit(ctx, other)
	require.NoError(t, err)
	assert.True(t, accepted)
}

func wallTick(now time.Time) Signal {
	return Signal{
		Code:        "ETHUSDT",
		Timeframe:   marketdata.TimeframeTick,
		Kind:        indicator.KindWall,
		Price:       decimal.RequireFromString("3000"),
		EventTime:   now,
		Description: "ask wall",
	}
}
