package indicator

import (
	"testing"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levels(pv ...float64) []marketdata.Level {
	res := make([]marketdata.Level, 0, len(pv)/2)
	for i := 0; i+1 < len(pv); i += 2 {
		res = append(res, marketdata.Level{Price: decimal.NewFromFloat(pv[i]), Volume: decimal.NewFromFloat(pv[i+1])})
	}
	return res
}

func mustSnapshot(t *testing.T, last, lastVol float64, bids, asks []marketdata.Level) marketdata.Snapshot {
	t.Helper()
	snap, err := marketdata.NewSnapshot("000001.SZ", decimal.NewFromFloat(last), decimal.NewFromFloat(lastVol),
		decimal.NewFromFloat(last), bids, asks, time.Now())
	require.NoError(t, err)
	return snap
}

func kinds(signals []DepthSignal) []Kind {
	res := make([]Kind, 0, len(signals))
	for _, s := range signals {
		res = append(res, s.Kind)
	}
	return res
}

func TestDetectDepth_RoundNumbers(t *testing.T) {
	cfg := DefaultDepthConfig()

	t.Run("level two bid", func(t *testing.T) {
		snap := mustSnapshot(t, 10, 1,
			levels(10.00, 100, 9.99, 888, 9.98, 120),
			levels(10.01, 100, 10.02, 130, 10.03, 110))
		signals := DetectDepth(snap, cfg)
		require.Len(t, signals, 1)
		assert.Equal(t, KindDepth, signals[0].Kind)
		assert.Equal(t, SideBid, signals[0].Side)
		assert.Equal(t, 2, signals[0].Level)
		assert.True(t, decimal.NewFromFloat(9.99).Equal(signals[0].Price))
	})

	t.Run("best bid ignored", func(t *testing.T) {
		snap := mustSnapshot(t, 10, 1,
			levels(10.00, 888, 9.99, 100, 9.98, 120),
			levels(10.01, 100, 10.02, 130, 10.03, 110))
		assert.Empty(t, DetectDepth(snap, cfg))
	})

	t.Run("best bid included when min level is zero", func(t *testing.T) {
		snap := mustSnapshot(t, 10, 1,
			levels(10.00, 888, 9.99, 100),
			levels(10.01, 100, 10.02, 130))
		c := cfg
		c.MinLevel = 0
		signals := DetectDepth(snap, c)
		require.Len(t, signals, 1)
		assert.Equal(t, 1, signals[0].Level)
	})

	t.Run("fractional volume truncates", func(t *testing.T) {
		snap := mustSnapshot(t, 10, 1,
			levels(10.00, 100, 9.99, 100),
			levels(10.01, 100, 10.02, 777.6))
		signals := DetectDepth(snap, cfg)
		require.Len(t, signals, 1)
		assert.Equal(t, SideAsk, signals[0].Side)
	})
}

func TestDetectDepth_Wall(t *testing.T) {
	cfg := DefaultDepthConfig()
	// 10 档合计 1000, 均量 100, 600 为均量 6 倍;
	// 最新成交 100 > 均量一半; 卖一 10.2 相对成交价 10 价差 2%
	bids := levels(9.99, 60, 9.98, 60, 9.97, 60, 9.96, 60, 9.95, 60)
	asks := levels(10.2, 30, 10.21, 30, 10.22, 600, 10.23, 20, 10.24, 20)

	snap := mustSnapshot(t, 10, 100, bids, asks)
	signals := DetectDepth(snap, cfg)
	walls := 0
	for _, s := range signals {
		if s.Kind == KindWall {
			walls++
			assert.Equal(t, 3, s.Level)
			assert.True(t, decimal.NewFromFloat(10.22).Equal(s.Price))
			assert.Contains(t, s.Description, "6.0x")
			assert.Contains(t, s.Description, "2.0%")
		}
	}
	assert.Equal(t, 1, walls)

	// 价差降到阈值以下, 其它条件不变
	narrowAsks := levels(10.05, 30, 10.21, 30, 10.22, 600, 10.23, 20, 10.24, 20)
	snap = mustSnapshot(t, 10, 100, bids, narrowAsks)
	assert.NotContains(t, kinds(DetectDepth(snap, cfg)), KindWall)
}

func TestDetectDepth_PreBreakout(t *testing.T) {
	cfg := DefaultDepthConfig()
	bids := levels(9.8, 10, 9.7, 10)
	asks := levels(10.2, 10, 10.3, 10)

	snap := mustSnapshot(t, 10, 60, bids, asks)
	signals := DetectDepth(snap, cfg)
	assert.Contains(t, kinds(signals), KindDivergence)

	snap = mustSnapshot(t, 10, 50, bids, asks)
	assert.NotContains(t, kinds(DetectDepth(snap, cfg)), KindDivergence)

	// 卖一低于成交价时价差为负
	snap = mustSnapshot(t, 10, 60, bids, levels(9.5, 10))
	assert.NotContains(t, kinds(DetectDepth(snap, cfg)), KindDivergence)
}

func TestDetectDepth_EmptyBook(t *testing.T) {
	snap := mustSnapshot(t, 0, 0, nil, nil)
	assert.Empty(t, DetectDepth(snap, DefaultDepthConfig()))
}
