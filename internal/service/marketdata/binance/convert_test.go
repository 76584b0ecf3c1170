package binance

import (
	"errors"
	"testing"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/KNICEX/market-monitor/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertKlines(t *testing.T) {
	bars, err := convertKlines([]*binance.Kline{
		{OpenTime: 1700000000000, Open: "1.0", High: "2.0", Low: "0.5", Close: "1.5", Volume: "100"},
		nil,
		{OpenTime: 1700000060000, Open: "1.5", High: "1.6", Low: "1.4", Close: "1.55", Volume: "80"},
	})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.UnixMilli(1700000000000), bars[0].Time)
	assert.True(t, decimalx.MustFromString("1.55").Equal(bars[1].Close))

	_, err = convertKlines([]*binance.Kline{{Open: "x"}})
	assert.Error(t, err)
}

func TestBuildSnapshot(t *testing.T) {
	stats := &binance.PriceChangeStats{
		Symbol:         "BTCUSDT",
		LastPrice:      "100",
		LastQty:        "3",
		PrevClosePrice: "98",
		BidPrice:       "99.9",
		BidQty:         "1",
		AskPrice:       "100.1",
		AskQty:         "2",
	}

	t.Run("depth levels", func(t *testing.T) {
		snap, err := buildSnapshot(stats,
			[]rawLevel{{"99.9", "1"}, {"99.8", "888"}},
			[]rawLevel{{"100.1", "2"}},
			time.Now())
		require.NoError(t, err)
		assert.Equal(t, "BTCUSDT", snap.Code)
		assert.Len(t, snap.BidVolume, 2)
		assert.True(t, decimalx.MustFromString("888").Equal(snap.BidVolume[1]))
		assert.True(t, decimalx.MustFromString("98").Equal(snap.PrevClose))
	})

	t.Run("fallback to best quotes", func(t *testing.T) {
		snap, err := buildSnapshot(stats, nil, nil, time.Now())
		require.NoError(t, err)
		assert.Len(t, snap.BidPrice, 1)
		assert.Len(t, snap.AskPrice, 1)
		assert.True(t, decimalx.MustFromString("100.1").Equal(snap.AskPrice[0]))
	})

	t.Run("malformed", func(t *testing.T) {
		bad := *stats
		bad.LastPrice = ""
		_, err := buildSnapshot(&bad, nil, nil, time.Now())
		assert.Error(t, err)
	})
}

func TestBinanceInterval(t *testing.T) {
	iv, err := binanceInterval(marketdata.Timeframe1mon)
	require.NoError(t, err)
	assert.Equal(t, "1M", iv)

	iv, err = binanceInterval(marketdata.Timeframe15m)
	require.NoError(t, err)
	assert.Equal(t, "15m", iv)

	_, err = binanceInterval(marketdata.TimeframeTick)
	assert.True(t, errors.Is(err, marketdata.ErrUnsupportedTimeframe))
}

func TestBuildQuote(t *testing.T) {
	q, err := buildQuote(&binance.PriceChangeStats{Symbol: "ETHUSDT", LastPrice: "2000", PriceChangePercent: "1.234"})
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", q.Code)
	assert.True(t, decimalx.MustFromString("1.23").Equal(q.ChangePct))
}
