package breadth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Bars(ctx context.Context, code string, tf marketdata.Timeframe, count int) ([]marketdata.Bar, error) {
	args := m.Called(ctx, code, tf, count)
	return args.Get(0).([]marketdata.Bar), args.Error(1)
}

func (m *MockProvider) Snapshot(ctx context.Context, code string) (marketdata.Snapshot, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(marketdata.Snapshot), args.Error(1)
}

func (m *MockProvider) FullSnapshot(ctx context.Context, codes []string) (map[string]marketdata.Snapshot, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).(map[string]marketdata.Snapshot), args.Error(1)
}

func (m *MockProvider) Quotes(ctx context.Context, codes []string) (map[string]marketdata.Quote, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).(map[string]marketdata.Quote), args.Error(1)
}

func (m *MockProvider) Resolve(ctx context.Context, text string) (marketdata.Instrument, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(marketdata.Instrument), args.Error(1)
}

func (m *MockProvider) SectorMembers(ctx context.Context, sector string) ([]string, error) {
	args := m.Called(ctx, sector)
	return args.Get(0).([]string), args.Error(1)
}

func snap(prevClose, last string) marketdata.Snapshot {
	return marketdata.Snapshot{
		PrevClose: decimal.RequireFromString(prevClose),
		LastPrice: decimal.RequireFromString(last),
	}
}

func TestBucketOf(t *testing.T) {
	testCases := []struct {
		pct  string
		want Bucket
	}{
		{pct: "10", want: BucketUpLimit},
		{pct: "9.9", want: BucketUpLimit},
		{pct: "9.89", want: BucketUp7To10},
		{pct: "7", want: BucketUp7To10},
		{pct: "5", want: BucketUp5To7},
		{pct: "2", want: BucketUp2To5},
		{pct: "1.99", want: BucketUp0To2},
		{pct: "0.005", want: BucketUp0To2},
		{pct: "0", want: BucketZero},
		{pct: "-0.005", want: BucketDown0To2},
		{pct: "-2", want: BucketDown2To5},
		{pct: "-5", want: BucketDown5To7},
		{pct: "-7", want: BucketDown7To10},
		{pct: "-9.89", want: BucketDown7To10},
		{pct: "-9.9", want: BucketDownLimit},
		{pct: "-20", want: BucketDownLimit},
	}
	for _, tc := range testCases {
		t.Run(tc.pct, func(t *testing.T) {
			assert.Equal(t, tc.want, BucketOf(decimal.RequireFromString(tc.pct)))
		})
	}
}

func TestDistribute(t *testing.T) {
	// 昨收 10, 覆盖所有边界: +9.9%, 0%, -9.9%
	lasts := []string{"11", "10.99", "10.7", "10.5", "10.2", "10.1", "10.001", "10",
		"9.999", "9.9", "9.7", "9.5", "9.3", "9.01", "9", "8"}
	snaps := make(map[string]marketdata.Snapshot, len(lasts)+2)
	for i, last := range lasts {
		snaps[string(rune('A'+i))] = snap("10", last)
	}
	// 缺失昨收或价格的不计入
	snaps["noprev"] = snap("0", "10")
	snaps["noprice"] = snap("10", "0")

	dist := emptyStats(time.Time{}).Distribution
	var counts Counts
	Distribute(snaps, dist, &counts)

	total := 0
	for _, n := range dist {
		total += n
	}
	assert.Equal(t, len(lasts), total)
	assert.Equal(t, len(lasts), counts.Total())
	assert.Len(t, dist, len(Buckets))

	assert.Equal(t, 2, dist[BucketUpLimit])
	assert.Equal(t, 1, dist[BucketUp7To10])
	assert.Equal(t, 1, dist[BucketUp5To7])
	assert.Equal(t, 1, dist[BucketUp2To5])
	assert.Equal(t, 2, dist[BucketUp0To2])
	assert.Equal(t, 1, dist[BucketZero])
	assert.Equal(t, 2, dist[BucketDown0To2])
	assert.Equal(t, 1, dist[BucketDown2To5])
	assert.Equal(t, 1, dist[BucketDown5To7])
	assert.Equal(t, 1, dist[BucketDown7To10])
	assert.Equal(t, 3, dist[BucketDownLimit])

	// 10.001 与 9.999 变动 0.01%, 计为平盘
	assert.Equal(t, Counts{Up: 6, Down: 7, Flat: 3}, counts)
}

func TestFairValue(t *testing.T) {
	snaps := map[string]marketdata.Snapshot{
		"A": snap("100", "110"),
		"B": snap("100", "104"),
		"C": snap("0", "50"),
	}
	fair, ok := FairValue(decimal.NewFromInt(1000), []string{"A", "B", "C", "missing"}, snaps)
	require.True(t, ok)
	assert.True(t, fair.Equal(decimal.NewFromInt(1070)), "got %s", fair)

	_, ok = FairValue(decimal.NewFromInt(1000), []string{"C", "missing"}, snaps)
	assert.False(t, ok)
	_, ok = FairValue(decimal.Zero, []string{"A"}, snaps)
	assert.False(t, ok)
}

func descendingBars(n int) []marketdata.Bar {
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	bars := make([]marketdata.Bar, n)
	for i := range bars {
		c := decimal.NewFromInt(int64(1100 - i))
		bars[i] = marketdata.Bar{Time: start.Add(time.Duration(i) * time.Minute), Open: c, High: c, Low: c, Close: c}
	}
	return bars
}

func TestAggregatorRun(t *testing.T) {
	ctx := context.Background()
	provider := new(MockProvider)
	provider.On("SectorMembers", mock.Anything, "ALL").Return([]string{"A", "B", "C"}, nil)
	provider.On("SectorMembers", mock.Anything, "USDT").Return([]string{"A", "B"}, nil)
	provider.On("FullSnapshot", mock.Anything, []string{"A", "B", "C"}).Return(map[string]marketdata.Snapshot{
		"A": snap("100", "110"),
		"B": snap("100", "104"),
		"C": snap("100", "95"),
	}, nil)
	provider.On("FullSnapshot", mock.Anything, []string{"IDX"}).Return(map[string]marketdata.Snapshot{
		"IDX": snap("1000", "1010"),
	}, nil)
	provider.On("Bars", mock.Anything, "IDX", marketdata.Timeframe1m, 200).Return(descendingBars(14), nil)
	provider.On("Bars", mock.Anything, "IDX", marketdata.Timeframe5m, 200).Return([]marketdata.Bar(nil), errors.New("timeout"))

	agg := NewAggregator(provider, Config{
		Indices: []Index{{Code: "IDX", Name: "USDT market", Sector: "USDT"}},
	})
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return now }

	require.NoError(t, agg.Run(ctx))
	stats := agg.Stats()
	assert.Equal(t, now, stats.Timestamp)
	assert.Equal(t, Counts{Up: 2, Down: 1}, stats.Counts)
	assert.Equal(t, 1, stats.Distribution[BucketUpLimit])
	assert.Equal(t, 1, stats.Distribution[BucketUp2To5])
	assert.Equal(t, 1, stats.Distribution[BucketDown5To7])

	require.Len(t, stats.Leading, 1)
	row := stats.Leading[0]
	assert.Equal(t, "IDX", row.Code)
	assert.True(t, row.Actual.Equal(decimal.NewFromInt(1010)))
	assert.True(t, row.Fair.Equal(decimal.NewFromInt(1070)))
	assert.True(t, row.DiffPct.Equal(decimal.RequireFromString("5.94")), "got %s", row.DiffPct)
	assert.Equal(t, DirectionUp, row.Direction)
	assert.Equal(t, []string{"1m buy9"}, row.Signals)

	// 板块成分只解析一次
	require.NoError(t, agg.Run(ctx))
	provider.AssertNumberOfCalls(t, "SectorMembers", 2)
}

func TestAggregatorKeepsLastStatsOnError(t *testing.T) {
	ctx := context.Background()
	provider := new(MockProvider)
	provider.On("SectorMembers", mock.Anything, "ALL").Return([]string{"A"}, nil)
	provider.On("FullSnapshot", mock.Anything, []string{"A"}).Return(map[string]marketdata.Snapshot{
		"A": snap("100", "101"),
	}, nil).Once()
	provider.On("FullSnapshot", mock.Anything, []string{"A"}).Return(map[string]marketdata.Snapshot(nil), errors.New("boom")).Once()

	agg := NewAggregator(provider, Config{})
	require.NoError(t, agg.Run(ctx))
	first := agg.Stats()
	assert.Equal(t, Counts{Up: 1}, first.Counts)
	assert.Empty(t, first.Leading)

	assert.Error(t, agg.Run(ctx))
	assert.Equal(t, first, agg.Stats())
}

func TestAggregatorEmptyUniverse(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SectorMembers", mock.Anything, "ALL").Return([]string{}, nil)

	agg := NewAggregator(provider, Config{})
	assert.Error(t, agg.Run(context.Background()))
	assert.Zero(t, agg.Stats().Counts.Total())
	assert.Equal(t, 15*time.Second, agg.Interval())
	assert.Equal(t, "breadth", agg.Name())
}
