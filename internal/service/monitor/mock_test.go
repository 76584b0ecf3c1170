package monitor

import (
	"context"
	"time"

	"github.com/KNICEX/market-monitor/internal/entity"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/stretchr/testify/mock"
)

// ============ Mock 定义 ============

type MockMarketService struct {
	mock.Mock
}

func (m *MockMarketService) Bars(ctx context.Context, code string, tf marketdata.Timeframe, count int) ([]marketdata.Bar, error) {
	args := m.Called(ctx, code, tf, count)
	return args.Get(0).([]marketdata.Bar), args.Error(1)
}

func (m *MockMarketService) Snapshot(ctx context.Context, code string) (marketdata.Snapshot, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(marketdata.Snapshot), args.Error(1)
}

func (m *MockMarketService) FullSnapshot(ctx context.Context, codes []string) (map[string]marketdata.Snapshot, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).(map[string]marketdata.Snapshot), args.Error(1)
}

func (m *MockMarketService) Quotes(ctx context.Context, codes []string) (map[string]marketdata.Quote, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).(map[string]marketdata.Quote), args.Error(1)
}

type MockWatchlistRepo struct {
	mock.Mock
}

func (m *MockWatchlistRepo) Create(ctx context.Context, symbol entity.WatchedSymbol) error {
	return m.Called(ctx, symbol).Error(0)
}

func (m *MockWatchlistRepo) Delete(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockWatchlistRepo) FindAll(ctx context.Context) ([]entity.WatchedSymbol, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entity.WatchedSymbol), args.Error(1)
}

func (m *MockWatchlistRepo) Codes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockWatchlistRepo) DisplayName(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) Send(ctx context.Context, url string, data map[string]any) error {
	return m.Called(ctx, url, data).Error(0)
}

type MockSignalRepo struct {
	mock.Mock
}

func (m *MockSignalRepo) Create(ctx context.Context, signal entity.Signal) (int64, error) {
	args := m.Called(ctx, signal)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSignalRepo) ExistsBar(ctx context.Context, code, timeframe, kind string, barTime time.Time) (bool, error) {
	args := m.Called(ctx, code, timeframe, kind, barTime)
	return args.Bool(0), args.Error(1)
}

func (m *MockSignalRepo) ExistsTickSince(ctx context.Context, code, kind string, since time.Time) (bool, error) {
	args := m.Called(ctx, code, kind, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockSignalRepo) FindRecent(ctx context.Context, limit int) ([]entity.Signal, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]entity.Signal), args.Error(1)
}
