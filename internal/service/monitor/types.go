package monitor

import (
	"context"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/indicator"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/shopspring/decimal"
)

// Signal 检测器产生的候选信号, 经去重网关后成为 Alert 或被丢弃
type Signal struct {
	Code        string
	Timeframe   marketdata.Timeframe
	Kind        indicator.Kind
	Price       decimal.Decimal
	EventTime   time.Time
	Description string
}

// Alert 已入库的新信号
type Alert struct {
	Id          int64           `json:"id"`
	Code        string          `json:"stock_code"`
	Name        string          `json:"name"`
	Timeframe   string          `json:"timeframe"`
	Kind        string          `json:"signal_type"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	EventTime   time.Time       `json:"bar_time"`
	Timestamp   time.Time       `json:"timestamp"`
}

type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

type Status struct {
	State        State     `json:"status"`
	LastScanTime time.Time `json:"last_scan_time"`
	TrackedCount int       `json:"stock_count"`
	Interval     int       `json:"interval"`
}

type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}
