package ioc

import (
	"log/slog"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/breadth"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func InitBreadth(provider marketdata.Provider) *breadth.Aggregator {
	type Config struct {
		Interval   int             `mapstructure:"interval"`
		Universe   string          `mapstructure:"universe"`
		Indices    []breadth.Index `mapstructure:"indices"`
		Timeframes []string        `mapstructure:"timeframes"`
		BarCount   int             `mapstructure:"bar_count"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("breadth", &cfg); err != nil {
		panic(err)
	}

	return breadth.NewAggregator(provider, breadth.Config{
		Interval:   time.Duration(cfg.Interval) * time.Second,
		Universe:   cfg.Universe,
		Indices:    cfg.Indices,
		Timeframes: breadthTimeframes(cfg.Timeframes),
		BarCount:   cfg.BarCount,
	})
}

// breadthTimeframes 跳过无法识别的周期
func breadthTimeframes(raw []string) []marketdata.Timeframe {
	timeframes := make([]marketdata.Timeframe, 0, len(raw))
	for _, r := range lo.Uniq(raw) {
		tf, err := marketdata.ParseTimeframe(r)
		if err != nil || tf.IsTick() {
			slog.Warn("skip breadth timeframe", "timeframe", r, "error", err)
			continue
		}
		timeframes = append(timeframes, tf)
	}
	return timeframes
}
