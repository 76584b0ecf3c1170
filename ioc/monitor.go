package ioc

import (
	"log/slog"
	"sync"
	"time"

	"github.com/KNICEX/market-monitor/internal/repo"
	"github.com/KNICEX/market-monitor/internal/service/indicator"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/KNICEX/market-monitor/internal/service/monitor"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func InitMonitorConfig() monitor.Config {
	type Config struct {
		Interval           int        `mapstructure:"interval"`
		Timeframes         []string   `mapstructure:"timeframes"`
		BarCount           int        `mapstructure:"bar_count"`
		TradingSessions    [][]string `mapstructure:"trading_sessions"`
		Timezone           string     `mapstructure:"timezone"`
		SpecialNumbers     []int64    `mapstructure:"special_numbers"`
		GapRatioThreshold  float64    `mapstructure:"gap_ratio_threshold"`
		MinVolumeThreshold float64    `mapstructure:"min_volume_threshold"`
		MinDepthLevel      int        `mapstructure:"min_depth_level"`
	}

	def := monitor.DefaultConfig()
	depth := indicator.DefaultDepthConfig()
	cfg := Config{
		Interval:           int(def.Interval / time.Second),
		BarCount:           def.BarCount,
		GapRatioThreshold:  depth.GapRatioThreshold,
		MinVolumeThreshold: depth.MinVolumeThreshold,
		MinDepthLevel:      depth.MinLevel,
	}
	if err := viper.UnmarshalKey("monitor", &cfg); err != nil {
		panic(err)
	}

	// 非法的时段与时区只记录告警, 不影响启动
	sessions := monitor.ParseSessions(cfg.TradingSessions)
	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			slog.Warn("invalid timezone, using local", "timezone", cfg.Timezone, "error", err)
		} else {
			loc = l
		}
	}
	// 切片默认值不能预填, mapstructure 会复用原切片
	if len(cfg.Timeframes) == 0 {
		cfg.Timeframes = def.Timeframes
	}
	if len(cfg.SpecialNumbers) == 0 {
		cfg.SpecialNumbers = depth.TargetNumbers
	}
	def.Interval = time.Duration(cfg.Interval) * time.Second
	def.Timeframes = cfg.Timeframes
	def.BarCount = cfg.BarCount
	def.Sessions = sessions
	def.Location = loc
	def.Depth = indicator.DepthConfig{
		TargetNumbers:      cfg.SpecialNumbers,
		GapRatioThreshold:  cfg.GapRatioThreshold,
		MinVolumeThreshold: cfg.MinVolumeThreshold,
		MinLevel:           cfg.MinDepthLevel,
	}
	return def
}

func InitAlertQueue() *monitor.AlertQueue {
	return monitor.NewAlertQueue(viper.GetInt("monitor.alert_buffer"))
}

func InitScheduler(market marketdata.MarketService, db *gorm.DB, queue *monitor.AlertQueue,
	notifiers []monitor.Notifier) *monitor.Scheduler {
	watchlist := repo.NewWatchlistRepo(db)
	gateway := monitor.NewGateway(repo.NewSignalRepo(db), watchlist)

	opts := []monitor.Option{monitor.WithIntervalPersister(persistInterval)}
	for _, n := range notifiers {
		opts = append(opts, monitor.WithNotifier(n))
	}
	return monitor.NewScheduler(market, watchlist, gateway, queue, InitMonitorConfig(), opts...)
}

// viper 全局实例不是并发安全的, 写回配置由 HTTP 请求触发
var configMu sync.Mutex

// persistInterval 写回当前使用的配置文件
func persistInterval(interval time.Duration) error {
	configMu.Lock()
	defer configMu.Unlock()
	viper.Set("monitor.interval", int(interval/time.Second))
	if err := viper.WriteConfig(); err != nil {
		return err
	}
	slog.Info("config saved", "file", viper.ConfigFileUsed())
	return nil
}
