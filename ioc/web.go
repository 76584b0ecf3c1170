package ioc

import (
	"context"

	"github.com/KNICEX/market-monitor/internal/repo"
	"github.com/KNICEX/market-monitor/internal/service/breadth"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/KNICEX/market-monitor/internal/service/monitor"
	"github.com/KNICEX/market-monitor/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func InitWebServer(ctx context.Context, sched *monitor.Scheduler, agg *breadth.Aggregator,
	provider marketdata.Provider, db *gorm.DB, hub *web.Hub) *web.Server {
	type Config struct {
		Addr string `mapstructure:"addr"`
		Mode string `mapstructure:"mode"`
	}

	cfg := Config{Addr: ":8080", Mode: gin.ReleaseMode}
	if err := viper.UnmarshalKey("web", &cfg); err != nil {
		panic(err)
	}
	gin.SetMode(cfg.Mode)

	h := web.NewHandler(ctx, sched, agg, repo.NewWatchlistRepo(db), repo.NewSignalRepo(db), provider)
	return web.NewServer(cfg.Addr, web.NewRouter(h, hub))
}
