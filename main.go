package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KNICEX/market-monitor/internal/schedule"
	"github.com/KNICEX/market-monitor/internal/web"
	"github.com/KNICEX/market-monitor/ioc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}

}

func main() {
	initViper()
	ioc.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := ioc.InitDB()
	bian := ioc.InitBinanceCli()
	provider := ioc.InitMarketProvider(bian)

	queue := ioc.InitAlertQueue()
	scheduler := ioc.InitScheduler(provider, db, queue, ioc.InitNotifiers())
	aggregator := ioc.InitBreadth(provider)
	hub := web.NewHub()
	server := ioc.InitWebServer(ctx, scheduler, aggregator, provider, db, hub)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if viper.GetBool("monitor.autostart") {
			scheduler.Start(ctx)
		}
		<-ctx.Done()
		scheduler.Stop()
		scheduler.Wait()
		return nil
	})
	eg.Go(func() error {
		schedule.Every(ctx, aggregator.Interval(), aggregator)
		return nil
	})
	eg.Go(func() error {
		return hub.Run(ctx, queue.C())
	})
	eg.Go(func() error {
		return server.Run(ctx)
	})

	if err := eg.Wait(); err != nil {
		slog.Error("market monitor exited", "error", err)
		os.Exit(1)
	}
	slog.Info("market monitor exited")
}
