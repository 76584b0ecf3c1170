package ioc

import (
	mdbinance "github.com/KNICEX/market-monitor/internal/service/marketdata/binance"
	"github.com/adshao/go-binance/v2"
	"github.com/spf13/viper"
)

func InitBinanceCli() *binance.Client {
	type Config struct {
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("cex.binance", &cfg); err != nil {
		panic(err)
	}

	// 行情接口不需要签名, key 可以为空
	return binance.NewClient(cfg.ApiKey, cfg.ApiSecret)
}

func InitMarketProvider(cli *binance.Client) *mdbinance.Provider {
	type Config struct {
		DepthLimit int `mapstructure:"depth_limit"`
	}

	cfg := Config{DepthLimit: 5}
	if err := viper.UnmarshalKey("cex.binance", &cfg); err != nil {
		panic(err)
	}
	return mdbinance.NewProvider(cli, cfg.DepthLimit)
}
