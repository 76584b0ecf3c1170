package binance

import (
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/adshao/go-binance/v2"
)

var _ marketdata.Provider = (*Provider)(nil)

// Provider 组合行情与标的服务
type Provider struct {
	*MarketService
	*SymbolService
}

func NewProvider(cli *binance.Client, depthLimit int) *Provider {
	return &Provider{
		MarketService: NewMarketService(cli, depthLimit),
		SymbolService: NewSymbolService(cli),
	}
}
