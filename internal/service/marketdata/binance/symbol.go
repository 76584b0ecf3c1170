package binance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/samber/lo"
)

var _ marketdata.SymbolService = (*SymbolService)(nil)

// SectorAll 全市场
const SectorAll = "ALL"

const codeInvalidSymbol = -1121

// 稳定币之间的交易对不参与市场宽度统计
var stableBase = []string{
	"USDC", "FDUSD", "TUSD", "USDP", "DAI", "BUSD", "EUR", "AEUR", "USDS",
}

var knownQuotes = []string{"USDT", "FDUSD", "USDC", "BTC", "ETH", "BNB"}

type SymbolService struct {
	cli      *binance.Client
	excluded map[string]struct{}
	mu       sync.Mutex
	exchange []binance.Symbol
}

func NewSymbolService(cli *binance.Client) *SymbolService {
	return &SymbolService{
		cli: cli,
		excluded: lo.SliceToMap(stableBase, func(item string) (string, struct{}) {
			return item, struct{}{}
		}),
	}
}

// Resolve 支持 BTCUSDT / btc / BTC/USDT 三种输入
func (svc *SymbolService) Resolve(ctx context.Context, text string) (marketdata.Instrument, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, "/", "")
	if text == "" {
		return marketdata.Instrument{}, marketdata.ErrNotFound
	}
	candidates := []string{text}
	if !lo.SomeBy(knownQuotes, func(q string) bool { return strings.HasSuffix(text, q) && text != q }) {
		candidates = append(candidates, text+"USDT")
	}
	for _, c := range candidates {
		info, err := svc.cli.NewExchangeInfoService().Symbol(c).Do(ctx)
		if isInvalidSymbol(err) {
			continue
		}
		if err != nil {
			return marketdata.Instrument{}, fmt.Errorf("exchange info %s: %w", c, err)
		}
		if info == nil {
			continue
		}
		for _, s := range info.Symbols {
			if s.Symbol == c {
				return marketdata.Instrument{
					Code: s.Symbol,
					Name: fmt.Sprintf("%s/%s", s.BaseAsset, s.QuoteAsset),
				}, nil
			}
		}
	}
	return marketdata.Instrument{}, marketdata.ErrNotFound
}

// SectorMembers 板块按计价币划分, ALL 为全部在交易的交易对
func (svc *SymbolService) SectorMembers(ctx context.Context, sector string) ([]string, error) {
	symbols, err := svc.exchangeSymbols(ctx)
	if err != nil {
		return nil, err
	}
	sector = strings.ToUpper(sector)
	symbols = lo.Filter(symbols, func(item binance.Symbol, index int) bool {
		if item.Status != "TRADING" {
			return false
		}
		if _, ok := svc.excluded[item.BaseAsset]; ok {
			return false
		}
		return sector == SectorAll || item.QuoteAsset == sector
	})
	return lo.Map(symbols, func(item binance.Symbol, index int) string {
		return item.Symbol
	}), nil
}

// isInvalidSymbol 交易所对不存在的交易对返回 -1121, 其余错误需要上抛
func isInvalidSymbol(err error) bool {
	var apiErr *common.APIError
	return errors.As(err, &apiErr) && apiErr.Code == codeInvalidSymbol
}

func (svc *SymbolService) exchangeSymbols(ctx context.Context) ([]binance.Symbol, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.exchange != nil {
		return svc.exchange, nil
	}
	info, err := svc.cli.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, err
	}
	svc.exchange = info.Symbols
	return svc.exchange, nil
}
