package indicator

import (
	"fmt"

	"github.com/KNICEX/market-monitor/internal/service/marketdata"
	"github.com/KNICEX/market-monitor/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	SideBid = "bid"
	SideAsk = "ask"
)

var (
	wallMultiple    = decimal.NewFromInt(5)
	wallTradeFactor = decimal.NewFromFloat(0.5)
	hundred         = decimal.NewFromInt(100)
)

// DepthConfig 盘口异动参数
type DepthConfig struct {
	TargetNumbers      []int64
	GapRatioThreshold  float64
	MinVolumeThreshold float64
	// MinLevel 特殊数字检测的起始档位下标, 默认 1 即跳过买一卖一(变动过快, 噪音大)
	MinLevel int
}

func DefaultDepthConfig() DepthConfig {
	return DepthConfig{
		TargetNumbers:      []int64{777, 888, 999},
		GapRatioThreshold:  0.01,
		MinVolumeThreshold: 50,
		MinLevel:           1,
	}
}

// DepthSignal 盘口信号, Level 从 1 开始
type DepthSignal struct {
	Kind        Kind
	Side        string
	Level       int
	Price       decimal.Decimal
	Description string
}

// DetectDepth 三条规则独立判断, 可能同时触发:
// 特殊数字挂单, 强力压盘, 变盘蓄势
func DetectDepth(snap marketdata.Snapshot, cfg DepthConfig) []DepthSignal {
	var signals []DepthSignal
	signals = append(signals, detectRoundNumbers(snap, cfg)...)
	signals = append(signals, detectWalls(snap, cfg)...)
	if sig, ok := detectPreBreakout(snap, cfg); ok {
		signals = append(signals, sig)
	}
	return signals
}

func detectRoundNumbers(snap marketdata.Snapshot, cfg DepthConfig) []DepthSignal {
	targets := lo.SliceToMap(cfg.TargetNumbers, func(item int64) (int64, struct{}) {
		return item, struct{}{}
	})
	minLevel := max(cfg.MinLevel, 0)

	var signals []DepthSignal
	scan := func(side string, prices, volumes []decimal.Decimal) {
		for i := minLevel; i < len(volumes) && i < len(prices); i++ {
			vol := volumes[i].IntPart()
			if _, ok := targets[vol]; !ok {
				continue
			}
			signals = append(signals, DepthSignal{
				Kind:        KindDepth,
				Side:        side,
				Level:       i + 1,
				Price:       prices[i],
				Description: fmt.Sprintf("%s%d resting %d", side, i+1, vol),
			})
		}
	}
	scan(SideBid, snap.BidPrice, snap.BidVolume)
	scan(SideAsk, snap.AskPrice, snap.AskVolume)
	return signals
}

// detectWalls 卖盘挂单超过均量5倍, 卖一与成交价断层, 且最新成交相对均量放大
func detectWalls(snap marketdata.Snapshot, cfg DepthConfig) []DepthSignal {
	if !snap.LastPrice.IsPositive() || len(snap.AskPrice) == 0 {
		return nil
	}
	all := append(append([]decimal.Decimal{}, snap.BidVolume...), snap.AskVolume...)
	if len(all) == 0 {
		return nil
	}
	avg := decimalx.Mean(all)
	if !avg.IsPositive() {
		return nil
	}
	gap := snap.AskPrice[0].Sub(snap.LastPrice).Abs().Div(snap.LastPrice)
	if gap.InexactFloat64() <= cfg.GapRatioThreshold || !snap.LastVolume.GreaterThan(avg.Mul(wallTradeFactor)) {
		return nil
	}

	var signals []DepthSignal
	for i, vol := range snap.AskVolume {
		if i >= len(snap.AskPrice) || !vol.GreaterThan(avg.Mul(wallMultiple)) {
			continue
		}
		signals = append(signals, DepthSignal{
			Kind:  KindWall,
			Side:  SideAsk,
			Level: i + 1,
			Price: snap.AskPrice[i],
			Description: fmt.Sprintf("ask wall at ask%d: %s lots (%sx avg), gap %s%%",
				i+1, vol.Truncate(0), vol.Div(avg).StringFixed(1), gap.Mul(hundred).StringFixed(1)),
		})
	}
	return signals
}

// detectPreBreakout 成交价明显低于卖一且最新成交放量, 视为拉升前兆
func detectPreBreakout(snap marketdata.Snapshot, cfg DepthConfig) (DepthSignal, bool) {
	if !snap.LastPrice.IsPositive() || len(snap.AskPrice) == 0 {
		return DepthSignal{}, false
	}
	gap := snap.AskPrice[0].Sub(snap.LastPrice).Div(snap.LastPrice)
	if gap.InexactFloat64() <= cfg.GapRatioThreshold || snap.LastVolume.InexactFloat64() <= cfg.MinVolumeThreshold {
		return DepthSignal{}, false
	}
	return DepthSignal{
		Kind:  KindDivergence,
		Side:  SideBid,
		Price: snap.LastPrice,
		Description: fmt.Sprintf("pre-breakout: gap %s%%, last trade %s lots",
			gap.Mul(hundred).StringFixed(1), snap.LastVolume.Truncate(0)),
	}, true
}
