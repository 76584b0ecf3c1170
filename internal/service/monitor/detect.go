package monitor

import (
	"fmt"
	"time"

	"github.com/KNICEX/market-monitor/internal/service/indicator"
	"github.com/KNICEX/market-monitor/internal/service/marketdata"
)

// barSignals 在已剔除未收盘K线的序列上运行九转与背离
func barSignals(code string, tf marketdata.Timeframe, stable []marketdata.Bar) []Signal {
	if len(stable) < indicator.MinTDBars {
		return nil
	}
	last := stable[len(stable)-1]
	newSignal := func(kind indicator.Kind, desc string) Signal {
		return Signal{
			Code:        code,
			Timeframe:   tf,
			Kind:        kind,
			Price:       last.Close,
			EventTime:   last.Time,
			Description: fmt.Sprintf("%s %s", tf, desc),
		}
	}

	var signals []Signal
	td := indicator.TDSequential(marketdata.Closes(stable))
	if td.Buy9 {
		signals = append(signals, newSignal(indicator.KindTDBuy9, "TD buy 9"))
	}
	if td.Sell9 {
		signals = append(signals, newSignal(indicator.KindTDSell9, "TD sell 9"))
	}
	div := indicator.Divergence(stable)
	if div.Bullish {
		signals = append(signals, newSignal(indicator.KindBullishDiv, "MACD bullish divergence"))
	}
	if div.Bearish {
		signals = append(signals, newSignal(indicator.KindBearishDiv, "MACD bearish divergence"))
	}
	return signals
}

// depthSignals 盘口信号以检测时刻为事件时间
func depthSignals(code string, snap marketdata.Snapshot, cfg indicator.DepthConfig, now time.Time) []Signal {
	found := indicator.DetectDepth(snap, cfg)
	signals := make([]Signal, 0, len(found))
	for _, d := range found {
		signals = append(signals, Signal{
			Code:        code,
			Timeframe:   marketdata.TimeframeTick,
			Kind:        d.Kind,
			Price:       d.Price,
			EventTime:   now,
			Description: d.Description,
		})
	}
	return signals
}
