package indicator

import (
	"math"

	"github.com/KNICEX/market-monitor/internal/service/marketdata"
)

const (
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	extremeWin = 4

	// MinDivergenceBars 慢线 EMA26 稳定所需的最少K线数
	MinDivergenceBars = 35
)

// DivergenceResult MACD 背离. Bullish 底背离, Bearish 顶背离
type DivergenceResult struct {
	Bullish bool
	Bearish bool
}

// MACD 返回 DIF 与 DEA 序列
func MACD(closes []float64) (dif, dea []float64) {
	fast := EMA(closes, macdFast)
	slow := EMA(closes, macdSlow)
	dif = make([]float64, len(closes))
	for i := range closes {
		dif[i] = fast[i] - slow[i]
	}
	return dif, EMA(dif, macdSignal)
}

// Divergence 基于 DEA 拐头判断背离:
// 底背离 最近一次向上拐头出现在最后两根内, 收盘价跌破上一次拐头时的4根低点, 而 DIF 抬高;
// 顶背离 与之对称.
// 少于 MinDivergenceBars 根时 EMA26 尚未收敛, 直接返回无信号.
func Divergence(bars []marketdata.Bar) DivergenceResult {
	if len(bars) < MinDivergenceBars {
		return DivergenceResult{}
	}
	closes := marketdata.Closes(bars)
	opens := marketdata.Opens(bars)
	dif, dea := MACD(closes)

	gj := make([]float64, len(bars))
	for i := range bars {
		gj[i] = math.Max(closes[i], opens[i])
	}
	low4 := RollingMin(gj, extremeWin)
	high4 := RollingMax(gj, extremeWin)

	var troughs, peaks []int
	for i := 2; i < len(dea); i++ {
		if dea[i] > dea[i-1] && dea[i-1] < dea[i-2] {
			troughs = append(troughs, i)
		}
		if dea[i] < dea[i-1] && dea[i-1] > dea[i-2] {
			peaks = append(peaks, i)
		}
	}

	n := len(bars)
	var res DivergenceResult
	if last, prev, ok := lastTwo(troughs); ok && last >= n-2 {
		// NaN 比较恒为 false
		res.Bullish = closes[last] < low4[prev] && dif[last] > dif[prev]
	}
	if last, prev, ok := lastTwo(peaks); ok && last >= n-2 {
		res.Bearish = closes[last] > high4[prev] && dif[last] < dif[prev]
	}
	return res
}

func lastTwo(idx []int) (last, prev int, ok bool) {
	if len(idx) < 2 {
		return 0, 0, false
	}
	return idx[len(idx)-1], idx[len(idx)-2], true
}
