package indicator

const (
	// MinTDBars 少于该数量时 TD 不产生信号
	MinTDBars  = 13
	tdLookback = 4
	tdTarget   = 9
)

// TDResult 九转结果. Buy9 为下跌衰竭(低9), Sell9 为上涨衰竭(高9)
type TDResult struct {
	Buy9  bool
	Sell9 bool
}

// TDSequential 对整段收盘价重新计数, 只关心最后一根的连续计数是否恰好为 9.
// 不保留任何状态, 调用方每次传入需要评估的完整窗口.
func TDSequential(closes []float64) TDResult {
	if len(closes) < MinTDBars {
		return TDResult{}
	}
	up, down := 0, 0
	for i := tdLookback; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-tdLookback]:
			up++
			down = 0
		case closes[i] < closes[i-tdLookback]:
			down++
			up = 0
		default:
			up, down = 0, 0
		}
	}
	return TDResult{
		Buy9:  down == tdTarget,
		Sell9: up == tdTarget,
	}
}
