package indicator

import "math"

// EMA 指数移动平均, alpha = 2/(span+1), 以首个值为种子, 不做偏差修正
func EMA(values []float64, span int) []float64 {
	res := make([]float64, len(values))
	if len(values) == 0 {
		return res
	}
	alpha := 2 / (float64(span) + 1)
	res[0] = values[0]
	for i := 1; i < len(values); i++ {
		res[i] = alpha*values[i] + (1-alpha)*res[i-1]
	}
	return res
}

// RollingMax 窗口不满时为 NaN
func RollingMax(values []float64, window int) []float64 {
	return rolling(values, window, math.Max)
}

// RollingMin 窗口不满时为 NaN
func RollingMin(values []float64, window int) []float64 {
	return rolling(values, window, math.Min)
}

func rolling(values []float64, window int, pick func(a, b float64) float64) []float64 {
	res := make([]float64, len(values))
	for i := range values {
		if i < window-1 || window <= 0 {
			res[i] = math.NaN()
			continue
		}
		v := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			v = pick(v, values[j])
		}
		res[i] = v
	}
	return res
}
