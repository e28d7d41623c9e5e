package indicator

import "github.com/markcheno/go-talib"

// SMA 简单移动平均，取最后 length 个值的算术平均。
// 数据少于 length 时返回 0，这个 0 表示"数据不足"，不是真实的均值
func SMA(values []float64, length int) float64 {
	if len(values) < length {
		return 0
	}
	return last(talib.Sma(tail(values, length), length))
}

// EMA 指数移动平均，平滑系数 k = 2/(length+1)。
// talib.Ema 用前 length 个值的 SMA 做种子，这里以第一个值作为种子，从下标0开始对整个数组做递推，不只是最后 length 个值，
// 所以结果和传入的历史长度有关。数据少于 length 时返回 0
func EMA(values []float64, length int) float64 {
	if len(values) < length {
		return 0
	}

	k := 2 / float64(length+1)
	ema := values[0]
	for i := 1; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
	}
	return ema
}

// EMASeries 逐点返回 EMA 递推的每一个中间值，种子同样是第一个值，没有数据不足的占位值
func EMASeries(values []float64, length int) []float64 {
	if len(values) == 0 {
		return nil
	}

	k := 2 / float64(length+1)
	ema := values[0]
	result := make([]float64, 0, len(values))
	result = append(result, ema)
	for i := 1; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		result = append(result, ema)
	}
	return result
}
