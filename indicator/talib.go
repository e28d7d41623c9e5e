package indicator

// talib 的函数都返回和输入等长的序列，前面不足一个周期的位置填 0。
// 这里的包装只取需要的那一段，调用方负责保证数据长度足够
import "github.com/markcheno/go-talib"

// last 取 talib 结果序列的最新值
func last(series []float64) float64 {
	return series[len(series)-1]
}

// tail 返回最后 size 个值，不足时返回全部
func tail(values []float64, size int) []float64 {
	return values[maxInt(0, len(values)-size):]
}

// highest 滑动窗口最大值，下标 i 是 values[i-period+1 : i+1] 的最大值
func highest(values []float64, period int) []float64 {
	if period < 2 {
		return append([]float64(nil), values...)
	}
	return talib.Max(values, period)
}

// lowest 滑动窗口最小值，下标含义同 highest
func lowest(values []float64, period int) []float64 {
	if period < 2 {
		return append([]float64(nil), values...)
	}
	return talib.Min(values, period)
}

// sumLast 最后 period 个值之和
func sumLast(values []float64, period int) float64 {
	return last(talib.Sum(tail(values, period), period))
}

// trueRange 真实波幅，下标0没有前一根收盘价，值为0
func trueRange(highs, lows, closes []float64) []float64 {
	return talib.TRange(highs, lows, closes)
}

// midpoints 中间价 (high+low)/2
func midpoints(highs, lows []float64) []float64 {
	return talib.MedPrice(highs, lows)
}
