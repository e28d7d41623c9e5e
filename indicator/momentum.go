package indicator

import "github.com/markcheno/go-talib"

// MACDResult 保存 MACD 线、信号线和柱状图的最新值
type MACDResult struct {
	MACD   float64
	Signal float64
	Hist   float64
}

// wilder 保存 RSI 的平均涨幅和平均跌幅，按 Wilder 平滑递推
type wilder struct {
	length  float64
	avgGain float64
	avgLoss float64
}

// newWilder 用前 length 个价格变化的简单平均作为种子，调用方要保证 len(closes) > length
func newWilder(closes []float64, length int) *wilder {
	var gains, losses float64
	for i := 1; i <= length; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	return &wilder{
		length:  float64(length),
		avgGain: gains / float64(length),
		avgLoss: losses / float64(length),
	}
}

// update avg = (avg*(n-1) + x) / n
func (w *wilder) update(delta float64) {
	if delta > 0 {
		w.avgGain = (w.avgGain*(w.length-1) + delta) / w.length
		w.avgLoss = (w.avgLoss * (w.length - 1)) / w.length
	} else {
		w.avgGain = (w.avgGain * (w.length - 1)) / w.length
		w.avgLoss = (w.avgLoss*(w.length-1) - delta) / w.length
	}
}

// value 没有下跌时 RSI 为 100。
// 这里不用 talib.Rsi：它在平均涨跌幅之和小于 1e-14 时直接给 0，
// 连续几百根平盘K线（比如周末的分钟线）之后会把 RSI 打成 0，而比值本身并没有变
func (w *wilder) value() float64 {
	if w.avgLoss == 0 {
		return 100
	}
	return 100 - (100 / (1 + w.avgGain/w.avgLoss))
}

// RSI 相对强弱指数，范围0~100。少于 length+1 个收盘价时返回 50
func RSI(closes []float64, length int) float64 {
	if len(closes) < length+1 {
		return 50
	}

	w := newWilder(closes, length)
	for i := length + 1; i < len(closes); i++ {
		w.update(closes[i] - closes[i-1])
	}
	return w.value()
}

// RSISeries 返回从种子开始的每一个 RSI 值，第一个值对应下标 length 的收盘价。
// 数据不足时返回空切片
func RSISeries(closes []float64, length int) []float64 {
	if len(closes) < length+1 {
		return nil
	}

	w := newWilder(closes, length)
	result := make([]float64, 0, len(closes)-length)
	result = append(result, w.value())
	for i := length + 1; i < len(closes); i++ {
		w.update(closes[i] - closes[i-1])
		result = append(result, w.value())
	}
	return result
}

// Mom 动量：最新收盘价减去 length 根之前的收盘价，数据不够时返回 0
func Mom(closes []float64, length int) float64 {
	if len(closes) <= length {
		return 0
	}
	return last(talib.Mom(tail(closes, length+1), length))
}

// MACD 快慢两条 EMA 都从下标0开始逐点计算（种子是第一个收盘价，和 talib.Macd 不同），MACD 线是两者之差，
// 信号线是 MACD 线的 EMA，柱状图是最新的 MACD 值减去最新的信号值
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	if len(closes) == 0 {
		return MACDResult{}
	}

	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)
	line := make([]float64, len(closes))
	for i := range line {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signalEMA := EMASeries(line, signal)

	lastMACD := line[len(line)-1]
	lastSignal := signalEMA[len(signalEMA)-1]
	return MACDResult{
		MACD:   lastMACD,
		Signal: lastSignal,
		Hist:   lastMACD - lastSignal,
	}
}

// AO 动量震荡指标(Awesome Oscillator)：中间价 (high+low)/2 的5周期SMA减去34周期SMA，
// 少于34根K线时返回 0
func AO(highs, lows []float64) float64 {
	if len(highs) < 34 {
		return 0
	}

	prices := midpoints(tail(highs, 34), tail(lows, 34))
	return SMA(prices, 5) - SMA(prices, 34)
}

// BBP 多空力量(Bull Bear Power)：(最新最高价 - EMA) + (最新最低价 - EMA)。
// EMA 数据不足时为 0，结果也跟着变化
func BBP(highs, lows, closes []float64, length int) float64 {
	if len(closes) == 0 {
		return 0
	}

	ema := EMA(closes, length)
	idx := len(closes) - 1
	return highs[idx] - ema + (lows[idx] - ema)
}
