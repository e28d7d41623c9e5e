package indicator

import "github.com/markcheno/go-talib"

// StochResult 保存随机指标的 %K 和 %D
type StochResult struct {
	K float64
	D float64
}

// stochRsiWindow StochRSI 只在最后 200 个收盘价上计算
const stochRsiWindow = 200

// smoothK 对原始 %K 做 kSmooth 周期的简单平均，前 kSmooth-1 个值原样保留
func smoothK(raw []float64, kSmooth int) []float64 {
	smoothed := make([]float64, 0, len(raw))
	for i := range raw {
		if i < kSmooth-1 {
			smoothed = append(smoothed, raw[i])
			continue
		}
		var sum float64
		for j := 0; j < kSmooth; j++ {
			sum += raw[i-j]
		}
		smoothed = append(smoothed, sum/float64(kSmooth))
	}
	return smoothed
}

// averageD 对最后 dSmooth 个 %K 求平均，不存在的值按 0 计
func averageD(ks []float64, dSmooth int) float64 {
	var sum float64
	for j := 0; j < dSmooth; j++ {
		if i := len(ks) - 1 - j; i >= 0 {
			sum += orZero(ks[i])
		}
	}
	return sum / float64(dSmooth)
}

// Stoch 随机指标。原始 %K = (收盘价 - 区间最低价) / (区间最高价 - 区间最低价) x 100，
// 区间是最近 period 根K线；%K 是原始值的 kSmooth 周期平均，%D 是 %K 的 dSmooth 周期平均。
//
// 只计算最后 period+kSmooth+dSmooth+50 根K线，下标小于 period-1 的K线没有完整区间，原始值记为 50
func Stoch(highs, lows, closes []float64, period, kSmooth, dSmooth int) StochResult {
	if len(closes) == 0 {
		return StochResult{K: 50, D: 50}
	}

	needed := period + kSmooth + dSmooth + 50
	start := maxInt(0, len(closes)-needed)

	hh := highest(highs, period)
	ll := lowest(lows, period)

	raw := make([]float64, 0, len(closes)-start)
	for i := start; i < len(closes); i++ {
		if i < period-1 {
			raw = append(raw, 50)
			continue
		}
		raw = append(raw, (closes[i]-ll[i])/nonZero(hh[i]-ll[i])*100)
	}

	ks := smoothK(raw, kSmooth)
	return StochResult{
		K: ks[len(ks)-1],
		D: averageD(ks, dSmooth),
	}
}

// StochRSI 在 RSI 序列上套用随机指标：先在最后200个收盘价上算出完整的 RSI 序列，
// 再对这个序列求 stochLen 周期的原始 %K（前 stochLen-1 个记为 50），用 k 周期平滑，
// 最后用 d 周期求 %D。RSI 序列为空时返回 50
func StochRSI(closes []float64, rsiLen, stochLen, k, d int) StochResult {
	subset := closes[maxInt(0, len(closes)-stochRsiWindow):]
	rsis := RSISeries(subset, rsiLen)
	if len(rsis) == 0 {
		return StochResult{K: 50, D: 50}
	}

	hh := highest(rsis, stochLen)
	ll := lowest(rsis, stochLen)

	raw := make([]float64, 0, len(rsis))
	for i := range rsis {
		if i < stochLen-1 {
			raw = append(raw, 50)
			continue
		}
		raw = append(raw, (rsis[i]-ll[i])/nonZero(hh[i]-ll[i])*100)
	}

	ks := smoothK(raw, k)
	return StochResult{
		K: ks[len(ks)-1],
		D: averageD(ks, d),
	}
}

// WPR 威廉指标(Williams %R)：(区间最高价 - 最新收盘价) / (区间最高价 - 区间最低价) x -100，
// 范围 -100~0。少于 length 个收盘价时返回 -50，区间最高价等于最低价时为 0
func WPR(highs, lows, closes []float64, length int) float64 {
	if len(closes) < length {
		return -50
	}

	return last(talib.WillR(tail(highs, length), tail(lows, length), tail(closes, length), length))
}
