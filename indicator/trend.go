package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// ADXResult 保存平均趋向指数以及正负趋向指标
type ADXResult struct {
	ADX float64
	PDI float64 // +DI
	MDI float64 // -DI
}

// CCI 顺势指标。典型价格 tp = (high+low+close)/3，
// CCI = (最新tp - 最近 length 个tp的均值) / (0.015 x 平均绝对偏差)，偏差为0时结果为0。
// 少于 length 个收盘价时返回 0
func CCI(highs, lows, closes []float64, length int) float64 {
	if len(closes) < length {
		return 0
	}
	return last(talib.Cci(tail(highs, length), tail(lows, length), tail(closes, length), length))
}

// wilderSum Wilder 累加平滑：种子是前 length 个值之和，之后 v = v - v/length + x。
// 返回从种子开始的每一个平滑值
func wilderSum(values []float64, length int) []float64 {
	var value float64
	for _, v := range values[:length] {
		value += v
	}

	result := make([]float64, 0, len(values)-length+1)
	result = append(result, value)
	for i := length; i < len(values); i++ {
		value = value - (value / float64(length)) + values[i]
		result = append(result, value)
	}
	return result
}

// ADX 平均趋向指数。对最后 5*length 根K线计算真实波幅(TR)、+DM、-DM，
// 只有较大且为正的方向变动才计入。三者用 Wilder 累加平滑后得到 +DI/-DI，
// 平滑的种子是前 length 个值之和（talib.Adx 用 length-1 个，并且从第一根K线算起）。
// DX = |+DI - -DI| / (+DI + -DI) x 100，ADX 是 DX 的 Wilder 平均。
// 少于 2*length 个收盘价时返回全 0
func ADX(highs, lows, closes []float64, length int) ADXResult {
	if len(closes) < length*2 {
		return ADXResult{}
	}

	start := maxInt(1, len(closes)-length*5)
	size := len(closes) - start
	tr := trueRange(highs[start-1:], lows[start-1:], closes[start-1:])[1:]
	pdm := make([]float64, 0, size)
	mdm := make([]float64, 0, size)

	for i := start; i < len(closes); i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			pdm = append(pdm, up)
		} else {
			pdm = append(pdm, 0)
		}
		if down > up && down > 0 {
			mdm = append(mdm, down)
		} else {
			mdm = append(mdm, 0)
		}
	}

	str := wilderSum(tr, length)
	spdm := wilderSum(pdm, length)
	smdm := wilderSum(mdm, length)

	dx := make([]float64, 0, len(str))
	for i := range str {
		pdi := 100 * spdm[i] / nonZero(str[i])
		mdi := 100 * smdm[i] / nonZero(str[i])
		dx = append(dx, orZero(math.Abs(pdi-mdi)/nonZero(pdi+mdi)*100))
	}

	var adx float64
	for _, v := range dx[:length] {
		adx += v
	}
	adx /= float64(length)
	for i := length; i < len(dx); i++ {
		adx = (adx*float64(length-1) + dx[i]) / float64(length)
	}

	idx := len(str) - 1
	return ADXResult{
		ADX: adx,
		PDI: 100 * spdm[idx] / nonZero(str[idx]),
		MDI: 100 * smdm[idx] / nonZero(str[idx]),
	}
}

// UO 终极震荡指标(Ultimate Oscillator)。在最后 p3+50 根K线上计算
// 买压 BP = close - min(low, 前收) 和真实波幅 TR = max(high, 前收) - min(low, 前收)，
// a_k = ΣBP/ΣTR（最近 p_k 根），UO = 100 x (4a1 + 2a2 + a3) / 7。
// 少于 p3+1 个收盘价时返回 50。平盘时 ΣTR 为 0，按 1 计算，结果为 0
func UO(highs, lows, closes []float64, p1, p2, p3 int) float64 {
	if len(closes) < p3+1 {
		return 50
	}

	start := maxInt(1, len(closes)-p3-50)
	trs := trueRange(highs[start-1:], lows[start-1:], closes[start-1:])[1:]
	bps := make([]float64, 0, len(trs))
	for i := start; i < len(closes); i++ {
		bps = append(bps, closes[i]-math.Min(lows[i], closes[i-1]))
	}

	average := func(period int) float64 {
		return sumLast(bps, period) / nonZero(sumLast(trs, period))
	}

	return 100 * (4*average(p1) + 2*average(p2) + average(p3)) / 7
}
