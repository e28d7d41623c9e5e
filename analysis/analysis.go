// Package analysis 把 indicator 包里的计算函数组合成一份技术分析报告。
//
// Analyze 按固定顺序计算11个振荡指标和10条均线，并给每一项加上 BUY/SELL/NEUTRAL 建议。
// K线少于 MinCandles 时不生成报告（返回 false），调用方应当显示"暂无分析"，
// 而不是当成错误或者渲染一份残缺的报告。
//
// 各个指标在数据不足时返回固定的占位值而不是错误，所以整个流程总能正常结束。
// 代价是占位值可能恰好落在中性区间，看起来和真实的中性读数一样，这是有意保留的行为。
//
// 引擎不保存任何状态，每次调用都重新扫描整段历史，调用频率由调用方控制
// （比如打开分析面板时才计算，而不是每根K线都算）。
package analysis

import (
	"fmt"

	"github.com/itqwq/fxsim/indicator"
	"github.com/itqwq/fxsim/model"
)

// MinCandles 生成报告至少需要的K线数量
const MinCandles = 100

// MovingAveragePeriods 均线表中的周期，顺序固定，每个周期先 SMA 后 EMA
var MovingAveragePeriods = []int{10, 20, 30, 50, 100}

// Analyze 对按时间排序的K线做技术分析，第二个返回值为 false 表示K线不足，没有报告
func Analyze(candles []model.Candle) (model.Report, bool) {
	if len(candles) < MinCandles {
		return model.Report{}, false
	}
	return AnalyzeDataframe(model.NewDataframe("", candles))
}

// AnalyzeDataframe 与 Analyze 相同，输入是已经拆好列的数据帧
func AnalyzeDataframe(df *model.Dataframe) (model.Report, bool) {
	if df == nil || df.Len() < MinCandles {
		return model.Report{}, false
	}

	closes := df.Close.Values()
	highs := df.High.Values()
	lows := df.Low.Values()
	price := df.Close.Last(0)

	report := model.Report{
		Oscillators:    make([]model.IndicatorResult, 0, 11),
		MovingAverages: make([]model.IndicatorResult, 0, len(MovingAveragePeriods)*2),
	}
	add := func(name string, value float64, action model.Action) {
		report.Oscillators = append(report.Oscillators, model.IndicatorResult{
			Name: name, Value: value, Action: action,
		})
	}

	rsi := indicator.RSI(closes, 14)
	add("RSI (14)", rsi, ClassifyBounded(rsi))

	stoch := indicator.Stoch(highs, lows, closes, 14, 3, 3)
	add("Stoch %K (14, 3, 3)", stoch.K, ClassifyStoch(stoch.K))

	cci := indicator.CCI(highs, lows, closes, 20)
	add("CCI (20)", cci, ClassifyCCI(cci))

	adx := indicator.ADX(highs, lows, closes, 14)
	add("ADX (14)", adx.ADX, ClassifyADX(adx.ADX, adx.PDI, adx.MDI))

	ao := indicator.AO(highs, lows)
	add("AO", ao, ClassifyZero(ao))

	mom := indicator.Mom(closes, 10)
	add("Mom (10)", mom, ClassifyZero(mom))

	macd := indicator.MACD(closes, 12, 26, 9)
	add("MACD (12, 26)", macd.Hist, ClassifyZero(macd.Hist))

	stochRsi := indicator.StochRSI(closes, 14, 14, 3, 3)
	add("Stoch RSI (3, 3, 14, 14)", stochRsi.K, ClassifyStoch(stochRsi.K))

	wpr := indicator.WPR(highs, lows, closes, 14)
	add("WPR (14)", wpr, ClassifyWPR(wpr))

	bbp := indicator.BBP(highs, lows, closes, 13)
	add("BBP (13)", bbp, ClassifyZero(bbp))

	uo := indicator.UO(highs, lows, closes, 7, 14, 28)
	add("UO (7, 14, 28)", uo, ClassifyBounded(uo))

	for _, period := range MovingAveragePeriods {
		sma := indicator.SMA(closes, period)
		report.MovingAverages = append(report.MovingAverages, model.IndicatorResult{
			Name:   fmt.Sprintf("SMA (%d)", period),
			Value:  sma,
			Action: ClassifyMA(price, sma),
		})

		ema := indicator.EMA(closes, period)
		report.MovingAverages = append(report.MovingAverages, model.IndicatorResult{
			Name:   fmt.Sprintf("EMA (%d)", period),
			Value:  ema,
			Action: ClassifyMA(price, ema),
		})
	}

	return report, true
}
