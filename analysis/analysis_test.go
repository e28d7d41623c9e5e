package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itqwq/fxsim/indicator"
	"github.com/itqwq/fxsim/model"
)

var start = time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

func constantCandles(size int, price float64) []model.Candle {
	candles := make([]model.Candle, size)
	for i := range candles {
		candles[i] = model.Candle{
			Time:  start.Add(time.Duration(i) * time.Minute),
			Open:  price,
			High:  price,
			Low:   price,
			Close: price,
		}
	}
	return candles
}

func risingCandles(size int) []model.Candle {
	candles := make([]model.Candle, size)
	for i := range candles {
		c := 100 + float64(i)
		candles[i] = model.Candle{
			Time:  start.Add(time.Duration(i) * time.Minute),
			Open:  c - 0.5,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return candles
}

func waveCandles(size int, offset float64) []model.Candle {
	candles := make([]model.Candle, size)
	for i := range candles {
		x := float64(i)
		c := offset + 150 + 3*math.Sin(x/5) + math.Cos(x/2)
		candles[i] = model.Candle{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Open:  c - 0.1,
			High:  c + 0.4 + 0.2*math.Abs(math.Sin(x)),
			Low:   c - 0.4 - 0.2*math.Abs(math.Cos(x)),
			Close: c,
		}
	}
	return candles
}

func find(t *testing.T, results []model.IndicatorResult, name string) model.IndicatorResult {
	t.Helper()
	for _, result := range results {
		if result.Name == name {
			return result
		}
	}
	require.Failf(t, "indicator not found", "%s", name)
	return model.IndicatorResult{}
}

func TestAnalyze_MinimumHistory(t *testing.T) {
	_, ok := Analyze(nil)
	assert.False(t, ok)

	_, ok = Analyze(waveCandles(99, 0))
	assert.False(t, ok)

	report, ok := Analyze(waveCandles(100, 0))
	require.True(t, ok)
	assert.Len(t, report.Oscillators, 11)
	assert.Len(t, report.MovingAverages, 10)

	_, ok = AnalyzeDataframe(nil)
	assert.False(t, ok)
}

func TestAnalyze_Labels(t *testing.T) {
	report, ok := Analyze(waveCandles(150, 0))
	require.True(t, ok)

	var oscillators, averages []string
	for _, result := range report.Oscillators {
		oscillators = append(oscillators, result.Name)
	}
	for _, result := range report.MovingAverages {
		averages = append(averages, result.Name)
	}

	assert.Equal(t, []string{
		"RSI (14)",
		"Stoch %K (14, 3, 3)",
		"CCI (20)",
		"ADX (14)",
		"AO",
		"Mom (10)",
		"MACD (12, 26)",
		"Stoch RSI (3, 3, 14, 14)",
		"WPR (14)",
		"BBP (13)",
		"UO (7, 14, 28)",
	}, oscillators)
	assert.Equal(t, []string{
		"SMA (10)", "EMA (10)",
		"SMA (20)", "EMA (20)",
		"SMA (30)", "EMA (30)",
		"SMA (50)", "EMA (50)",
		"SMA (100)", "EMA (100)",
	}, averages)
}

func TestAnalyze_ConstantPrice(t *testing.T) {
	report, ok := Analyze(constantCandles(120, 64))
	require.True(t, ok)

	rsi := find(t, report.Oscillators, "RSI (14)")
	assert.Equal(t, 100.0, rsi.Value)
	assert.Equal(t, model.ActionSell, rsi.Action)

	mom := find(t, report.Oscillators, "Mom (10)")
	assert.Equal(t, 0.0, mom.Value)
	assert.Equal(t, model.ActionNeutral, mom.Action)

	ao := find(t, report.Oscillators, "AO")
	assert.Equal(t, 0.0, ao.Value)
	assert.Equal(t, model.ActionNeutral, ao.Action)

	// 区间高低相等时分母按 1 计算，这几个指标都落到 0
	for _, name := range []string{"Stoch %K (14, 3, 3)", "Stoch RSI (3, 3, 14, 14)", "UO (7, 14, 28)"} {
		result := find(t, report.Oscillators, name)
		assert.Equal(t, 0.0, result.Value, name)
		assert.Equal(t, model.ActionBuy, result.Action, name)
	}

	for _, result := range report.Oscillators {
		assert.False(t, math.IsNaN(result.Value) || math.IsInf(result.Value, 0), result.Name)
	}

	// 现价等于均线时按 ">" 规则判为卖出
	for _, result := range report.MovingAverages {
		assert.Equal(t, 64.0, result.Value, result.Name)
		assert.Equal(t, model.ActionSell, result.Action, result.Name)
	}
}

func TestAnalyze_RisingPrice(t *testing.T) {
	report, ok := Analyze(risingCandles(120))
	require.True(t, ok)

	rsi := find(t, report.Oscillators, "RSI (14)")
	assert.Greater(t, rsi.Value, 70.0)
	assert.Equal(t, model.ActionSell, rsi.Action)

	for _, result := range report.MovingAverages {
		assert.Less(t, result.Value, 219.0, result.Name)
		assert.Equal(t, model.ActionBuy, result.Action, result.Name)
	}
}

func TestAnalyze_GoldenReport(t *testing.T) {
	report, ok := Analyze(waveCandles(200, 0))
	require.True(t, ok)

	expected := []struct {
		name   string
		value  float64
		action model.Action
	}{
		{"RSI (14)", 73.8256669064, model.ActionSell},
		{"Stoch %K (14, 3, 3)", 91.2341180047, model.ActionSell},
		{"CCI (20)", 92.3225444962, model.ActionNeutral},
		{"ADX (14)", 33.4684383489, model.ActionBuy},
		{"AO", 2.3914251934, model.ActionBuy},
		{"Mom (10)", 1.8317613251, model.ActionBuy},
		{"MACD (12, 26)", 0.3464962189, model.ActionBuy},
		{"Stoch RSI (3, 3, 14, 14)", 100, model.ActionSell},
		{"WPR (14)", -10.7593284439, model.ActionSell},
		{"BBP (13)", 3.0466964506, model.ActionBuy},
		{"UO (7, 14, 28)", 51.1237442287, model.ActionNeutral},
		{"SMA (10)", 152.1180352218, model.ActionBuy},
		{"EMA (10)", 151.9530111534, model.ActionBuy},
		{"SMA (20)", 150.1027491504, model.ActionBuy},
		{"EMA (20)", 151.0838583028, model.ActionBuy},
		{"SMA (30)", 149.8463483577, model.ActionBuy},
		{"EMA (30)", 150.6927119421, model.ActionBuy},
		{"SMA (50)", 150.1894909704, model.ActionBuy},
		{"EMA (50)", 150.3821289481, model.ActionBuy},
		{"SMA (100)", 150.1589681401, model.ActionBuy},
		{"EMA (100)", 150.1959358298, model.ActionBuy},
	}

	results := append(append([]model.IndicatorResult(nil), report.Oscillators...), report.MovingAverages...)
	require.Len(t, results, len(expected))
	for i, e := range expected {
		assert.Equal(t, e.name, results[i].Name)
		assert.InDelta(t, e.value, results[i].Value, 1e-6, e.name)
		assert.Equal(t, e.action, results[i].Action, e.name)
	}
}

func TestAnalyze_PriceShiftInvariance(t *testing.T) {
	base, ok := Analyze(waveCandles(150, 0))
	require.True(t, ok)
	shifted, ok := Analyze(waveCandles(150, 1000))
	require.True(t, ok)

	for _, name := range []string{"CCI (20)", "WPR (14)"} {
		expected := find(t, base.Oscillators, name)
		actual := find(t, shifted.Oscillators, name)
		assert.InDelta(t, expected.Value, actual.Value, 1e-6, name)
		assert.Equal(t, expected.Action, actual.Action, name)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	candles := waveCandles(300, 0)
	first, ok := Analyze(candles)
	require.True(t, ok)
	second, ok := Analyze(candles)
	require.True(t, ok)
	assert.Equal(t, first, second)

	fromDataframe, ok := AnalyzeDataframe(model.NewDataframe("USDJPY", candles))
	require.True(t, ok)
	assert.Equal(t, first, fromDataframe)
}

func TestAnalyze_DoesNotModifyInput(t *testing.T) {
	candles := waveCandles(120, 0)
	snapshot := append([]model.Candle(nil), candles...)

	_, ok := Analyze(candles)
	require.True(t, ok)
	assert.Equal(t, snapshot, candles)
}

func TestAnalyze_ADXGuard(t *testing.T) {
	candles := waveCandles(27, 0)
	df := model.NewDataframe("", candles)
	result := indicator.ADX(df.High, df.Low, df.Close, 14)
	assert.Equal(t, indicator.ADXResult{}, result)
	assert.Equal(t, model.ActionNeutral, ClassifyADX(result.ADX, result.PDI, result.MDI))
}

func TestReportSummary(t *testing.T) {
	report, ok := Analyze(risingCandles(120))
	require.True(t, ok)

	oscillators, averages, total := report.Summary()
	assert.Equal(t, 11, oscillators.Buy+oscillators.Sell+oscillators.Neutral)
	assert.Equal(t, model.ActionCount{Buy: 10}, averages)
	assert.Equal(t, oscillators.Buy+averages.Buy, total.Buy)
	assert.Equal(t, oscillators.Sell, total.Sell)
}
