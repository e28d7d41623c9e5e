package indicator

import (
	"math"
	"strconv"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wave 生成一段确定的振荡行情，用来和 talib 对照
func wave(size int) (highs, lows, closes []float64) {
	for i := 0; i < size; i++ {
		x := float64(i)
		c := 100 + 5*math.Sin(x/7) + 2*math.Cos(x/3) + 0.05*x
		closes = append(closes, c)
		highs = append(highs, c+0.5+0.3*math.Abs(math.Sin(x)))
		lows = append(lows, c-0.5-0.3*math.Abs(math.Cos(x)))
	}
	return highs, lows, closes
}

// trend 收盘价逐根加1，最高价高1，最低价低1
func trend(size int) (highs, lows, closes []float64) {
	for i := 0; i < size; i++ {
		c := 100 + float64(i)
		closes = append(closes, c)
		highs = append(highs, c+1)
		lows = append(lows, c-1)
	}
	return highs, lows, closes
}

func flat(size int, price float64) []float64 {
	values := make([]float64, size)
	for i := range values {
		values[i] = price
	}
	return values
}

func assertFinite(t *testing.T, value float64) {
	t.Helper()
	assert.False(t, math.IsNaN(value), "value is NaN")
	assert.False(t, math.IsInf(value, 0), "value is Inf")
}

func TestNonZero(t *testing.T) {
	assert.Equal(t, 1.0, nonZero(0))
	assert.Equal(t, 1.0, nonZero(math.NaN()))
	assert.Equal(t, -2.5, nonZero(-2.5))
}

func TestSMA(t *testing.T) {
	t.Run("last window", func(t *testing.T) {
		assert.Equal(t, 4.0, SMA([]float64{1, 2, 3, 4, 5}, 3))
	})

	t.Run("insufficient data", func(t *testing.T) {
		assert.Equal(t, 0.0, SMA([]float64{1, 2}, 3))
	})

	t.Run("talib reference", func(t *testing.T) {
		_, _, closes := wave(150)
		for _, period := range []int{10, 20, 30, 50, 100} {
			expected := talib.Sma(closes, period)
			assert.InDelta(t, expected[len(expected)-1], SMA(closes, period), 1e-9)
		}
	})
}

func TestEMA(t *testing.T) {
	t.Run("full history recurrence", func(t *testing.T) {
		assert.InDelta(t, 23.0/9.0, EMA([]float64{1, 2, 3}, 2), 1e-12)
	})

	t.Run("insufficient data", func(t *testing.T) {
		assert.Equal(t, 0.0, EMA([]float64{1}, 2))
	})

	t.Run("depends on history length", func(t *testing.T) {
		_, _, closes := wave(150)
		assert.NotEqual(t, EMA(closes, 10), EMA(closes[100:], 10))
	})

	t.Run("series matches scalar", func(t *testing.T) {
		_, _, closes := wave(120)
		series := EMASeries(closes, 20)
		require.Len(t, series, len(closes))
		assert.Equal(t, closes[0], series[0])
		assert.Equal(t, EMA(closes, 20), series[len(series)-1])
	})

	t.Run("series without data", func(t *testing.T) {
		assert.Empty(t, EMASeries(nil, 12))
	})
}

func TestRSI(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		assert.Equal(t, 50.0, RSI([]float64{1, 2, 3}, 14))
	})

	t.Run("wilder smoothing", func(t *testing.T) {
		// 种子: 涨1跌1 -> 平均0.5/0.5；之后涨1 -> 0.75/0.25 -> RS=3
		assert.InDelta(t, 75.0, RSI([]float64{1, 2, 1, 2}, 2), 1e-9)
	})

	t.Run("no losses", func(t *testing.T) {
		_, _, closes := trend(50)
		assert.Equal(t, 100.0, RSI(closes, 14))
	})

	t.Run("no gains", func(t *testing.T) {
		closes := []float64{10, 9, 8, 7, 6, 5}
		assert.Equal(t, 0.0, RSI(closes, 3))
	})

	t.Run("flat run keeps the ratio", func(t *testing.T) {
		var closes []float64
		for i := 0; i < 60; i++ {
			closes = append(closes, 150+0.01*float64((i*7)%5)-0.02*float64(i%3))
		}
		before := RSI(closes, 14)
		assert.InDelta(t, 48.7248314446, before, 1e-6)

		closes = append(closes, flat(500, closes[len(closes)-1])...)
		assert.InDelta(t, before, RSI(closes, 14), 1e-9)
		// talib 在涨跌幅之和小于 1e-14 时给 0
		assert.Equal(t, 0.0, last(talib.Rsi(closes, 14)))
	})

	t.Run("series", func(t *testing.T) {
		series := RSISeries([]float64{1, 2, 1, 2}, 2)
		require.Len(t, series, 2)
		assert.InDelta(t, 50.0, series[0], 1e-9)
		assert.InDelta(t, 75.0, series[1], 1e-9)
		assert.Empty(t, RSISeries([]float64{1, 2}, 2))
	})
}

func TestMom(t *testing.T) {
	_, _, closes := trend(20)
	assert.Equal(t, 10.0, Mom(closes, 10))
	assert.Equal(t, 0.0, Mom(closes[:10], 10))
	assert.Equal(t, 0.0, Mom(closes[:5], 10))

	_, _, closes = wave(60)
	expected := talib.Mom(closes, 10)
	assert.InDelta(t, expected[len(expected)-1], Mom(closes, 10), 1e-9)
}

func TestMACD(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, MACDResult{}, MACD(nil, 12, 26, 9))
	})

	t.Run("flat", func(t *testing.T) {
		result := MACD(flat(80, 64), 12, 26, 9)
		assert.Equal(t, 0.0, result.Hist)
	})

	t.Run("uptrend", func(t *testing.T) {
		_, _, closes := trend(120)
		result := MACD(closes, 12, 26, 9)
		assert.Greater(t, result.MACD, 0.0)
		assert.InDelta(t, result.MACD-result.Signal, result.Hist, 1e-12)
	})
}

func TestAO(t *testing.T) {
	highs, lows, _ := trend(40)
	// 中间价等于收盘价 100+i，SMA5=137，SMA34=122.5
	assert.InDelta(t, 14.5, AO(highs, lows), 1e-9)
	assert.Equal(t, 0.0, AO(highs[:33], lows[:33]))
}

func TestBBP(t *testing.T) {
	assert.Equal(t, 0.0, BBP(nil, nil, nil, 13))

	highs, lows, closes := trend(60)
	ema := EMA(closes, 13)
	assert.InDelta(t, (highs[59]-ema)+(lows[59]-ema), BBP(highs, lows, closes, 13), 1e-9)
}

func TestStoch(t *testing.T) {
	t.Run("close at the high", func(t *testing.T) {
		_, _, closes := trend(100)
		lows := make([]float64, len(closes))
		for i, c := range closes {
			lows[i] = c - 1
		}
		result := Stoch(closes, lows, closes, 14, 3, 3)
		assert.InDelta(t, 100.0, result.K, 1e-9)
		assert.InDelta(t, 100.0, result.D, 1e-9)
	})

	t.Run("seeded values", func(t *testing.T) {
		highs, lows, closes := wave(5)
		result := Stoch(highs, lows, closes, 14, 3, 3)
		assert.Equal(t, 50.0, result.K)
		assert.Equal(t, 50.0, result.D)
	})

	t.Run("flat window", func(t *testing.T) {
		prices := flat(120, 1.25)
		result := Stoch(prices, prices, prices, 14, 3, 3)
		assert.Equal(t, 0.0, result.K)
		assert.Equal(t, 0.0, result.D)
	})

	t.Run("bounded", func(t *testing.T) {
		highs, lows, closes := wave(300)
		result := Stoch(highs, lows, closes, 14, 3, 3)
		assert.GreaterOrEqual(t, result.K, 0.0)
		assert.LessOrEqual(t, result.K, 100.0)
	})
}

func TestStochRSI(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		assert.Equal(t, 50.0, StochRSI([]float64{1, 2, 3}, 14, 14, 3, 3).K)
	})

	t.Run("flat", func(t *testing.T) {
		// RSI 全是 100，区间高低相等，分母按 1 计算
		result := StochRSI(flat(120, 64), 14, 14, 3, 3)
		assert.Equal(t, 0.0, result.K)
		assert.Equal(t, 0.0, result.D)
	})

	t.Run("uses trailing window", func(t *testing.T) {
		_, _, closes := wave(400)
		assert.Equal(t, StochRSI(closes, 14, 14, 3, 3), StochRSI(closes[200:], 14, 14, 3, 3))
	})
}

func TestWPR(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		highs, lows, closes := wave(10)
		assert.Equal(t, -50.0, WPR(highs, lows, closes, 14))
	})

	t.Run("talib reference", func(t *testing.T) {
		highs, lows, closes := wave(80)
		expected := talib.WillR(highs, lows, closes, 14)
		assert.InDelta(t, expected[len(expected)-1], WPR(highs, lows, closes, 14), 1e-9)
	})

	t.Run("flat window", func(t *testing.T) {
		prices := flat(30, 2)
		assert.InDelta(t, 0.0, WPR(prices, prices, prices, 14), 1e-12)
	})
}

func TestCCI(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		highs, lows, closes := wave(19)
		assert.Equal(t, 0.0, CCI(highs, lows, closes, 20))
	})

	t.Run("talib reference", func(t *testing.T) {
		highs, lows, closes := wave(120)
		expected := talib.Cci(highs, lows, closes, 20)
		assert.InDelta(t, expected[len(expected)-1], CCI(highs, lows, closes, 20), 1e-6)
	})

	t.Run("flat window", func(t *testing.T) {
		prices := flat(60, 1.25)
		value := CCI(prices, prices, prices, 20)
		assertFinite(t, value)
		assert.InDelta(t, 0.0, value, 1e-9)
	})
}

func TestADX(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		highs, lows, closes := wave(27)
		assert.Equal(t, ADXResult{}, ADX(highs, lows, closes, 14))
	})

	t.Run("steady uptrend", func(t *testing.T) {
		highs, lows, closes := trend(120)
		result := ADX(highs, lows, closes, 14)
		assert.InDelta(t, 100.0, result.ADX, 1e-9)
		assert.InDelta(t, 50.0, result.PDI, 1e-9)
		assert.Equal(t, 0.0, result.MDI)
	})

	t.Run("flat", func(t *testing.T) {
		prices := flat(120, 3)
		assert.Equal(t, ADXResult{}, ADX(prices, prices, prices, 14))
	})

	t.Run("uses last 5*length bars", func(t *testing.T) {
		highs, lows, closes := wave(150)
		n := len(closes)
		full := ADX(highs, lows, closes, 14)
		assert.Equal(t, full, ADX(highs[n-71:], lows[n-71:], closes[n-71:], 14))
		assert.NotEqual(t, full, ADX(highs[n-70:], lows[n-70:], closes[n-70:], 14))
	})
}

func TestUO(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		highs, lows, closes := wave(28)
		assert.Equal(t, 50.0, UO(highs, lows, closes, 7, 14, 28))
	})

	t.Run("bounded", func(t *testing.T) {
		highs, lows, closes := wave(200)
		value := UO(highs, lows, closes, 7, 14, 28)
		assert.GreaterOrEqual(t, value, 0.0)
		assert.LessOrEqual(t, value, 100.0)
	})

	t.Run("flat", func(t *testing.T) {
		prices := flat(120, 3)
		assert.Equal(t, 0.0, UO(prices, prices, prices, 7, 14, 28))
	})
}

func TestTalibHelpers(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6}

	assert.Equal(t, 9.0, highest(values, 3)[5])
	assert.Equal(t, 6.0, highest(values, 2)[7])
	assert.Equal(t, 1.0, lowest(values, 4)[4])
	assert.Equal(t, values, highest(values, 1))
	assert.Equal(t, 17.0, sumLast(values, 3))
	assert.Equal(t, []float64{2, 6}, tail(values, 2))
	assert.Equal(t, values, tail(values, 20))

	highs, lows, closes := trend(3)
	assert.Equal(t, []float64{0, 2, 2}, trueRange(highs, lows, closes))
	assert.Equal(t, closes, midpoints(highs, lows))
}

// 以下期望值和原始的 JS 指标库在同一段行情上的输出逐位对照过
func TestGoldenValues(t *testing.T) {
	tt := []struct {
		size     int
		adx      ADXResult
		uo       float64
		macd     MACDResult
		stoch    StochResult
		stochRSI StochResult
		rsi      float64
		cci      float64
		wpr      float64
		ao       float64
		mom      float64
		bbp      float64
	}{
		{
			size:     150,
			adx:      ADXResult{ADX: 49.7425430566, PDI: 23.8318185987, MDI: 5.1374851199},
			uo:       49.3807112546,
			macd:     MACDResult{MACD: 1.8234831044, Signal: 1.6917299727, Hist: 0.1317531317},
			stoch:    StochResult{K: 82.3551802581, D: 82.1544592929},
			stochRSI: StochResult{K: 100, D: 100},
			rsi:      82.9781054741,
			cci:      146.4504714543,
			wpr:      -19.3830722294,
			ao:       5.4677184259,
			mom:      2.5730000241,
			bbp:      3.4063338679,
		},
		{
			size:     300,
			adx:      ADXResult{ADX: 42.9086563306, PDI: 18.1651600527, MDI: 23.2986781642},
			uo:       48.3152591142,
			macd:     MACDResult{MACD: -1.4374566244, Signal: -1.2775081774, Hist: -0.1599484470},
			stoch:    StochResult{K: 32.9992941482, D: 23.0721992891},
			stochRSI: StochResult{K: 63.7341857202, D: 38.5907522934},
			rsi:      44.5084474494,
			cci:      -26.6500871289,
			wpr:      -53.2019098400,
			ao:       -4.5427036900,
			mom:      0.1627801224,
			bbp:      0.8307051552,
		},
	}

	const delta = 1e-6
	for _, tc := range tt {
		t.Run(strconv.Itoa(tc.size), func(t *testing.T) {
			highs, lows, closes := wave(tc.size)

			adx := ADX(highs, lows, closes, 14)
			assert.InDelta(t, tc.adx.ADX, adx.ADX, delta)
			assert.InDelta(t, tc.adx.PDI, adx.PDI, delta)
			assert.InDelta(t, tc.adx.MDI, adx.MDI, delta)

			macd := MACD(closes, 12, 26, 9)
			assert.InDelta(t, tc.macd.MACD, macd.MACD, delta)
			assert.InDelta(t, tc.macd.Signal, macd.Signal, delta)
			assert.InDelta(t, tc.macd.Hist, macd.Hist, delta)

			stoch := Stoch(highs, lows, closes, 14, 3, 3)
			assert.InDelta(t, tc.stoch.K, stoch.K, delta)
			assert.InDelta(t, tc.stoch.D, stoch.D, delta)

			stochRSI := StochRSI(closes, 14, 14, 3, 3)
			assert.InDelta(t, tc.stochRSI.K, stochRSI.K, delta)
			assert.InDelta(t, tc.stochRSI.D, stochRSI.D, delta)

			assert.InDelta(t, tc.uo, UO(highs, lows, closes, 7, 14, 28), delta)
			assert.InDelta(t, tc.rsi, RSI(closes, 14), delta)
			assert.InDelta(t, tc.cci, CCI(highs, lows, closes, 20), delta)
			assert.InDelta(t, tc.wpr, WPR(highs, lows, closes, 14), delta)
			assert.InDelta(t, tc.ao, AO(highs, lows), delta)
			assert.InDelta(t, tc.mom, Mom(closes, 10), delta)
			assert.InDelta(t, tc.bbp, BBP(highs, lows, closes, 13), delta)
		})
	}
}
