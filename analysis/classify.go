package analysis

import "github.com/itqwq/fxsim/model"

// ClassifyBounded 用于0~100区间的振荡指标（RSI、UO）：低于30超卖买入，高于70超买卖出
func ClassifyBounded(value float64) model.Action {
	switch {
	case value < 30:
		return model.ActionBuy
	case value > 70:
		return model.ActionSell
	default:
		return model.ActionNeutral
	}
}

// ClassifyStoch 用于随机指标和 StochRSI 的 %K：低于20买入，高于80卖出
func ClassifyStoch(value float64) model.Action {
	switch {
	case value < 20:
		return model.ActionBuy
	case value > 80:
		return model.ActionSell
	default:
		return model.ActionNeutral
	}
}

// ClassifyCCI 低于-100买入，高于100卖出
func ClassifyCCI(value float64) model.Action {
	switch {
	case value < -100:
		return model.ActionBuy
	case value > 100:
		return model.ActionSell
	default:
		return model.ActionNeutral
	}
}

// ClassifyADX ADX 大于25说明趋势足够强，再看 +DI 和 -DI 哪个占优
func ClassifyADX(adx, pdi, mdi float64) model.Action {
	switch {
	case adx > 25 && pdi > mdi:
		return model.ActionBuy
	case adx > 25 && mdi > pdi:
		return model.ActionSell
	default:
		return model.ActionNeutral
	}
}

// ClassifyZero 用于以0为中轴的指标（AO、动量、MACD柱、多空力量），没有中性带
func ClassifyZero(value float64) model.Action {
	switch {
	case value > 0:
		return model.ActionBuy
	case value < 0:
		return model.ActionSell
	default:
		return model.ActionNeutral
	}
}

// ClassifyWPR 威廉指标低于-80买入，高于-20卖出
func ClassifyWPR(value float64) model.Action {
	switch {
	case value < -80:
		return model.ActionBuy
	case value > -20:
		return model.ActionSell
	default:
		return model.ActionNeutral
	}
}

// ClassifyMA 均线只有两种结果：现价严格高于均线买入，否则卖出（相等也是卖出）
func ClassifyMA(price, average float64) model.Action {
	if price > average {
		return model.ActionBuy
	}
	return model.ActionSell
}
