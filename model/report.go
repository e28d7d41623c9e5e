package model

import "fmt"

// Action 是指标给出的操作建议，只有三种取值
type Action int

const (
	ActionNeutral Action = iota // 中性，不操作
	ActionBuy                   // 买入
	ActionSell                  // 卖出
)

// String 返回界面上显示的标签
func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return "NEUTRAL"
	}
}

// MarshalText 让 Action 在 JSON 里序列化成 "BUY"/"SELL"/"NEUTRAL"
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText 解析 "BUY"/"SELL"/"NEUTRAL"
func (a *Action) UnmarshalText(text []byte) error {
	switch string(text) {
	case "BUY":
		*a = ActionBuy
	case "SELL":
		*a = ActionSell
	case "NEUTRAL":
		*a = ActionNeutral
	default:
		return fmt.Errorf("invalid action: %s", text)
	}
	return nil
}

// IndicatorResult 是报告中的一行。Name 带有参数，比如 "RSI (14)"，界面按这个字符串匹配，不能改动
type IndicatorResult struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Action Action  `json:"action"`
}

// Report 是一次分析的结果，振荡指标和均线两张表的顺序固定。
// 每次分析都会新建一个 Report，不引用输入的K线
type Report struct {
	Oscillators    []IndicatorResult `json:"oscillators"`
	MovingAverages []IndicatorResult `json:"movingAverages"`
}

// ActionCount 统计一组结果中各个建议出现的次数
type ActionCount struct {
	Buy     int
	Sell    int
	Neutral int
}

func (c *ActionCount) add(action Action) {
	switch action {
	case ActionBuy:
		c.Buy++
	case ActionSell:
		c.Sell++
	default:
		c.Neutral++
	}
}

// Summary 分别统计振荡指标、均线以及两者合计的建议次数
func (r Report) Summary() (oscillators, movingAverages, total ActionCount) {
	for _, result := range r.Oscillators {
		oscillators.add(result.Action)
		total.add(result.Action)
	}
	for _, result := range r.MovingAverages {
		movingAverages.add(result.Action)
		total.add(result.Action)
	}
	return oscillators, movingAverages, total
}
