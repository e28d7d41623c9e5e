// Package indicator 实现技术分析引擎用到的全部计算函数。
//
// 所有函数都是纯函数：输入是按时间顺序排列（下标0最早）的价格数组，输出是最新一根K线
// 对应的指标值。函数之间没有共享状态，每次调用都从传入的完整历史重新计算。
//
// 数据不够时不会返回错误，而是返回各自约定的占位值（比如 RSI 返回 50，SMA 返回 0）；
// 分母为 0 时用 1 代替，保证计算总能结束。
package indicator

import "math"

// nonZero 分母为0时用1代替。NaN 也按 0 处理，这样平盘（最高价等于最低价）时结果仍然是有限值
func nonZero(v float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return 1
	}
	return v
}

// orZero 把 NaN 当作 0
func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
