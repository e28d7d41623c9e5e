package model

import (
	"fmt"
	"time"
)

type SideType string

type PositionStatusType string

var (
	SideTypeBuy  SideType = "BUY"
	SideTypeSell SideType = "SELL"
)

var (
	PositionStatusOpen     PositionStatusType = "OPEN"     // 持仓中
	PositionStatusClosed   PositionStatusType = "CLOSED"   // 已平仓
	PositionStatusCanceled PositionStatusType = "CANCELED" // 重置模拟时作废，不计入盈亏
)

// Direction 买入为1，卖出为-1，用于计算盈亏
func (s SideType) Direction() float64 {
	if s == SideTypeSell {
		return -1
	}
	return 1
}

// Position 是模拟器中的一笔持仓。买单以 ask 开仓、以 bid 平仓，卖单相反
type Position struct {
	ID         int64              `db:"id" json:"id" gorm:"primaryKey,autoIncrement"`
	Pair       string             `db:"pair" json:"pair"`
	Side       SideType           `db:"side" json:"side"`
	Status     PositionStatusType `db:"status" json:"status"`
	Lot        float64            `db:"lot" json:"lot"`     // 手数，0.1手就是1万货币单位
	Units      float64            `db:"units" json:"units"` // 货币单位数量
	EntryPrice float64            `db:"entry_price" json:"entry_price"`
	ExitPrice  float64            `db:"exit_price" json:"exit_price"`
	Profit     float64            `db:"profit" json:"profit"` // 平仓后的已实现盈亏

	OpenedAt time.Time `db:"opened_at" json:"opened_at"`
	ClosedAt time.Time `db:"closed_at" json:"closed_at"`
}

// PnL 按给定的平仓价计算盈亏：(平仓价 - 开仓价) x 数量 x 方向
func (p Position) PnL(exitPrice float64) float64 {
	return (exitPrice - p.EntryPrice) * p.Units * p.Side.Direction()
}

// Return 返回已实现盈亏相对开仓价值的比例
func (p Position) Return() float64 {
	cost := p.EntryPrice * p.Units
	if cost == 0 {
		return 0
	}
	return p.Profit / cost
}

func (p Position) String() string {
	return fmt.Sprintf("[%s] %s %s | ID: %d, %.2f lot @ %.3f",
		p.Status, p.Side, p.Pair, p.ID, p.Lot, p.EntryPrice)
}

// Settings 定义了模拟器的基本设置
type Settings struct {
	Pair      string  `yaml:"pair"`
	Timeframe string  `yaml:"timeframe"`
	Balance   float64 `yaml:"balance"`   // 初始资金
	Spread    float64 `yaml:"spread"`    // 固定点差，ask = bid + spread
	LotSize   float64 `yaml:"lot_size"`  // 默认下单手数
	LotUnits  float64 `yaml:"lot_units"` // 一手对应的货币单位数量
}
