// Package storage 保存模拟器中的持仓记录
package storage

import (
	"time"

	"github.com/itqwq/fxsim/model"
)

// PositionFilter 返回 true 表示持仓符合条件
type PositionFilter func(model.Position) bool

type Storage interface {
	CreatePosition(position *model.Position) error                  // 新建持仓并分配ID
	UpdatePosition(position *model.Position) error                  // 按ID覆盖持仓
	Positions(filters ...PositionFilter) ([]*model.Position, error) // 按开仓时间排序，满足全部过滤条件的持仓
}

func WithStatus(status model.PositionStatusType) PositionFilter {
	return func(position model.Position) bool {
		return position.Status == status
	}
}

func WithSide(side model.SideType) PositionFilter {
	return func(position model.Position) bool {
		return position.Side == side
	}
}

func WithPair(pair string) PositionFilter {
	return func(position model.Position) bool {
		return position.Pair == pair
	}
}

// WithClosedBeforeOrEqual 只保留在 time 之前（含）平仓的持仓，未平仓的不算
func WithClosedBeforeOrEqual(time time.Time) PositionFilter {
	return func(position model.Position) bool {
		return position.Status == model.PositionStatusClosed && !position.ClosedAt.After(time)
	}
}
