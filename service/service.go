package service

import (
	"context"
	"time"

	"github.com/itqwq/fxsim/model"
)

// Feeder 提供按时间排序的历史K线
type Feeder interface {
	Candles(pair, timeframe string) ([]model.Candle, error)
	CandlesByPeriod(ctx context.Context, pair, timeframe string, start, end time.Time) ([]model.Candle, error)
	CandlesByLimit(ctx context.Context, pair, timeframe string, limit int) ([]model.Candle, error) // 最近 limit 根K线
}

// Notifier 接收模拟器中的持仓事件
type Notifier interface {
	Notify(string)
	OnPosition(position model.Position) // 开仓和平仓时回调
	OnError(err error)
}
