package notification

import (
	"fmt"

	"github.com/itqwq/fxsim/model"
	"github.com/itqwq/fxsim/tools/log"
)

// positionTitle 生成开仓/平仓通知的标题
func positionTitle(position model.Position) string {
	if position.Status == model.PositionStatusClosed {
		return fmt.Sprintf("✅ POSITION CLOSED - %s %s (%.2f)", position.Side, position.Pair, position.Profit)
	}
	return fmt.Sprintf("🆕 POSITION OPENED - %s %s", position.Side, position.Pair)
}

// Log 把通知写到日志里，命令行默认使用
type Log struct{}

func NewLog() Log {
	return Log{}
}

func (Log) Notify(text string) {
	log.Info(text)
}

func (l Log) OnPosition(position model.Position) {
	log.WithField("id", position.ID).Info(positionTitle(position))
}

func (Log) OnError(err error) {
	log.WithError(err).Error("simulator error")
}
