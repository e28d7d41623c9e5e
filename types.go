package fxsim

import (
	"github.com/itqwq/fxsim/model"
)

type (
	Settings        = model.Settings
	Candle          = model.Candle
	Dataframe       = model.Dataframe
	Report          = model.Report
	IndicatorResult = model.IndicatorResult
	Action          = model.Action
	Position        = model.Position
	SideType        = model.SideType
)

var (
	SideTypeBuy  = model.SideTypeBuy
	SideTypeSell = model.SideTypeSell

	ActionBuy     = model.ActionBuy
	ActionSell    = model.ActionSell
	ActionNeutral = model.ActionNeutral
)
