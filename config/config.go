// Package config 读取模拟器的 YAML 配置，并用环境变量覆盖
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"github.com/itqwq/fxsim/model"
)

const (
	DefaultPair      = "USDJPY"
	DefaultTimeframe = "1m"
	DefaultBalance   = 1000000
	DefaultSpread    = 0.003
	DefaultLotSize   = 0.1
	DefaultLotUnits  = 100000
)

// Load 读取 path 指向的 YAML 文件，文件不存在时使用默认值。
// 环境变量 FXSIM_PAIR、FXSIM_TIMEFRAME、FXSIM_SPREAD、FXSIM_BALANCE 优先于文件
func Load(path string) (model.Settings, error) {
	settings := model.Settings{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return settings, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &settings); err != nil {
				return settings, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("FXSIM_PAIR"); v != "" {
		settings.Pair = v
	}
	if v := os.Getenv("FXSIM_TIMEFRAME"); v != "" {
		settings.Timeframe = v
	}
	if v := os.Getenv("FXSIM_SPREAD"); v != "" {
		spread, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return settings, fmt.Errorf("FXSIM_SPREAD: %w", err)
		}
		settings.Spread = spread
	}
	if v := os.Getenv("FXSIM_BALANCE"); v != "" {
		balance, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return settings, fmt.Errorf("FXSIM_BALANCE: %w", err)
		}
		settings.Balance = balance
	}

	return WithDefaults(settings), nil
}

// WithDefaults 为零值字段填上默认值。点差为0时也视为未设置
func WithDefaults(settings model.Settings) model.Settings {
	if settings.Pair == "" {
		settings.Pair = DefaultPair
	}
	if settings.Timeframe == "" {
		settings.Timeframe = DefaultTimeframe
	}
	if settings.Balance == 0 {
		settings.Balance = DefaultBalance
	}
	if settings.Spread == 0 {
		settings.Spread = DefaultSpread
	}
	if settings.LotSize == 0 {
		settings.LotSize = DefaultLotSize
	}
	if settings.LotUnits == 0 {
		settings.LotUnits = DefaultLotUnits
	}
	return settings
}

// Validate 检查配置是否可用
func Validate(settings model.Settings) error {
	if _, err := str2duration.ParseDuration(settings.Timeframe); err != nil {
		return fmt.Errorf("invalid timeframe %q: %w", settings.Timeframe, err)
	}
	if settings.Balance <= 0 {
		return fmt.Errorf("balance must be positive")
	}
	if settings.Spread < 0 {
		return fmt.Errorf("spread must not be negative")
	}
	if settings.LotSize <= 0 || settings.LotUnits <= 0 {
		return fmt.Errorf("lot_size and lot_units must be positive")
	}
	return nil
}
