// 定义模型包
package model

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Candle 定义了K线的结构，上游生成之后就不再修改
type Candle struct {
	Pair      string    // 交易对，如 USDJPY
	Time      time.Time // K线开始时间
	UpdatedAt time.Time // 更新时间
	Open      float64   // 开盘价
	Close     float64   // 收盘价
	Low       float64   // 最低价
	High      float64   // 最高价
	Volume    float64   // 成交量
	Complete  bool      // 是否是完整周期的K线

	// 从CSV输入中附加的额外列
	Metadata map[string]float64
}

// Empty 方法用于判断一个K线是否为空
func (c Candle) Empty() bool {
	return c.Pair == "" && c.Close == 0 && c.Open == 0 && c.Volume == 0
}

// ToSlice 方法将Candle的数据转换成字符串切片，列顺序和CSV读取时的默认表头一致
func (c Candle) ToSlice(precision int) []string {
	return []string{
		fmt.Sprintf("%d", c.Time.Unix()),
		strconv.FormatFloat(c.Open, 'f', precision, 64),
		strconv.FormatFloat(c.Close, 'f', precision, 64),
		strconv.FormatFloat(c.Low, 'f', precision, 64),
		strconv.FormatFloat(c.High, 'f', precision, 64),
		strconv.FormatFloat(c.Volume, 'f', precision, 64),
	}
}

// HeikinAshi 保存上一根平均K线，用于逐根计算
type HeikinAshi struct {
	PreviousHACandle Candle
}

// NewHeikinAshi 函数用于创建一个新的HeikinAshi实例
func NewHeikinAshi() *HeikinAshi {
	return &HeikinAshi{}
}

// ToHeikinAshi 方法将普通K线转换为平均K线（Heikin Ashi），时间和成交量保持不变
func (c Candle) ToHeikinAshi(ha *HeikinAshi) Candle {
	haCandle := ha.CalculateHeikinAshi(c)

	return Candle{
		Pair:      c.Pair,
		Open:      haCandle.Open,
		High:      haCandle.High,
		Low:       haCandle.Low,
		Close:     haCandle.Close,
		Volume:    c.Volume,
		Complete:  c.Complete,
		Time:      c.Time,
		UpdatedAt: c.UpdatedAt,
	}
}

// CalculateHeikinAshi 方法用于计算并返回一个平均K线
func (ha *HeikinAshi) CalculateHeikinAshi(c Candle) Candle {
	var hkCandle Candle

	openValue := ha.PreviousHACandle.Open
	closeValue := ha.PreviousHACandle.Close

	// 第一根平均K线直接使用当前K线的开收盘价
	if ha.PreviousHACandle.Empty() {
		openValue = c.Open
		closeValue = c.Close
	}

	hkCandle.Open = (openValue + closeValue) / 2
	hkCandle.Close = (c.Open + c.High + c.Low + c.Close) / 4
	hkCandle.High = math.Max(c.High, math.Max(hkCandle.Open, hkCandle.Close))
	hkCandle.Low = math.Min(c.Low, math.Min(hkCandle.Open, hkCandle.Close))
	ha.PreviousHACandle = hkCandle

	return hkCandle
}

// Dataframe 把一段K线拆成按列存放的序列，指标计算都在这些平行数组上进行，
// 同一个下标对应同一根K线
type Dataframe struct {
	Pair string

	Close  Series[float64]
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Volume Series[float64]

	Time       []time.Time
	LastUpdate time.Time

	// 自定义用户元数据
	Metadata map[string]Series[float64]
}

// NewDataframe 根据按时间排序的K线构建数据帧，输入切片不会被修改也不会被引用
func NewDataframe(pair string, candles []Candle) *Dataframe {
	df := &Dataframe{
		Pair:     pair,
		Close:    make(Series[float64], 0, len(candles)),
		Open:     make(Series[float64], 0, len(candles)),
		High:     make(Series[float64], 0, len(candles)),
		Low:      make(Series[float64], 0, len(candles)),
		Volume:   make(Series[float64], 0, len(candles)),
		Time:     make([]time.Time, 0, len(candles)),
		Metadata: make(map[string]Series[float64]),
	}

	for _, candle := range candles {
		df.Close = append(df.Close, candle.Close)
		df.Open = append(df.Open, candle.Open)
		df.High = append(df.High, candle.High)
		df.Low = append(df.Low, candle.Low)
		df.Volume = append(df.Volume, candle.Volume)
		df.Time = append(df.Time, candle.Time)
		df.LastUpdate = candle.UpdatedAt
		for key, value := range candle.Metadata {
			df.Metadata[key] = append(df.Metadata[key], value)
		}
	}

	return df
}

// Len 返回数据帧中K线的数量
func (df Dataframe) Len() int {
	return df.Close.Len()
}

// Sample 方法用于从Dataframe中抽取最近的N个数据点作为一个新的Dataframe
func (df Dataframe) Sample(positions int) Dataframe {
	size := len(df.Time)
	start := size - positions
	if start <= 0 {
		return df
	}

	sample := Dataframe{
		Pair:       df.Pair,
		Close:      df.Close.LastValues(positions),
		Open:       df.Open.LastValues(positions),
		High:       df.High.LastValues(positions),
		Low:        df.Low.LastValues(positions),
		Volume:     df.Volume.LastValues(positions),
		Time:       df.Time[start:],
		LastUpdate: df.LastUpdate,
		Metadata:   make(map[string]Series[float64]),
	}

	for key := range df.Metadata {
		sample.Metadata[key] = df.Metadata[key].LastValues(positions)
	}

	return sample
}
