package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"

	"github.com/itqwq/fxsim/model"
	"github.com/itqwq/fxsim/tools/log"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnknownFeed      = errors.New("unknown feed")
)

// dukascopyTimeLayout 是 Dukascopy 导出文件的时间格式，例如 03.11.2025 00:00:00.000
const dukascopyTimeLayout = "02.01.2006 15:04:05"

// PairFeed 描述一个交易对的CSV数据源
type PairFeed struct {
	Pair       string // 交易对，如 USDJPY
	File       string // CSV文件路径
	Timeframe  string // 文件中K线的周期，如 1m、1h
	HeikinAshi bool   // 是否转换成平均K线
}

// CSVFeed 保存从CSV读取并重采样之后的K线，键为 交易对--周期
type CSVFeed struct {
	Feeds               map[string]PairFeed
	CandlePairTimeFrame map[string][]model.Candle
}

// parseHeaders 解析表头，返回每一列的下标和额外的自定义列。
// 第一列能解析成数字说明文件没有表头，此时使用默认的列顺序
func parseHeaders(headers []string) (index map[string]int, additional []string, ok bool) {
	headerMap := map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}

	_, err := strconv.Atoi(headers[0])
	if err == nil {
		return headerMap, additional, false
	}

	for index, h := range headers {
		if _, ok := headerMap[h]; !ok {
			additional = append(additional, h)
		}
		headerMap[h] = index
	}

	return headerMap, additional, true
}

// isDukascopy 判断是否为 Dukascopy 导出格式（Gmt time,Open,High,Low,Close,Volume）
func isDukascopy(headers []string) bool {
	return len(headers) > 0 && strings.EqualFold(strings.TrimSpace(headers[0]), "gmt time")
}

// parseDukascopyTime 解析 dd.mm.yyyy HH:MM:SS.mmm，毫秒部分忽略，解析失败时尝试 RFC3339
func parseDukascopyTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) >= len(dukascopyTimeLayout) {
		if t, err := time.Parse(dukascopyTimeLayout, value[:len(dukascopyTimeLayout)]); err == nil {
			return t.UTC(), nil
		}
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return t.UTC(), nil
}

// readDukascopy 读取 Dukascopy 格式的数据行，空行和少于5列的行直接跳过
func readDukascopy(pair string, lines [][]string) ([]model.Candle, error) {
	candles := make([]model.Candle, 0, len(lines))
	skipped := 0
	for _, line := range lines {
		if len(line) < 5 {
			skipped++
			continue
		}

		t, err := parseDukascopyTime(line[0])
		if err != nil {
			return nil, err
		}

		candle := model.Candle{
			Pair:      pair,
			Time:      t,
			UpdatedAt: t,
			Complete:  true,
		}

		values := make([]float64, 4)
		for i := range values {
			values[i], err = strconv.ParseFloat(strings.TrimSpace(line[i+1]), 64)
			if err != nil {
				return nil, err
			}
		}
		candle.Open, candle.High, candle.Low, candle.Close = values[0], values[1], values[2], values[3]

		if len(line) > 5 && strings.TrimSpace(line[5]) != "" {
			candle.Volume, err = strconv.ParseFloat(strings.TrimSpace(line[5]), 64)
			if err != nil {
				return nil, err
			}
		}

		candles = append(candles, candle)
	}

	if skipped > 0 {
		log.WithField("pair", pair).Debugf("skipped %d short rows", skipped)
	}
	return candles, nil
}

// readUnix 读取 time,open,close,low,high,volume 格式（Unix秒）的数据行
func readUnix(pair string, lines [][]string) ([]model.Candle, error) {
	headerMap, additionalHeaders, hasCustomHeaders := parseHeaders(lines[0])
	if hasCustomHeaders {
		lines = lines[1:]
	}

	candles := make([]model.Candle, 0, len(lines))
	for _, line := range lines {
		timestamp, err := strconv.Atoi(line[headerMap["time"]])
		if err != nil {
			return nil, err
		}

		candle := model.Candle{
			Time:      time.Unix(int64(timestamp), 0).UTC(),
			UpdatedAt: time.Unix(int64(timestamp), 0).UTC(),
			Pair:      pair,
			Complete:  true,
		}

		for _, field := range []struct {
			name  string
			value *float64
		}{
			{"open", &candle.Open},
			{"close", &candle.Close},
			{"low", &candle.Low},
			{"high", &candle.High},
			{"volume", &candle.Volume},
		} {
			*field.value, err = strconv.ParseFloat(line[headerMap[field.name]], 64)
			if err != nil {
				return nil, err
			}
		}

		if hasCustomHeaders && len(additionalHeaders) > 0 {
			candle.Metadata = make(map[string]float64)
			for _, header := range additionalHeaders {
				candle.Metadata[header], err = strconv.ParseFloat(line[headerMap[header]], 64)
				if err != nil {
					return nil, err
				}
			}
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

// ReadCandles 从 reader 中读取K线，自动识别 Dukascopy 和 Unix 时间戳两种格式
func ReadCandles(reader io.Reader, pair string) ([]model.Candle, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	lines, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, pair)
	}

	if isDukascopy(lines[0]) {
		return readDukascopy(pair, lines[1:])
	}
	return readUnix(pair, lines)
}

// NewCSVFeed 读取所有数据源，并重采样到目标周期
func NewCSVFeed(targetTimeframe string, feeds ...PairFeed) (*CSVFeed, error) {
	csvFeed := &CSVFeed{
		Feeds:               make(map[string]PairFeed),
		CandlePairTimeFrame: make(map[string][]model.Candle),
	}

	for _, feed := range feeds {
		csvFeed.Feeds[feed.Pair] = feed

		csvFile, err := os.Open(feed.File)
		if err != nil {
			return nil, err
		}

		candles, err := ReadCandles(csvFile, feed.Pair)
		_ = csvFile.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", feed.File, err)
		}

		if feed.HeikinAshi {
			ha := model.NewHeikinAshi()
			for i := range candles {
				candles[i] = candles[i].ToHeikinAshi(ha)
			}
		}

		csvFeed.CandlePairTimeFrame[csvFeed.feedTimeframeKey(feed.Pair, feed.Timeframe)] = candles

		err = csvFeed.resample(feed.Pair, feed.Timeframe, targetTimeframe)
		if err != nil {
			return nil, err
		}

		log.WithField("pair", feed.Pair).Infof("loaded %d candles from %s",
			len(csvFeed.CandlePairTimeFrame[csvFeed.feedTimeframeKey(feed.Pair, targetTimeframe)]), feed.File)
	}

	return csvFeed, nil
}

func (c CSVFeed) feedTimeframeKey(pair, timeframe string) string {
	return fmt.Sprintf("%s--%s", pair, timeframe)
}

// Limit 只保留每个数据集中最近 duration 时间内的K线
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for pair, candles := range c.CandlePairTimeFrame {
		if len(candles) == 0 {
			continue
		}
		start := candles[len(candles)-1].Time.Add(-duration)
		c.CandlePairTimeFrame[pair] = lo.Filter(candles, func(candle model.Candle, _ int) bool {
			return candle.Time.After(start)
		})
	}
	return c
}

// isFistCandlePeriod 判断 t 是否是目标周期的第一根源K线
func isFistCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}

	prev := t.Add(-fromDuration).UTC()

	return isLastCandlePeriod(prev, fromTimeframe, targetTimeframe)
}

// isLastCandlePeriod 判断 t 是否是目标周期的最后一根源K线，即下一根源K线开启新的周期
func isLastCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	if fromTimeframe == targetTimeframe {
		return true, nil
	}

	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}

	next := t.Add(fromDuration).UTC()

	switch targetTimeframe {
	case "1m":
		return next.Second()%60 == 0, nil
	case "5m":
		return next.Minute()%5 == 0, nil
	case "10m":
		return next.Minute()%10 == 0, nil
	case "15m":
		return next.Minute()%15 == 0, nil
	case "30m":
		return next.Minute()%30 == 0, nil
	case "1h":
		return next.Minute()%60 == 0, nil
	case "2h":
		return next.Minute() == 0 && next.Hour()%2 == 0, nil
	case "4h":
		return next.Minute() == 0 && next.Hour()%4 == 0, nil
	case "12h":
		return next.Minute() == 0 && next.Hour()%12 == 0, nil
	case "1d":
		return next.Minute() == 0 && next.Hour()%24 == 0, nil
	case "1w":
		return next.Minute() == 0 && next.Hour()%24 == 0 && next.Weekday() == time.Sunday, nil
	}

	return false, fmt.Errorf("invalid timeframe: %s", targetTimeframe)
}

// resample 把源周期的K线合并成目标周期：开盘取第一根，收盘取最后一根，
// 最高最低取极值，成交量累加。末尾不完整的K线会被丢弃
func (c *CSVFeed) resample(pair, sourceTimeframe, targetTimeframe string) error {
	sourceKey := c.feedTimeframeKey(pair, sourceTimeframe)
	targetKey := c.feedTimeframeKey(pair, targetTimeframe)
	source := c.CandlePairTimeFrame[sourceKey]

	var i int
	for ; i < len(source); i++ {
		if ok, err := isFistCandlePeriod(source[i].Time, sourceTimeframe, targetTimeframe); err != nil {
			return err
		} else if ok {
			break
		}
	}

	candles := make([]model.Candle, 0)
	for ; i < len(source); i++ {
		candle := source[i]
		last, err := isLastCandlePeriod(candle.Time, sourceTimeframe, targetTimeframe)
		if err != nil {
			return err
		}
		candle.Complete = last

		lastIndex := len(candles) - 1
		if lastIndex >= 0 && !candles[lastIndex].Complete {
			candle.Time = candles[lastIndex].Time
			candle.Open = candles[lastIndex].Open
			candle.High = math.Max(candles[lastIndex].High, candle.High)
			candle.Low = math.Min(candles[lastIndex].Low, candle.Low)
			candle.Volume += candles[lastIndex].Volume
			candles[lastIndex] = candle
			continue
		}
		candles = append(candles, candle)
	}

	if len(candles) > 0 && !candles[len(candles)-1].Complete {
		candles = candles[:len(candles)-1]
	}

	c.CandlePairTimeFrame[targetKey] = candles

	return nil
}

// Candles 返回交易对在该周期下的全部K线（副本）
func (c CSVFeed) Candles(pair, timeframe string) ([]model.Candle, error) {
	candles, ok := c.CandlePairTimeFrame[c.feedTimeframeKey(pair, timeframe)]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", ErrUnknownFeed, pair, timeframe)
	}
	return append([]model.Candle(nil), candles...), nil
}

// CandlesByPeriod 返回 [start, end] 区间内的K线
func (c CSVFeed) CandlesByPeriod(_ context.Context, pair, timeframe string,
	start, end time.Time) ([]model.Candle, error) {

	key := c.feedTimeframeKey(pair, timeframe)
	candles := make([]model.Candle, 0)
	for _, candle := range c.CandlePairTimeFrame[key] {
		if candle.Time.Before(start) || candle.Time.After(end) {
			continue
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// CandlesByLimit 返回最近的 limit 根K线，数据不足时返回 ErrInsufficientData
func (c CSVFeed) CandlesByLimit(_ context.Context, pair, timeframe string, limit int) ([]model.Candle, error) {
	candles := c.CandlePairTimeFrame[c.feedTimeframeKey(pair, timeframe)]
	if len(candles) < limit {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, pair)
	}
	return append([]model.Candle(nil), candles[len(candles)-limit:]...), nil
}
