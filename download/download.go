// Package download 把 Feeder 中的K线分批导出成 time,open,close,low,high,volume 格式的CSV，
// 常用来把 Dukascopy 导出的分钟线重采样后另存一份
package download

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/xhit/go-str2duration/v2"

	"github.com/itqwq/fxsim/model"
	"github.com/itqwq/fxsim/service"
	"github.com/itqwq/fxsim/tools/log"
)

const batchSize = 500

type Downloader struct {
	feeder   service.Feeder
	progress io.Writer
}

func NewDownloader(feeder service.Feeder) Downloader {
	return Downloader{
		feeder:   feeder,
		progress: os.Stderr,
	}
}

// WithProgressOutput 设置进度条的输出
func (d Downloader) WithProgressOutput(w io.Writer) Downloader {
	d.progress = w
	return d
}

type Parameters struct {
	Start time.Time
	End   time.Time
}

type Option func(*Parameters)

// WithInterval 只导出 [start, end] 区间的K线，默认导出全部
func WithInterval(start, end time.Time) Option {
	return func(parameters *Parameters) {
		parameters.Start = start
		parameters.End = end
	}
}

func candlesCount(start, end time.Time, timeframe string) (int, time.Duration, error) {
	totalDuration := end.Sub(start)
	interval, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return 0, 0, err
	}
	return int(totalDuration / interval), interval, nil
}

// Download 把 pair 在 timeframe 周期下的K线写入 output
func (d Downloader) Download(ctx context.Context, pair, timeframe string, output string, options ...Option) error {
	candles, err := d.feeder.Candles(pair, timeframe)
	if err != nil {
		return err
	}
	if len(candles) == 0 {
		return fmt.Errorf("no candles for %s@%s", pair, timeframe)
	}

	parameters := &Parameters{
		Start: candles[0].Time,
		End:   candles[len(candles)-1].Time,
	}
	for _, option := range options {
		option(parameters)
	}

	count, interval, err := candlesCount(parameters.Start, parameters.End, timeframe)
	if err != nil {
		return err
	}
	count++
	log.Infof("Exporting %d candles of %s for %s", count, timeframe, pair)

	precision := int(model.NumDecPlaces(candles[0].Close))

	recordFile, err := os.Create(output)
	if err != nil {
		return err
	}
	defer recordFile.Close()

	writer := csv.NewWriter(recordFile)
	progressBar := progressbar.NewOptions64(int64(count), progressbar.OptionSetWriter(d.progress))
	lostData := 0
	isLastLoop := false

	err = writer.Write([]string{
		"time", "open", "close", "low", "high", "volume",
	})
	if err != nil {
		return err
	}

	for begin := parameters.Start; !begin.After(parameters.End) && !isLastLoop; begin = begin.Add(interval * batchSize) {
		end := begin.Add(interval * batchSize)
		if end.Before(parameters.End) {
			end = end.Add(-1 * time.Second)
		} else {
			end = parameters.End
			isLastLoop = true
		}

		batch, err := d.feeder.CandlesByPeriod(ctx, pair, timeframe, begin, end)
		if err != nil {
			return err
		}

		for _, candle := range batch {
			err := writer.Write(candle.ToSlice(precision))
			if err != nil {
				return err
			}
		}

		if !isLastLoop {
			lostData += batchSize - len(batch)
		}
		if err = progressBar.Add(len(batch)); err != nil {
			log.Warnf("update progresbar fail: %s", err.Error())
		}
	}

	if err = progressBar.Close(); err != nil {
		log.Warnf("close progresbar fail: %s", err.Error())
	}

	if lostData > 0 {
		log.Warnf("%d missing candles", lostData)
	}

	writer.Flush()
	log.Info("Done!")
	return writer.Error()
}
