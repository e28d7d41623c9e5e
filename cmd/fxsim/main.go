package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/itqwq/fxsim"
	"github.com/itqwq/fxsim/analysis"
	"github.com/itqwq/fxsim/config"
	"github.com/itqwq/fxsim/download"
	"github.com/itqwq/fxsim/exchange"
	"github.com/itqwq/fxsim/model"
	"github.com/itqwq/fxsim/notification"
	"github.com/itqwq/fxsim/service"
	"github.com/itqwq/fxsim/storage"
	"github.com/itqwq/fxsim/tools/log"
)

var feedFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "eg. ./USDJPY_Candlestick_1_M_BID.csv",
		Required: true,
	},
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "eg. ./fxsim.yml",
		Value:   "fxsim.yml",
	},
	&cli.StringFlag{
		Name:    "pair",
		Aliases: []string{"p"},
		Usage:   "eg. USDJPY",
	},
	&cli.StringFlag{
		Name:    "timeframe",
		Aliases: []string{"t"},
		Usage:   "timeframe used by the analysis, eg. 5m",
	},
	&cli.StringFlag{
		Name:  "source-timeframe",
		Usage: "timeframe of the candles in the file (default: --timeframe)",
	},
	&cli.BoolFlag{
		Name:  "heikin-ashi",
		Usage: "convert candles to Heikin-Ashi",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error",
		Value: "info",
	},
}

func flags(extra ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, feedFlags...), extra...)
}

// loadSettings 读取配置文件，命令行参数优先
func loadSettings(c *cli.Context) (model.Settings, error) {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return settings, err
	}
	if c.IsSet("pair") {
		settings.Pair = c.String("pair")
	}
	if c.IsSet("timeframe") {
		settings.Timeframe = c.String("timeframe")
	}
	return settings, config.Validate(settings)
}

func loadFeed(c *cli.Context, settings model.Settings) (*exchange.CSVFeed, error) {
	level, err := log.ParseLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)

	sourceTimeframe := c.String("source-timeframe")
	if sourceTimeframe == "" {
		sourceTimeframe = settings.Timeframe
	}

	return exchange.NewCSVFeed(settings.Timeframe, exchange.PairFeed{
		Pair:       settings.Pair,
		File:       c.String("file"),
		Timeframe:  sourceTimeframe,
		HeikinAshi: c.Bool("heikin-ashi"),
	})
}

func loadSimulator(c *cli.Context, options ...fxsim.Option) (*fxsim.Simulator, error) {
	settings, err := loadSettings(c)
	if err != nil {
		return nil, err
	}

	feed, err := loadFeed(c, settings)
	if err != nil {
		return nil, err
	}

	return fxsim.NewSimulator(feed, settings, options...)
}

func printTable(title string, results []model.IndicatorResult, format string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{title, "Value", "Action"})
	for _, result := range results {
		table.Append([]string{result.Name, fmt.Sprintf(format, result.Value), result.Action.String()})
	}
	table.Render()
}

func printCount(title string, count model.ActionCount) {
	fmt.Printf("%-16s BUY %2d | SELL %2d | NEUTRAL %2d\n", title, count.Buy, count.Sell, count.Neutral)
}

func analyzeAction(c *cli.Context) error {
	simulator, err := loadSimulator(c)
	if err != nil {
		return err
	}

	cursor := simulator.Len() - 1
	if c.IsSet("at") {
		cursor = c.Int("at")
	}
	if err := simulator.Seek(cursor); err != nil {
		return err
	}

	report, ok := simulator.Analyze()
	if !ok {
		fmt.Printf("not enough candles: %d of %d\n", cursor+1, analysis.MinCandles)
		return nil
	}

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	candle := simulator.Candle()
	precision := int(model.NumDecPlaces(candle.Close))
	fmt.Printf("%s %s close %.*f\n", simulator.Settings().Pair, candle.Time.Format("2006-01-02 15:04"),
		precision, candle.Close)

	printTable("Oscillator", report.Oscillators, "%.2f")
	printTable("Moving Average", report.MovingAverages, "%."+strconv.Itoa(precision)+"f")

	oscillators, averages, total := report.Summary()
	printCount("Oscillators", oscillators)
	printCount("Moving Averages", averages)
	printCount("Summary", total)
	return nil
}

func replayAction(c *cli.Context) error {
	simulator, err := loadSimulator(c)
	if err != nil {
		return err
	}
	if err := simulator.Seek(0); err != nil {
		return err
	}

	output, err := os.Create(c.String("output"))
	if err != nil {
		return err
	}
	defer output.Close()

	writer := csv.NewWriter(output)
	if err := writer.Write([]string{"time", "close", "buy", "sell", "neutral"}); err != nil {
		return err
	}

	rows := 0
	err = simulator.Replay(c.Context, c.Int("every"), func(candle model.Candle, report model.Report) error {
		_, _, total := report.Summary()
		rows++
		return writer.Write([]string{
			strconv.FormatInt(candle.Time.Unix(), 10),
			strconv.FormatFloat(candle.Close, 'f', -1, 64),
			strconv.Itoa(total.Buy),
			strconv.Itoa(total.Sell),
			strconv.Itoa(total.Neutral),
		})
	})
	if err != nil {
		return err
	}

	writer.Flush()
	log.Infof("%d reports written to %s", rows, c.String("output"))
	return writer.Error()
}

func notifier(c *cli.Context) service.Notifier {
	if to := c.String("mail-to"); to != "" {
		return notification.NewMail(notification.MailParams{
			SMTPServerPort:    c.Int("smtp-port"),
			SMTPServerAddress: c.String("smtp-host"),
			To:                to,
			From:              c.String("mail-from"),
			Password:          c.String("mail-password"),
		})
	}
	return notification.NewLog()
}

func simulateAction(c *cli.Context) error {
	options := []fxsim.Option{fxsim.WithNotifier(notifier(c))}
	if path := c.String("storage"); path != "" {
		repository, err := storage.FromFile(path)
		if err != nil {
			return err
		}
		options = append(options, fxsim.WithStorage(repository))
	}

	simulator, err := loadSimulator(c, options...)
	if err != nil {
		return err
	}

	side := fxsim.SideType(strings.ToUpper(c.String("side")))

	lot := c.Float64("lot")
	if !c.IsSet("lot") {
		lot = simulator.Settings().LotSize
	}

	position, err := simulator.OpenPosition(side, lot)
	if err != nil {
		return err
	}

	for i := 0; i < c.Int("steps"); i++ {
		if err := simulator.Next(); err != nil {
			log.Warnf("stopped after %d steps: %v", i, err)
			break
		}
	}

	if _, err := simulator.ClosePosition(position.ID); err != nil {
		return err
	}

	return simulator.Summary(os.Stdout)
}

func downloadAction(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return err
	}

	feed, err := loadFeed(c, settings)
	if err != nil {
		return err
	}

	var options []download.Option
	start := c.Timestamp("start")
	end := c.Timestamp("end")
	if start != nil && end != nil && !start.IsZero() && !end.IsZero() {
		options = append(options, download.WithInterval(*start, *end))
	} else if start != nil || end != nil {
		return fmt.Errorf("START and END must be informed together")
	}

	return download.NewDownloader(feed).Download(c.Context, settings.Pair, settings.Timeframe,
		c.String("output"), options...)
}

func main() {
	app := &cli.App{
		Name:     "fxsim",
		HelpName: "fxsim",
		Usage:    "Replay historical FX candles with technical analysis",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Print the technical analysis report",
				Flags: flags(
					&cli.IntFlag{
						Name:  "at",
						Usage: "candle index to analyze (default: last candle)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print the report as JSON",
					},
				),
				Action: analyzeAction,
			},
			{
				Name:  "replay",
				Usage: "Replay the file and write the action counts of every report",
				Flags: flags(
					&cli.IntFlag{
						Name:  "every",
						Usage: "analyze every N candles",
						Value: 1,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "eg. ./replay.csv",
						Required: true,
					},
				),
				Action: replayAction,
			},
			{
				Name:  "simulate",
				Usage: "Open a position, advance N candles and close it",
				Flags: flags(
					&cli.IntFlag{
						Name:  "steps",
						Usage: "candles to hold the position",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "lot",
						Usage: "eg. 0.1 (default from config)",
					},
					&cli.StringFlag{
						Name:  "side",
						Usage: "BUY or SELL",
						Value: "BUY",
					},
					&cli.StringFlag{
						Name:  "storage",
						Usage: "buntdb file to keep positions (default: memory)",
					},
					&cli.StringFlag{Name: "mail-to"},
					&cli.StringFlag{Name: "mail-from"},
					&cli.StringFlag{Name: "mail-password", EnvVars: []string{"FXSIM_MAIL_PASSWORD"}},
					&cli.StringFlag{Name: "smtp-host", Value: "smtp.gmail.com"},
					&cli.IntFlag{Name: "smtp-port", Value: 587},
				),
				Action: simulateAction,
			},
			{
				Name:  "download",
				Usage: "Export the (resampled) candles as time,open,close,low,high,volume",
				Flags: flags(
					&cli.TimestampFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Usage:   "eg. 2025-11-03",
						Layout:  "2006-01-02",
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "eg. 2025-11-30",
						Layout:  "2006-01-02",
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "eg. ./usdjpy-5m.csv",
						Required: true,
					},
				),
				Action: downloadAction,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
