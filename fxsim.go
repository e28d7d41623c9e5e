package fxsim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"github.com/itqwq/fxsim/analysis"
	"github.com/itqwq/fxsim/config"
	"github.com/itqwq/fxsim/model"
	"github.com/itqwq/fxsim/service"
	"github.com/itqwq/fxsim/storage"
	"github.com/itqwq/fxsim/tools/log"
	"github.com/itqwq/fxsim/tools/metrics"
)

// initialCursor 载入数据后先显示的历史K线数量
const initialCursor = 60

var (
	ErrNoData           = errors.New("no candles loaded")
	ErrEndOfData        = errors.New("end of data")
	ErrInvalidCursor    = errors.New("cursor out of range")
	ErrInvalidLot       = errors.New("lot must be positive")
	ErrInvalidSide      = errors.New("side must be BUY or SELL")
	ErrPositionNotFound = errors.New("position not found")
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04",
	})
}

// Quote 是当前K线的报价，bid 为收盘价，ask 为收盘价加点差
type Quote struct {
	Candle model.Candle
	Bid    float64
	Ask    float64
}

// Simulator 在历史K线上逐根回放，支持手动开平仓和技术分析
type Simulator struct {
	mu sync.Mutex

	settings model.Settings
	storage  storage.Storage
	notifier service.Notifier
	progress io.Writer

	candles []model.Candle
	cursor  int

	balance  decimal.Decimal
	spread   decimal.Decimal
	lotUnits decimal.Decimal
}

type Option func(*Simulator)

// NewSimulator 从 feeder 载入 settings.Pair 在 settings.Timeframe 周期下的K线。
// 游标初始位置为 min(60, K线数量-1)
func NewSimulator(feeder service.Feeder, settings model.Settings, options ...Option) (*Simulator, error) {
	settings = config.WithDefaults(settings)

	candles, err := feeder.Candles(settings.Pair, settings.Timeframe)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s@%s", ErrNoData, settings.Pair, settings.Timeframe)
	}

	simulator := &Simulator{
		settings: settings,
		candles:  candles,
		progress: os.Stderr,
	}

	for _, option := range options {
		option(simulator)
	}

	if simulator.storage == nil {
		simulator.storage, err = storage.FromMemory()
		if err != nil {
			return nil, err
		}
	}

	simulator.applySettings()

	log.WithFields(log.Fields{
		"pair":      settings.Pair,
		"timeframe": settings.Timeframe,
		"candles":   len(candles),
	}).Info("[SETUP] simulator ready")

	return simulator, nil
}

func (s *Simulator) applySettings() {
	s.cursor = lo.Min([]int{initialCursor, len(s.candles) - 1})
	s.balance = decimal.NewFromFloat(s.settings.Balance)
	s.spread = decimal.NewFromFloat(s.settings.Spread)
	s.lotUnits = decimal.NewFromFloat(s.settings.LotUnits)
}

func WithStorage(storage storage.Storage) Option {
	return func(s *Simulator) {
		s.storage = storage
	}
}

func WithLogLevel(level log.Level) Option {
	return func(s *Simulator) {
		log.SetLevel(level)
	}
}

// WithBalance 覆盖配置中的初始资金
func WithBalance(balance float64) Option {
	return func(s *Simulator) {
		s.settings.Balance = balance
	}
}

// WithSpread 覆盖配置中的点差
func WithSpread(spread float64) Option {
	return func(s *Simulator) {
		s.settings.Spread = spread
	}
}

func WithNotifier(notifier service.Notifier) Option {
	return func(s *Simulator) {
		s.notifier = notifier
	}
}

// WithProgressOutput 设置回放进度条的输出，默认 stderr
func WithProgressOutput(w io.Writer) Option {
	return func(s *Simulator) {
		s.progress = w
	}
}

func (s *Simulator) Settings() model.Settings {
	return s.settings
}

func (s *Simulator) Len() int {
	return len(s.candles)
}

func (s *Simulator) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Next 前进一根K线，已经是最后一根时返回 ErrEndOfData
func (s *Simulator) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.candles)-1 {
		return ErrEndOfData
	}
	s.cursor++
	return nil
}

// Seek 把游标移动到 index
func (s *Simulator) Seek(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.candles) {
		return fmt.Errorf("%w: %d", ErrInvalidCursor, index)
	}
	s.cursor = index
	return nil
}

func (s *Simulator) Candle() model.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candles[s.cursor]
}

// History 返回从第一根到游标处（含）的K线副本
func (s *Simulator) History() []model.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history()
}

func (s *Simulator) history() []model.Candle {
	return append([]model.Candle(nil), s.candles[:s.cursor+1]...)
}

func (s *Simulator) Quote() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote()
}

func (s *Simulator) quote() Quote {
	candle := s.candles[s.cursor]
	return Quote{
		Candle: candle,
		Bid:    candle.Close,
		Ask:    decimal.NewFromFloat(candle.Close).Add(s.spread).InexactFloat64(),
	}
}

// exitPrice 买单以 bid 平仓，卖单以 ask 平仓
func exitPrice(side model.SideType, quote Quote) float64 {
	if side == model.SideTypeSell {
		return quote.Ask
	}
	return quote.Bid
}

func profit(position model.Position, exit float64) decimal.Decimal {
	return decimal.NewFromFloat(exit).
		Sub(decimal.NewFromFloat(position.EntryPrice)).
		Mul(decimal.NewFromFloat(position.Units)).
		Mul(decimal.NewFromFloat(position.Side.Direction()))
}

// OpenPosition 以当前报价开仓，买单以 ask 成交，卖单以 bid 成交
func (s *Simulator) OpenPosition(side model.SideType, lot float64) (*model.Position, error) {
	if side != model.SideTypeBuy && side != model.SideTypeSell {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if lot <= 0 {
		return nil, fmt.Errorf("%w: %f", ErrInvalidLot, lot)
	}

	s.mu.Lock()
	quote := s.quote()
	entry := quote.Bid
	if side == model.SideTypeBuy {
		entry = quote.Ask
	}

	position := &model.Position{
		Pair:       s.settings.Pair,
		Side:       side,
		Status:     model.PositionStatusOpen,
		Lot:        lot,
		Units:      decimal.NewFromFloat(lot).Mul(s.lotUnits).InexactFloat64(),
		EntryPrice: entry,
		OpenedAt:   quote.Candle.Time,
	}
	err := s.storage.CreatePosition(position)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	log.Info(position)
	if s.notifier != nil {
		s.notifier.OnPosition(*position)
	}
	return position, nil
}

// ClosePosition 以当前报价平仓，盈亏计入余额
func (s *Simulator) ClosePosition(id int64) (*model.Position, error) {
	s.mu.Lock()
	position, err := s.openPosition(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	quote := s.quote()
	exit := exitPrice(position.Side, quote)
	pnl := profit(*position, exit)

	position.Status = model.PositionStatusClosed
	position.ExitPrice = exit
	position.Profit = pnl.InexactFloat64()
	position.ClosedAt = quote.Candle.Time

	err = s.storage.UpdatePosition(position)
	if err == nil {
		s.balance = s.balance.Add(pnl)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	log.Info(position)
	if s.notifier != nil {
		s.notifier.OnPosition(*position)
	}
	return position, nil
}

func (s *Simulator) openPosition(id int64) (*model.Position, error) {
	positions, err := s.storage.Positions(storage.WithStatus(model.PositionStatusOpen), func(p model.Position) bool {
		return p.ID == id
	})
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrPositionNotFound, id)
	}
	return positions[0], nil
}

// Positions 返回当前持仓
func (s *Simulator) Positions() ([]*model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Positions(storage.WithStatus(model.PositionStatusOpen), storage.WithPair(s.settings.Pair))
}

// UnrealizedPnL 按当前报价计算所有持仓的浮动盈亏
func (s *Simulator) UnrealizedPnL() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pnl, err := s.unrealized()
	if err != nil {
		return 0, err
	}
	return pnl.InexactFloat64(), nil
}

func (s *Simulator) unrealized() (decimal.Decimal, error) {
	positions, err := s.storage.Positions(storage.WithStatus(model.PositionStatusOpen), storage.WithPair(s.settings.Pair))
	if err != nil {
		return decimal.Zero, err
	}

	quote := s.quote()
	total := decimal.Zero
	for _, position := range positions {
		total = total.Add(profit(*position, exitPrice(position.Side, quote)))
	}
	return total, nil
}

// Balance 已实现的账户余额
func (s *Simulator) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance.InexactFloat64()
}

// Equity 余额加上浮动盈亏
func (s *Simulator) Equity() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pnl, err := s.unrealized()
	if err != nil {
		return 0, err
	}
	return s.balance.Add(pnl).InexactFloat64(), nil
}

// Analyze 对游标之前（含）的历史做技术分析
func (s *Simulator) Analyze() (model.Report, bool) {
	return analysis.Analyze(s.History())
}

// Replay 从当前游标回放到最后一根K线，每 every 根K线做一次分析，
// 有报告时回调 fn。fn 返回错误或 ctx 取消时停止
func (s *Simulator) Replay(ctx context.Context, every int, fn func(model.Candle, model.Report) error) error {
	if every <= 0 {
		every = 1
	}

	remaining := s.Len() - s.Cursor()
	progressBar := progressbar.NewOptions64(int64(remaining),
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription("replay"),
		progressbar.OptionShowCount(),
	)

	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if step%every == 0 {
			history := s.History()
			if report, ok := analysis.Analyze(history); ok {
				if err := fn(history[len(history)-1], report); err != nil {
					return err
				}
			}
		}

		if err := progressBar.Add(1); err != nil {
			log.Warnf("update progressbar fail: %v", err)
		}

		if err := s.Next(); errors.Is(err, ErrEndOfData) {
			return nil
		}
	}
}

// Reset 游标回到第一根K线，恢复初始资金，未平仓的持仓作废
func (s *Simulator) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.storage.Positions(storage.WithStatus(model.PositionStatusOpen), storage.WithPair(s.settings.Pair))
	if err != nil {
		return err
	}
	for _, position := range positions {
		position.Status = model.PositionStatusCanceled
		if err := s.storage.UpdatePosition(position); err != nil {
			return err
		}
	}

	s.applySettings()
	s.cursor = 0
	return nil
}

// Summary 输出已平仓交易的统计表、收益分布直方图和收益均值的95%置信区间
func (s *Simulator) Summary(w io.Writer) error {
	s.mu.Lock()
	positions, err := s.storage.Positions(storage.WithStatus(model.PositionStatusClosed))
	balance := s.balance.InexactFloat64()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if len(positions) == 0 {
		_, err = fmt.Fprintln(w, "no closed positions")
		return err
	}

	var (
		total       float64
		wins, loses int
		returns     []float64
	)

	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Pair", "Trades", "Win", "Loss", "% Win", "Profit"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	byPair := lo.GroupBy(positions, func(position *model.Position) string {
		return position.Pair
	})
	pairs := lo.Keys(byPair)
	sort.Strings(pairs)

	for _, pair := range pairs {
		var pairWins, pairLoses int
		var pairProfit float64
		for _, position := range byPair[pair] {
			if position.Profit > 0 {
				pairWins++
			} else {
				pairLoses++
			}
			pairProfit += position.Profit
			returns = append(returns, position.Return())
		}

		table.Append([]string{
			pair,
			strconv.Itoa(pairWins + pairLoses),
			strconv.Itoa(pairWins),
			strconv.Itoa(pairLoses),
			fmt.Sprintf("%.1f %%", float64(pairWins)/float64(pairWins+pairLoses)*100),
			fmt.Sprintf("%.2f", pairProfit),
		})

		total += pairProfit
		wins += pairWins
		loses += pairLoses
	}

	table.SetFooter([]string{
		"TOTAL",
		strconv.Itoa(wins + loses),
		strconv.Itoa(wins),
		strconv.Itoa(loses),
		fmt.Sprintf("%.1f %%", float64(wins)/float64(wins+loses)*100),
		fmt.Sprintf("%.2f", total),
	})
	table.Render()

	fmt.Fprintln(w, buffer.String())
	fmt.Fprintf(w, "BALANCE: %.2f\n", balance)

	if len(lo.Uniq(returns)) > 1 {
		fmt.Fprintln(w, "------ RETURN -------")
		returnsPercent := lo.Map(returns, func(r float64, _ int) float64 {
			return r * 100
		})
		hist := histogram.Hist(15, returnsPercent)
		if err := histogram.Fprint(w, hist, histogram.Linear(10)); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "------ CONFIDENCE INTERVAL (95%) -------")
	interval := metrics.Bootstrap(returns, metrics.Mean, 10000, 0.95)
	_, err = fmt.Fprintf(w, "RETURN:      %.4f%% (%.4f%% ~ %.4f%%)\n",
		interval.Mean*100, interval.Lower*100, interval.Upper*100)
	return err
}
