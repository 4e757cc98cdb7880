package runtime

import (
	"context"
	"math"

	"github.com/rxtech-lab/argo-quant/internal/bracket"
	"github.com/rxtech-lab/argo-quant/internal/calendar"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/notification"
	"github.com/rxtech-lab/argo-quant/internal/sizing"
	"github.com/rxtech-lab/argo-quant/internal/strategy"
	"github.com/rxtech-lab/argo-quant/internal/tracker"
	"github.com/rxtech-lab/argo-quant/internal/trading"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StrategyEngine is the per-bar state machine of one run:
// AWAITING_SIGNAL -> ORDER_PENDING -> (FILLED | CANCELLED) -> AWAITING_SIGNAL.
type StrategyEngine struct {
	config   Config
	source   strategy.SignalSource
	broker   trading.Broker
	notifier notification.Notifier
	log      *logger.Logger

	sizer    *sizing.PositionSizer
	brackets *bracket.BracketManager
	calendar *calendar.CashCalendar
	tracker  *tracker.OrderLifecycleTracker

	// per-run state, reset by Start
	index      int
	total      int
	pending    string
	position   types.StrategyPosition
	buyPrice   float64
	buyComm    float64
	lastAction types.Action
	lastBar    types.Bar
	dividends  float64
}

// NewStrategyEngine validates config and builds an engine. notifier may be nil.
// Configuration problems are returned as configuration errors before any bar is seen.
func NewStrategyEngine(
	config Config,
	source strategy.SignalSource,
	broker trading.Broker,
	notifier notification.Notifier,
	log *logger.Logger,
) (*StrategyEngine, error) {
	if source == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "signal source is required")
	}

	if broker == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "broker is required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	config, err := normalizeConfig(config)
	if err != nil {
		return nil, err
	}

	var cashCalendar *calendar.CashCalendar

	if config.AddCashAmount > 0 {
		if config.CashRule != nil {
			cashCalendar = calendar.NewWithRule(config.CashRule, config.AddCashAmount)
		} else {
			cashCalendar, err = calendar.New(config.AddCashFreq, config.AddCashAmount)
			if err != nil {
				return nil, err
			}
		}
	}

	engine := &StrategyEngine{
		config:   config,
		source:   source,
		broker:   broker,
		notifier: notifier,
		log:      log,
		sizer:    sizing.NewPositionSizer(config.Sizing),
		brackets: bracket.NewBracketManager(broker, config.Brackets, log),
		calendar: cashCalendar,
		tracker:  tracker.NewOrderLifecycleTracker(),
	}
	engine.Start(0)

	return engine, nil
}

func normalizeConfig(config Config) (Config, error) {
	if config.InitCash <= 0 {
		return config, errors.Newf(errors.ErrCodeInvalidParameter, "initial cash must be positive, got %.2f", config.InitCash)
	}

	if config.ExecutionType == "" {
		config.ExecutionType = types.ExecutionTypeClose
	}

	switch config.ExecutionType {
	case types.ExecutionTypeMarket, types.ExecutionTypeClose, types.ExecutionTypeOpen:
	default:
		return config, errors.Newf(errors.ErrCodeInvalidExecutionType, "unsupported execution type: %s", config.ExecutionType)
	}

	if config.Sizing.AllowShort && config.ExecutionType == types.ExecutionTypeOpen {
		return config, errors.New(errors.ErrCodeUnsupportedShortExecution, "shorting is not supported with open execution")
	}

	if config.Sizing.BuyProportion == 0 {
		config.Sizing.BuyProportion = 1
	}

	if config.Sizing.SellProportion == 0 {
		config.Sizing.SellProportion = 1
	}

	if !validProportion(config.Sizing.BuyProportion) || !validProportion(config.Sizing.SellProportion) {
		return config, errors.New(errors.ErrCodeInvalidParameter, "buy and sell proportions must be in (0, 1]")
	}

	if config.Sizing.AllowShort && config.Sizing.ShortMax <= 0 {
		config.Sizing.ShortMax = DefaultShortMax
	}

	if config.AddCashAmount < 0 {
		return config, errors.New(errors.ErrCodeInvalidParameter, "add cash amount must not be negative")
	}

	return config, nil
}

// Name implements StrategyRuntime.
func (e *StrategyEngine) Name() string {
	return e.source.Name()
}

// Start implements StrategyRuntime.
func (e *StrategyEngine) Start(total int) {
	e.index = 0
	e.total = total
	e.pending = ""
	e.buyPrice = 0
	e.buyComm = 0
	e.lastAction = types.ActionNeutral
	e.lastBar = types.Bar{}
	e.dividends = 0
	e.position = initialPosition(e.config.SinglePosition)

	e.tracker.Reset()
	e.brackets.Reset()

	if e.calendar != nil {
		e.calendar.Reset()
	}
}

// Next implements StrategyRuntime.
func (e *StrategyEngine) Next(bar types.Bar) error {
	defer func() {
		e.lastBar = bar
		e.index++
	}()

	e.preamble(bar)

	ctx := strategy.SignalContext{
		Bar:          bar,
		Index:        e.index,
		Total:        e.total,
		PositionSize: e.broker.PositionSize(),
	}

	if err := e.source.Update(ctx); err != nil {
		e.lastAction = types.ActionNeutral

		return errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err, "strategy %s failed on bar %d", e.source.Name(), e.index)
	}

	if reporter, ok := e.source.(strategy.IndicatorReporter); ok {
		e.tracker.RecordIndicators(bar.Time, reporter.Indicators())
	}

	if e.isLastBar() {
		e.lastAction = e.peekAction(ctx)

		return nil
	}

	if e.pending != "" {
		e.log.Debug("Order pending, skipping signals", zap.String("order_id", e.pending), zap.Time("time", bar.Time))

		return nil
	}

	e.lastAction = e.decide(ctx)

	return nil
}

// preamble runs on every bar regardless of state.
func (e *StrategyEngine) preamble(bar types.Bar) {
	if e.config.InvestDividends && bar.Dividend.IsSome() && bar.Dividend.Unwrap() > 0 {
		dividend := bar.Dividend.Unwrap()
		e.broker.AddCash(dividend)
		e.dividends += dividend
	}

	if e.calendar != nil {
		if amount, ok := e.calendar.Due(bar.Time); ok {
			e.broker.AddCash(amount)
			e.tracker.RecordInjection(bar.Time, amount, e.calendar.TotalInjected())
			e.log.Info("Periodic cash injected",
				zap.Time("start", e.calendar.Start()),
				zap.Time("next_due", e.calendar.NextDue()),
				zap.Float64("amount", amount),
				zap.Float64("total_injected", e.calendar.TotalInjected()),
			)
		}
	}

	value, cash, position := e.broker.PortfolioValue(), e.broker.Cash(), e.broker.PositionSize()
	e.tracker.RecordPeriodic(bar.Time, value, cash, position)

	if e.config.PeriodicLogging {
		e.log.Info("Portfolio snapshot",
			zap.Time("time", bar.Time),
			zap.Float64("close", bar.Close),
			zap.Float64("portfolio_value", value),
			zap.Float64("cash", cash),
			zap.Float64("position", position),
		)
	}
}

// decide evaluates the bar in priority order and submits at most one order.
func (e *StrategyEngine) decide(ctx strategy.SignalContext) types.Action {
	position := ctx.PositionSize
	price := ctx.Bar.Close

	if limit, hit := e.brackets.CheckTakeProfit(price, position); hit {
		if e.submit(types.OrderRequest{
			Side:       types.PurchaseTypeSell,
			OrderType:  types.OrderTypeLimit,
			Execution:  types.ExecutionTypeMarket,
			Quantity:   position,
			Reason:     types.OrderReasonTakeProfit,
			LimitPrice: someFloat(limit),
		}) {
			return types.ActionTakeProfit
		}
	}

	if buy := e.source.BuySignal(ctx); buy.Fires && e.canBuy() {
		if size, ok := e.buySize(price, buy, position); ok {
			if e.submitMarket(types.PurchaseTypeBuy, size, types.OrderReasonStrategy) {
				return types.ActionBuy
			}
		}
	}

	if sell := e.source.SellSignal(ctx); sell.Fires && e.canSell(position) {
		if size, ok := e.sellSize(price, sell, position); ok {
			e.cancelBrackets()

			if e.submitMarket(types.PurchaseTypeSell, size, types.OrderReasonStrategy) {
				return types.ActionSell
			}
		}
	}

	if tp, ok := e.source.(strategy.TakeProfitSignaler); ok && position > 0 && tp.TakeProfitSignal(ctx).Fires {
		if e.submitMarket(types.PurchaseTypeSell, position, types.OrderReasonTakeProfit) {
			return types.ActionTakeProfit
		}
	}

	if exit, ok := e.source.(strategy.ExitLongSignaler); ok && position > 0 && exit.ExitLongSignal(ctx).Fires {
		if e.submitMarket(types.PurchaseTypeSell, position, types.OrderReasonExitLong) {
			return types.ActionExitLong
		}
	}

	if exit, ok := e.source.(strategy.ExitShortSignaler); ok && position < 0 && exit.ExitShortSignal(ctx).Fires {
		if e.submitMarket(types.PurchaseTypeBuy, -position, types.OrderReasonExitShort) {
			return types.ActionExitShort
		}
	}

	return types.ActionNeutral
}

// peekAction evaluates the signals in priority order without trading.
func (e *StrategyEngine) peekAction(ctx strategy.SignalContext) types.Action {
	position := ctx.PositionSize

	if _, hit := e.brackets.CheckTakeProfit(ctx.Bar.Close, position); hit {
		return types.ActionTakeProfit
	}

	if e.source.BuySignal(ctx).Fires {
		return types.ActionBuy
	}

	if e.source.SellSignal(ctx).Fires {
		return types.ActionSell
	}

	if tp, ok := e.source.(strategy.TakeProfitSignaler); ok && position > 0 && tp.TakeProfitSignal(ctx).Fires {
		return types.ActionTakeProfit
	}

	if exit, ok := e.source.(strategy.ExitLongSignaler); ok && position > 0 && exit.ExitLongSignal(ctx).Fires {
		return types.ActionExitLong
	}

	if exit, ok := e.source.(strategy.ExitShortSignaler); ok && position < 0 && exit.ExitShortSignal(ctx).Fires {
		return types.ActionExitShort
	}

	return types.ActionNeutral
}

func (e *StrategyEngine) canBuy() bool {
	switch e.position {
	case types.StrategyPositionLong:
		return false
	default:
		return true
	}
}

func (e *StrategyEngine) canSell(position float64) bool {
	if e.position == types.StrategyPositionShort {
		return false
	}

	return position > 0 || e.config.Sizing.AllowShort
}

func (e *StrategyEngine) buySize(price float64, signal types.SignalResult, position float64) (float64, bool) {
	// covering a short in single position mode never flips to long
	if e.position == types.StrategyPositionShort {
		return -position, position < 0
	}

	size, err := e.sizer.SizeBuy(e.broker.Cash(), price, signal.ProportionOr(0), position)
	if err != nil {
		e.log.Debug("Buy sizing rejected", zap.Error(err), zap.Float64("cash", e.broker.Cash()), zap.Float64("price", price))

		return 0, false
	}

	return size, true
}

func (e *StrategyEngine) sellSize(price float64, signal types.SignalResult, position float64) (float64, bool) {
	// closing a long in single position mode never flips to short
	if e.position == types.StrategyPositionLong {
		return position, position > 0
	}

	size, err := e.sizer.SizeSell(position, price, signal.ProportionOr(0), e.broker.PortfolioValue())
	if err != nil {
		e.log.Debug("Sell sizing rejected", zap.Error(err), zap.Float64("position", position), zap.Float64("price", price))

		return 0, false
	}

	return size, true
}

func (e *StrategyEngine) submitMarket(side types.PurchaseType, size float64, reason string) bool {
	return e.submit(types.OrderRequest{
		Side:      side,
		OrderType: types.OrderTypeMarket,
		Execution: e.config.ExecutionType,
		Quantity:  size,
		Reason:    reason,
	})
}

func (e *StrategyEngine) submit(request types.OrderRequest) bool {
	order, err := e.broker.Submit(request)
	if err != nil {
		e.log.Warn("Order submission failed",
			zap.Error(err),
			zap.String("side", string(request.Side)),
			zap.Float64("size", request.Quantity),
			zap.String("reason", request.Reason),
		)

		return false
	}

	e.pending = order.ID

	return true
}

func (e *StrategyEngine) cancelBrackets() {
	if err := e.brackets.CancelAll(); err != nil {
		e.log.Warn("Failed to cancel bracket orders", zap.Error(err))
	}
}

// NotifyOrder implements trading.Listener.
func (e *StrategyEngine) NotifyOrder(order types.Order) {
	if !order.Status.IsTerminal() {
		return
	}

	e.brackets.OnOrderTerminal(order)

	if order.Status.IsAborted() {
		e.log.Warn("Order aborted",
			zap.String("order_id", order.ID),
			zap.String("status", string(order.Status)),
			zap.String("reason", order.Reason),
			zap.Float64("cash", e.broker.Cash()),
			zap.Float64("portfolio_value", e.broker.PortfolioValue()),
		)
	} else {
		e.onFill(order)
	}

	if order.ID == e.pending {
		e.pending = ""
	}
}

func (e *StrategyEngine) onFill(order types.Order) {
	e.tracker.RecordOrder(order)

	if order.IsBuy() {
		e.buyPrice = order.ExecutedPrice
		e.buyComm = order.Commission
	}

	if e.config.TransactionLogging {
		e.log.Debug("Order executed",
			zap.String("side", string(order.Side)),
			zap.String("reason", order.Reason),
			zap.Float64("price", order.ExecutedPrice),
			zap.Float64("size", order.ExecutedQty),
			zap.Float64("value", order.Value()),
			zap.Float64("commission", order.Commission),
			zap.Float64("cash", e.broker.Cash()),
			zap.Float64("portfolio_value", e.broker.PortfolioValue()),
		)
	}

	position := e.broker.PositionSize()
	e.position = nextPosition(e.config.SinglePosition, position)

	if position <= 0 {
		e.cancelBrackets()

		return
	}

	if order.IsBuy() && order.Reason == types.OrderReasonStrategy && e.config.Brackets.Enabled() {
		if err := e.brackets.OnEntry(order.ExecutedPrice, position); err != nil {
			e.log.Warn("Failed to attach bracket orders", zap.Error(err))
		}
	}
}

// NotifyTrade implements trading.Listener.
func (e *StrategyEngine) NotifyTrade(trade types.Trade) {
	e.tracker.RecordTrade(trade)
}

// NotifyCashValue implements trading.Listener. Sizing reads cash from the broker
// instead, so injections made later in the same bar are included.
func (e *StrategyEngine) NotifyCashValue(_, _ float64) {}

// Stop implements StrategyRuntime.
func (e *StrategyEngine) Stop(ctx context.Context) (Result, error) {
	finalValue := e.broker.PortfolioValue()
	injected := 0.0
	injections := 0

	if e.calendar != nil {
		injected = e.calendar.TotalInjected()
		injections = e.calendar.Injections()
	}

	pnl := decimal.NewFromFloat(finalValue).
		Sub(decimal.NewFromFloat(e.config.InitCash)).
		Sub(decimal.NewFromFloat(injected))

	result := Result{
		InitCash:      e.config.InitCash,
		FinalValue:    finalValue,
		FinalCash:     e.broker.Cash(),
		PnL:           pnl,
		TotalInjected: injected,
		Injections:    injections,
		Dividends:     e.dividends,
		FinalAction:   e.lastAction,
		FinalTime:     e.lastBar.Time,
		Indicators:    e.indicatorSummary(),
		Logs:          e.tracker.Materialize(),
	}

	e.log.Info("Run finished",
		zap.String("strategy", e.source.Name()),
		zap.String("symbol", e.config.Symbol),
		zap.Float64("final_value", finalValue),
		zap.String("pnl", pnl.StringFixed(2)),
		zap.Float64("total_injected", injected),
		zap.String("final_action", string(e.lastAction)),
	)

	if e.notifier != nil {
		err := e.notifier.Trigger(ctx, notification.Event{
			Symbol:     e.config.Symbol,
			Action:     e.lastAction,
			Time:       e.lastBar.Time,
			Indicators: result.Indicators,
		})
		if err != nil {
			e.log.Warn("Notification failed", zap.Error(err))
		}
	}

	return result, nil
}

// Logs returns the logs of a stopped run.
func (e *StrategyEngine) Logs() (tracker.Logs, error) {
	return e.tracker.Logs()
}

// Pending reports whether a strategy order is waiting for the broker.
func (e *StrategyEngine) Pending() bool {
	return e.pending != ""
}

// Position returns the single position tri-state.
func (e *StrategyEngine) Position() types.StrategyPosition {
	return e.position
}

// LastAction returns the action decided on the most recent bar.
func (e *StrategyEngine) LastAction() types.Action {
	return e.lastAction
}

// BuyPrice returns the price and commission of the last filled buy.
func (e *StrategyEngine) BuyPrice() (float64, float64) {
	return e.buyPrice, e.buyComm
}

// ActiveBrackets returns the ids of outstanding bracket orders.
func (e *StrategyEngine) ActiveBrackets() []string {
	return e.brackets.Active()
}

func (e *StrategyEngine) isLastBar() bool {
	return e.total > 0 && e.index >= e.total-1
}

func (e *StrategyEngine) indicatorSummary() map[string]float64 {
	summary := map[string]float64{}

	if reporter, ok := e.source.(strategy.IndicatorReporter); ok {
		for name, value := range reporter.Indicators() {
			if !math.IsNaN(value) {
				summary[name] = value
			}
		}
	}

	if !e.lastBar.Time.IsZero() {
		summary["close"] = e.lastBar.Close
	}

	return summary
}
