package engine

import (
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/trading"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/internal/utils"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const positionEpsilon = 1e-9

// restingOrder is an accepted order waiting for its fill condition.
type restingOrder struct {
	order types.Order
	// barIndex is the bar the order was accepted on. Resting orders only fill on later bars.
	barIndex int
}

// brokerEvent is one queued notification: an order update or a closed trade.
type brokerEvent struct {
	order *types.Order
	trade *types.Trade
}

// BacktestTrading is the simulated broker used by the backtest. It owns cash, the
// position and every resting order, and notifies its listener once the bar's
// fills are settled.
//
// Per bar the runner calls ProcessBar before the strategy and EndBar after it.
// ProcessBar fills orders accepted on earlier bars against the new bar:
//   - MARKET orders with close execution fill at the close, with open execution at the open.
//   - STOP sells fill at min(stop, open) once the low reaches the stop.
//   - STOP_TRAIL sells behave like STOP and then ratchet the stop up from the high.
//   - LIMIT sells fill at max(limit, open) once the high reaches the limit.
//
// EndBar fills orders with market execution against the current close.
type BacktestTrading struct {
	listener         trading.Listener
	logger           *logger.Logger
	commission       commission_fee.CommissionFee
	slippage         float64
	decimalPrecision int
	symbol           string

	cash      decimal.Decimal
	fees      decimal.Decimal
	position  float64
	avgPrice  float64
	lastPrice float64

	bar      types.Bar
	barIndex int
	resting  []restingOrder
	events   []brokerEvent
	trade    *types.Trade
}

// NewBacktestTrading creates a broker holding initCash.
func NewBacktestTrading(initCash float64, commission commission_fee.CommissionFee, slippage float64, decimalPrecision int, log *logger.Logger) *BacktestTrading {
	return &BacktestTrading{
		logger:           log,
		commission:       commission,
		slippage:         slippage,
		decimalPrecision: decimalPrecision,
		cash:             decimal.NewFromFloat(initCash),
		fees:             decimal.Zero,
		barIndex:         -1,
	}
}

// SetListener registers the receiver of order, trade and cash notifications.
func (b *BacktestTrading) SetListener(listener trading.Listener) {
	b.listener = listener
}

// Cash implements trading.Broker.
func (b *BacktestTrading) Cash() float64 {
	return b.cash.InexactFloat64()
}

// PortfolioValue implements trading.Broker.
func (b *BacktestTrading) PortfolioValue() float64 {
	return b.cash.Add(decimal.NewFromFloat(b.position).Mul(decimal.NewFromFloat(b.lastPrice))).InexactFloat64()
}

// PositionSize implements trading.Broker.
func (b *BacktestTrading) PositionSize() float64 {
	return b.position
}

// AveragePrice returns the average entry price of the open position.
func (b *BacktestTrading) AveragePrice() float64 {
	return b.avgPrice
}

// TotalFees returns the commission paid so far.
func (b *BacktestTrading) TotalFees() float64 {
	return b.fees.InexactFloat64()
}

// AddCash implements trading.Broker.
func (b *BacktestTrading) AddCash(amount float64) {
	b.cash = b.cash.Add(decimal.NewFromFloat(amount))
}

// BuyingPower is the largest quantity the cash can buy at price, commission included.
func (b *BacktestTrading) BuyingPower(price float64) float64 {
	maxQty := utils.CalculateMaxQuantity(b.Cash(), price, b.commission)

	return utils.RoundToDecimalPrecision(maxQty, b.decimalPrecision)
}

// Submit implements trading.Broker.
func (b *BacktestTrading) Submit(request types.OrderRequest) (types.Order, error) {
	if err := request.Validate(); err != nil {
		return types.Order{}, err
	}

	quantity := utils.RoundToDecimalPrecision(request.Quantity, b.decimalPrecision)
	if quantity <= 0 {
		return types.Order{}, errors.Newf(errors.ErrCodeInvalidOrder, "order quantity %v is zero after rounding to %d decimals", request.Quantity, b.decimalPrecision)
	}

	execution := request.Execution
	if execution == "" {
		execution = types.ExecutionTypeClose
	}

	order := types.Order{
		ID:           uuid.New().String(),
		Symbol:       b.symbol,
		Side:         request.Side,
		OrderType:    request.OrderType,
		Execution:    execution,
		Quantity:     quantity,
		Reason:       request.Reason,
		Status:       types.OrderStatusAccepted,
		CreatedAt:    b.bar.Time,
		StopPrice:    request.StopPrice,
		LimitPrice:   request.LimitPrice,
		TrailPercent: request.TrailPercent,
	}

	if order.OrderType == types.OrderTypeStopTrail {
		order.StopPrice = trailStop(order.Side, b.lastPrice, order.TrailPercent.Unwrap())
	}

	b.resting = append(b.resting, restingOrder{order: order, barIndex: b.barIndex})
	b.queueOrder(order)

	return order, nil
}

// Cancel implements trading.Broker.
func (b *BacktestTrading) Cancel(orderID string) error {
	for i, resting := range b.resting {
		if resting.order.ID != orderID {
			continue
		}

		b.resting = slices.Delete(b.resting, i, i+1)

		order := resting.order
		order.Status = types.OrderStatusCancelled
		b.queueOrder(order)

		return nil
	}

	return errors.Newf(errors.ErrCodeOrderNotFound, "order %s is not resting", orderID)
}

// RestingOrders returns a copy of the orders waiting for a fill.
func (b *BacktestTrading) RestingOrders() []types.Order {
	orders := make([]types.Order, len(b.resting))
	for i, resting := range b.resting {
		orders[i] = resting.order
	}

	return orders
}

// ProcessBar moves the broker to bar, fills the resting orders it triggers, marks
// the position at the close and delivers the notifications.
func (b *BacktestTrading) ProcessBar(bar types.Bar) {
	b.bar = bar
	b.barIndex++

	if b.symbol == "" {
		b.symbol = bar.Symbol
	}

	for _, resting := range b.takeResting(func(r restingOrder) bool { return r.barIndex < b.barIndex }) {
		b.settle(resting)
	}

	b.lastPrice = bar.Close
	b.deliver()
}

// EndBar fills the orders with market execution against the current close.
func (b *BacktestTrading) EndBar() {
	isMarket := func(r restingOrder) bool {
		return r.order.Execution == types.ExecutionTypeMarket &&
			(r.order.OrderType == types.OrderTypeMarket || r.order.OrderType == types.OrderTypeLimit)
	}

	for _, resting := range b.takeResting(isMarket) {
		order := resting.order

		switch order.OrderType {
		case types.OrderTypeMarket:
			b.fill(order, b.bar.Close)
		case types.OrderTypeLimit:
			limit := order.LimitPrice.Unwrap()
			if (order.IsBuy() && b.bar.Close <= limit) || (!order.IsBuy() && b.bar.Close >= limit) {
				b.fill(order, limit)
			} else {
				b.resting = append(b.resting, resting)
			}
		}
	}

	b.deliver()
}

// takeResting removes and returns the resting orders matching match, in submission order.
func (b *BacktestTrading) takeResting(match func(restingOrder) bool) []restingOrder {
	var taken []restingOrder

	remaining := b.resting[:0]

	for _, resting := range b.resting {
		if match(resting) {
			taken = append(taken, resting)
		} else {
			remaining = append(remaining, resting)
		}
	}

	b.resting = remaining

	return taken
}

// settle fills a resting order if the current bar triggers it, otherwise keeps it resting.
func (b *BacktestTrading) settle(resting restingOrder) {
	order := resting.order
	bar := b.bar
	open, high, low := bar.OpenPrice(), bar.HighPrice(), bar.LowPrice()

	switch order.OrderType {
	case types.OrderTypeMarket:
		if order.Execution == types.ExecutionTypeOpen {
			b.fill(order, open)
		} else {
			b.fill(order, bar.Close)
		}

		return
	case types.OrderTypeStop, types.OrderTypeStopTrail:
		stop := order.StopPrice.Unwrap()

		if order.IsBuy() && high >= stop {
			b.fill(order, math.Max(stop, open))

			return
		}

		if !order.IsBuy() && low <= stop {
			b.fill(order, math.Min(stop, open))

			return
		}

		if order.OrderType == types.OrderTypeStopTrail {
			reference := high
			if order.IsBuy() {
				reference = low
			}

			next := trailStop(order.Side, reference, order.TrailPercent.Unwrap()).Unwrap()
			if (!order.IsBuy() && next > stop) || (order.IsBuy() && next < stop) {
				resting.order.StopPrice = optional.Some(next)
			}
		}
	case types.OrderTypeLimit:
		limit := order.LimitPrice.Unwrap()

		if order.IsBuy() && low <= limit {
			b.fill(order, math.Min(limit, open))

			return
		}

		if !order.IsBuy() && high >= limit {
			b.fill(order, math.Max(limit, open))

			return
		}
	}

	b.resting = append(b.resting, resting)
}

// fill executes order at price, slippage applied, and queues the notifications.
func (b *BacktestTrading) fill(order types.Order, price float64) {
	quantity := order.Quantity

	if reduceOnly(order) {
		held := b.position
		if order.IsBuy() {
			held = -b.position
		}

		if held <= positionEpsilon {
			order.Status = types.OrderStatusCancelled
			b.queueOrder(order)

			return
		}

		quantity = math.Min(quantity, held)
	}

	if order.IsBuy() {
		price *= 1 + b.slippage
	} else {
		price *= 1 - b.slippage
	}

	if order.IsBuy() && resizable(order) {
		if affordable := b.BuyingPower(price); affordable < quantity {
			b.logger.Debug("Buy resized to buying power at fill price",
				zap.String("order_id", order.ID),
				zap.Float64("requested", quantity),
				zap.Float64("resized", affordable),
				zap.Float64("price", price),
			)

			quantity = affordable
		}
	}

	commission := b.commission.Calculate(quantity, price)
	notional := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price))
	fee := decimal.NewFromFloat(commission)

	if order.IsBuy() {
		cost := notional.Add(fee)
		if quantity <= 0 || cost.GreaterThan(b.cash) {
			b.logger.Debug("Insufficient cash for order",
				zap.String("order_id", order.ID),
				zap.Float64("cost", cost.InexactFloat64()),
				zap.Float64("cash", b.Cash()),
				zap.Float64("buying_power", b.BuyingPower(price)),
			)

			order.Status = types.OrderStatusMargin
			b.queueOrder(order)

			return
		}

		b.cash = b.cash.Sub(cost)
	} else {
		b.cash = b.cash.Add(notional).Sub(fee)
	}

	b.fees = b.fees.Add(fee)

	delta := quantity
	if !order.IsBuy() {
		delta = -quantity
	}

	realized := b.applyFill(delta, price, commission)

	order.Status = types.OrderStatusCompleted
	order.ExecutedAt = b.bar.Time
	order.ExecutedPrice = price
	order.ExecutedQty = quantity
	order.Commission = commission
	order.PnL = realized
	b.queueOrder(order)
}

// resizable reports whether a buy was sized against an earlier price than the one it
// fills at. Such a strategy buy is cut down to what the cash affords instead of
// being aborted when the price moved up in between.
func resizable(order types.Order) bool {
	return order.OrderType == types.OrderTypeMarket &&
		order.Reason == types.OrderReasonStrategy &&
		order.Execution != types.ExecutionTypeMarket
}

// applyFill updates the signed position, its average price and the open trade.
// It returns the realized pnl of the part of the fill that reduced the position.
func (b *BacktestTrading) applyFill(delta, price, commission float64) float64 {
	before := b.position
	after := before + delta

	if math.Abs(after) < positionEpsilon {
		after = 0
	}

	realized := 0.0
	closing := 0.0

	if before != 0 && math.Signbit(before) != math.Signbit(delta) {
		closing = math.Min(math.Abs(delta), math.Abs(before))
		direction := 1.0

		if before < 0 {
			direction = -1
		}

		realized = decimal.NewFromFloat(closing).
			Mul(decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(b.avgPrice))).
			Mul(decimal.NewFromFloat(direction)).
			InexactFloat64()
	}

	closingCommission := 0.0
	if closing > 0 {
		closingCommission = commission * closing / math.Abs(delta)
	}

	switch {
	case after == 0:
		b.avgPrice = 0
	case before == 0 || math.Signbit(before) != math.Signbit(after):
		b.avgPrice = price
	case math.Abs(after) > math.Abs(before):
		b.avgPrice = (math.Abs(before)*b.avgPrice + math.Abs(delta)*price) / math.Abs(after)
	}

	if b.trade != nil {
		b.trade.PnL += realized
		b.trade.Commission += closingCommission
	}

	if b.trade != nil && (after == 0 || math.Signbit(before) != math.Signbit(after)) {
		b.closeTrade(price)
	}

	if after != 0 && b.trade == nil {
		b.trade = &types.Trade{
			ID:         uuid.New().String(),
			OpenedAt:   b.bar.Time,
			Size:       after,
			EntryPrice: price,
			Commission: commission - closingCommission,
		}
	} else if b.trade != nil && closing == 0 {
		b.trade.Commission += commission
	}

	b.position = after

	return realized
}

func (b *BacktestTrading) closeTrade(price float64) {
	trade := *b.trade
	trade.ClosedAt = b.bar.Time
	trade.ExitPrice = price
	trade.IsClosed = true
	trade.PnLComm = decimal.NewFromFloat(trade.PnL).Sub(decimal.NewFromFloat(trade.Commission)).InexactFloat64()

	b.trade = nil
	b.events = append(b.events, brokerEvent{trade: &trade})
}

func (b *BacktestTrading) queueOrder(order types.Order) {
	b.events = append(b.events, brokerEvent{order: &order})
}

// deliver hands the queued events to the listener. Callbacks may submit or cancel
// orders, which queue further events delivered in the same pass.
func (b *BacktestTrading) deliver() {
	for len(b.events) > 0 {
		event := b.events[0]
		b.events = b.events[1:]

		if b.listener == nil {
			continue
		}

		if event.order != nil {
			b.listener.NotifyOrder(*event.order)
		} else {
			b.listener.NotifyTrade(*event.trade)
		}
	}

	if b.listener != nil {
		b.listener.NotifyCashValue(b.Cash(), b.PortfolioValue())
	}
}

// reduceOnly reports whether the order may only shrink the position.
func reduceOnly(order types.Order) bool {
	switch order.Reason {
	case types.OrderReasonStopLoss, types.OrderReasonStopTrail, types.OrderReasonTakeProfit, types.OrderReasonExitLong:
		return !order.IsBuy()
	case types.OrderReasonExitShort:
		return order.IsBuy()
	}

	return false
}

func trailStop(side types.PurchaseType, reference, trail float64) optional.Option[float64] {
	if side == types.PurchaseTypeBuy {
		return optional.Some(reference * (1 + trail))
	}

	return optional.Some(reference * (1 - trail))
}
