package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

type PurchaseType string

type OrderType string

type OrderStatus string

type ExecutionType string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	OrderTypeMarket    OrderType = "MARKET"
	OrderTypeLimit     OrderType = "LIMIT"
	OrderTypeStop      OrderType = "STOP"
	OrderTypeStopTrail OrderType = "STOP_TRAIL"
)

const (
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusMargin    OrderStatus = "MARGIN"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// ExecutionTypeMarket fills against the current bar close.
// ExecutionTypeClose fills against the next bar close.
// ExecutionTypeOpen fills against the next bar open.
const (
	ExecutionTypeMarket ExecutionType = "market"
	ExecutionTypeClose  ExecutionType = "close"
	ExecutionTypeOpen   ExecutionType = "open"
)

var AllExecutionTypes = []any{
	ExecutionTypeMarket,
	ExecutionTypeClose,
	ExecutionTypeOpen,
}

const (
	OrderReasonStrategy   string = "strategy"
	OrderReasonStopLoss   string = "stop_loss"
	OrderReasonStopTrail  string = "stop_trail"
	OrderReasonTakeProfit string = "take_profit"
	OrderReasonExitLong   string = "exit_long"
	OrderReasonExitShort  string = "exit_short"
)

// IsTerminal reports whether the status ends the order's life.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s.IsAborted()
}

// IsAborted reports whether the order ended without a fill.
func (s OrderStatus) IsAborted() bool {
	return s == OrderStatusCancelled || s == OrderStatusMargin || s == OrderStatusRejected
}

// OrderRequest is what the strategy engine hands to the broker.
type OrderRequest struct {
	Side      PurchaseType  `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	OrderType OrderType     `yaml:"order_type" json:"order_type" validate:"required,oneof=MARKET LIMIT STOP STOP_TRAIL"`
	Execution ExecutionType `yaml:"execution" json:"execution" validate:"omitempty,oneof=market close open"`
	Quantity  float64       `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	Reason    string        `yaml:"reason" json:"reason" validate:"required"`
	// StopPrice is required for STOP orders.
	StopPrice optional.Option[float64] `yaml:"stop_price" json:"stop_price"`
	// LimitPrice is required for LIMIT orders.
	LimitPrice optional.Option[float64] `yaml:"limit_price" json:"limit_price"`
	// TrailPercent is required for STOP_TRAIL orders, as a fraction (0.02 = 2%).
	TrailPercent optional.Option[float64] `yaml:"trail_percent" json:"trail_percent"`
}

// Validate validates the OrderRequest struct.
func (r *OrderRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order request", err)
	}

	switch r.OrderType {
	case OrderTypeStop:
		if r.StopPrice.IsNone() || r.StopPrice.Unwrap() <= 0 {
			return errors.New(errors.ErrCodeInvalidOrder, "stop order requires a positive stop price")
		}
	case OrderTypeLimit:
		if r.LimitPrice.IsNone() || r.LimitPrice.Unwrap() <= 0 {
			return errors.New(errors.ErrCodeInvalidOrder, "limit order requires a positive limit price")
		}
	case OrderTypeStopTrail:
		if r.TrailPercent.IsNone() || r.TrailPercent.Unwrap() <= 0 || r.TrailPercent.Unwrap() >= 1 {
			return errors.New(errors.ErrCodeInvalidOrder, "trailing stop requires a trail percent in (0, 1)")
		}
	}

	return nil
}

// Order is an order known to the broker together with its latest status.
type Order struct {
	ID        string        `yaml:"id" json:"id" csv:"id"`
	Symbol    string        `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side      PurchaseType  `yaml:"side" json:"side" csv:"side"`
	OrderType OrderType     `yaml:"order_type" json:"order_type" csv:"order_type"`
	Execution ExecutionType `yaml:"execution" json:"execution" csv:"execution"`
	Quantity  float64       `yaml:"quantity" json:"quantity" csv:"quantity"`
	Reason    string        `yaml:"reason" json:"reason" csv:"reason"`
	Status    OrderStatus   `yaml:"status" json:"status" csv:"status"`
	CreatedAt time.Time     `yaml:"created_at" json:"created_at" csv:"created_at"`

	StopPrice    optional.Option[float64] `yaml:"stop_price" json:"stop_price" csv:"-"`
	LimitPrice   optional.Option[float64] `yaml:"limit_price" json:"limit_price" csv:"-"`
	TrailPercent optional.Option[float64] `yaml:"trail_percent" json:"trail_percent" csv:"-"`

	// Execution details, set once Status is COMPLETED.
	ExecutedAt    time.Time `yaml:"executed_at" json:"executed_at" csv:"executed_at"`
	ExecutedPrice float64   `yaml:"executed_price" json:"executed_price" csv:"executed_price"`
	ExecutedQty   float64   `yaml:"executed_qty" json:"executed_qty" csv:"executed_qty"`
	Commission    float64   `yaml:"commission" json:"commission" csv:"commission"`
	// PnL is the realized profit of the part of the fill that reduced an open position.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
}

// IsBuy reports whether the order buys.
func (o Order) IsBuy() bool {
	return o.Side == PurchaseTypeBuy
}

// Value is the notional value of the fill.
func (o Order) Value() float64 {
	return o.ExecutedPrice * o.ExecutedQty
}
