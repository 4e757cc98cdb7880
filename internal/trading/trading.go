package trading

import "github.com/rxtech-lab/argo-quant/internal/types"

// Broker owns cash, portfolio value and the position. The strategy engine only
// reads balances, submits or cancels orders and asks for cash to be added.
type Broker interface {
	// Cash returns the available cash.
	Cash() float64
	// PortfolioValue returns cash plus the marked value of the position.
	PortfolioValue() float64
	// PositionSize returns the signed position; negative is short.
	PositionSize() float64
	// Submit validates and accepts an order. The returned order carries the broker id.
	Submit(request types.OrderRequest) (types.Order, error)
	// Cancel cancels a resting order.
	Cancel(orderID string) error
	// AddCash adds cash to the account immediately.
	AddCash(amount float64)
}

// Listener receives broker notifications. Per bar the broker delivers order
// updates and closed trades in the order they happened, then one cash/value update.
type Listener interface {
	NotifyOrder(order types.Order)
	NotifyTrade(trade types.Trade)
	NotifyCashValue(cash, value float64)
}
