package types

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestOrderRequestValidate(t *testing.T) {
	tests := []struct {
		name        string
		request     OrderRequest
		shouldError bool
	}{
		{
			name: "valid market order",
			request: OrderRequest{
				Side:      PurchaseTypeBuy,
				OrderType: OrderTypeMarket,
				Execution: ExecutionTypeClose,
				Quantity:  10,
				Reason:    OrderReasonStrategy,
			},
			shouldError: false,
		},
		{
			name: "valid stop order",
			request: OrderRequest{
				Side:      PurchaseTypeSell,
				OrderType: OrderTypeStop,
				Quantity:  10,
				Reason:    OrderReasonStopLoss,
				StopPrice: optional.Some(95.0),
			},
			shouldError: false,
		},
		{
			name: "stop order without stop price",
			request: OrderRequest{
				Side:      PurchaseTypeSell,
				OrderType: OrderTypeStop,
				Quantity:  10,
				Reason:    OrderReasonStopLoss,
			},
			shouldError: true,
		},
		{
			name: "limit order without limit price",
			request: OrderRequest{
				Side:      PurchaseTypeSell,
				OrderType: OrderTypeLimit,
				Quantity:  10,
				Reason:    OrderReasonTakeProfit,
			},
			shouldError: true,
		},
		{
			name: "trailing stop with trail above one",
			request: OrderRequest{
				Side:         PurchaseTypeSell,
				OrderType:    OrderTypeStopTrail,
				Quantity:     10,
				Reason:       OrderReasonStopTrail,
				TrailPercent: optional.Some(1.5),
			},
			shouldError: true,
		},
		{
			name: "zero quantity",
			request: OrderRequest{
				Side:      PurchaseTypeBuy,
				OrderType: OrderTypeMarket,
				Quantity:  0,
				Reason:    OrderReasonStrategy,
			},
			shouldError: true,
		},
		{
			name: "unknown execution type",
			request: OrderRequest{
				Side:      PurchaseTypeBuy,
				OrderType: OrderTypeMarket,
				Execution: ExecutionType("tomorrow"),
				Quantity:  1,
				Reason:    OrderReasonStrategy,
			},
			shouldError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.request.Validate()
			if tc.shouldError {
				assert.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidOrder))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.False(t, OrderStatusCompleted.IsAborted())
	assert.True(t, OrderStatusMargin.IsAborted())
	assert.True(t, OrderStatusRejected.IsTerminal())
	assert.False(t, OrderStatusSubmitted.IsTerminal())
	assert.False(t, OrderStatusAccepted.IsTerminal())
}

func TestOrderValue(t *testing.T) {
	order := Order{Side: PurchaseTypeBuy, ExecutedPrice: 100, ExecutedQty: 3}
	assert.True(t, order.IsBuy())
	assert.Equal(t, 300.0, order.Value())
}
