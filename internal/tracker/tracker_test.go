package tracker

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type TrackerTestSuite struct {
	suite.Suite
	tracker *OrderLifecycleTracker
	at      time.Time
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

func (s *TrackerTestSuite) SetupTest() {
	s.tracker = NewOrderLifecycleTracker()
	s.at = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func (s *TrackerTestSuite) TestRecordOrder() {
	tests := []struct {
		name     string
		order    types.Order
		wantRows int
		wantType types.OrderRecordType
	}{
		{
			name: "completed buy",
			order: types.Order{
				Side: types.PurchaseTypeBuy, Status: types.OrderStatusCompleted, Reason: types.OrderReasonStrategy,
				ExecutedAt: s.at, ExecutedPrice: 100, ExecutedQty: 10, Commission: 1,
			},
			wantRows: 1,
			wantType: types.OrderRecordTypeBuy,
		},
		{
			name: "completed sell",
			order: types.Order{
				Side: types.PurchaseTypeSell, Status: types.OrderStatusCompleted, Reason: types.OrderReasonStopLoss,
				ExecutedAt: s.at, ExecutedPrice: 95, ExecutedQty: 10, PnL: -50,
			},
			wantRows: 1,
			wantType: types.OrderRecordTypeSell,
		},
		{
			name:     "cancelled order is not recorded",
			order:    types.Order{Side: types.PurchaseTypeBuy, Status: types.OrderStatusCancelled},
			wantRows: 0,
		},
		{
			name:     "margin order is not recorded",
			order:    types.Order{Side: types.PurchaseTypeBuy, Status: types.OrderStatusMargin},
			wantRows: 0,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			tracker := NewOrderLifecycleTracker()
			tracker.RecordOrder(tc.order)

			logs := tracker.Materialize()
			s.Len(logs.Orders, tc.wantRows)

			if tc.wantRows > 0 {
				record := logs.Orders[0]
				s.Equal(tc.wantType, record.Type)
				s.Equal(tc.order.ExecutedPrice*tc.order.ExecutedQty, record.Value)
				s.Equal(tc.order.Reason, record.Reason)
				s.Equal(tc.order.PnL, record.PnL)
			}
		})
	}
}

func (s *TrackerTestSuite) TestLogsBeforeMaterialize() {
	s.tracker.RecordPeriodic(s.at, 100, 100, 0)

	_, err := s.tracker.Logs()
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeDataUnavailable))

	s.tracker.Materialize()

	logs, err := s.tracker.Logs()
	s.Require().NoError(err)
	s.Len(logs.Periodic, 1)
}

func (s *TrackerTestSuite) TestRecordTrade() {
	s.tracker.RecordTrade(types.Trade{IsClosed: false, PnL: 10})
	s.tracker.RecordTrade(types.Trade{IsClosed: true, ClosedAt: s.at, PnL: 10, PnLComm: 8})

	logs := s.tracker.Materialize()
	s.Equal([]types.TradeRecord{{Time: s.at, PnL: 10, PnLComm: 8}}, logs.Trades)
}

func (s *TrackerTestSuite) TestRecordIndicatorsSortedByName() {
	s.tracker.RecordIndicators(s.at, map[string]float64{"sma": 2, "rsi": 1, "macd": 3})

	logs := s.tracker.Materialize()
	s.Require().Len(logs.Indicators, 3)
	s.Equal("macd", logs.Indicators[0].Name)
	s.Equal("rsi", logs.Indicators[1].Name)
	s.Equal("sma", logs.Indicators[2].Name)
}

func (s *TrackerTestSuite) TestRecordInjection() {
	s.tracker.RecordInjection(s.at, 1000, 1000)
	s.tracker.RecordInjection(s.at.AddDate(0, 1, 0), 1000, 2000)

	logs := s.tracker.Materialize()
	s.Require().Len(logs.Injections, 2)
	s.Equal(2000.0, logs.Injections[1].TotalInjected)
}

func (s *TrackerTestSuite) TestMaterializeReturnsCopies() {
	s.tracker.RecordPeriodic(s.at, 100, 100, 0)

	logs := s.tracker.Materialize()
	logs.Periodic[0].Cash = 0

	again, err := s.tracker.Logs()
	s.Require().NoError(err)
	s.Equal(100.0, again.Periodic[0].Cash)
}

func (s *TrackerTestSuite) TestReset() {
	s.tracker.RecordPeriodic(s.at, 100, 100, 0)
	s.tracker.RecordOrder(types.Order{Status: types.OrderStatusCompleted, Side: types.PurchaseTypeBuy})
	s.tracker.Materialize()

	s.tracker.Reset()
	s.Equal(0, s.tracker.OrderCount())

	_, err := s.tracker.Logs()
	s.Error(err)
	s.Empty(s.tracker.Materialize().Periodic)
}
