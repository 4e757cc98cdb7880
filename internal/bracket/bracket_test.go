package bracket

import (
	"testing"

	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/mocks"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BracketManagerTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	broker *mocks.MockBroker
}

func TestBracketManagerSuite(t *testing.T) {
	suite.Run(t, new(BracketManagerTestSuite))
}

func (s *BracketManagerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.broker = mocks.NewMockBroker(s.ctrl)
}

func (s *BracketManagerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BracketManagerTestSuite) newManager(config Config) *BracketManager {
	return NewBracketManager(s.broker, config, logger.NewNopLogger())
}

func (s *BracketManagerTestSuite) TestAttachStopLoss() {
	m := s.newManager(Config{})

	s.broker.EXPECT().Submit(gomock.Any()).DoAndReturn(func(req types.OrderRequest) (types.Order, error) {
		s.Equal(types.PurchaseTypeSell, req.Side)
		s.Equal(types.OrderTypeStop, req.OrderType)
		s.Equal(types.OrderReasonStopLoss, req.Reason)
		s.Equal(10.0, req.Quantity)
		s.InDelta(95.0, req.StopPrice.Unwrap(), 1e-9)

		return types.Order{ID: "sl-1", Status: types.OrderStatusAccepted}, nil
	})

	s.Require().NoError(m.AttachStopLoss(100, 0.05, 10))
	s.Equal([]string{"sl-1"}, m.Active())
	s.True(m.IsBracketOrder("sl-1"))
}

func (s *BracketManagerTestSuite) TestAttachStopLossDisabled() {
	m := s.newManager(Config{})

	s.Require().NoError(m.AttachStopLoss(100, 0, 10))
	s.Require().NoError(m.AttachStopLoss(100, 0.05, 0))
	s.Empty(m.Active())
}

func (s *BracketManagerTestSuite) TestStopLossReplacesPrevious() {
	m := s.newManager(Config{})

	gomock.InOrder(
		s.broker.EXPECT().Submit(gomock.Any()).Return(types.Order{ID: "sl-1"}, nil),
		s.broker.EXPECT().Cancel("sl-1").Return(nil),
		s.broker.EXPECT().Submit(gomock.Any()).Return(types.Order{ID: "sl-2"}, nil),
	)

	s.Require().NoError(m.AttachStopLoss(100, 0.05, 10))
	s.Require().NoError(m.AttachStopLoss(110, 0.05, 12))
	s.Equal([]string{"sl-2"}, m.Active())
}

func (s *BracketManagerTestSuite) TestTrailingStopNeverStacks() {
	m := s.newManager(Config{})

	gomock.InOrder(
		s.broker.EXPECT().Submit(gomock.Any()).DoAndReturn(func(req types.OrderRequest) (types.Order, error) {
			s.Equal(types.OrderTypeStopTrail, req.OrderType)
			s.Equal(0.1, req.TrailPercent.Unwrap())

			return types.Order{ID: "tr-1"}, nil
		}),
		s.broker.EXPECT().Cancel("tr-1").Return(nil),
		s.broker.EXPECT().Submit(gomock.Any()).Return(types.Order{ID: "tr-2"}, nil),
	)

	s.Require().NoError(m.AttachTrailingStop(0.1, 5))
	s.Require().NoError(m.AttachTrailingStop(0.1, 5))
	s.Equal([]string{"tr-2"}, m.Active())
}

func (s *BracketManagerTestSuite) TestCheckTakeProfit() {
	m := s.newManager(Config{})
	m.AttachTakeProfit(100, 0.25)

	tests := []struct {
		name     string
		price    float64
		position float64
		wantHit  bool
	}{
		{name: "below level", price: 120, position: 10, wantHit: false},
		{name: "at level", price: 125, position: 10, wantHit: true},
		{name: "above level", price: 130, position: 10, wantHit: true},
		{name: "flat position", price: 130, position: 0, wantHit: false},
		{name: "short position", price: 130, position: -5, wantHit: false},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			limit, hit := m.CheckTakeProfit(tc.price, tc.position)
			s.Equal(tc.wantHit, hit)

			if tc.wantHit {
				s.InDelta(125.0, limit, 1e-9)
			}
		})
	}
}

func (s *BracketManagerTestSuite) TestOnEntryAttachesConfiguredBrackets() {
	m := s.newManager(Config{StopLoss: 0.05, StopTrail: 0.1, TakeProfit: 0.2})

	s.broker.EXPECT().Submit(gomock.Any()).Return(types.Order{ID: "sl-1"}, nil)
	s.broker.EXPECT().Submit(gomock.Any()).Return(types.Order{ID: "tr-1"}, nil)

	s.Require().NoError(m.OnEntry(100, 10))
	s.ElementsMatch([]string{"sl-1", "tr-1"}, m.Active())
	s.InDelta(120.0, m.TakeProfitLevel().Unwrap(), 1e-9)
}

func (s *BracketManagerTestSuite) TestCancelAll() {
	m := s.newManager(Config{StopLoss: 0.05, TakeProfit: 0.2})

	s.broker.EXPECT().Submit(gomock.Any()).Return(types.Order{ID: "sl-1"}, nil)
	s.Require().NoError(m.OnEntry(100, 10))

	s.broker.EXPECT().Cancel("sl-1").Return(errors.New(errors.ErrCodeOrderNotFound, "gone"))
	s.Require().NoError(m.CancelAll())
	s.Empty(m.Active())
	s.True(m.TakeProfitLevel().IsNone())
}

func (s *BracketManagerTestSuite) TestCancelAllPropagatesBrokerErrors() {
	m := s.newManager(Config{StopLoss: 0.05})

	s.broker.EXPECT().Submit(gomock.Any()).Return(types.Order{ID: "sl-1"}, nil)
	s.Require().NoError(m.OnEntry(100, 10))

	s.broker.EXPECT().Cancel("sl-1").Return(errors.New(errors.ErrCodeUnknown, "broker down"))
	s.Error(m.CancelAll())
}

func (s *BracketManagerTestSuite) TestOnOrderTerminal() {
	m := s.newManager(Config{StopLoss: 0.05, StopTrail: 0.1})

	s.broker.EXPECT().Submit(gomock.Any()).Return(types.Order{ID: "sl-1"}, nil)
	s.broker.EXPECT().Submit(gomock.Any()).Return(types.Order{ID: "tr-1"}, nil)
	s.Require().NoError(m.OnEntry(100, 10))

	m.OnOrderTerminal(types.Order{ID: "sl-1", Status: types.OrderStatusAccepted})
	s.Len(m.Active(), 2)

	m.OnOrderTerminal(types.Order{ID: "sl-1", Status: types.OrderStatusCompleted})
	s.Equal([]string{"tr-1"}, m.Active())

	m.OnOrderTerminal(types.Order{ID: "tr-1", Status: types.OrderStatusCancelled})
	s.Empty(m.Active())
}
