package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestRegisterIndicator() {
	registry := NewIndicatorRegistry()

	sma, err := NewSMA("sma", 2)
	suite.Require().NoError(err)
	suite.NoError(registry.RegisterIndicator(sma))

	retrieved, err := registry.GetIndicator("sma")
	suite.NoError(err)
	suite.Equal(sma, retrieved)
}

func (suite *RegistryTestSuite) TestRegisterIndicatorDuplicate() {
	registry := NewIndicatorRegistry()

	first, _ := NewSMA("sma", 2)
	second, _ := NewSMA("sma", 3)

	suite.NoError(registry.RegisterIndicator(first))

	err := registry.RegisterIndicator(second)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
	suite.Contains(err.Error(), "already registered")
}

func (suite *RegistryTestSuite) TestGetAndRemoveNotFound() {
	registry := NewIndicatorRegistry()

	_, err := registry.GetIndicator("rsi")
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))

	err = registry.RemoveIndicator("rsi")
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestListAndRemove() {
	registry := NewIndicatorRegistry()

	rsi, _ := NewRSI("rsi", 14)
	ema, _ := NewEMA("ema", 10)
	suite.NoError(registry.RegisterIndicator(rsi))
	suite.NoError(registry.RegisterIndicator(ema))

	suite.Equal([]string{"ema", "rsi"}, registry.ListIndicators())

	suite.NoError(registry.RemoveIndicator("rsi"))
	suite.Equal([]string{"ema"}, registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestSnapshotSkipsWarmingIndicators() {
	registry := NewIndicatorRegistry()

	fast, _ := NewSMA("fast", 1)
	slow, _ := NewSMA("slow", 3)
	suite.NoError(registry.RegisterIndicator(fast))
	suite.NoError(registry.RegisterIndicator(slow))

	fast.Update(5)
	slow.Update(5)

	snapshot := registry.Snapshot()
	suite.Equal(map[string]float64{"fast": 5}, snapshot)
}
