package mocks

//go:generate mockgen -destination=./mock_broker.go -package=mocks github.com/rxtech-lab/argo-quant/internal/trading Broker
//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/rxtech-lab/argo-quant/internal/notification Notifier
//go:generate mockgen -destination=./mock_signal_source.go -package=mocks github.com/rxtech-lab/argo-quant/internal/strategy SignalSource
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-quant/pkg/marketdata/provider Provider
