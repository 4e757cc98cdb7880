package indicator

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// IndicatorRegistry holds the indicators of one strategy instance by name.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name string) (Indicator, error)
	ListIndicators() []string
	RemoveIndicator(name string) error
	// Snapshot returns the value of every ready indicator.
	Snapshot() map[string]float64
}

// IndicatorRegistryV1 is the map-backed IndicatorRegistry.
type IndicatorRegistryV1 struct {
	indicators map[string]Indicator
	mu         sync.RWMutex
}

// NewIndicatorRegistry creates a new indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		indicators: make(map[string]Indicator),
		mu:         sync.RWMutex{},
	}
}

// RegisterIndicator adds an indicator to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator with name %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

// GetIndicator retrieves an indicator by name.
func (r *IndicatorRegistryV1) GetIndicator(name string) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	return indicator, nil
}

// ListIndicators returns the registered names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// RemoveIndicator removes an indicator from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	delete(r.indicators, name)

	return nil
}

func (r *IndicatorRegistryV1) Snapshot() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make(map[string]float64, len(r.indicators))

	for name, indicator := range r.indicators {
		value, err := indicator.Value()
		if err != nil {
			continue
		}

		values[name] = value
	}

	return values
}
