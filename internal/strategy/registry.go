package strategy

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// Factory builds a signal source from a complete parameter bag.
type Factory func(params Params) (SignalSource, error)

// Definition describes one registered strategy.
type Definition struct {
	Key      string
	Defaults Params
	Factory  Factory
}

// Registry maps a strategy key to its definition.
type Registry struct {
	definitions map[string]Definition
	mu          sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]Definition)}
}

// DefaultRegistry returns a registry with every built-in strategy.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, def := range []Definition{
		{Key: KeyBase, Defaults: Params{}, Factory: NewBaseStrategy},
		{Key: KeyRSI, Defaults: RSIDefaults(), Factory: NewRSIStrategy},
		{Key: KeySMAC, Defaults: CrossoverDefaults(), Factory: NewSMACStrategy},
		{Key: KeyEMAC, Defaults: CrossoverDefaults(), Factory: NewEMACStrategy},
		{Key: KeyMACD, Defaults: MACDDefaults(), Factory: NewMACDStrategy},
		{Key: KeyBBands, Defaults: BBandsDefaults(), Factory: NewBBandsStrategy},
		{Key: KeyBuyAndHold, Defaults: Params{}, Factory: NewBuyAndHoldStrategy},
		{Key: KeySentiment, Defaults: SentimentDefaults(), Factory: NewSentimentStrategy},
		{Key: KeyCustom, Defaults: CustomDefaults(), Factory: NewCustomStrategy},
		{Key: KeyTernary, Defaults: Params{}, Factory: NewTernaryStrategy},
	} {
		// keys are unique by construction
		_ = r.Register(def)
	}

	return r
}

// Register adds a definition. Registering a key twice fails.
func (r *Registry) Register(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.Key]; exists {
		return errors.Newf(errors.ErrCodeStrategyAlreadyRegistered, "strategy %s already registered", def.Key)
	}

	r.definitions[def.Key] = def

	return nil
}

// Get returns the definition for key, or a configuration error for an unknown key.
func (r *Registry) Get(key string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[key]
	if !ok {
		return Definition{}, errors.Newf(errors.ErrCodeUnknownStrategy, "unknown strategy %q", key)
	}

	return def, nil
}

// New builds the strategy registered under key. Missing params take the strategy defaults.
func (r *Registry) New(key string, params Params) (SignalSource, error) {
	def, err := r.Get(key)
	if err != nil {
		return nil, err
	}

	source, err := def.Factory(params.WithDefaults(def.Defaults))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid parameters for strategy %s", key)
	}

	return source, nil
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.definitions))
	for k := range r.definitions {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
