package translation

import (
	"context"
	"fmt"

	"github.com/iav0207/fcards2-sub001/internal/domain"
)

// Provider is an external translation service.
// Both operations may block on the network and may fail.
type Provider interface {
	// Name identifies the provider in configuration and results.
	Name() string

	// EvaluateTranslation judges req.UserTranslation against the source text.
	EvaluateTranslation(ctx context.Context, req domain.EvaluationRequest) (*domain.EvaluationResult, error)

	// GenerateTranslation translates req.Content into the target language.
	GenerateTranslation(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// Registry maps provider names to providers and remembers registration
// order. Register every provider before the registry is shared.
type Registry struct {
	order  []Provider
	byName map[string]Provider
}

// NewRegistry registers providers in the given order.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{byName: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds p. Returns ErrDuplicateProvider when the name is taken.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("%w: provider cannot be nil", ErrInvalidConfig)
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("%w: provider name cannot be empty", ErrInvalidConfig)
	}
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, name)
	}
	r.byName[name] = p
	r.order = append(r.order, p)
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	p, ok := r.byName[name]
	return p, ok
}

// Names lists registered providers in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.order))
	for _, p := range r.order {
		names = append(names, p.Name())
	}
	return names
}

// Len reports how many providers are registered.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// FallbackPolicy picks the provider to try after the primary, or reports
// false when there is none.
type FallbackPolicy func(r *Registry, primary string) (Provider, bool)

// FirstOther is the default fallback policy: the first registered provider
// whose name differs from primary.
func FirstOther(r *Registry, primary string) (Provider, bool) {
	if r == nil {
		return nil, false
	}
	for _, p := range r.order {
		if p.Name() != primary {
			return p, true
		}
	}
	return nil, false
}
