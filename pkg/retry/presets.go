package retry

import (
	"fmt"
	"sort"
)

// Scope names registered by DefaultPresets
const (
	ScopeAIService     = "ai-service"
	ScopeSourceControl = "source-control"
	ScopeNetwork       = "network"
)

// Presets is an immutable set of named policies with a fallback default
type Presets struct {
	fallback Policy
	scopes   map[string]Policy
}

// For returns the policy registered for scope, or the default policy
func (p Presets) For(scope string) Policy {
	if policy, ok := p.scopes[scope]; ok {
		return policy
	}
	if p.fallback.IsZero() {
		return DefaultPolicy()
	}
	return p.fallback
}

// Lookup returns the policy registered for scope and whether it exists
func (p Presets) Lookup(scope string) (Policy, bool) {
	policy, ok := p.scopes[scope]
	return policy, ok
}

// Default returns the fallback policy
func (p Presets) Default() Policy {
	if p.fallback.IsZero() {
		return DefaultPolicy()
	}
	return p.fallback
}

// Scopes returns the registered scope names in sorted order
func (p Presets) Scopes() []string {
	names := make([]string, 0, len(p.scopes))
	for name := range p.scopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetsBuilder assembles a Presets value
type PresetsBuilder struct {
	fallback Policy
	scopes   map[string]Policy
	err      error
}

// NewPresetsBuilder creates a builder whose default is DefaultPolicy
func NewPresetsBuilder() *PresetsBuilder {
	return &PresetsBuilder{
		fallback: DefaultPolicy(),
		scopes:   make(map[string]Policy),
	}
}

// WithDefault sets the fallback policy
func (b *PresetsBuilder) WithDefault(policy Policy) *PresetsBuilder {
	if policy.IsZero() {
		b.setErr(fmt.Errorf("%w: default policy is not initialized", ErrInvalidPolicy))
		return b
	}
	b.fallback = policy
	return b
}

// WithScope registers a policy under a scope name
func (b *PresetsBuilder) WithScope(scope string, policy Policy) *PresetsBuilder {
	switch {
	case scope == "":
		b.setErr(fmt.Errorf("%w: scope name must not be empty", ErrInvalidPolicy))
	case policy.IsZero():
		b.setErr(fmt.Errorf("%w: policy for scope %q is not initialized", ErrInvalidPolicy, scope))
	default:
		b.scopes[scope] = policy
	}
	return b
}

func (b *PresetsBuilder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build returns the assembled presets or the first error recorded by the builder
func (b *PresetsBuilder) Build() (Presets, error) {
	if b.err != nil {
		return Presets{}, b.err
	}

	scopes := make(map[string]Policy, len(b.scopes))
	for name, policy := range b.scopes {
		scopes[name] = policy
	}
	return Presets{fallback: b.fallback, scopes: scopes}, nil
}

// DefaultPresets returns the built-in scopes with DefaultPolicy as fallback
func DefaultPresets() Presets {
	presets, _ := NewPresetsBuilder().
		WithScope(ScopeAIService, AIServicePolicy()).
		WithScope(ScopeSourceControl, SourceControlPolicy()).
		WithScope(ScopeNetwork, NetworkPolicy()).
		Build()
	return presets
}
