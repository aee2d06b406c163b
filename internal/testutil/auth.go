// Package testutil provides test fixtures for marketplace tests: a
// controllable authorizer, a funded in-memory asset ledger and deterministic
// glyph builders.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/kalepail/smol-sc/internal/market"
)

// Authorizer implements market.AuthorizationProvider. It allows every
// principal unless explicitly denied, and records each authorization request
// in order.
type Authorizer struct {
	mu     sync.Mutex
	denied map[market.Principal]bool
	calls  []market.Principal
}

// NewAuthorizer creates an allow-all authorizer.
func NewAuthorizer() *Authorizer {
	return &Authorizer{denied: make(map[market.Principal]bool)}
}

// Deny makes future authorization of principal fail.
func (a *Authorizer) Deny(principal market.Principal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.denied[principal] = true
}

// Allow re-enables a previously denied principal.
func (a *Authorizer) Allow(principal market.Principal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.denied, principal)
}

// RequireAuth implements market.AuthorizationProvider.
func (a *Authorizer) RequireAuth(_ context.Context, principal market.Principal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, principal)
	if a.denied[principal] {
		return fmt.Errorf("authorization denied for %s", principal)
	}
	return nil
}

// Calls returns the principals that were asked to authorize, in order.
func (a *Authorizer) Calls() []market.Principal {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]market.Principal, len(a.calls))
	copy(out, a.calls)
	return out
}
