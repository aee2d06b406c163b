// Package auth provides the authorization provider used outside of a real
// signing environment. A principal is authorized when the caller proved
// control of it; here that proof is possession of the local identity list.
package auth

import (
	"context"
	"fmt"

	"github.com/kalepail/smol-sc/internal/log"
	"github.com/kalepail/smol-sc/internal/market"
)

// Static authorizes principals against a fixed identity list. An empty list
// authorizes everyone, which is the single-operator development setup.
type Static struct {
	identities map[market.Principal]bool
}

var _ market.AuthorizationProvider = (*Static)(nil)

// NewStatic creates a Static authorizer holding the given identities.
func NewStatic(identities ...market.Principal) *Static {
	s := &Static{identities: make(map[market.Principal]bool, len(identities))}
	for _, id := range identities {
		s.identities[id] = true
	}
	return s
}

// RequireAuth implements market.AuthorizationProvider.
func (s *Static) RequireAuth(_ context.Context, principal market.Principal) error {
	if len(s.identities) == 0 || s.identities[principal] {
		return nil
	}
	log.Warn(log.CatCLI, "authorization refused", "principal", string(principal))
	return fmt.Errorf("not authorized as %s", principal)
}
