// Package consent defines the hand-off boundary to the external user-consent
// flow. The engine never holds pending-request state itself: Begin returns a
// correlation ticket and Await resumes on it, so concurrent permission
// requests stay isolated.
package consent

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"example.com/healthbridge/internal/store"
)

// Flow is the external consent surface. Await returns once the user has
// resolved the request identified by ticket, whether they granted all, some,
// or none of the tokens. Flow failures are reported as errors; a denial is
// not an error.
type Flow interface {
	Begin(ctx context.Context, tokens []string) (ticket string, err error)
	Await(ctx context.Context, ticket string) error
}

// AutoGrant is a Flow that approves every request immediately by writing the
// tokens into the store's grant set. Used by the dev profile and tests.
type AutoGrant struct {
	store store.Store

	mu      sync.Mutex
	pending map[string][]string
}

// NewAutoGrant constructs an AutoGrant flow over the store.
func NewAutoGrant(s store.Store) *AutoGrant {
	return &AutoGrant{store: s, pending: make(map[string][]string)}
}

// Begin records the request under a fresh ticket.
func (a *AutoGrant) Begin(ctx context.Context, tokens []string) (string, error) {
	ticket := uuid.NewString()
	a.mu.Lock()
	a.pending[ticket] = append([]string(nil), tokens...)
	a.mu.Unlock()
	return ticket, nil
}

// Await grants the tokens recorded under the ticket.
func (a *AutoGrant) Await(ctx context.Context, ticket string) error {
	a.mu.Lock()
	tokens, ok := a.pending[ticket]
	delete(a.pending, ticket)
	a.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown consent ticket %s", ticket)
	}
	return a.store.Grant(ctx, tokens)
}
