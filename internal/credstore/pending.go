package credstore

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrStateUnknown means a callback arrived with a state token we never
// issued, or one that already expired or was consumed.
var ErrStateUnknown = errors.New("credstore: unknown or expired authorization state")

const pendingTTL = 15 * time.Minute

// PendingAuths holds short-lived records for in-flight authorization
// redirects, keyed by a server-generated correlation token. The token is
// carried in the OAuth state parameter and looked up at callback time, so
// nothing rides on framework session state.
type PendingAuths struct {
	mu      sync.Mutex
	records map[string]time.Time
	now     func() time.Time
}

func NewPendingAuths() *PendingAuths {
	return &PendingAuths{
		records: map[string]time.Time{},
		now:     time.Now,
	}
}

// Begin issues a new correlation token and records it.
func (p *PendingAuths) Begin() string {
	state := uuid.NewString()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prune()
	p.records[state] = p.now().Add(pendingTTL)
	return state
}

// Complete consumes a token. A token can be completed once.
func (p *PendingAuths) Complete(state string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prune()
	expiry, ok := p.records[state]
	if !ok || p.now().After(expiry) {
		return ErrStateUnknown
	}
	delete(p.records, state)
	return nil
}

func (p *PendingAuths) prune() {
	now := p.now()
	for state, expiry := range p.records {
		if now.After(expiry) {
			delete(p.records, state)
		}
	}
}
