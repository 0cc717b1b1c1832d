package credstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingAuthsOneShot(t *testing.T) {
	pending := NewPendingAuths()
	state := pending.Begin()
	require.NotEmpty(t, state)

	require.NoError(t, pending.Complete(state))
	assert.ErrorIs(t, pending.Complete(state), ErrStateUnknown)
}

func TestPendingAuthsUnknownState(t *testing.T) {
	pending := NewPendingAuths()
	assert.ErrorIs(t, pending.Complete("never-issued"), ErrStateUnknown)
}

func TestPendingAuthsExpiry(t *testing.T) {
	now := time.Now()
	pending := NewPendingAuths()
	pending.now = func() time.Time { return now }

	state := pending.Begin()

	now = now.Add(pendingTTL + time.Second)
	assert.ErrorIs(t, pending.Complete(state), ErrStateUnknown)
}

func TestPendingAuthsDistinctTokens(t *testing.T) {
	pending := NewPendingAuths()
	first := pending.Begin()
	second := pending.Begin()
	assert.NotEqual(t, first, second)

	require.NoError(t, pending.Complete(second))
	require.NoError(t, pending.Complete(first))
}
