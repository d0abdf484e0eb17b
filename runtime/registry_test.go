package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"convosplit/domain"
	"convosplit/errors"
)

func newTestSession(id domain.ChannelID) *domain.Session {
	return domain.NewSession(id, "general", "owner", nil, 5*time.Minute, "general", time.Now())
}

func TestRegistry_Register_And_Lookup(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session := newTestSession("convo-1")

	// Given an empty registry
	req.Zero(registry.Len())

	// When a session is registered
	req.NoError(registry.Register(session))

	// Then it can be resolved by its temporary channel id
	found, ok := registry.Lookup("convo-1")
	req.True(ok)
	req.Same(session, found)
	req.Equal(1, registry.Len())
}

func TestRegistry_Register_Refuses_Duplicate_Channel(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	req.NoError(registry.Register(newTestSession("convo-1")))

	// At most one session may exist per temporary channel.
	err := registry.Register(newTestSession("convo-1"))
	req.ErrorIs(err, errors.ErrSessionExists)
	req.Equal(1, registry.Len())
}

func TestRegistry_Remove_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register(newTestSession("convo-1")))

	registry.Remove("convo-1")
	registry.Remove("convo-1")

	_, ok := registry.Lookup("convo-1")
	req.False(ok)
	req.Zero(registry.Len())
}

func TestRegistry_Active_Snapshots_All_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first := newTestSession("convo-1")
	second := newTestSession("convo-2")
	req.NoError(registry.Register(first))
	req.NoError(registry.Register(second))

	active := registry.Active()

	req.Len(active, 2)
	req.Contains(active, first)
	req.Contains(active, second)
}
