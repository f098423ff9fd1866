package application

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkuazz/launcher/internal/domain"
)

func TestMultiplexerRoutesToOwningSink(t *testing.T) {
	t.Parallel()

	mux := NewMultiplexer(nil)

	var mu sync.Mutex
	var firstEvents, secondEvents []domain.InstanceEvent
	mux.Register("instance-1", "main", collectEvents(&firstEvents, &mu))
	mux.Register("instance-2", "alt", collectEvents(&secondEvents, &mu))

	mux.Route(domain.InstanceEvent{InstanceID: "instance-1", Kind: domain.EventStdoutLine, Line: "hello"})
	mux.Route(domain.InstanceEvent{InstanceID: "instance-2", Kind: domain.EventStderrLine, Line: "warn"})
	mux.Route(domain.InstanceEvent{InstanceID: "instance-1", Kind: domain.EventStdoutLine, Line: "world"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, firstEvents, 2)
	assert.Equal(t, "hello", firstEvents[0].Line)
	assert.Equal(t, "world", firstEvents[1].Line)
	require.Len(t, secondEvents, 1)
	assert.Equal(t, "warn", secondEvents[0].Line)
}

func TestMultiplexerDropsEventsForUnknownInstance(t *testing.T) {
	t.Parallel()

	mux := NewMultiplexer(nil)

	var mu sync.Mutex
	var events []domain.InstanceEvent
	mux.Register("instance-1", "main", collectEvents(&events, &mu))

	mux.Route(domain.InstanceEvent{InstanceID: "ghost", Kind: domain.EventStdoutLine, Line: "late"})

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, events)
}

func TestMultiplexerTracksInstanceState(t *testing.T) {
	t.Parallel()

	mux := NewMultiplexer(nil)

	var mu sync.Mutex
	var events []domain.InstanceEvent
	mux.Register("instance-1", "main", collectEvents(&events, &mu))

	instance, ok := mux.Lookup("instance-1")
	require.True(t, ok)
	assert.False(t, instance.HasSignaledReady)
	assert.Nil(t, instance.ExitCode)

	mux.Route(domain.InstanceEvent{InstanceID: "instance-1", Kind: domain.EventReady})
	instance, ok = mux.Lookup("instance-1")
	require.True(t, ok)
	assert.True(t, instance.HasSignaledReady)

	mux.Route(domain.InstanceEvent{InstanceID: "instance-1", Kind: domain.EventExit, ExitCode: 7})
	instance, ok = mux.Lookup("instance-1")
	require.True(t, ok)
	require.NotNil(t, instance.ExitCode)
	assert.Equal(t, 7, *instance.ExitCode)
}

func TestMultiplexerInstancesSnapshotIsOrdered(t *testing.T) {
	t.Parallel()

	mux := NewMultiplexer(nil)

	var mu sync.Mutex
	var events []domain.InstanceEvent
	mux.Register("zzzz-2222", "main", collectEvents(&events, &mu))
	mux.Register("aaaa-1111", "main", collectEvents(&events, &mu))
	mux.Register("bbbb-3333", "alt", collectEvents(&events, &mu))

	mux.Route(domain.InstanceEvent{InstanceID: "aaaa-1111", Kind: domain.EventReady})

	instances := mux.Instances()
	require.Len(t, instances, 3)
	assert.Equal(t, "bbbb-3333", instances[0].InstanceID)
	assert.Equal(t, "aaaa-1111", instances[1].InstanceID)
	assert.Equal(t, "zzzz-2222", instances[2].InstanceID)
	assert.True(t, instances[1].HasSignaledReady)
	assert.False(t, instances[2].HasSignaledReady)

	mux.Unregister("aaaa-1111")
	assert.Len(t, mux.Instances(), 2)
}

func TestMultiplexerUnregisterRemovesInstance(t *testing.T) {
	t.Parallel()

	mux := NewMultiplexer(nil)

	var mu sync.Mutex
	var events []domain.InstanceEvent
	mux.Register("instance-1", "main", collectEvents(&events, &mu))
	assert.Equal(t, 1, mux.Live())

	mux.Unregister("instance-1")
	assert.Zero(t, mux.Live())

	_, ok := mux.Lookup("instance-1")
	assert.False(t, ok)
}
