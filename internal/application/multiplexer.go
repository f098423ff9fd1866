package application

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/turkuazz/launcher/internal/domain"
)

// InstanceSink consumes the ordered event stream of one instance.
type InstanceSink interface {
	Deliver(event domain.InstanceEvent)
}

// InstanceSinkFunc adapts a function to the InstanceSink interface.
type InstanceSinkFunc func(event domain.InstanceEvent)

func (f InstanceSinkFunc) Deliver(event domain.InstanceEvent) { f(event) }

type instanceEntry struct {
	instance domain.Instance
	sink     InstanceSink
}

// Multiplexer maps concurrently running instances to their sinks and routes
// inbound events to the correct instance-scoped consumer. Instances are
// fully independent: no shared buffer, no cross-instance ordering, strict
// append order within one instance.
type Multiplexer struct {
	mu      sync.Mutex
	entries map[string]*instanceEntry
	logger  *zap.Logger
}

func NewMultiplexer(logger *zap.Logger) *Multiplexer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Multiplexer{
		entries: make(map[string]*instanceEntry),
		logger:  logger,
	}
}

func (m *Multiplexer) Register(instanceID, profileName string, sink InstanceSink) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[instanceID] = &instanceEntry{
		instance: domain.Instance{InstanceID: instanceID, ProfileName: profileName},
		sink:     sink,
	}
}

// Route delivers an event to the owning instance's sink. Events for unknown
// ids are dropped with a diagnostic; a UI reload or a shutdown race can
// legitimately produce late events.
func (m *Multiplexer) Route(event domain.InstanceEvent) {
	m.mu.Lock()
	entry, ok := m.entries[event.InstanceID]
	if ok {
		switch event.Kind {
		case domain.EventReady:
			entry.instance.HasSignaledReady = true
		case domain.EventExit:
			code := event.ExitCode
			entry.instance.ExitCode = &code
		}
	}
	m.mu.Unlock()

	if !ok {
		m.logger.Debug("dropping event for unknown instance",
			zap.String("instanceId", event.InstanceID), zap.String("kind", string(event.Kind)))
		return
	}

	entry.sink.Deliver(event)
}

func (m *Multiplexer) Unregister(instanceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, instanceID)
}

// Live returns the number of currently registered instances.
func (m *Multiplexer) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// Instances returns a snapshot of every tracked instance, ordered by
// profile name then instance id.
func (m *Multiplexer) Instances() []domain.Instance {
	m.mu.Lock()
	defer m.mu.Unlock()

	instances := make([]domain.Instance, 0, len(m.entries))
	for _, entry := range m.entries {
		instances = append(instances, entry.instance)
	}

	sort.Slice(instances, func(i, j int) bool {
		if instances[i].ProfileName != instances[j].ProfileName {
			return instances[i].ProfileName < instances[j].ProfileName
		}
		return instances[i].InstanceID < instances[j].InstanceID
	})

	return instances
}

// Lookup returns a copy of the tracked instance state.
func (m *Multiplexer) Lookup(instanceID string) (domain.Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[instanceID]
	if !ok {
		return domain.Instance{}, false
	}

	return entry.instance, true
}
