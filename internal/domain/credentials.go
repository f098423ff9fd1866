package domain

// CredentialStore holds the stored identities and the single active-identity
// pointer. It performs no I/O; persistence is the orchestrator's concern.
//
// At most one identity is active at a time. When the active identity is
// removed, the first remaining identity becomes active.
type CredentialStore struct {
	identities []Identity
	activeKey  string
}

// CredentialSnapshot is the persistence form of a CredentialStore.
type CredentialSnapshot struct {
	Identities []Identity
	ActiveKey  string
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func NewCredentialStoreFromSnapshot(snapshot CredentialSnapshot) *CredentialStore {
	store := &CredentialStore{
		identities: append([]Identity(nil), snapshot.Identities...),
	}

	for _, identity := range store.identities {
		if identity.DedupKey() == snapshot.ActiveKey {
			store.activeKey = snapshot.ActiveKey
			break
		}
	}

	return store
}

func (s *CredentialStore) Snapshot() CredentialSnapshot {
	return CredentialSnapshot{
		Identities: append([]Identity(nil), s.identities...),
		ActiveKey:  s.activeKey,
	}
}

// Upsert inserts or replaces by dedup key. The active pointer is unchanged.
func (s *CredentialStore) Upsert(identity Identity) {
	key := identity.DedupKey()
	for i := range s.identities {
		if s.identities[i].DedupKey() == key {
			s.identities[i] = identity
			return
		}
	}

	s.identities = append(s.identities, identity)
}

// Remove removes by dedup key. If the removed identity was active, the first
// remaining identity becomes active, or none when the store is empty.
func (s *CredentialStore) Remove(identity Identity) {
	key := identity.DedupKey()
	for i := range s.identities {
		if s.identities[i].DedupKey() == key {
			s.identities = append(s.identities[:i], s.identities[i+1:]...)
			break
		}
	}

	if s.activeKey != key {
		return
	}

	s.activeKey = ""
	if len(s.identities) > 0 {
		s.activeKey = s.identities[0].DedupKey()
	}
}

func (s *CredentialStore) SetActive(identity Identity) error {
	key := identity.DedupKey()
	for i := range s.identities {
		if s.identities[i].DedupKey() == key {
			s.activeKey = key
			return nil
		}
	}

	return ErrIdentityNotFound
}

func (s *CredentialStore) Active() (Identity, bool) {
	if s.activeKey == "" {
		return Identity{}, false
	}

	for _, identity := range s.identities {
		if identity.DedupKey() == s.activeKey {
			return identity, true
		}
	}

	return Identity{}, false
}

func (s *CredentialStore) List() []Identity {
	return append([]Identity(nil), s.identities...)
}

func (s *CredentialStore) Len() int {
	return len(s.identities)
}
