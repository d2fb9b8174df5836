package session

import (
	"encoding/json"

	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/jrsteele09/tripsync-admin/users"
)

// SnapshotKey is the local store key holding the persisted session subset.
const SnapshotKey = "auth-storage"

const snapshotVersion = 0

// Snapshot is the persisted subset of State: {user, token, isAuthenticated}.
type Snapshot struct {
	State   PersistedState `json:"state"`
	Version int            `json:"version"`
}

type PersistedState struct {
	User            *users.User `json:"user"`
	Token           *string     `json:"token"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

func snapshotOf(st State) Snapshot {
	ps := PersistedState{User: st.User, IsAuthenticated: st.IsAuthenticated}
	if st.Token != "" {
		token := st.Token
		ps.Token = &token
	}
	return Snapshot{State: ps, Version: snapshotVersion}
}

// LoadSnapshot reads the persisted snapshot from the store's local layer.
func (s *Store) LoadSnapshot() (Snapshot, bool, error) {
	local := s.tokens.Local()
	if local == nil {
		return Snapshot{}, false, apperrors.ErrStoreUnavailable
	}
	raw, ok := local.Get(SnapshotKey)
	if !ok || raw == "" {
		return Snapshot{}, false, nil
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false, apperrors.Wrapf(apperrors.ErrCorruptStore, "[Store LoadSnapshot] %v", err)
	}
	return snap, true, nil
}

func (s *Store) persist(st State) error {
	local := s.tokens.Local()
	if local == nil {
		return apperrors.ErrStoreUnavailable
	}
	data, err := json.Marshal(snapshotOf(st))
	if err != nil {
		return apperrors.Wrapf(err, "[Store persist] encode snapshot")
	}
	return local.Set(SnapshotKey, string(data), 0)
}

// rehydrate seeds the state from the persisted snapshot. A corrupt snapshot
// is ignored; restoration will reconcile from the token layers.
func (s *Store) rehydrate() {
	snap, ok, err := s.LoadSnapshot()
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrStoreUnavailable) {
			s.logger.Warn().Err(err).Msg("Ignoring unreadable session snapshot")
		}
		return
	}
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = snap.State.User
	if snap.State.Token != nil {
		s.state.Token = *snap.State.Token
	}
	s.state.IsAuthenticated = snap.State.IsAuthenticated
}
