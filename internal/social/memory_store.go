package social

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

type connectionKey struct {
	team    int64
	network domain.SocialNetwork
}

// MemoryStore keeps social data in process memory for demo mode.
// It reports missing rows with pgx.ErrNoRows like the Postgres repository.
type MemoryStore struct {
	mu          sync.Mutex
	nextEntryID int64
	nextConnID  int64
	entries     map[int64]domain.SocialMediaEntry
	connections map[connectionKey]domain.SocialConnection
	now         func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:     map[int64]domain.SocialMediaEntry{},
		connections: map[connectionKey]domain.SocialConnection{},
		now:         time.Now,
	}
}

func (m *MemoryStore) ListEntries(_ context.Context, teamID int64) ([]domain.SocialMediaEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.SocialMediaEntry{}
	for _, e := range m.entries {
		if e.TeamID == teamID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) InsertEntry(_ context.Context, entry *domain.SocialMediaEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEntryID++
	entry.ID = m.nextEntryID
	entry.CreatedAt = m.now().UTC()
	m.entries[entry.ID] = *entry
	return nil
}

func (m *MemoryStore) DeleteEntry(_ context.Context, teamID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.TeamID != teamID {
		return pgx.ErrNoRows
	}
	delete(m.entries, id)
	return nil
}

func (m *MemoryStore) ListConnections(_ context.Context, teamID int64) ([]domain.SocialConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.SocialConnection{}
	for key, c := range m.connections {
		if key.team == teamID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpsertConnection(_ context.Context, teamID int64, _ string, conn domain.SocialConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := connectionKey{team: teamID, network: conn.Network}
	if existing, ok := m.connections[key]; ok {
		conn.ID = existing.ID
	} else {
		m.nextConnID++
		id := m.nextConnID
		conn.ID = &id
	}
	m.connections[key] = conn
	return nil
}
