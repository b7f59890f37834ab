package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryRepository keeps clients and schedules in process memory.
// It backs `serve --memory` and the handler tests.
type MemoryRepository struct {
	clients   []Client
	schedules map[int64]Schedule
	clientSeq int64
	schedSeq  int64
	mu        sync.RWMutex
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		schedules: make(map[int64]Schedule),
	}
}

func (m *MemoryRepository) ListClients(ctx context.Context) ([]Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Client, len(m.clients))
	copy(result, m.clients)
	return result, nil
}

func (m *MemoryRepository) CreateClient(ctx context.Context, c *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clientSeq++
	c.ID = m.clientSeq
	m.clients = append(m.clients, *c)
	return nil
}

func (m *MemoryRepository) ListSchedules(ctx context.Context) ([]ScheduleRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]ScheduleRow, 0, len(m.schedules))
	for _, s := range m.schedules {
		client, ok := m.client(s.ClientID)
		if !ok {
			continue
		}
		rows = append(rows, ScheduleRow{Schedule: s, ClientName: client.Name})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AppointmentTime.Equal(rows[j].AppointmentTime) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].AppointmentTime.Before(rows[j].AppointmentTime)
	})
	return rows, nil
}

func (m *MemoryRepository) CreateSchedule(ctx context.Context, s *Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.client(s.ClientID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownClient, s.ClientID)
	}
	m.schedSeq++
	s.ID = m.schedSeq
	m.schedules[s.ID] = *s
	return nil
}

func (m *MemoryRepository) UpdateSchedule(ctx context.Context, id int64, patch SchedulePatch) (*Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.ClientID != nil {
		if _, ok := m.client(*patch.ClientID); !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownClient, *patch.ClientID)
		}
		s.ClientID = *patch.ClientID
	}
	s.AppointmentTime = patch.AppointmentTime
	s.EndTime = patch.EndTime
	if patch.Description != nil {
		s.Description = patch.Description
	}

	m.schedules[id] = s
	return &s, nil
}

func (m *MemoryRepository) DeleteSchedule(ctx context.Context, id int64) (*Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.schedules, id)
	return &s, nil
}

// client must be called with mu held
func (m *MemoryRepository) client(id int64) (Client, bool) {
	for _, c := range m.clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}
