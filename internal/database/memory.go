package database

import (
	"sync"
	"weatherbot/entity"
)

// MemorySubscriptions is the fallback subscription repository used
// when Mongo is disabled. Subscriptions then live only as long as the
// process.
type MemorySubscriptions struct {
	mu   sync.RWMutex
	subs map[int64]entity.Subscription
}

func NewMemorySubscriptions() *MemorySubscriptions {
	return &MemorySubscriptions{subs: make(map[int64]entity.Subscription)}
}

func (m *MemorySubscriptions) SaveSubscription(sub *entity.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ActorID] = *sub
	return nil
}

func (m *MemorySubscriptions) GetSubscription(actorID int64) (*entity.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[actorID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (m *MemorySubscriptions) DeleteSubscription(actorID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.subs[actorID]
	delete(m.subs, actorID)
	return ok, nil
}

func (m *MemorySubscriptions) ListSubscriptions() ([]entity.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	subs := make([]entity.Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	return subs, nil
}
