package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

// memoryStore is an in-memory content backend. Records are kept as JSON so updates merge fields
// the way the backend does.
type memoryStore struct {
	mu        sync.Mutex
	records   map[string]map[int]map[string]any
	queries   []string
	failOn    map[string]error
	updateLog []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]map[int]map[string]any{}, failOn: map[string]error{}}
}

func (m *memoryStore) put(collection string, id int, record any) {
	raw, _ := json.Marshal(record)
	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)
	if m.records[collection] == nil {
		m.records[collection] = map[int]map[string]any{}
	}
	m.records[collection][id] = fields
}

func (m *memoryStore) decode(fields map[string]any, dest any) error {
	raw, _ := json.Marshal(fields)
	return json.Unmarshal(raw, dest)
}

func (m *memoryStore) List(ctx context.Context, collection string, q *content.Query, dest any) (*content.Pagination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q.Encode())
	var all []map[string]any
	for _, fields := range m.records[collection] {
		all = append(all, fields)
	}
	raw, _ := json.Marshal(all)
	return &content.Pagination{Page: 1, PageSize: 25, Total: len(all)}, json.Unmarshal(raw, dest)
}

func (m *memoryStore) Get(ctx context.Context, collection string, id int, q *content.Query, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[fmt.Sprintf("get:%s:%d", collection, id)]; err != nil {
		return err
	}
	fields, ok := m.records[collection][id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	return m.decode(fields, dest)
}

func (m *memoryStore) Update(ctx context.Context, collection string, id int, payload any, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[fmt.Sprintf("update:%s:%d", collection, id)]; err != nil {
		return err
	}
	fields, ok := m.records[collection][id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	raw, _ := json.Marshal(payload)
	var patch map[string]any
	_ = json.Unmarshal(raw, &patch)
	for k, v := range patch {
		fields[k] = v
	}
	m.updateLog = append(m.updateLog, fmt.Sprintf("%s:%d", collection, id))
	if dest == nil {
		return nil
	}
	return m.decode(fields, dest)
}

func (m *memoryStore) order(id int) models.Order {
	var o models.Order
	_ = m.decode(m.records[content.CollectionOrders][id], &o)
	return o
}

func (m *memoryStore) dish(id int) models.Dish {
	var d models.Dish
	_ = m.decode(m.records[content.CollectionDishes][id], &d)
	return d
}

func (m *memoryStore) vendor(id int) models.Vendor {
	var v models.Vendor
	_ = m.decode(m.records[content.CollectionVendors][id], &v)
	return v
}

type recordingLocker struct {
	mu    sync.Mutex
	names []string
	held  map[string]*sync.Mutex
	err   error
}

// WithLock serializes callers per lock name, like the Redis locker does across replicas.
func (l *recordingLocker) WithLock(ctx context.Context, fn func(ctx context.Context) error, parts ...string) error {
	name := fmt.Sprint(parts)
	l.mu.Lock()
	l.names = append(l.names, name)
	if l.held == nil {
		l.held = map[string]*sync.Mutex{}
	}
	keyed, ok := l.held[name]
	if !ok {
		keyed = &sync.Mutex{}
		l.held[name] = keyed
	}
	l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	keyed.Lock()
	defer keyed.Unlock()
	return fn(ctx)
}
