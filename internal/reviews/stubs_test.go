package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string]map[int]map[string]any
	failOn  map[string]error
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

func decode(fields any, dest any) error {
	raw, _ := json.Marshal(fields)
	return json.Unmarshal(raw, dest)
}

// List honours the vendorId equality filter and one-based pages.
func (m *memoryStore) List(ctx context.Context, collection string, q *content.Query, dest any) (*content.Pagination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn["list:"+collection]; err != nil {
		return nil, err
	}
	values := q.Values()
	ids := make([]int, 0, len(m.records[collection]))
	for id, fields := range m.records[collection] {
		if want := values.Get("filters[vendorId][$eq]"); want != "" && fmt.Sprint(fields["vendorId"]) != want {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	page, _ := strconv.Atoi(values.Get("pagination[page]"))
	size, _ := strconv.Atoi(values.Get("pagination[pageSize]"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 25
	}
	start := (page - 1) * size
	var out []map[string]any
	for i := start; i < len(ids) && i < start+size; i++ {
		out = append(out, m.records[collection][ids[i]])
	}
	pageCount := (len(ids) + size - 1) / size
	return &content.Pagination{Page: page, PageSize: size, PageCount: pageCount, Total: len(ids)}, decode(out, dest)
}

func (m *memoryStore) Get(ctx context.Context, collection string, id int, q *content.Query, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.records[collection][id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	return decode(fields, dest)
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
	var patch map[string]any
	if err := decode(payload, &patch); err != nil {
		return err
	}
	for k, v := range patch {
		fields[k] = v
	}
	if dest == nil {
		return nil
	}
	return decode(fields, dest)
}

func (m *memoryStore) dish(id int) models.Dish {
	var d models.Dish
	_ = decode(m.records[content.CollectionDishes][id], &d)
	return d
}

func (m *memoryStore) vendor(id int) models.Vendor {
	var v models.Vendor
	_ = decode(m.records[content.CollectionVendors][id], &v)
	return v
}

type recordingLocker struct {
	mu    sync.Mutex
	names []string
}

func (l *recordingLocker) WithLock(ctx context.Context, fn func(ctx context.Context) error, parts ...string) error {
	l.mu.Lock()
	l.names = append(l.names, fmt.Sprint(parts))
	l.mu.Unlock()
	return fn(ctx)
}
