package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/angelmondragon/homeplate-backend/pkg/content"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

type call struct {
	method     string
	collection string
	id         int
	query      url.Values
	payload    map[string]any
}

// fakeStore returns canned records per collection and records every call.
type fakeStore struct {
	mu      sync.Mutex
	calls   []call
	lists   map[string]any
	records map[string]map[int]any
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{lists: map[string]any{}, records: map[string]map[int]any{}, nextID: 500}
}

func (f *fakeStore) record(collection string, id int, rec any) {
	if f.records[collection] == nil {
		f.records[collection] = map[int]any{}
	}
	f.records[collection][id] = rec
}

func copyInto(src, dest any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func toMap(payload any) map[string]any {
	var out map[string]any
	_ = copyInto(payload, &out)
	return out
}

func (f *fakeStore) List(ctx context.Context, collection string, q *content.Query, dest any) (*content.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "list", collection: collection, query: q.Values()})
	data, ok := f.lists[collection]
	if !ok {
		data = []any{}
	}
	return &content.Pagination{Page: 1, PageSize: 25, PageCount: 1, Total: 1}, copyInto(data, dest)
}

func (f *fakeStore) Get(ctx context.Context, collection string, id int, q *content.Query, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "get", collection: collection, id: id})
	rec, ok := f.records[collection][id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	return copyInto(rec, dest)
}

func (f *fakeStore) Create(ctx context.Context, collection string, payload any, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields := toMap(payload)
	f.calls = append(f.calls, call{method: "create", collection: collection, payload: fields})
	f.nextID++
	fields["id"] = f.nextID
	return copyInto(fields, dest)
}

func (f *fakeStore) Update(ctx context.Context, collection string, id int, payload any, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields := toMap(payload)
	f.calls = append(f.calls, call{method: "update", collection: collection, id: id, payload: fields})
	rec, ok := f.records[collection][id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	merged := toMap(rec)
	for k, v := range fields {
		merged[k] = v
	}
	f.records[collection][id] = merged
	if dest == nil {
		return nil
	}
	return copyInto(merged, dest)
}

func (f *fakeStore) last(method string) call {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method {
			return f.calls[i]
		}
	}
	panic(fmt.Sprintf("no %s call recorded", method))
}
