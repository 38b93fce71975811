package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// fakeTable keeps entities as raw JSON maps keyed by row key.
type fakeTable struct {
	mu      sync.Mutex
	rows    map[string]map[string]any
	order   []string
	filters []string
	failOn  map[string]error
}

func newFakeTable() *fakeTable {
	return &fakeTable{rows: map[string]map[string]any{}, failOn: map[string]error{}}
}

func notFound() error {
	return &azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "ResourceNotFound"}
}

func (f *fakeTable) listEntities(_ context.Context, filter string) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if err := f.failOn["list"]; err != nil {
		return nil, err
	}
	keys := append([]string(nil), f.order...)
	sort.Strings(keys)
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		row, ok := f.rows[k]
		if !ok {
			continue
		}
		data, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (f *fakeTable) addEntity(_ context.Context, entity []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["add"]; err != nil {
		return nil, err
	}
	var row map[string]any
	if err := json.Unmarshal(entity, &row); err != nil {
		return nil, err
	}
	rk, _ := row["RowKey"].(string)
	if _, ok := f.rows[rk]; ok {
		return nil, &azcore.ResponseError{StatusCode: http.StatusConflict, ErrorCode: "EntityAlreadyExists"}
	}
	f.rows[rk] = row
	f.order = append(f.order, rk)
	return entity, nil
}

func (f *fakeTable) mergeEntity(_ context.Context, entity []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["merge"]; err != nil {
		return err
	}
	var patch map[string]any
	if err := json.Unmarshal(entity, &patch); err != nil {
		return err
	}
	rk, _ := patch["RowKey"].(string)
	row, ok := f.rows[rk]
	if !ok {
		return notFound()
	}
	for k, v := range patch {
		row[k] = v
	}
	return nil
}

func (f *fakeTable) deleteEntity(_ context.Context, _, rowKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["delete"]; err != nil {
		return err
	}
	if _, ok := f.rows[rowKey]; !ok {
		return notFound()
	}
	delete(f.rows, rowKey)
	return nil
}
