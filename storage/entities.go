package storage

import (
	"encoding/json"
	"time"

	"start-page/domain"
)

// Entity represents base table entity keys.
type Entity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

const (
	EdmBoolean = "Edm.Boolean"
	EdmInt64   = "Edm.Int64"
)

type todoEntity struct {
	Entity
	Task            string `json:"Task"`
	IsCompleted     bool   `json:"IsCompleted"`
	IsCompletedType string `json:"IsCompleted@odata.type,omitempty"`
	InsertedAt      int64  `json:"InsertedAt,string"`
	InsertedAtType  string `json:"InsertedAt@odata.type,omitempty"`
}

type todoUpdate struct {
	Entity
	Task            *string `json:"Task,omitempty"`
	IsCompleted     *bool   `json:"IsCompleted,omitempty"`
	IsCompletedType *string `json:"IsCompleted@odata.type,omitempty"`
}

type shortcutEntity struct {
	Entity
	Name          string `json:"Name"`
	URL           string `json:"Url"`
	CreatedAt     int64  `json:"CreatedAt,string"`
	CreatedAtType string `json:"CreatedAt@odata.type,omitempty"`
}

type shortcutUpdate struct {
	Entity
	Name *string `json:"Name,omitempty"`
	URL  *string `json:"Url,omitempty"`
}

// Codec converts between domain records and table entities for one table.
type Codec[T domain.Item, P any] interface {
	// Encode builds the entity written on insert.
	Encode(key Entity, item T, now time.Time) ([]byte, error)
	// Decode reads an entity returned by the table.
	Decode(data []byte) (T, error)
	// EncodePatch builds a merge payload.
	EncodePatch(key Entity, patch P) ([]byte, error)
	// SortKey returns the value used to order records by field.
	SortKey(field string) (func(T) int64, bool)
}

// TodoCodec maps domain.Todo to the todos table.
type TodoCodec struct{}

func (TodoCodec) Encode(key Entity, t domain.Todo, now time.Time) ([]byte, error) {
	return json.Marshal(todoEntity{
		Entity:          key,
		Task:            t.Task,
		IsCompleted:     t.IsCompleted,
		IsCompletedType: EdmBoolean,
		InsertedAt:      now.UnixNano(),
		InsertedAtType:  EdmInt64,
	})
}

func (TodoCodec) Decode(data []byte) (domain.Todo, error) {
	var ent todoEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Todo{}, err
	}
	return domain.Todo{
		ID:          ent.RowKey,
		Task:        ent.Task,
		IsCompleted: ent.IsCompleted,
		InsertedAt:  time.Unix(0, ent.InsertedAt).UTC(),
	}, nil
}

func (TodoCodec) EncodePatch(key Entity, p domain.TodoPatch) ([]byte, error) {
	upd := todoUpdate{Entity: key, Task: p.Task, IsCompleted: p.IsCompleted}
	if p.IsCompleted != nil {
		t := EdmBoolean
		upd.IsCompletedType = &t
	}
	return json.Marshal(upd)
}

func (TodoCodec) SortKey(field string) (func(domain.Todo) int64, bool) {
	if field != domain.FieldInsertedAt {
		return nil, false
	}
	return func(t domain.Todo) int64 { return t.InsertedAt.UnixNano() }, true
}

// ShortcutCodec maps domain.Shortcut to the shortcuts table.
type ShortcutCodec struct{}

func (ShortcutCodec) Encode(key Entity, s domain.Shortcut, now time.Time) ([]byte, error) {
	return json.Marshal(shortcutEntity{
		Entity:        key,
		Name:          s.Name,
		URL:           s.URL,
		CreatedAt:     now.UnixNano(),
		CreatedAtType: EdmInt64,
	})
}

func (ShortcutCodec) Decode(data []byte) (domain.Shortcut, error) {
	var ent shortcutEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Shortcut{}, err
	}
	return domain.Shortcut{
		ID:        ent.RowKey,
		Name:      ent.Name,
		URL:       ent.URL,
		CreatedAt: time.Unix(0, ent.CreatedAt).UTC(),
	}, nil
}

func (ShortcutCodec) EncodePatch(key Entity, p domain.ShortcutPatch) ([]byte, error) {
	upd := shortcutUpdate{Entity: key, Name: p.Name}
	if p.URL != nil {
		u := domain.NormalizeURL(*p.URL)
		upd.URL = &u
	}
	return json.Marshal(upd)
}

func (ShortcutCodec) SortKey(field string) (func(domain.Shortcut) int64, bool) {
	if field != domain.FieldCreatedAt {
		return nil, false
	}
	return func(s domain.Shortcut) int64 { return s.CreatedAt.UnixNano() }, true
}
