package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"

	"start-page/domain"
)

// tableAPI is the subset of a table client a Collection needs.
type tableAPI interface {
	listEntities(ctx context.Context, filter string) ([][]byte, error)
	addEntity(ctx context.Context, entity []byte) ([]byte, error)
	mergeEntity(ctx context.Context, entity []byte) error
	deleteEntity(ctx context.Context, partitionKey, rowKey string) error
}

type azTable struct {
	client *aztables.Client
}

func (t azTable) listEntities(ctx context.Context, filter string) ([][]byte, error) {
	pager := t.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	var out [][]byte
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, resp.Entities...)
	}
	return out, nil
}

func (t azTable) addEntity(ctx context.Context, entity []byte) ([]byte, error) {
	resp, err := t.client.AddEntity(ctx, entity, nil)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

func (t azTable) mergeEntity(ctx context.Context, entity []byte) error {
	etag := azcore.ETagAny
	_, err := t.client.UpdateEntity(ctx, entity, &aztables.UpdateEntityOptions{
		IfMatch:    &etag,
		UpdateMode: aztables.UpdateModeMerge,
	})
	return err
}

func (t azTable) deleteEntity(ctx context.Context, partitionKey, rowKey string) error {
	etag := azcore.ETagAny
	_, err := t.client.DeleteEntity(ctx, partitionKey, rowKey, &aztables.DeleteEntityOptions{IfMatch: &etag})
	return err
}

// Collection is one table partition holding records of type T.
type Collection[T domain.Item, P any] struct {
	name      string
	partition string
	table     tableAPI
	codec     Codec[T, P]
	now       func() time.Time
	newID     func() string
}

func newCollection[T domain.Item, P any](name, partition string, table tableAPI, codec Codec[T, P]) *Collection[T, P] {
	return &Collection[T, P]{
		name:      name,
		partition: partition,
		table:     table,
		codec:     codec,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Name returns the table name.
func (c *Collection[T, P]) Name() string { return c.name }

// Partition returns the partition key the collection reads and writes.
func (c *Collection[T, P]) Partition() string { return c.partition }

// SelectAllOrdered reads every record of the partition sorted by order.Field
// and capped at order.Limit when it is positive.
func (c *Collection[T, P]) SelectAllOrdered(ctx context.Context, order domain.Order) ([]T, error) {
	key, ok := c.codec.SortKey(order.Field)
	if !ok {
		return nil, &Error{Op: "select", Collection: c.name, Message: fmt.Sprintf("unknown order field %q", order.Field)}
	}
	rows, err := c.table.listEntities(ctx, partitionFilter(c.partition))
	if err != nil {
		return nil, wrapError("select", c.name, err)
	}
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := c.codec.Decode(row)
		if err != nil {
			return nil, wrapError("select", c.name, err)
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if order.Descending {
			return key(items[i]) > key(items[j])
		}
		return key(items[i]) < key(items[j])
	})
	if order.Limit > 0 && len(items) > order.Limit {
		items = items[:order.Limit]
	}
	return items, nil
}

func partitionFilter(partition string) string {
	return "PartitionKey eq '" + strings.ReplaceAll(partition, "'", "''") + "'"
}

// Insert writes item under a new row key and returns the stored record.
func (c *Collection[T, P]) Insert(ctx context.Context, item T) (T, error) {
	var zero T
	payload, err := c.codec.Encode(Entity{PartitionKey: c.partition, RowKey: c.newID()}, item, c.now())
	if err != nil {
		return zero, wrapError("insert", c.name, err)
	}
	stored, err := c.table.addEntity(ctx, payload)
	if err != nil {
		return zero, wrapError("insert", c.name, err)
	}
	if len(stored) == 0 {
		stored = payload
	}
	created, err := c.codec.Decode(stored)
	if err != nil {
		return zero, wrapError("insert", c.name, err)
	}
	return created, nil
}

// Update merges patch into row id. Concurrent writers are last-write-wins.
func (c *Collection[T, P]) Update(ctx context.Context, id string, patch P) error {
	payload, err := c.codec.EncodePatch(Entity{PartitionKey: c.partition, RowKey: id}, patch)
	if err != nil {
		return wrapError("update", c.name, err)
	}
	return wrapError("update", c.name, c.table.mergeEntity(ctx, payload))
}

// Delete removes row id.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	return wrapError("delete", c.name, c.table.deleteEntity(ctx, c.partition, id))
}

// Storage holds the dashboard's table collections.
type Storage struct {
	Todos     *Collection[domain.Todo, domain.TodoPatch]
	Shortcuts *Collection[domain.Shortcut, domain.ShortcutPatch]
}

func clientOptions() *aztables.ClientOptions {
	return &aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
}

// NewServiceClient creates a table service client with the transport retry policy.
func NewServiceClient(connStr string) (*aztables.ServiceClient, error) {
	return aztables.NewServiceClientFromConnectionString(connStr, clientOptions())
}

// New creates a Storage for one dashboard partition from the given connection string.
func New(connStr, todosTable, shortcutsTable, partition string) (*Storage, error) {
	svc, err := NewServiceClient(connStr)
	if err != nil {
		return nil, err
	}
	return &Storage{
		Todos:     newCollection(todosTable, partition, azTable{svc.NewClient(todosTable)}, Codec[domain.Todo, domain.TodoPatch](TodoCodec{})),
		Shortcuts: newCollection(shortcutsTable, partition, azTable{svc.NewClient(shortcutsTable)}, Codec[domain.Shortcut, domain.ShortcutPatch](ShortcutCodec{})),
	}, nil
}
