// Package list keeps a local, ordered copy of a remote collection in step with
// the store. Local state only changes after the store confirms a call.
package list

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"start-page/domain"
)

const tracerName = "start-page/list"

var (
	// ErrNotFound is returned when an id is not in the local list.
	ErrNotFound = errors.New("item not found")
	// ErrInEdit is returned when a toggle targets the item being edited.
	ErrInEdit = errors.New("item is being edited")
	// ErrEditUnsupported is returned by edit operations on lists without text editing.
	ErrEditUnsupported = errors.New("list does not support editing")
)

// Remote is the collection a Manager mirrors.
type Remote[T domain.Item, P any] interface {
	SelectAllOrdered(ctx context.Context, order domain.Order) ([]T, error)
	Insert(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, patch P) error
	Delete(ctx context.Context, id string) error
}

// Strategy tells a Manager how to fold a created record into the local list.
type Strategy int

const (
	// AppendLocal appends the record returned by the insert.
	AppendLocal Strategy = iota
	// Resync reloads the whole list, for lists whose order or cap is decided
	// by the store.
	Resync
)

func (s Strategy) String() string {
	switch s {
	case AppendLocal:
		return "append_local"
	case Resync:
		return "resync"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Config describes one list instance.
type Config[T domain.Item, P any] struct {
	Name     string
	Order    domain.Order
	Strategy Strategy

	// Prepare validates and normalizes a record before insert.
	Prepare func(T) (T, error)
	// Apply merges a confirmed patch into a local record.
	Apply func(T, P) T
	// TogglePatch builds the patch for a click on the item. Optional.
	TogglePatch func(T) P
	// EditPatch builds the patch saving edited text. Optional.
	EditPatch func(string) P
	// EditText returns the text an edit starts from. Optional.
	EditText func(T) string
}

// Manager mirrors a remote collection. The mutex only guards local state;
// remote calls run unlocked so completions land in arrival order.
type Manager[T domain.Item, P any] struct {
	remote Remote[T, P]
	cfg    Config[T, P]
	logger *log.Logger

	mu     sync.Mutex
	items  []T
	loaded bool
	edit   editState
}

// New creates a Manager for the remote collection.
func New[T domain.Item, P any](remote Remote[T, P], cfg Config[T, P], logger *log.Logger) *Manager[T, P] {
	if remote == nil {
		panic("list.New: remote is nil")
	}
	if cfg.Apply == nil {
		panic("list.New: Apply is required")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Manager[T, P]{
		remote: remote,
		cfg:    cfg,
		logger: logger,
		items:  []T{},
	}
}

// Name returns the configured list name.
func (m *Manager[T, P]) Name() string { return m.cfg.Name }

// Strategy returns how created records are folded in.
func (m *Manager[T, P]) Strategy() Strategy { return m.cfg.Strategy }

// Items returns a copy of the local list.
func (m *Manager[T, P]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Loaded reports whether at least one load has succeeded.
func (m *Manager[T, P]) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Load replaces the local list with the store's ordered contents. On failure
// the previous list is kept.
func (m *Manager[T, P]) Load(ctx context.Context) (err error) {
	ctx, span := m.start(ctx, "load")
	defer func() { m.end(span, err) }()

	items, err := m.remote.SelectAllOrdered(ctx, m.cfg.Order)
	if err != nil {
		m.fail("load", "", err)
		return err
	}
	if items == nil {
		items = []T{}
	}

	m.mu.Lock()
	m.items = items
	m.loaded = true
	m.mu.Unlock()

	span.SetAttributes(attribute.Int("list.items", len(items)))
	m.logger.WithFields(log.Fields{"list": m.cfg.Name, "items": len(items)}).Debug("list loaded")
	return nil
}

// Create validates item, inserts it and folds the confirmed record into the
// local list according to the configured strategy. Nothing is added locally
// if validation or the insert fails.
func (m *Manager[T, P]) Create(ctx context.Context, item T) (created T, err error) {
	ctx, span := m.start(ctx, "create")
	defer func() { m.end(span, err) }()

	if m.cfg.Prepare != nil {
		item, err = m.cfg.Prepare(item)
		if err != nil {
			var zero T
			return zero, err
		}
	}

	created, err = m.remote.Insert(ctx, item)
	if err != nil {
		m.fail("create", "", err)
		var zero T
		return zero, err
	}
	span.SetAttributes(attribute.String("list.id", created.Key()))

	switch m.cfg.Strategy {
	case Resync:
		// The insert is confirmed; a failed reload only leaves the list stale.
		_ = m.Load(ctx)
	default:
		m.mu.Lock()
		m.items = append(m.items, created)
		m.mu.Unlock()
	}
	return created, nil
}

// Update sends patch for id and, once confirmed, applies it locally.
func (m *Manager[T, P]) Update(ctx context.Context, id string, patch P) (err error) {
	ctx, span := m.start(ctx, "update", attribute.String("list.id", id))
	defer func() { m.end(span, err) }()

	if err = m.remote.Update(ctx, id, patch); err != nil {
		m.fail("update", id, err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// The item may have been removed while the call was in flight.
	if i := m.indexLocked(id); i >= 0 {
		m.items[i] = m.cfg.Apply(m.items[i], patch)
	}
	return nil
}

// Toggle is the click gesture on an item. It is suppressed for the item in
// edit.
func (m *Manager[T, P]) Toggle(ctx context.Context, id string) error {
	if m.cfg.TogglePatch == nil {
		return fmt.Errorf("%s: toggle not supported", m.cfg.Name)
	}
	m.mu.Lock()
	if m.edit.active && m.edit.id == id {
		m.mu.Unlock()
		return ErrInEdit
	}
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	patch := m.cfg.TogglePatch(m.items[i])
	m.mu.Unlock()

	return m.Update(ctx, id, patch)
}

// Delete removes id from the store and then from the local list.
func (m *Manager[T, P]) Delete(ctx context.Context, id string) (err error) {
	ctx, span := m.start(ctx, "delete", attribute.String("list.id", id))
	defer func() { m.end(span, err) }()

	if err = m.remote.Delete(ctx, id); err != nil {
		m.fail("delete", id, err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(id); i >= 0 {
		m.items = append(m.items[:i:i], m.items[i+1:]...)
	}
	if m.edit.active && m.edit.id == id {
		m.edit = editState{}
	}
	return nil
}

// Get returns the local copy of id.
func (m *Manager[T, P]) Get(id string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(id); i >= 0 {
		return m.items[i], true
	}
	var zero T
	return zero, false
}

func (m *Manager[T, P]) indexLocked(id string) int {
	for i := range m.items {
		if m.items[i].Key() == id {
			return i
		}
	}
	return -1
}

func (m *Manager[T, P]) fail(op, id string, err error) {
	fields := log.Fields{"list": m.cfg.Name, "op": op}
	if id != "" {
		fields["id"] = id
	}
	m.logger.WithFields(fields).WithError(err).Error("remote call failed")
}

func (m *Manager[T, P]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("list.name", m.cfg.Name),
		attribute.String("list.strategy", m.cfg.Strategy.String()),
	)
	return otel.Tracer(tracerName).Start(ctx, "list."+m.cfg.Name+"."+op, trace.WithAttributes(attrs...))
}

func (m *Manager[T, P]) end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
