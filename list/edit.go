package list

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

// editState is the single in-progress text edit of a list.
type editState struct {
	active bool
	id     string
	draft  string
}

// Edit is the public view of the edit state.
type Edit struct {
	ID    string `json:"id"`
	Draft string `json:"draft"`
}

// Editing returns the item currently in edit, if any.
func (m *Manager[T, P]) Editing() (Edit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.edit.active {
		return Edit{}, false
	}
	return Edit{ID: m.edit.id, Draft: m.edit.draft}, true
}

// BeginEdit puts id in edit mode. Any other unsaved edit is dropped.
func (m *Manager[T, P]) BeginEdit(id string) (Edit, error) {
	if m.cfg.EditPatch == nil {
		return Edit{}, ErrEditUnsupported
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(id)
	if i < 0 {
		return Edit{}, ErrNotFound
	}
	draft := ""
	if m.cfg.EditText != nil {
		draft = m.cfg.EditText(m.items[i])
	}
	if m.edit.active && m.edit.id != id {
		m.logger.WithFields(log.Fields{"list": m.cfg.Name, "dropped": m.edit.id, "id": id}).Debug("edit replaced")
	}
	m.edit = editState{active: true, id: id, draft: draft}
	return Edit{ID: id, Draft: draft}, nil
}

// CancelEdit leaves edit mode without saving.
func (m *Manager[T, P]) CancelEdit() {
	m.mu.Lock()
	m.edit = editState{}
	m.mu.Unlock()
}

// CommitEdit saves text for id. Text that is blank after trimming deletes the
// item instead of saving an empty entry.
func (m *Manager[T, P]) CommitEdit(ctx context.Context, id, text string) error {
	if m.cfg.EditPatch == nil {
		return ErrEditUnsupported
	}
	if strings.TrimSpace(text) == "" {
		return m.Delete(ctx, id)
	}
	err := m.Update(ctx, id, m.cfg.EditPatch(text))

	m.mu.Lock()
	if m.edit.id == id {
		m.edit = editState{}
	}
	m.mu.Unlock()
	return err
}
