// Package dashboard wires the start page widgets around one shared weather state.
package dashboard

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"start-page/domain"
	"start-page/list"
	"start-page/weather"
)

// Deps are the collaborators of a Dashboard.
type Deps struct {
	Todos     list.Remote[domain.Todo, domain.TodoPatch]
	Shortcuts list.Remote[domain.Shortcut, domain.ShortcutPatch]
	Weather   weather.Fetcher
	Clock     domain.Clock
	Logger    *log.Logger
}

// Dashboard owns the widget state of one start page.
type Dashboard struct {
	Todos     *list.Manager[domain.Todo, domain.TodoPatch]
	Shortcuts *list.Manager[domain.Shortcut, domain.ShortcutPatch]
	Weather   *weather.Widget
	State     *weather.State
	Clock     domain.Clock
	logger    *log.Logger
}

// ShortcutView is a shortcut with its resolved favicon.
type ShortcutView struct {
	domain.Shortcut
	Favicon string `json:"favicon"`
}

// Snapshot is everything the page renders at one instant.
type Snapshot struct {
	Clock     domain.ClockView `json:"clock"`
	Theme     domain.Theme     `json:"theme"`
	Weather   weather.View     `json:"weather"`
	Todos     []domain.Todo    `json:"todos"`
	Shortcuts []ShortcutView   `json:"shortcuts"`
	Editing   *list.Edit       `json:"editing,omitempty"`
}

func todoConfig() list.Config[domain.Todo, domain.TodoPatch] {
	return list.Config[domain.Todo, domain.TodoPatch]{
		Name:     "todos",
		Order:    domain.TodoOrder,
		Strategy: list.AppendLocal,
		Prepare:  domain.PrepareTodo,
		Apply:    domain.ApplyTodoPatch,
		TogglePatch: func(t domain.Todo) domain.TodoPatch {
			done := !t.IsCompleted
			return domain.TodoPatch{IsCompleted: &done}
		},
		EditPatch: func(text string) domain.TodoPatch {
			return domain.TodoPatch{Task: &text}
		},
		EditText: func(t domain.Todo) string { return t.Task },
	}
}

func shortcutConfig() list.Config[domain.Shortcut, domain.ShortcutPatch] {
	return list.Config[domain.Shortcut, domain.ShortcutPatch]{
		Name:     "shortcuts",
		Order:    domain.ShortcutOrder,
		Strategy: list.Resync,
		Prepare:  domain.PrepareShortcut,
		Apply:    domain.ApplyShortcutPatch,
	}
}

// New builds a Dashboard. Nothing is loaded until Start.
func New(deps Deps) *Dashboard {
	logger := deps.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	state := weather.NewState()
	return &Dashboard{
		Todos:     list.New(deps.Todos, todoConfig(), logger),
		Shortcuts: list.New(deps.Shortcuts, shortcutConfig(), logger),
		Weather:   weather.NewWidget(deps.Weather, state, logger),
		State:     state,
		Clock:     deps.Clock,
		logger:    logger,
	}
}

// Start loads both lists and fetches the weather once. List failures are
// returned joined; a weather failure only shows on the weather card.
func (d *Dashboard) Start(ctx context.Context) error {
	var errs []error
	if err := d.Todos.Load(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := d.Shortcuts.Load(ctx); err != nil {
		errs = append(errs, err)
	}
	_ = d.Weather.Refresh(ctx)
	d.logger.WithFields(log.Fields{
		"todos":     len(d.Todos.Items()),
		"shortcuts": len(d.Shortcuts.Items()),
		"condition": d.State.Condition(),
	}).Info("dashboard started")
	return errors.Join(errs...)
}

// Theme returns the theme for the current condition.
func (d *Dashboard) Theme() domain.Theme {
	return domain.ThemeFor(d.State.Condition())
}

// ShortcutViews returns the shortcuts with favicons.
func (d *Dashboard) ShortcutViews() []ShortcutView {
	items := d.Shortcuts.Items()
	out := make([]ShortcutView, len(items))
	for i, s := range items {
		out[i] = ShortcutView{Shortcut: s, Favicon: domain.FaviconURL(s.URL)}
	}
	return out
}

// Snapshot returns the whole page state.
func (d *Dashboard) Snapshot() Snapshot {
	s := Snapshot{
		Clock:     d.Clock.Now(),
		Theme:     d.Theme(),
		Weather:   d.Weather.View(),
		Todos:     d.Todos.Items(),
		Shortcuts: d.ShortcutViews(),
	}
	if e, ok := d.Todos.Editing(); ok {
		s.Editing = &e
	}
	return s
}

