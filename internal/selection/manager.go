// Package selection tracks bulk-selection state by record id, scoped to the
// projection the user can currently see. Selecting by id (instead of list
// position) keeps the selection correct when the list reorders or filters
// between render and click.
package selection

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hectorm/xstreamify/internal/models"
)

// Action is a bulk operation dispatched against the current selection
type Action string

const (
	ActionFavorite   Action = "favorite"
	ActionUnfavorite Action = "unfavorite"
	ActionDelete     Action = "delete"
)

// ParseAction validates a user-supplied bulk action name
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionFavorite, ActionUnfavorite, ActionDelete:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown bulk action %q", s)
	}
}

// LibraryOps is the slice of the library store bulk dispatch needs
type LibraryOps interface {
	BulkSetFavorite(ids []string, value bool) (int, error)
	BulkRemove(ids []string) (int, error)
}

// Manager tracks the selected ids for bulk operations
type Manager struct {
	lib LibraryOps

	mu       sync.Mutex
	tab      models.Tab
	visible  map[string]struct{}
	selected map[string]struct{}
}

// NewManager creates a selection manager dispatching to lib
func NewManager(lib LibraryOps) *Manager {
	return &Manager{
		lib:      lib,
		visible:  make(map[string]struct{}),
		selected: make(map[string]struct{}),
	}
}

// SetProjection records the ids currently visible. Switching tabs clears the
// selection outright; otherwise selected ids that fell out of the projection
// are dropped.
func (m *Manager) SetProjection(tab models.Tab, ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tab != m.tab {
		m.tab = tab
		m.selected = make(map[string]struct{})
	}

	m.visible = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m.visible[id] = struct{}{}
	}
	for id := range m.selected {
		if _, ok := m.visible[id]; !ok {
			delete(m.selected, id)
		}
	}
}

// Toggle adds the id if absent and removes it if present. Ids outside the
// current projection are ignored; hidden items cannot be selected.
func (m *Manager) Toggle(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.visible[id]; !ok {
		return false
	}
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
	} else {
		m.selected[id] = struct{}{}
	}
	return true
}

// Clear empties the selection
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = make(map[string]struct{})
}

// Selected returns the selected ids in a stable order
func (m *Manager) Selected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.selected))
	for id := range m.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// DropRemoved discards ids deleted from the collection. Registered as a
// removal observer on the library store.
func (m *Manager) DropRemoved(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.selected, id)
		delete(m.visible, id)
	}
}

// Dispatch applies a bulk action to the current selection via the library
// store, then clears the selection. Ids already deleted out from under the
// selection are tolerated by the store's bulk operations.
func (m *Manager) Dispatch(action Action) (int, error) {
	ids := m.Selected()
	if len(ids) == 0 {
		return 0, nil
	}

	var (
		affected int
		err      error
	)
	switch action {
	case ActionFavorite:
		affected, err = m.lib.BulkSetFavorite(ids, true)
	case ActionUnfavorite:
		affected, err = m.lib.BulkSetFavorite(ids, false)
	case ActionDelete:
		affected, err = m.lib.BulkRemove(ids)
	default:
		return 0, fmt.Errorf("unknown bulk action %q", action)
	}
	if err != nil {
		return affected, err
	}

	m.Clear()
	return affected, nil
}
