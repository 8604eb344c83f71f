// Package access tracks the operator's role and the layout edit mode and
// exposes them to the seating engine as a permission gate.
package access

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/iliyamo/seating-chart/internal/event"
	"github.com/iliyamo/seating-chart/internal/model"
)

// ErrEditModeForbidden is returned when a non-admin tries to enable edit mode.
var ErrEditModeForbidden = errors.New("edit mode requires admin role")

// Roles holds the current operator role.  It starts as attendant.
type Roles struct {
	mu      sync.RWMutex
	current model.Role
	changed event.Feed[model.Role]
}

func NewRoles() *Roles {
	return &Roles{current: model.RoleAttendant}
}

func (r *Roles) Current() model.Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// SetRole switches the role and notifies subscribers when it actually changed.
func (r *Roles) SetRole(role model.Role) {
	r.mu.Lock()
	prev := r.current
	r.current = role
	r.mu.Unlock()
	if prev != role {
		r.changed.Publish(role)
	}
}

// Subscribe registers fn for role changes.
func (r *Roles) Subscribe(fn func(model.Role)) func() {
	return r.changed.Subscribe(fn)
}

// EditMode is the layout-editing toggle.  Only an admin can turn it on and
// it switches itself off whenever the role changes.
type EditMode struct {
	mu      sync.RWMutex
	active  bool
	roles   *Roles
	changed event.Feed[bool]
	unsub   func()
	log     *slog.Logger
}

func NewEditMode(roles *Roles, log *slog.Logger) *EditMode {
	if log == nil {
		log = slog.Default()
	}
	m := &EditMode{roles: roles, log: log}
	m.unsub = roles.Subscribe(func(model.Role) { m.set(false) })
	return m
}

// Close detaches the role subscription.
func (m *EditMode) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

func (m *EditMode) Active() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Toggle flips edit mode and returns the new value.
func (m *EditMode) Toggle() (bool, error) {
	if !m.roles.Current().Privileged() {
		m.log.Warn("edit mode toggle rejected", "role", m.roles.Current())
		return m.Active(), ErrEditModeForbidden
	}
	next := !m.Active()
	m.set(next)
	return next, nil
}

// Set enables or disables edit mode explicitly.
func (m *EditMode) Set(on bool) error {
	if on && !m.roles.Current().Privileged() {
		m.log.Warn("edit mode enable rejected", "role", m.roles.Current())
		return ErrEditModeForbidden
	}
	m.set(on)
	return nil
}

func (m *EditMode) set(on bool) {
	m.mu.Lock()
	prev := m.active
	m.active = on
	m.mu.Unlock()
	if prev != on {
		m.changed.Publish(on)
	}
}

func (m *EditMode) Subscribe(fn func(bool)) func() {
	return m.changed.Subscribe(fn)
}

// Gate adapts Roles and EditMode to the seating engine's permission checks.
type Gate struct {
	Roles *Roles
	Edit  *EditMode
}

func (g Gate) IsPrivileged() bool {
	return g.Roles != nil && g.Roles.Current().Privileged()
}

func (g Gate) IsLayoutEditActive() bool {
	return g.Edit != nil && g.Edit.Active()
}
