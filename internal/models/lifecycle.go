package models

import "time"

// Lifecycle is the soft-delete state shared by users, workspaces and memberships.
// Rows are never hard-deleted by the core; they are deactivated with a timestamp.
type Lifecycle struct {
	Active    bool       `json:"is_active" db:"is_active"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Alive returns a fresh, active lifecycle.
func Alive() Lifecycle { return Lifecycle{Active: true} }

func (l Lifecycle) IsActive() bool { return l.Active }

// SoftDelete deactivates the record. Calling it twice keeps the first timestamp.
func (l *Lifecycle) SoftDelete(now time.Time) {
	if !l.Active && l.DeletedAt != nil {
		return
	}
	l.Active = false
	t := now.UTC()
	l.DeletedAt = &t
}

func (l *Lifecycle) Restore() {
	l.Active = true
	l.DeletedAt = nil
}
