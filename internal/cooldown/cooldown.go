// Package cooldown implements the per-command, per-user fixed-window limiter.
//
// Entries are created on a user's first invocation of a command and overwritten on
// every allowed invocation. They are never evicted; the table grows with the number of
// distinct (command, user) pairs seen during the process lifetime.
package cooldown

import (
	"math"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Decision is the outcome of a cooldown check.
type Decision struct {
	Allowed bool
	// Remaining is the wait in whole seconds, rounded up. Zero when allowed.
	Remaining int
}

// Manager holds last-use timestamps as command → (user → time).
type Manager struct {
	commands cmap.ConcurrentMap[string, cmap.ConcurrentMap[string, time.Time]]
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{commands: cmap.New[cmap.ConcurrentMap[string, time.Time]]()}
}

// CheckAndRecord decides whether user may run command at now. On Allowed the
// timestamp is set to now; on Denied it is left untouched. The read-modify-write for a
// single (command, user) pair is atomic, so concurrent callers for the same pair get at
// most one Allowed per window.
func (m *Manager) CheckAndRecord(command, user string, window time.Duration, now time.Time) Decision {
	users := m.users(command)

	var d Decision
	users.Upsert(user, now, func(exist bool, lastUsed, next time.Time) time.Time {
		if !exist {
			d = Decision{Allowed: true}
			return next
		}
		expiry := lastUsed.Add(window)
		if next.Before(expiry) {
			d = Decision{Remaining: ceilSeconds(expiry.Sub(next))}
			return lastUsed
		}
		d = Decision{Allowed: true}
		return next
	})
	return d
}

// Release undoes an Allowed decision made at at, for an execution that never started.
// A later decision for the same pair is left in place.
func (m *Manager) Release(command, user string, at time.Time) {
	users, ok := m.commands.Get(command)
	if !ok {
		return
	}
	users.RemoveCb(user, func(_ string, lastUsed time.Time, exists bool) bool {
		return exists && lastUsed.Equal(at)
	})
}

// LastUsed reports when user last passed the check for command.
func (m *Manager) LastUsed(command, user string) (time.Time, bool) {
	users, ok := m.commands.Get(command)
	if !ok {
		return time.Time{}, false
	}
	return users.Get(user)
}

// Len returns the number of tracked (command, user) pairs.
func (m *Manager) Len() int {
	n := 0
	for item := range m.commands.IterBuffered() {
		n += item.Val.Count()
	}
	return n
}

func (m *Manager) users(command string) cmap.ConcurrentMap[string, time.Time] {
	if users, ok := m.commands.Get(command); ok {
		return users
	}
	return m.commands.Upsert(command, cmap.ConcurrentMap[string, time.Time]{}, func(exist bool, current, _ cmap.ConcurrentMap[string, time.Time]) cmap.ConcurrentMap[string, time.Time] {
		if exist {
			return current
		}
		return cmap.New[time.Time]()
	})
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
