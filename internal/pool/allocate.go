package pool

import (
	"github.com/dagster-io/erk-sub014/internal/constants"
)

// SlotName returns the deterministic name for slot number n (1-based).
func SlotName(n int) string {
	return constants.SlotName(n)
}

// FindInactiveSlot returns a provisioned slot that currently has no
// assignment, or nil. This is the fast path: the worktree directory
// already exists, so binding only needs a checkout instead of a fresh
// `git worktree add`. The lowest-numbered inactive slot wins, matching
// the ordering of FindNextAvailableSlot.
func (s *PoolState) FindInactiveSlot() *SlotDescriptor {
	var best *SlotDescriptor
	for i := range s.Slots {
		d := &s.Slots[i]
		if s.FindSlotAssignment(d.Name) != nil {
			continue
		}
		if best == nil || d.Name < best.Name {
			best = d
		}
	}
	return best
}

// FindNextAvailableSlot scans slot numbers 1..PoolSize in ascending order
// and returns the first whose name is not occupied by an assignment.
// Deterministic: the lowest available number always wins. Returns
// (0, false) when the pool is full.
func (s *PoolState) FindNextAvailableSlot() (int, bool) {
	occupied := make(map[string]bool, len(s.Assignments))
	for _, a := range s.Assignments {
		occupied[a.SlotName] = true
	}
	for n := 1; n <= s.PoolSize; n++ {
		if !occupied[SlotName(n)] {
			return n, true
		}
	}
	return 0, false
}

// OldestAssignment returns the eviction candidate: the assignment with
// the earliest AssignedAt, ties broken by slot name. Returns nil when
// the pool has no assignments.
func (s *PoolState) OldestAssignment() *SlotAssignment {
	var oldest *SlotAssignment
	for i := range s.Assignments {
		a := &s.Assignments[i]
		if oldest == nil {
			oldest = a
			continue
		}
		if a.AssignedAt.Before(oldest.AssignedAt) ||
			(a.AssignedAt.Equal(oldest.AssignedAt) && a.SlotName < oldest.SlotName) {
			oldest = a
		}
	}
	return oldest
}
