// Package pool implements the worktree slot pool.
//
// A pool is a fixed-size set of reusable worktree slots for a repository.
// Each slot (erk-managed-wt-NN) holds at most one branch at a time. State
// lives in <repo>/.erk/pool.json and is loaded, transformed into a new
// value, and saved as a complete unit on every command invocation.
package pool

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Version is the pool state schema version.
const Version = "1.0"

// Sentinel errors for pool operations.
var (
	// ErrPoolFull indicates all slots are occupied.
	ErrPoolFull = errors.New("worktree pool is full")

	// ErrBranchAssigned indicates the branch already occupies a slot.
	ErrBranchAssigned = errors.New("branch is already assigned to a slot")

	// ErrSlotOccupied indicates the target slot already has an occupant.
	ErrSlotOccupied = errors.New("slot is already occupied")

	// ErrBranchExists indicates a create was attempted for an existing branch.
	ErrBranchExists = errors.New("branch already exists")

	// ErrBranchMissing indicates an assign was attempted for a missing branch.
	ErrBranchMissing = errors.New("branch does not exist")

	// ErrNotAssigned indicates the branch has no slot assignment.
	ErrNotAssigned = errors.New("branch is not assigned to any slot")
)

// SlotDescriptor records a provisioned slot: its name and the worktree
// directory backing it. A descriptor outlives individual assignments so
// the worktree can be reused without a fresh `git worktree add`.
type SlotDescriptor struct {
	Name         string `json:"name"`
	WorktreePath string `json:"worktree_path"`
}

// SlotAssignment binds a branch to a slot. Immutable: unassigning removes
// the record rather than mutating it.
type SlotAssignment struct {
	SlotName     string    `json:"slot_name"`
	BranchName   string    `json:"branch_name"`
	AssignedAt   time.Time `json:"assigned_at"`
	WorktreePath string    `json:"worktree_path"`
}

// PoolState is the complete pool state for one repository.
//
// Invariants: at most one assignment per slot name, at most one per
// branch name, and len(Assignments) <= PoolSize. All mutators are
// copy-on-write and enforce these invariants.
type PoolState struct {
	Version     string           `json:"version"`
	PoolSize    int              `json:"pool_size"`
	Slots       []SlotDescriptor `json:"slots"`
	Assignments []SlotAssignment `json:"assignments"`
}

// New creates an empty pool state with the given capacity.
func New(poolSize int) *PoolState {
	return &PoolState{
		Version:     Version,
		PoolSize:    poolSize,
		Slots:       []SlotDescriptor{},
		Assignments: []SlotAssignment{},
	}
}

// FindBranchAssignment returns the assignment for branch, or nil.
// Branch names are unique by invariant, so at most one match exists.
func (s *PoolState) FindBranchAssignment(branch string) *SlotAssignment {
	for i := range s.Assignments {
		if s.Assignments[i].BranchName == branch {
			return &s.Assignments[i]
		}
	}
	return nil
}

// FindSlotAssignment returns the assignment occupying slotName, or nil.
func (s *PoolState) FindSlotAssignment(slotName string) *SlotAssignment {
	for i := range s.Assignments {
		if s.Assignments[i].SlotName == slotName {
			return &s.Assignments[i]
		}
	}
	return nil
}

// FindSlot returns the provisioned slot descriptor with the given name, or nil.
func (s *PoolState) FindSlot(name string) *SlotDescriptor {
	for i := range s.Slots {
		if s.Slots[i].Name == name {
			return &s.Slots[i]
		}
	}
	return nil
}

// IsFull reports whether every slot is occupied.
func (s *PoolState) IsFull() bool {
	return len(s.Assignments) >= s.PoolSize
}

// WithAssignment returns a new state with the assignment appended.
// Enforces the uniqueness and capacity invariants.
func (s *PoolState) WithAssignment(a SlotAssignment) (*PoolState, error) {
	if s.FindBranchAssignment(a.BranchName) != nil {
		return nil, fmt.Errorf("%w: %s", ErrBranchAssigned, a.BranchName)
	}
	if s.FindSlotAssignment(a.SlotName) != nil {
		return nil, fmt.Errorf("%w: %s", ErrSlotOccupied, a.SlotName)
	}
	if s.IsFull() {
		return nil, fmt.Errorf("%w (%d/%d)", ErrPoolFull, len(s.Assignments), s.PoolSize)
	}

	next := s.clone()
	next.Assignments = append(next.Assignments, a)
	return next, nil
}

// WithoutBranch returns a new state with the branch's assignment removed,
// plus the removed assignment. The slot descriptor stays in Slots so the
// worktree can be reused by a later occupant.
func (s *PoolState) WithoutBranch(branch string) (*PoolState, *SlotAssignment, error) {
	removed := s.FindBranchAssignment(branch)
	if removed == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotAssigned, branch)
	}

	next := s.clone()
	next.Assignments = next.Assignments[:0]
	for _, a := range s.Assignments {
		if a.BranchName != branch {
			next.Assignments = append(next.Assignments, a)
		}
	}
	copied := *removed
	return next, &copied, nil
}

// WithSlot returns a new state with the descriptor recorded in Slots.
// Idempotent: recording an already-known slot returns an equal state.
func (s *PoolState) WithSlot(d SlotDescriptor) *PoolState {
	if s.FindSlot(d.Name) != nil {
		return s.clone()
	}
	next := s.clone()
	next.Slots = append(next.Slots, d)
	return next
}

// clone returns a deep copy. Slices are copied so the original is never
// aliased by a mutated value.
func (s *PoolState) clone() *PoolState {
	next := &PoolState{
		Version:     s.Version,
		PoolSize:    s.PoolSize,
		Slots:       make([]SlotDescriptor, len(s.Slots)),
		Assignments: make([]SlotAssignment, 0, len(s.Assignments)+1),
	}
	copy(next.Slots, s.Slots)
	next.Assignments = append(next.Assignments, s.Assignments...)
	return next
}

// Load reads pool state from path. Returns (nil, nil) if the file does
// not exist. Malformed JSON is an error and propagates to the caller.
func Load(path string) (*PoolState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading pool state: %w", err)
	}

	var state PoolState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if state.Slots == nil {
		state.Slots = []SlotDescriptor{}
	}
	if state.Assignments == nil {
		state.Assignments = []SlotAssignment{}
	}
	return &state, nil
}

// Save serializes state to path, creating parent directories if needed.
// The file is replaced atomically via a temp-file rename so a crash never
// leaves a half-written pool.json behind.
func Save(path string, state *PoolState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pool state: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pool-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing pool state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing pool state: %w", err)
	}
	return nil
}
