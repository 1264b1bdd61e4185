// Package events provides the erk audit log.
//
// Events are appended to <repo>/.erk/events.jsonl, one JSON object per
// line. Logging is best-effort: commands never fail because the audit
// log could not be written.
package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dagster-io/erk-sub014/internal/constants"
)

// Event represents a single pool operation in the audit log.
type Event struct {
	ID        string            `json:"id"`
	Timestamp string            `json:"ts"`
	Source    string            `json:"source"`
	Type      string            `json:"type"`
	Payload   map[string]string `json:"payload,omitempty"`
}

// Event types for pool operations.
const (
	TypeBranchCreated = "branch_created"
	TypeSlotAssigned  = "slot_assigned"
	TypeSlotReleased  = "slot_released"
	TypeSlotEvicted   = "slot_evicted"
)

// mutex protects concurrent appends from goroutines within one process.
var mutex sync.Mutex

// Log appends an event to the repository's audit log.
func Log(repoRoot, eventType string, payload map[string]string) error {
	event := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    "erk",
		Type:      eventType,
		Payload:   payload,
	}
	return write(repoRoot, event)
}

// LogBestEffort logs an event and swallows any failure.
func LogBestEffort(repoRoot, eventType string, payload map[string]string) {
	_ = Log(repoRoot, eventType, payload)
}

// write appends an event to the events file.
func write(repoRoot string, event Event) error {
	eventsPath := constants.EventsPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(eventsPath), 0755); err != nil {
		return fmt.Errorf("creating events directory: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	data = append(data, '\n')

	mutex.Lock()
	defer mutex.Unlock()

	f, err := os.OpenFile(eventsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening events file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	return nil
}

// Read returns all events from the repository's audit log, oldest first.
// A missing log file yields an empty slice.
func Read(repoRoot string) ([]Event, error) {
	f, err := os.Open(constants.EventsPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening events file: %w", err)
	}
	defer f.Close()

	var result []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		result = append(result, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading events file: %w", err)
	}

	return result, nil
}

// AssignPayload creates a payload for slot assignment events.
func AssignPayload(slot, branch, worktreePath string) map[string]string {
	return map[string]string{
		"slot":     slot,
		"branch":   branch,
		"worktree": worktreePath,
	}
}

// EvictPayload creates a payload for eviction events.
func EvictPayload(slot, branch, reason string) map[string]string {
	return map[string]string{
		"slot":   slot,
		"branch": branch,
		"reason": reason,
	}
}

// BranchPayload creates a payload for branch creation events.
func BranchPayload(branch, trunk string) map[string]string {
	return map[string]string{
		"branch": branch,
		"trunk":  trunk,
	}
}
