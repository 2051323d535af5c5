// Package audit provides the workspace journal: a JSON Lines file beside
// the contexts file recording every lifecycle event.
//
// Switches write a begin event and a complete (or abort) event sharing one
// transaction ID, so a switch interrupted between the two is detectable
// afterwards.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/firefly-engineering/git-context/internal/workspace"
)

// JournalFile is the journal's name at the workspace root.
const JournalFile = workspace.StoreFile + ".log"

// EventType classifies a lifecycle event.
type EventType string

const (
	EventInit           EventType = "init"
	EventNew            EventType = "new"
	EventSwitchBegin    EventType = "switch-begin"
	EventSwitchComplete EventType = "switch-complete"
	EventSwitchAbort    EventType = "switch-abort"
	EventKeep           EventType = "keep"
	EventUnkeep         EventType = "unkeep"
	EventRefresh        EventType = "refresh"
	EventExec           EventType = "exec"
)

// Event represents a single journal entry.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Context   string    `json:"context"`
	From      string    `json:"from,omitempty"`
	Txn       string    `json:"txn,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Logger appends to and reads the journal of one workspace.
type Logger struct {
	root string
}

// NewLogger creates a journal logger for the workspace at root.
func NewLogger(root string) *Logger {
	return &Logger{root: root}
}

// Path returns the journal file path.
func (l *Logger) Path() string {
	return filepath.Join(l.root, JournalFile)
}

// NewTxn returns a fresh transaction ID for a begin/complete pair.
func NewTxn() string {
	return uuid.NewString()
}

// Log appends an event to the journal.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, context, details string) error {
	return l.Log(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Context:   context,
		Details:   details,
	})
}

// Events reads all events in chronological order.
func (l *Logger) Events() ([]Event, error) {
	f, err := os.Open(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	var events []Event
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
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading journal: %w", err)
	}

	return events, nil
}

// Pending returns the most recent switch-begin event that was never
// followed by a complete or abort event with the same transaction, or nil.
func (l *Logger) Pending() (*Event, error) {
	events, err := l.Events()
	if err != nil {
		return nil, err
	}

	closed := make(map[string]bool)
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		switch e.Type {
		case EventSwitchComplete, EventSwitchAbort:
			closed[e.Txn] = true
		case EventSwitchBegin:
			if !closed[e.Txn] {
				return &e, nil
			}
			// Anything older was superseded by this finished switch.
			return nil, nil
		case EventRefresh:
			// A refresh rebuilds the workspace from the store.
			return nil, nil
		}
	}
	return nil, nil
}
