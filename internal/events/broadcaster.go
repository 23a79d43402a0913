// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package events

import (
	"sync"
	"time"
)

// Event types emitted by the pipeline and the watcher
const (
	TypeNormalized          = "normalized"
	TypeBoilerplateDetected = "boilerplate_detected"
	TypeBoilerplateRemoved  = "boilerplate_removed"
	TypeSegmented           = "segmented"
	TypeChunked             = "chunked"

	TypeFileDetected   = "file_detected"
	TypeFileProcessing = "file_processing"
	TypeFileComplete   = "file_complete"
	TypeFileError      = "file_error"
)

// Event is a structured notification from a processing stage
type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Path      string                 `json:"path,omitempty"`
	Message   string                 `json:"message"`
	Chunks    int                    `json:"chunks,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// New creates an event stamped with the current time
func New(eventType, message string, fields map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Message:   message,
		Fields:    fields,
	}
}

// Observer receives events. Implementations must not block for long; they are
// called synchronously from the stage that emits the event.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(Event)

// Observe calls f(e)
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// Nop discards every event
var Nop Observer = ObserverFunc(func(Event) {})

// Broadcaster fans events out to channel subscribers
type Broadcaster struct {
	subscribers map[chan Event]bool
	mu          sync.RWMutex
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]bool),
	}
}

// Subscribe adds a new subscriber
func (eb *Broadcaster) Subscribe(ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[ch] = true
}

// Unsubscribe removes a subscriber and closes its channel
func (eb *Broadcaster) Unsubscribe(ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.subscribers[ch] {
		delete(eb.subscribers, ch)
		close(ch)
	}
}

// Broadcast sends an event to all subscribers
func (eb *Broadcaster) Broadcast(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Channel is full, skip this subscriber
		}
	}
}

// Observe implements Observer
func (eb *Broadcaster) Observe(event Event) {
	eb.Broadcast(event)
}

// BroadcastFile broadcasts a file-level event
func (eb *Broadcaster) BroadcastFile(eventType, path, message string, chunks int, err error) {
	event := New(eventType, message, nil)
	event.Path = path
	event.Chunks = chunks
	if err != nil {
		event.Error = err.Error()
	}
	eb.Broadcast(event)
}

// Multi forwards each event to every non-nil observer in order
func Multi(observers ...Observer) Observer {
	var live []Observer
	for _, o := range observers {
		if o != nil {
			live = append(live, o)
		}
	}
	return ObserverFunc(func(e Event) {
		for _, o := range live {
			o.Observe(e)
		}
	})
}
