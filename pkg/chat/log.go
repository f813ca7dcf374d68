package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Listener receives every appended message. Callbacks run on the appender's
// goroutine and must not block.
type Listener func(Message)

// Log is an in-memory, append-only conversation log safe for concurrent use.
type Log struct {
	mu        sync.RWMutex
	messages  []Message
	listeners []Listener
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a message and notifies all listeners.
func (l *Log) Append(m Message) {
	l.mu.Lock()
	l.messages = append(l.messages, m)
	listeners := make([]Listener, len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(m)
	}
}

// Subscribe registers a listener for future appends.
func (l *Log) Subscribe(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Messages returns a copy of all entries in append order.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Get returns the entry with the given ID.
func (l *Log) Get(id uuid.UUID) (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].ID == id {
			return l.messages[i], true
		}
	}
	return Message{}, false
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
