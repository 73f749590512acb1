package chat

import (
	"sync"

	"github.com/mentalmate/mindbot/backend/internal/model/chat"
)

// EventType mirrors the action that produced an event, plus session creation.
type EventType string

const EventSessionCreated EventType = "SESSION_CREATED"

// Event is published after every successful action.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"sessionId"`
	Session   chat.Session   `json:"session"`
	Messages  []chat.Message `json:"messages,omitempty"`
}

const defaultFeedBuffer = 32

// feed fans events out to subscribers without ever blocking the publisher; a full
// subscriber misses the event.
type feed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func newFeed() *feed {
	return &feed{subs: make(map[int]chan Event)}
}

func (f *feed) subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = defaultFeedBuffer
	}

	ch := make(chan Event, buffer)
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *feed) publish(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
