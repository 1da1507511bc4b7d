package api

import "sync"

// EventType classifies a BroadcastEvent.
type EventType string

const (
	// EventTypeState signals a PC/register change after a step or run.
	EventTypeState EventType = "state"
	// EventTypeOutput carries console output (stdout).
	EventTypeOutput EventType = "output"
	// EventTypeExecution signals termination (dropped off, crashed, stopped).
	EventTypeExecution EventType = "event"
)

// BroadcastEvent is one event sent to subscribed WebSocket clients.
type BroadcastEvent struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"sessionId"`
	Data      map[string]interface{} `json:"data"`
}

// Subscription is a client's filter over the event stream.
type Subscription struct {
	SessionID  string
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans out engine events to every matching subscriber
// without letting a slow client block execution.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates and starts a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if sub.SessionID != "" && sub.SessionID != event.SessionID {
					continue
				}
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new subscription; sessionID empty matches all
// sessions, eventTypes empty matches all event types.
func (b *Broadcaster) Subscribe(sessionID string, eventTypes []EventType) *Subscription {
	m := make(map[EventType]bool, len(eventTypes))
	for _, et := range eventTypes {
		m[et] = true
	}
	sub := &Subscription{SessionID: sessionID, EventTypes: m, Channel: make(chan BroadcastEvent, 64)}
	b.register <- sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast queues event for delivery, dropping it if the broadcaster
// is overwhelmed rather than blocking the caller.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// BroadcastState sends a PC/register snapshot.
func (b *Broadcaster) BroadcastState(sessionID string, data map[string]interface{}) {
	b.Broadcast(BroadcastEvent{Type: EventTypeState, SessionID: sessionID, Data: data})
}

// BroadcastOutput sends console text written by a print syscall.
func (b *Broadcaster) BroadcastOutput(sessionID, content string) {
	b.Broadcast(BroadcastEvent{Type: EventTypeOutput, SessionID: sessionID, Data: map[string]interface{}{"content": content}})
}

// BroadcastExecutionEvent sends a termination or exception event.
func (b *Broadcaster) BroadcastExecutionEvent(sessionID, eventName string, details map[string]interface{}) {
	data := make(map[string]interface{}, len(details)+1)
	data["event"] = eventName
	for k, v := range details {
		data[k] = v
	}
	b.Broadcast(BroadcastEvent{Type: EventTypeExecution, SessionID: sessionID, Data: data})
}

// Close shuts down the broadcaster and every subscription.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
