// Package events provides the in-process publish/subscribe bus that carries
// change signals (task status rollups, new comments, notifications) to live views.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
)

// Handler receives events for a subscribed topic. It must not block for long:
// it runs on the publisher's goroutine.
type Handler func(ctx context.Context, event entity.Event)

type handlerEntry struct {
	id      uint64
	handler Handler
}

// Bus is a thread-safe topic-based event emitter.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]handlerEntry
	nextID   uint64
	logger   *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]handlerEntry),
		logger:   logger,
	}
}

// Publish delivers the event to every handler subscribed to event.Topic.
// Handlers are collected under the lock and invoked outside it.
func (b *Bus) Publish(ctx context.Context, event entity.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	entries := b.handlers[event.Topic]
	targets := make([]Handler, 0, len(entries))
	for _, e := range entries {
		targets = append(targets, e.handler)
	}
	b.mu.RUnlock()

	for _, h := range targets {
		b.dispatch(ctx, h, event)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, event entity.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("topic", event.Topic),
				slog.String("type", string(event.Type)),
				slog.Any("panic", r))
		}
	}()
	h(ctx, event)
}

// Subscribe registers handler for topic. The returned function removes it and
// must be called when the subscriber goes away.
func (b *Bus) Subscribe(topic string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[topic] = append(b.handlers[topic], handlerEntry{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			entries := b.handlers[topic]
			filtered := make([]handlerEntry, 0, len(entries))
			for _, e := range entries {
				if e.id != id {
					filtered = append(filtered, e)
				}
			}
			if len(filtered) == 0 {
				delete(b.handlers, topic)
			} else {
				b.handlers[topic] = filtered
			}
		})
	}
}

// SubscriberCount returns the number of live handlers on topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}
