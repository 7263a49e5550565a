package service

import (
	"sync"

	"unifiedinbox/internal/constants"
	"unifiedinbox/internal/models"

	"github.com/sirupsen/logrus"
)

// Broadcaster fans newly stored records out to live subscribers. Publish
// never blocks: a subscriber whose buffer is full is dropped and its channel
// closed.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]chan models.Message
	nextID uint64
	buffer int
	closed bool
	logger *logrus.Logger
}

func NewBroadcaster(buffer int, logger *logrus.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = constants.DefaultSubscriberBuffer
	}
	return &Broadcaster{
		subs:   make(map[uint64]chan models.Message),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel func is safe to
// call more than once and after the subscriber has been dropped.
func (b *Broadcaster) Subscribe() (<-chan models.Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.Message, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() { b.remove(id) }
}

func (b *Broadcaster) Publish(msg models.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- msg:
		default:
			delete(b.subs, id)
			close(ch)
			b.logger.WithField(LogFieldComponent, "broadcaster").Warn("Dropped slow live feed subscriber")
		}
	}
}

// Subscribers returns the number of live subscribers
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close disconnects every subscriber; later subscriptions get a closed channel
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	b.closed = true
}

func (b *Broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}
