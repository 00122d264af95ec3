package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"consultly/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RedisChannelPrefix is the channel namespace external consumers
// subscribe on; the booking id is appended per event.
const RedisChannelPrefix = "booking-events:"

// Publisher is the subset of the Redis client the feed publishes
// through.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// DefaultFeed implements Feed with an in-process subscriber registry
// plus a fire-and-forget Redis publish for external delivery.
type DefaultFeed struct {
	Redis  Publisher // optional; nil disables the external leg
	Logger *zap.Logger

	mu     sync.Mutex
	seqs   map[string]uint64
	subs   map[string]chan models.BookingEvent
	ext    chan models.BookingEvent
	closed bool
}

// NewDefaultFeed constructs a DefaultFeed.
func NewDefaultFeed(redisClient Publisher, logger *zap.Logger) *DefaultFeed {
	f := &DefaultFeed{
		Redis:  redisClient,
		Logger: logger,
		seqs:   make(map[string]uint64),
		subs:   make(map[string]chan models.BookingEvent),
	}
	if redisClient != nil {
		f.ext = make(chan models.BookingEvent, 256)
		go f.externalLoop()
	}
	return f
}

// Publish assigns the per-booking sequence under the feed lock, so two
// events for the same booking can never be observed out of order, then
// fans out without blocking. Subscribers that cannot keep up drop
// events rather than stalling the engine.
func (f *DefaultFeed) Publish(event models.BookingEvent) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.seqs[event.BookingID]++
	event.Sequence = f.seqs[event.BookingID]
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	for _, ch := range f.subs {
		select {
		case ch <- event:
		default:
			if f.Logger != nil {
				f.Logger.Warn("feed subscriber lagging, event dropped",
					zap.String("booking_id", event.BookingID),
					zap.String("type", event.Type))
			}
		}
	}
	if f.ext != nil {
		// Queued under the same lock that assigned the sequence, so the
		// external publisher drains events in sequence order.
		select {
		case f.ext <- event:
		default:
			if f.Logger != nil {
				f.Logger.Warn("external feed queue full, event dropped",
					zap.String("booking_id", event.BookingID),
					zap.String("type", event.Type))
			}
		}
	}
	f.mu.Unlock()
}

// externalLoop is the only writer to the Redis channel; a single
// drainer keeps the wire order identical to the sequence order.
func (f *DefaultFeed) externalLoop() {
	for event := range f.ext {
		f.publishExternal(event)
	}
}

func (f *DefaultFeed) publishExternal(event models.BookingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		if f.Logger != nil {
			f.Logger.Error("failed to marshal feed event", zap.Error(err))
		}
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.Redis.Publish(ctx, RedisChannelPrefix+event.BookingID, payload).Err(); err != nil {
		// Best-effort only. Consumers poll or resubscribe.
		if f.Logger != nil {
			f.Logger.Warn("failed to publish feed event to redis", zap.Error(err))
		}
	}
}

// Subscribe registers an in-process consumer.
func (f *DefaultFeed) Subscribe(buffer int) (<-chan models.BookingEvent, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan models.BookingEvent, buffer)
	id := uuid.New().String()

	f.mu.Lock()
	f.subs[id] = ch
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Close tears down all subscriptions.
func (f *DefaultFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
	if f.ext != nil {
		close(f.ext)
	}
}
