package feed

import "consultly/models"

// Feed is the engine's change feed: an ordered stream of booking,
// participant and waitlist change events keyed by booking id. Ordering
// is guaranteed per booking id only. Delivery to subscribers and to the
// external Redis channel is best-effort; the feed is never part of the
// engine's consistency guarantees.
type Feed interface {
	// Publish stamps the event with the next per-booking sequence number
	// and fans it out. Never blocks the caller.
	Publish(event models.BookingEvent)

	// Subscribe registers an in-process consumer. The returned cancel
	// function must be called to release the subscription.
	Subscribe(buffer int) (<-chan models.BookingEvent, func())
}
