package domain

import "time"

// ReservationEventType identifies the kind of reservation event.
type ReservationEventType string

const (
	ReservationEventCreated ReservationEventType = "reservation.created"
)

// ReservationEvent is the envelope published to the event stream when a
// reservation is committed.
type ReservationEvent struct {
	EventID     string               `json:"event_id"`
	EventType   ReservationEventType `json:"event_type"`
	OccurredAt  time.Time            `json:"occurred_at"`
	Reservation *Reservation         `json:"reservation"`
}

// NewReservationEvent creates an event envelope for a reservation.
func NewReservationEvent(eventType ReservationEventType, res *Reservation, eventID string) *ReservationEvent {
	return &ReservationEvent{
		EventID:     eventID,
		EventType:   eventType,
		OccurredAt:  time.Now().UTC(),
		Reservation: res,
	}
}

// Key returns the partition key for the event. Events for the same
// listing stay ordered on one partition.
func (e *ReservationEvent) Key() string {
	if e.Reservation != nil {
		return e.Reservation.ListingID
	}
	return e.EventID
}
