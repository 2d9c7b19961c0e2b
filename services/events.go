package services

import "github.com/yeremiapane/dino-reserve/models"

const (
	EventReservationCreated   = "reservation_created"
	EventReservationUpdated   = "reservation_updated"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationsPurged   = "reservations_purged"
)

type Event struct {
	Type        string              `json:"event"`
	Reservation *models.Reservation `json:"reservation,omitempty"`
	Count       int64               `json:"count,omitempty"`
}

// Publisher receives lifecycle events after they are committed.
type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// Publishers fans an event out to every publisher in order.
type Publishers []Publisher

func (ps Publishers) Publish(ev Event) {
	for _, p := range ps {
		if p != nil {
			p.Publish(ev)
		}
	}
}
