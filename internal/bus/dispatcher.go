// Package bus connects the backend to the seat hardware over MQTT.
// Outbound: booking-driven seat status for the LED/LCD. Inbound: IR
// presence updates and keypad PIN entries. Inbound messages are queued
// and drained by a single dispatcher goroutine so hardware callbacks
// never run concurrently with each other.
package bus

import (
	"context"

	"go.uber.org/zap"
)

// Event is one inbound hardware message, already stripped of transport
// details.
type Event struct {
	SeatID  string
	Name    string // EventPresence or EventCheckin
	Payload string
}

// HandlerFunc processes one inbound event. Hardware has no response
// channel, so handlers log failures instead of returning them.
type HandlerFunc func(ctx context.Context, seatID, payload string)

type Dispatcher struct {
	events   chan Event
	presence HandlerFunc
	checkin  HandlerFunc
	log      *zap.Logger
}

func NewDispatcher(presence, checkin HandlerFunc, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		events:   make(chan Event, 64),
		presence: presence,
		checkin:  checkin,
		log:      log.With(zap.String("service", "dispatcher")),
	}
}

// Enqueue hands an event to the dispatcher without blocking the MQTT
// receive path. A full queue drops the event; the periodic status
// broadcast bounds how long the hardware can stay out of sync.
func (d *Dispatcher) Enqueue(ev Event) {
	select {
	case d.events <- ev:
	default:
		d.log.Warn("Inbound event queue full, dropping event",
			zap.String("seat_id", ev.SeatID),
			zap.String("event", ev.Name),
		)
	}
}

// Run drains the queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.log.Info("Dispatcher stopped")
			return
		case ev := <-d.events:
			d.dispatch(ctx, ev)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, ev Event) {
	switch ev.Name {
	case EventPresence:
		d.presence(ctx, ev.SeatID, ev.Payload)
	case EventCheckin:
		d.checkin(ctx, ev.SeatID, ev.Payload)
	default:
		d.log.Warn("Unknown hardware event",
			zap.String("seat_id", ev.SeatID),
			zap.String("event", ev.Name),
		)
	}
}
