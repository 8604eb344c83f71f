// Package queue defines the guest activity message exchanged over the
// broker and the consumer that turns it into an activity log.
package queue

import (
	"time"

	"github.com/iliyamo/seating-chart/internal/model"
)

// ActivityQueueName is the durable queue carrying guest activity.
const ActivityQueueName = "seating.guest_activity"

// GuestActivityEvent is published whenever a guest is seated or cleared,
// or a session is archived.
type GuestActivityEvent struct {
	Kind        string  `json:"kind"`
	SessionDate string  `json:"session_date"`
	Area        string  `json:"area"`
	GuestID     string  `json:"guest_id,omitempty"`
	FirstName   string  `json:"first_name,omitempty"`
	LastName    string  `json:"last_name,omitempty"`
	RoomNumber  string  `json:"room_number,omitempty"`
	PartySize   int     `json:"party_size,omitempty"`
	TimeSeated  string  `json:"time_seated,omitempty"`
	TimeCleared string  `json:"time_cleared,omitempty"`
	StayMinutes float64 `json:"stay_minutes,omitempty"`
	OccurredAt  string  `json:"occurred_at"`
}

// NewGuestActivityEvent flattens a guest record into an event.  Times are
// RFC 3339 in UTC.
func NewGuestActivityEvent(kind, sessionDate, area string, g model.Guest, at time.Time) GuestActivityEvent {
	ev := GuestActivityEvent{
		Kind:        kind,
		SessionDate: sessionDate,
		Area:        area,
		GuestID:     g.GuestID,
		FirstName:   g.FirstName,
		LastName:    g.LastName,
		RoomNumber:  g.RoomNumber,
		PartySize:   g.PartySize,
		StayMinutes: g.StayMinutes(),
		OccurredAt:  at.UTC().Format(time.RFC3339),
	}
	if !g.TimeSeated.IsZero() {
		ev.TimeSeated = g.TimeSeated.UTC().Format(time.RFC3339)
	}
	if g.TimeCleared != nil {
		ev.TimeCleared = g.TimeCleared.UTC().Format(time.RFC3339)
	}
	return ev
}
