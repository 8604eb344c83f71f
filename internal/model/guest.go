package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPartySize is returned by Validate when a guest record carries a
// party size below one.
var ErrInvalidPartySize = errors.New("party size must be at least 1")

// Guest describes a party seated at a seat.  A Guest value is created by
// the operator when seating someone and is later appended to the day's
// session ledger, where TimeCleared is filled in when the seat is cleared.
//
// Fields:
//
//	FirstName   – first name of the lead guest.
//	LastName    – last name of the lead guest.
//	RoomNumber  – hotel room or member reference (free text).
//	PartySize   – number of people in the party, at least 1.
//	GuestID     – unique identifier; generated when not supplied.
//	Notes       – free text notes.
//	TimeSeated  – when the party was seated.
//	TimeCleared – when the party left; nil while still seated.
type Guest struct {
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	RoomNumber  string     `json:"roomNumber"`
	PartySize   int        `json:"partySize"`
	GuestID     string     `json:"guestId"`
	Notes       string     `json:"notes,omitempty"`
	TimeSeated  time.Time  `json:"timeSeated"`
	TimeCleared *time.Time `json:"timeCleared,omitempty"`
}

// NewGuest builds a guest record.  An empty id is replaced with a random
// UUID so every ledger entry can be matched on clear.
func NewGuest(first, last, room string, partySize int, id, notes string) Guest {
	if id == "" {
		id = uuid.NewString()
	}
	return Guest{
		FirstName:  first,
		LastName:   last,
		RoomNumber: room,
		PartySize:  partySize,
		GuestID:    id,
		Notes:      notes,
	}
}

// Validate reports whether the record can be seated.
func (g Guest) Validate() error {
	if g.PartySize <= 0 {
		return ErrInvalidPartySize
	}
	return nil
}

// Open reports whether the guest is still seated.
func (g Guest) Open() bool { return g.TimeCleared == nil }

// StayMinutes returns the dwell time in minutes, or 0 while the record is open.
func (g Guest) StayMinutes() float64 {
	if g.TimeCleared == nil {
		return 0
	}
	return g.TimeCleared.Sub(g.TimeSeated).Minutes()
}

// Clone returns a deep copy; TimeCleared is not shared with the original.
func (g Guest) Clone() Guest {
	c := g
	if g.TimeCleared != nil {
		t := *g.TimeCleared
		c.TimeCleared = &t
	}
	return c
}
