package model

import (
	"fmt"
	"math"
	"strings"
)

// SeatState is the lifecycle state of a seat.
type SeatState string

const (
	SeatAvailable    SeatState = "available"
	SeatReserved     SeatState = "reserved"
	SeatOccupied     SeatState = "occupied"
	SeatCleaning     SeatState = "cleaning"
	SeatOutOfService SeatState = "out_of_service"
)

// SeatStates lists every state in display order.
var SeatStates = []SeatState{SeatAvailable, SeatReserved, SeatOccupied, SeatCleaning, SeatOutOfService}

// ParseSeatState accepts the canonical names case-insensitively.  Hyphens
// and spaces are treated as underscores so "Out-Of-Service" also parses.
func ParseSeatState(s string) (SeatState, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if norm == "outofservice" {
		norm = string(SeatOutOfService)
	}
	for _, st := range SeatStates {
		if string(st) == norm {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown seat state %q", s)
}

// Vec2 is a position on the layout canvas, in canvas units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snap rounds both axes to the nearest multiple of pitch.
func (v Vec2) Snap(pitch float64) Vec2 {
	if pitch <= 0 {
		return v
	}
	return Vec2{
		X: math.Round(v.X/pitch) * pitch,
		Y: math.Round(v.Y/pitch) * pitch,
	}
}

// Near reports whether o lies within tol of v on both axes.
func (v Vec2) Near(o Vec2, tol float64) bool {
	return math.Abs(v.X-o.X) < tol && math.Abs(v.Y-o.Y) < tol
}

// NormalizeDegrees folds an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}
