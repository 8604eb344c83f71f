package model

import "time"

// SnapshotRole distinguishes the autosaved working layout from the
// admin-curated default layout of an area.
type SnapshotRole string

const (
	RoleWorking SnapshotRole = "working"
	RoleDefault SnapshotRole = "default"
)

// SeatRecord is the persisted form of one seat inside a LayoutSnapshot.
type SeatRecord struct {
	SeatID   string    `json:"seatId"`
	Position Vec2      `json:"position"`
	Rotation float64   `json:"rotation"`
	State    SeatState `json:"state"`
	Guest    *Guest    `json:"guest,omitempty"`
	Capacity int       `json:"capacity"`
	AreaName string    `json:"areaName"`
}

// LayoutSnapshot is the serialized arrangement and occupancy of one area.
type LayoutSnapshot struct {
	Area    string       `json:"area"`
	Role    SnapshotRole `json:"role"`
	SavedAt time.Time    `json:"savedAt"`
	Seats   []SeatRecord `json:"seats"`
}
