package model

// SessionDateLayout is the date format used for session keys and exports.
const SessionDateLayout = "2006-01-02"

// SessionData is one day's guest ledger.  Entries are only ever appended,
// except that TimeCleared is filled in when the guest leaves.
type SessionData struct {
	SessionDate       string  `json:"sessionDate"`
	GuestInteractions []Guest `json:"guestInteractions"`
}
