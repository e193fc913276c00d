package domain

// Business validation constants
const (
	MinDayOfWeek   = 0 // Sunday
	MaxDayOfWeek   = 6 // Saturday
	MaxNotesLength = 500
)

// Actor identifies who performs an operation
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// CanAccess returns true if the actor owns the booking or is an admin
func (a Actor) CanAccess(b *Booking) bool {
	return a.IsAdmin || b.UserID == a.UserID
}
