package reconcile

import (
	"fmt"
	"time"
)

// Stats counts the work done by one Synchronize call.
type Stats struct {
	AttrsSet     int
	AttrsRemoved int
	TextWrites   int
	Inserted     int
	Moved        int
	Removed      int
	Replaced     int
	Mounted      int
	Dismounted   int
	Duration     time.Duration
}

// Mutations is the number of writes made to the live tree.
// Lifecycle notifications are not mutations.
func (s Stats) Mutations() int {
	return s.AttrsSet + s.AttrsRemoved + s.TextWrites + s.Inserted + s.Moved + s.Removed + s.Replaced
}

// String returns a compact summary.
func (s Stats) String() string {
	return fmt.Sprintf("attrs=+%d/-%d text=%d inserted=%d moved=%d removed=%d replaced=%d mounted=%d dismounted=%d",
		s.AttrsSet, s.AttrsRemoved, s.TextWrites, s.Inserted, s.Moved, s.Removed, s.Replaced, s.Mounted, s.Dismounted)
}
