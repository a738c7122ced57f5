package attendance

import "time"

// Record represents one attendance day for an employee. CheckOut stays
// nil while the employee is still clocked in.
type Record struct {
	ID         int64
	EmployeeID int64
	WorkDate   time.Time
	CheckIn    time.Time
	CheckOut   *time.Time
	Note       string
}

// Duration returns the worked duration, zero while still clocked in.
func (r Record) Duration() time.Duration {
	if r.CheckOut == nil {
		return 0
	}
	return r.CheckOut.Sub(r.CheckIn)
}
