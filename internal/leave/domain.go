package leave

import "time"

// Leave types.
const (
	TypeAnnual = "annual"
	TypeSick   = "sick"
	TypeUnpaid = "unpaid"
)

// Request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request represents a leave request.
type Request struct {
	ID           int64
	EmployeeID   int64
	Type         string
	FromDate     time.Time
	ToDate       time.Time
	Reason       string
	Status       string
	DeciderID    *int64
	DecisionNote string
	CreatedAt    time.Time
	DecidedAt    *time.Time
}

// Days returns the inclusive length of the requested range.
func (r Request) Days() int {
	return int(r.ToDate.Sub(r.FromDate).Hours()/24) + 1
}
