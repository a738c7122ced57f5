package employees

import "time"

// Employee represents a directory record.
type Employee struct {
	ID         int64
	Number     string
	Name       string
	Email      string
	Department string
	Position   string
	HireDate   time.Time
	ManagerID  *int64
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Overview aggregates headline numbers for the dashboard.
type Overview struct {
	Headcount      int `json:"headcount"`
	CheckedInToday int `json:"checked_in_today"`
	PendingLeave   int `json:"pending_leave"`
}
