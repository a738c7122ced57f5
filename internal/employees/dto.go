package employees

import "time"

type CreateEmployeeRequest struct {
	Number     string  `json:"number" validate:"required,max=20"`
	Name       string  `json:"name" validate:"required,max=200"`
	Email      string  `json:"email" validate:"required,email"`
	Department string  `json:"department" validate:"required,max=100"`
	Position   string  `json:"position" validate:"required,max=100"`
	HireDate   string  `json:"hire_date" validate:"required,datetime=2006-01-02"`
	ManagerID  *int64  `json:"manager_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateEmployeeRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Position   *string `json:"position,omitempty" validate:"omitempty,max=100"`
	ManagerID  *int64  `json:"manager_id,omitempty" validate:"omitempty,gt=0"`
}

type ListEmployeesRequest struct {
	Department string
	Search     string
	ActiveOnly bool
	Page       int
	PerPage    int
}

type employeeResponse struct {
	ID         int64     `json:"id"`
	Number     string    `json:"number"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	HireDate   string    `json:"hire_date"`
	ManagerID  *int64    `json:"manager_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(e Employee) employeeResponse {
	return employeeResponse{
		ID:         e.ID,
		Number:     e.Number,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		Position:   e.Position,
		HireDate:   e.HireDate.Format("2006-01-02"),
		ManagerID:  e.ManagerID,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt,
	}
}
