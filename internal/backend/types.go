package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resource names a list endpoint under /api/.
type Resource string

const (
	ResourceDepartments  Resource = "departments"
	ResourceRoles        Resource = "roles"
	ResourceApplications Resource = "applications"
	ResourceLoans        Resource = "loans"
	ResourceActiveLoans  Resource = "loans/active"
	ResourcePayrollRuns  Resource = "payroll"
)

// Path returns the endpoint path for r.
func (r Resource) Path() string {
	return "/api/" + string(r)
}

// Pagination mirrors the metadata block of every list response.
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// Page is one decoded list response.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Department is an organisational unit.
type Department struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Head      string `json:"head"`
	Employees int    `json:"employees"`
	Active    bool   `json:"active"`
}

// Role is a named permission set.
type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Users       int      `json:"users"`
}

// Application is an employee request awaiting a decision.
type Application struct {
	ID          int64     `json:"id"`
	Applicant   string    `json:"applicant"`
	Department  string    `json:"department"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Loan is a salary advance or staff loan.
type Loan struct {
	ID         int64           `json:"id"`
	Employee   string          `json:"employee"`
	Department string          `json:"department"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Status     string          `json:"status"`
	IssuedAt   time.Time       `json:"issuedAt"`
	DueAt      time.Time       `json:"dueAt"`
}

// PayrollRun is one payroll batch for a department and period.
type PayrollRun struct {
	ID         int64           `json:"id"`
	Period     string          `json:"period"`
	Department string          `json:"department"`
	Gross      decimal.Decimal `json:"gross"`
	Net        decimal.Decimal `json:"net"`
	Status     string          `json:"status"`
	PaidAt     time.Time       `json:"paidAt"`
}
