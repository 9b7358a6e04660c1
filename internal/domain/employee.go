package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
	EmployeeStatusOnLeave  EmployeeStatus = "on_leave"
)

func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeeStatusActive, EmployeeStatusInactive, EmployeeStatusOnLeave:
		return true
	}
	return false
}

// Departments an employee can belong to.
var Departments = []string{"Kitchen", "Front of House", "Bar", "Management"}

type Employee struct {
	ID             string          `json:"id"`
	EmployeeNumber string          `json:"employee_number"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Position       string          `json:"position"`
	Department     string          `json:"department"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	HireDate       string          `json:"hire_date"`
	Status         EmployeeStatus  `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// StaffSummary counts employees by status and estimates the monthly wage bill.
type StaffSummary struct {
	Total          int             `json:"total"`
	Active         int             `json:"active"`
	Inactive       int             `json:"inactive"`
	OnLeave        int             `json:"on_leave"`
	MonthlyPayroll decimal.Decimal `json:"monthly_payroll"`
}
