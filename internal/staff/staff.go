// Package staff keeps the employee roster: hiring records, employment status
// and the headcount and payroll summary.
package staff

import (
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

// Payroll estimates assume a standard roster until shift tracking exists.
const (
	StandardWeeklyHours = 40
	WeeksPerMonth       = 4
)

var monthlyHours = decimal.NewFromInt(StandardWeeklyHours * WeeksPerMonth)

// Summarize counts employees by status and estimates the monthly payroll as
// hourly rate × 40 h × 4 weeks across the whole roster.
func Summarize(employees []domain.Employee) domain.StaffSummary {
	summary := domain.StaffSummary{Total: len(employees), MonthlyPayroll: decimal.Zero}
	for _, e := range employees {
		switch e.Status {
		case domain.EmployeeStatusActive:
			summary.Active++
		case domain.EmployeeStatusInactive:
			summary.Inactive++
		case domain.EmployeeStatusOnLeave:
			summary.OnLeave++
		}
		summary.MonthlyPayroll = summary.MonthlyPayroll.Add(e.HourlyRate.Mul(monthlyHours))
	}
	summary.MonthlyPayroll = summary.MonthlyPayroll.Round(2)
	return summary
}
