package staff

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

func TestSummarize(t *testing.T) {
	employees := []domain.Employee{
		{Status: domain.EmployeeStatusActive, HourlyRate: decimal.RequireFromString("450.50")},
		{Status: domain.EmployeeStatusActive, HourlyRate: decimal.NewFromInt(300)},
		{Status: domain.EmployeeStatusOnLeave, HourlyRate: decimal.NewFromInt(250)},
		{Status: domain.EmployeeStatusInactive, HourlyRate: decimal.Zero},
	}

	got := Summarize(employees)

	if got.Total != 4 || got.Active != 2 || got.OnLeave != 1 || got.Inactive != 1 {
		t.Errorf("expected 4 total, 2 active, 1 on leave, 1 inactive, got %+v", got)
	}
	want := decimal.NewFromInt(160080)
	if !got.MonthlyPayroll.Equal(want) {
		t.Errorf("expected payroll %s, got %s", want, got.MonthlyPayroll)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	if got.Total != 0 || !got.MonthlyPayroll.IsZero() {
		t.Errorf("expected empty summary, got %+v", got)
	}
}
