package staff

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
	"github.com/joao-fontenele/restaurant-pos/internal/pricing"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

const dateLayout = "2006-01-02"

type Repository interface {
	Create(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context, f Filter) ([]domain.Employee, error)
	Update(ctx context.Context, e *domain.Employee) error
	Delete(ctx context.Context, id string) error
}

// EmployeeInput holds the editable fields of an employee record.
type EmployeeInput struct {
	Name       string
	Email      string
	Phone      string
	Position   string
	Department string
	HourlyRate decimal.Decimal
	HireDate   string
}

func (in EmployeeInput) check(op string) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.InvalidInput(op, "name is required")
	}
	if strings.TrimSpace(in.Position) == "" {
		return domain.InvalidInput(op, "position is required")
	}
	if !slices.Contains(domain.Departments, in.Department) {
		return domain.InvalidInput(op, fmt.Sprintf("unknown department %q", in.Department))
	}
	if in.HourlyRate.IsNegative() {
		return domain.InvalidInput(op, "hourly rate must not be negative")
	}
	if err := pricing.CheckCents("hourly rate", in.HourlyRate); err != nil {
		return err
	}
	if in.HireDate != "" {
		if _, err := time.Parse(dateLayout, in.HireDate); err != nil {
			return domain.InvalidInput(op, fmt.Sprintf("hire date %q is not YYYY-MM-DD", in.HireDate))
		}
	}
	return nil
}

type Service struct {
	repo     Repository
	counters *telemetry.Counters
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) (*Service, error) {
	counters, err := telemetry.NewCounters()
	if err != nil {
		return nil, fmt.Errorf("create counters: %w", err)
	}
	return &Service{
		repo:     repo,
		counters: counters,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Hire adds an active employee. A missing hire date means today.
func (s *Service) Hire(ctx context.Context, in EmployeeInput) (*domain.Employee, error) {
	if err := in.check("hire employee"); err != nil {
		return nil, err
	}

	now := s.now()
	e := &domain.Employee{
		EmployeeNumber: fmt.Sprintf("EMP-%d", now.UnixMilli()),
		Name:           strings.TrimSpace(in.Name),
		Email:          in.Email,
		Phone:          in.Phone,
		Position:       in.Position,
		Department:     in.Department,
		HourlyRate:     in.HourlyRate,
		HireDate:       in.HireDate,
		Status:         domain.EmployeeStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if e.HireDate == "" {
		e.HireDate = now.Format(dateLayout)
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "employee hired", "employee_id", e.ID, "department", e.Department, "position", e.Position)
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.Employee, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.InvalidInput("list employees", fmt.Sprintf("unknown status %q", f.Status))
	}
	if f.Department != "" && !slices.Contains(domain.Departments, f.Department) {
		return nil, domain.InvalidInput("list employees", fmt.Sprintf("unknown department %q", f.Department))
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id string, in EmployeeInput) (*domain.Employee, error) {
	if err := in.check("update employee"); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Name = strings.TrimSpace(in.Name)
	e.Email = in.Email
	e.Phone = in.Phone
	e.Position = in.Position
	e.Department = in.Department
	e.HourlyRate = in.HourlyRate
	if in.HireDate != "" {
		e.HireDate = in.HireDate
	}
	e.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "employee updated", "employee_id", id)
	return e, nil
}

// SetStatus moves an employee between active, inactive and on leave. Any
// status may follow any other.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.EmployeeStatus) (*domain.Employee, error) {
	if !status.Valid() {
		return nil, &domain.Error{
			Kind: domain.ErrInvalidInput, Op: "set status", Entity: "employee", ID: id,
			Detail: fmt.Sprintf("unknown status %q", status),
		}
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == status {
		return e, nil
	}

	from := e.Status
	e.Status = status
	e.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.counters.StaffStatusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("to", string(status))))
	s.logger.InfoContext(ctx, "employee status changed", "employee_id", id, "from", from, "to", status)
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "employee removed", "employee_id", id)
	return nil
}

func (s *Service) Summary(ctx context.Context) (domain.StaffSummary, error) {
	employees, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return domain.StaffSummary{}, err
	}
	return Summarize(employees), nil
}
