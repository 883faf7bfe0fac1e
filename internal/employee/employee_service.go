package employee

import (
	"context"
	"time"

	employeeerrors "masar-finance/internal/employee/errors"
	"masar-finance/internal/events"
	"masar-finance/internal/shared/money"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	SyncCompensation(ctx context.Context, event events.EmployeeCompensationEvent) error
	GetAll(ctx context.Context, organizationID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, organizationID, id string) (EmployeeResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, logger: l}
}

// SyncCompensation applies an HR event to the snapshot. Events older than
// the stored snapshot are ignored, so redelivery and reordering are safe.
func (s *service) SyncCompensation(ctx context.Context, event events.EmployeeCompensationEvent) error {
	orgUUID, err := tenant.ParseOrganizationID(event.OrganizationID)
	if err != nil {
		return err
	}
	employeeUUID, err := uuid.Parse(event.EmployeeID)
	if err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	isActive := event.IsActive
	switch event.EventType {
	case events.EmployeeCompensationChanged:
	case events.EmployeeTerminated:
		isActive = false
	default:
		return employeeerrors.ErrUnknownEventType
	}

	amounts := make([]int64, 5)
	for i, d := range []decimal.Decimal{
		event.BaseSalary,
		event.HousingAllowance,
		event.TransportAllowance,
		event.OtherAllowances,
		event.GosiDeduction,
	} {
		v, err := money.ToMinor(d)
		if err != nil || v < 0 {
			return employeeerrors.ErrInvalidCompensation
		}
		amounts[i] = v
	}

	occurredAt := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	snapshot := &Employee{
		ID:                 employeeUUID,
		OrganizationID:     orgUUID,
		EmployeeNo:         event.EmployeeNo,
		FullName:           event.FullName,
		IsActive:           isActive,
		BaseSalary:         amounts[0],
		HousingAllowance:   amounts[1],
		TransportAllowance: amounts[2],
		OtherAllowances:    amounts[3],
		GosiDeduction:      amounts[4],
		SourceUpdatedAt:    occurredAt,
	}

	changed, err := s.repo.Upsert(ctx, snapshot)
	if err != nil {
		s.logger.Error("upsert employee snapshot failed",
			zap.String("employee_id", event.EmployeeID),
			zap.String("organization_id", event.OrganizationID),
			zap.Error(err),
		)
		return err
	}
	if !changed {
		s.logger.Debug("stale employee event skipped",
			zap.String("employee_id", event.EmployeeID),
			zap.Time("occurred_at", occurredAt),
		)
	}
	return nil
}

func (s *service) GetAll(ctx context.Context, organizationID string) ([]EmployeeResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return nil, err
	}

	employees, err := s.repo.FindAllByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, organizationID, id string) (EmployeeResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return EmployeeResponse{}, err
	}

	employee, err := s.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(*employee), nil
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                 e.ID.String(),
		OrganizationID:     e.OrganizationID.String(),
		EmployeeNo:         e.EmployeeNo,
		FullName:           e.FullName,
		IsActive:           e.IsActive,
		BaseSalary:         money.FromMinor(e.BaseSalary),
		HousingAllowance:   money.FromMinor(e.HousingAllowance),
		TransportAllowance: money.FromMinor(e.TransportAllowance),
		OtherAllowances:    money.FromMinor(e.OtherAllowances),
		GosiDeduction:      money.FromMinor(e.GosiDeduction),
		NetSalary:          money.FromMinor(e.NetSalary()),
		UpdatedAt:          e.UpdatedAt.Format(time.RFC3339),
	}
}
