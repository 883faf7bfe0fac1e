package tenant

import (
	"errors"
	"net/http"

	"masar-finance/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrMissingOrganization is attached to any query built without an
	// organization id, so an unscoped read or write can never run.
	ErrMissingOrganization = errors.New("tenant: organization id is required")

	ErrInvalidOrganizationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid organization id",
		http.StatusBadRequest,
	)
)

// Scope filters a query by organization_id. The predicate is mandatory.
func Scope(organizationID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if organizationID == "" {
			_ = db.AddError(ErrMissingOrganization)
			return db
		}
		return db.Where("organization_id = ?", organizationID)
	}
}

// ParseOrganizationID validates the caller supplied organization id.
func ParseOrganizationID(organizationID string) (uuid.UUID, error) {
	id, err := uuid.Parse(organizationID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidOrganizationID
	}
	return id, nil
}
