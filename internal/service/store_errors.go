package service

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

// storeError maps a repository failure onto the domain taxonomy. Missing rows
// become NotFound with notFoundMsg; anything else is a PersistenceError.
func storeError(err error, notFoundMsg, failureMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	return appErrors.Persistence(err, failureMsg)
}

// auditEntry builds the audit row the store writes in the same transaction as
// the change it describes.
func auditEntry(actorID, action, resource, resourceID string, reason *string, oldValues, newValues interface{}) (*models.AuditLog, error) {
	entry := &models.AuditLog{
		UserID:     optionalString(actorID),
		Action:     action,
		Resource:   resource,
		ResourceID: optionalString(resourceID),
		Reason:     reason,
	}
	if oldValues != nil {
		raw, err := json.Marshal(oldValues)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode audit entry")
		}
		entry.OldValues = raw
	}
	if newValues != nil {
		raw, err := json.Marshal(newValues)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode audit entry")
		}
		entry.NewValues = raw
	}
	return entry, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
