package inventory

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
)

// CredentialRepository loads tenant-to-catalog credential mappings.
type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// FindByClientID returns nil without error when the tenant has no mapping.
func (r *CredentialRepository) FindByClientID(ctx context.Context, clientID int64) (*models.CatalogCredential, error) {
	var cred models.CatalogCredential
	err := r.db.WithContext(ctx).First(&cred, "client_id = ?", clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}
