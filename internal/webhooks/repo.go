package webhooks

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
)

// Repository reads client webhook registrations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ActiveEndpoints lists the enabled endpoints of a client.
func (r *Repository) ActiveEndpoints(ctx context.Context, clientID int64) ([]models.WebhookEndpoint, error) {
	var rows []models.WebhookEndpoint
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND active = ?", clientID, true).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
