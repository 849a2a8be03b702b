package clients

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

// Repository reads tenant settings, pickup locations and courier services.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a client tenant.
func (r *Repository) FindByID(ctx context.Context, clientID int64) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return &client, nil
}

// ListPickupLocations returns every pickup location a client registered.
func (r *Repository) ListPickupLocations(ctx context.Context, clientID int64) ([]models.PickupLocation, error) {
	var rows []models.PickupLocation
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pickup locations")
	}
	return rows, nil
}

// ListCourierServices returns the active courier names.
func (r *Repository) ListCourierServices(ctx context.Context) ([]models.CourierService, error) {
	var rows []models.CourierService
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list courier services")
	}
	return rows, nil
}

func findPickup(rows []models.PickupLocation, name string) (*models.PickupLocation, error) {
	needle := strings.TrimSpace(name)
	for i := range rows {
		if strings.EqualFold(rows[i].Name, needle) {
			loc := rows[i]
			return &loc, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup location not found").
		WithDetails(map[string]any{"pickup_location": needle})
}
