package users

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user required")
	}
	if !user.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return &user, nil
}

// SubGroup returns the cohort label of a user, or an empty string when unset.
func (r *Repository) SubGroup(ctx context.Context, id int64) (string, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if user.SubGroup == nil {
		return "", nil
	}
	return strings.TrimSpace(*user.SubGroup), nil
}
