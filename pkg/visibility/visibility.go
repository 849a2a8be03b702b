package visibility

import (
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

// Scope decides which orders an actor may read or delete. Every order query
// runs through a Scope so the tenant boundary is applied in one place.
type Scope struct {
	ClientID   int64
	ActorID    int64
	Role       enums.UserRole
	SubGroup   string
	Restricted bool
}

// Actor is the authenticated identity a scope is derived from.
type Actor struct {
	UserID   int64
	ClientID int64
	Role     enums.UserRole
	SubGroup string
}

// ForActor builds the scope for an authenticated actor. Child users are
// restricted to orders they created or that belong to their sub-group.
func ForActor(actor Actor) (Scope, error) {
	if actor.ClientID <= 0 {
		return Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "actor is not bound to a client")
	}
	if actor.UserID <= 0 {
		return Scope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor is missing")
	}
	if !actor.Role.IsValid() {
		return Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}
	return Scope{
		ClientID:   actor.ClientID,
		ActorID:    actor.UserID,
		Role:       actor.Role,
		SubGroup:   strings.TrimSpace(actor.SubGroup),
		Restricted: actor.Role == enums.UserRoleChildUser,
	}, nil
}

// Allows reports whether the order is visible under the scope.
func (s Scope) Allows(order models.Order) bool {
	if order.ClientID != s.ClientID {
		return false
	}
	if !s.Restricted {
		return true
	}
	if order.CreatedBy == s.ActorID {
		return true
	}
	return s.SubGroup != "" && order.SubGroup != nil && *order.SubGroup == s.SubGroup
}

// Apply narrows an orders query to the rows visible under the scope.
func (s Scope) Apply(q *gorm.DB) *gorm.DB {
	q = q.Where("orders.client_id = ?", s.ClientID)
	if !s.Restricted {
		return q
	}
	if s.SubGroup == "" {
		return q.Where("orders.created_by = ?", s.ActorID)
	}
	return q.Where("(orders.created_by = ? OR orders.sub_group = ?)", s.ActorID, s.SubGroup)
}
