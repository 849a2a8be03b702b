package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   int64
	ClientID int64
	Role     enums.UserRole
	SubGroup string
	JTI      string
}

// AccessTokenClaims represents the typed JWT presented by callers.
type AccessTokenClaims struct {
	UserID   int64          `json:"user_id"`
	ClientID int64          `json:"client_id"`
	Role     enums.UserRole `json:"role"`
	SubGroup string         `json:"sub_group,omitempty"`
	jwt.RegisteredClaims
}
