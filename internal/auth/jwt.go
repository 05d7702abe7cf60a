package auth

import (
	"time"

	"finance-console/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 12 * time.Hour

type JWTCustomClaims struct {
	Role models.UserRole `json:"role"`
	// Branch key for branch logins, empty for admins.
	Branch string `json:"branch,omitempty"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, role models.UserRole, branch string) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		Role:   role,
		Branch: models.BranchKey(branch),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(role),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
