package auth

import (
	"fmt"
	"strings"

	"finance-console/internal/httpx"
	"finance-console/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserRoleKey = "user_role"
	CtxBranchKey   = "branch"
)

func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok || !claims.Role.Valid() {
			return fiber.NewError(fiber.StatusUnauthorized, "malformed token claims")
		}
		if claims.Role == models.RoleBranch && claims.Branch == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "branch token without branch")
		}

		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxBranchKey, claims.Branch)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "role missing from session")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "not allowed for this role")
	}
}

// Branch resolves the :branch route parameter to a branch key. Branch logins
// may only address their own branch.
func Branch(c *fiber.Ctx) (string, error) {
	key := models.BranchKey(httpx.Param(c, "branch"))
	if key == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "branch is required")
	}
	return key, Allow(c, key)
}

// Allow checks that the session may act on the branch key.
func Allow(c *fiber.Ctx, key string) error {
	role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
	switch role {
	case models.RoleAdmin:
		return nil
	case models.RoleBranch:
		own, _ := c.Locals(CtxBranchKey).(string)
		if own == models.BranchKey(key) {
			return nil
		}
	}
	return fiber.NewError(fiber.StatusForbidden, "no access to this branch")
}
