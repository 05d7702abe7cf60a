package auth

import (
	"strings"

	"finance-console/internal/backend"
	"finance-console/internal/httpx"
	"finance-console/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the bcrypt hashes of the two shared console passwords.
type Credentials struct {
	JWTSecret          string
	AdminPasswordHash  string
	BranchPasswordHash string
}

type LoginRequest struct {
	Role     models.UserRole `json:"role"`
	Branch   string          `json:"branch"`
	Password string          `json:"password"`
}

// POST /api/auth/login
func LoginHandler(creds Credentials, branches backend.Branches, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		if !body.Role.Valid() || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "role and password are required")
		}

		hash := creds.AdminPasswordHash
		branch := ""
		if body.Role == models.RoleBranch {
			hash = creds.BranchPasswordHash
			branch = models.BranchKey(body.Branch)
			if branch == "" {
				return fiber.NewError(fiber.StatusBadRequest, "branch is required")
			}
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)); err != nil {
			log.WithFields(logrus.Fields{"role": body.Role, "branch": branch}).Warn("login rejected")
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}

		var matched *models.Branch
		if branch != "" {
			list, err := branches.ListBranches(c.UserContext())
			if err != nil {
				return err
			}
			for i := range list {
				if list[i].Key() == branch {
					matched = &list[i]
					break
				}
			}
			if matched == nil {
				return fiber.NewError(fiber.StatusUnauthorized, "unknown branch")
			}
		}

		token, err := GenerateToken(creds.JWTSecret, body.Role, branch)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
		}

		resp := fiber.Map{
			"token": token,
			"role":  body.Role,
		}
		if matched != nil {
			resp["branch"] = matched
		}
		return c.JSON(resp)
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
		branch, _ := c.Locals(CtxBranchKey).(string)
		return c.JSON(fiber.Map{
			"role":   role,
			"branch": strings.TrimSpace(branch),
		})
	}
}
