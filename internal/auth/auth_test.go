package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"finance-console/internal/backend/memory"
	"finance-console/internal/models"
)

const secret = "0123456789abcdef0123456789abcdef"

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.New()
	_, err := store.CreateBranch(context.Background(), models.Branch{Name: "Pune"})
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	creds := Credentials{
		JWTSecret:          secret,
		AdminPasswordHash:  hash(t, "admin-pw"),
		BranchPasswordHash: hash(t, "branch-pw"),
	}

	app := fiber.New()
	app.Post("/api/auth/login", LoginHandler(creds, store, log))
	protected := app.Group("/api", JWTMiddleware(secret))
	protected.Get("/auth/me", MeHandler())
	protected.Get("/branches/:branch/ping", func(c *fiber.Ctx) error {
		key, err := Branch(c)
		if err != nil {
			return err
		}
		return c.SendString(key)
	})
	protected.Get("/admin-only", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func login(t *testing.T, app *fiber.App, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Token string `json:"token"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out.Token
}

func get(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestLogin(t *testing.T) {
	app := newApp(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"admin", `{"role":"admin","password":"admin-pw"}`, 200},
		{"branch", `{"role":"branch","branch":"PUNE","password":"branch-pw"}`, 200},
		{"wrong password", `{"role":"admin","password":"branch-pw"}`, 401},
		{"unknown branch", `{"role":"branch","branch":"mumbai","password":"branch-pw"}`, 401},
		{"missing branch", `{"role":"branch","password":"branch-pw"}`, 400},
		{"bad role", `{"role":"root","password":"admin-pw"}`, 400},
		{"bad body", `{`, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, token := login(t, app, tt.body)
			assert.Equal(t, tt.status, status)
			if status == 200 {
				assert.NotEmpty(t, token)
			}
		})
	}
}

func TestBranchScope(t *testing.T) {
	app := newApp(t)
	_, branchToken := login(t, app, `{"role":"branch","branch":"Pune","password":"branch-pw"}`)
	_, adminToken := login(t, app, `{"role":"admin","password":"admin-pw"}`)

	status, body := get(t, app, "/api/branches/Pune/ping", branchToken)
	assert.Equal(t, 200, status)
	assert.Equal(t, "pune", body)

	status, _ = get(t, app, "/api/branches/nashik/ping", branchToken)
	assert.Equal(t, 403, status)

	status, body = get(t, app, "/api/branches/nashik/ping", adminToken)
	assert.Equal(t, 200, status)
	assert.Equal(t, "nashik", body)

	status, _ = get(t, app, "/api/admin-only", branchToken)
	assert.Equal(t, 403, status)
	status, _ = get(t, app, "/api/admin-only", adminToken)
	assert.Equal(t, 200, status)
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	app := newApp(t)

	status, _ := get(t, app, "/api/auth/me", "")
	assert.Equal(t, 401, status)

	status, _ = get(t, app, "/api/auth/me", "garbage")
	assert.Equal(t, 401, status)

	forged, err := GenerateToken("another-secret-another-secret-xx", models.RoleAdmin, "")
	require.NoError(t, err)
	status, _ = get(t, app, "/api/auth/me", forged)
	assert.Equal(t, 401, status)

	valid, err := GenerateToken(secret, models.RoleBranch, "Pune")
	require.NoError(t, err)
	status, body := get(t, app, "/api/auth/me", valid)
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"role":"branch","branch":"pune"}`, body)
}
