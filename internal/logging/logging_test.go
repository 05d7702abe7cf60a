package logging

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField(FieldBranch, "pune").Info("hello")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "pune", line["branch"])
	assert.Equal(t, "hello", line["msg"])

	fallback := New("loud", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, fallback.GetLevel())
}

func TestMiddleware(t *testing.T) {
	log, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(Middleware(log))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadGateway, "remote down") })

	tests := []struct {
		path   string
		level  logrus.Level
		status int
	}{
		{"/ok", logrus.InfoLevel, 200},
		{"/missing", logrus.WarnLevel, 404},
		{"/boom", logrus.ErrorLevel, 502},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			hook.Reset()
			_, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.status, entry.Data[FieldStatus])
		})
	}
}
