package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/pitests/internal/logger"
)

func TestLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger.InitializeAndConfigure()
	logger.SetOutput(buf)
	logger.SetLevel(logrus.DebugLevel)
	defer logger.SetLevel(logrus.InfoLevel)
	defer logger.SetOutput(os.Stderr)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(Logger())
	app.Get("/piwebapi/system", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	}).Name("system")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/piwebapi/system", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), buf.String())
	assert.Equal(t, "Request", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/piwebapi/system", entry["path"])
	assert.Equal(t, "system", entry["route"])
	assert.EqualValues(t, fiber.StatusNoContent, entry["status"])
}
