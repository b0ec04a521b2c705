package addon

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, *Addon) {
	t.Helper()
	a := New(WithID("com.test.addon"), WithName("TestAddon"), WithVersion("0.0.1"))
	app := fiber.New()
	a.Register(app)
	return app, a
}

func TestHandleManifestUnconfiguredRequiresConfiguration(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/manifest.json", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(body, &m))
	require.Equal(t, "com.test.addon", m.ID)
	require.True(t, m.BehaviorHints.ConfigurationRequired)
}

func TestHandleManifestConfiguredDropsConfigurationRequired(t *testing.T) {
	app, _ := newTestApp(t)

	cfg := UserConfig{APIKey: "some-key"}
	segment, err := cfg.Encode()
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/"+segment+"/manifest.json", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var m Manifest
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &m))
	require.False(t, m.BehaviorHints.ConfigurationRequired)
}

func TestHandleConfigureServesHTML(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/configure", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
}

func TestHandleStreamRejectsUnsupportedType(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/stream/episode/tt1234567.json", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUserConfigEncodeDecodeRoundTrip(t *testing.T) {
	cfg := UserConfig{
		APIKey:    "abc-123",
		Languages: []string{"en", "fr"},
		MaxSize:   50,
		Cache:     true,
		Zilean:    true,
		Sort:      "qualitythensize",
	}

	segment, err := cfg.Encode()
	require.NoError(t, err)

	decoded, err := DecodeUserConfig(segment)
	require.NoError(t, err)
	require.Equal(t, cfg, decoded)
}
