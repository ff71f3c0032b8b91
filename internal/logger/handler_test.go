package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandlerRedactsTokens(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "pretty", "debug"))

	log.Info("login relayed", "email", "user@example.com", "access", "a1", "refresh_token", "r1")

	out := buf.String()
	assert.Contains(t, out, "user@example.com")
	assert.NotContains(t, out, "a1")
	assert.NotContains(t, out, "r1")
	assert.Contains(t, out, redacted)
}

func TestJSONHandlerRedactsGroupedPassword(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "json", "info"))

	log.WithGroup("body").Info("request", "password", "hunter2")

	require.NotContains(t, buf.String(), "hunter2")
	require.Contains(t, buf.String(), redacted)
}

func TestPrettyHandlerRedactsGroupedPassword(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "pretty", "info"))

	log.Info("login relayed",
		slog.Group("creds", slog.String("email", "user@example.com"), slog.String("password", "hunter2")),
	)
	log.WithGroup("body").Info("request", slog.Group("tokens", slog.String("refresh", "r1")))

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "r1")
	assert.Contains(t, out, "creds.email")
	assert.Contains(t, out, "user@example.com")
	assert.Contains(t, out, "body.tokens.refresh")
	assert.Contains(t, out, redacted)
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "pretty", "warn"))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
