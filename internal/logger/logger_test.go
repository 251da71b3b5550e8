package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/revplan/internal/logger"
)

func fixedNow() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

func newTestLogger(buf *bytes.Buffer, level logger.Level) *logger.Logger {
	return logger.New(
		logger.WithOutput(buf),
		logger.WithLevel(level),
		logger.WithColors(false),
		logger.WithCaller(false),
		logger.WithClock(fixedNow),
	)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("Warning"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel("ERROR"))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, logger.WARN)

	log.Info("hidden")
	log.Warn("shown %d", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 1")
}

func TestLogger_PrefixAndSortedFields(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, logger.DEBUG).
		WithPrefix("planner").
		WithFields(map[string]any{"zeta": 2, "alpha": "a"})

	log.Debug("built plan")

	line := strings.TrimSpace(buf.String())
	assert.Equal(t, "2026-10-19 09:00:00.000 DEBUG [planner] built plan alpha=a zeta=2", line)
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newTestLogger(&buf, logger.INFO)
	_ = parent.WithField("item", "x")

	parent.Info("parent")
	assert.NotContains(t, buf.String(), "item=x")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, logger.INFO).WithPrefix("ctx")
	ctx := logger.NewContext(context.Background(), log)

	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
