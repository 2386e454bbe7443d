package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorReturnsSameError(t *testing.T) {
	want := errors.New("boom")
	got := Error(want)
	assert.Same(t, want, got)
}

func TestErrorfWrapsFormattedMessage(t *testing.T) {
	err := Errorf("failed on %s", "thing")
	assert.EqualError(t, err, "failed on thing")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestSetLevelGatedCallsDoNotPanic(t *testing.T) {
	// SetLevel mutates shared package state; restore it for other tests.
	defer SetLevel(LevelInfo)

	SetLevel(LevelError)
	// Debug/Info/Warn below LevelError are no-ops; this only verifies
	// they don't panic when gated out.
	Debug("should be suppressed")
	Info("should be suppressed")
	Warn("should be suppressed")
}
