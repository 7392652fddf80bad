package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, charmlog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, charmlog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, charmlog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, charmlog.InfoLevel, ParseLevel("verbose"))
}

func TestJSONOutputCarriesKeyvals(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, JSON: true, Level: "debug"}).With("unit", "fetch")
	l.Warn("retrieval failed", "seq", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "retrieval failed", rec["msg"])
	assert.Equal(t, "fetch", rec["unit"])
	assert.EqualValues(t, 3, rec["seq"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Level: "info"})
	l.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestFromContext(t *testing.T) {
	l := Nop()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
