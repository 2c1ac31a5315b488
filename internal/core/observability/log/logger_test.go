package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerLevelIsAdjustable(t *testing.T) {
	l := NewWithEncoding(LevelInfo, EncodingConsole)
	assert.Equal(t, LevelInfo, l.GetLevel())
	assert.False(t, l.checkLevel(LevelDebug))

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	assert.True(t, l.checkLevel(LevelDebug))

	child := l.With(String("component", "test"))
	assert.Equal(t, LevelDebug, child.GetLevel())
}

func TestToZapFieldsHandlesNilError(t *testing.T) {
	fields := toZapFields(Error(nil), Error(errors.New("boom")), Int("n", 3), Any("x", []int{1}))
	require.Len(t, fields, 4)
	assert.Equal(t, "n", fields[2].Key)
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("ignored", String("k", "v"))
	assert.Equal(t, LevelFatal, l.GetLevel())
	assert.NoError(t, l.Sync())
}
