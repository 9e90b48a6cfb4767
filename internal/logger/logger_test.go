package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Debug(t *testing.T) {
	log, err := New(true)
	require.NoError(t, err)
	require.NotNil(t, log)

	assert.True(t, log.Core().Enabled(zap.DebugLevel))
	log.Debug("test message")
}

func TestNew_Quiet(t *testing.T) {
	log, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, log)

	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() {
		log := Must(false)
		assert.NotNil(t, log)
	})
}
