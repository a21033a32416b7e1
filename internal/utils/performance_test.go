package utils

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestOperationTimer(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	stop := OperationTimer("pricing_recommendations", log)
	duration := stop()

	assert.GreaterOrEqual(t, int64(duration), int64(0))
	assert.Contains(t, buf.String(), `"operation":"pricing_recommendations"`)
	assert.Contains(t, buf.String(), "Operation completed")
	assert.NotContains(t, buf.String(), "Slow operation detected")
}

func TestOperationTimer_Disabled(t *testing.T) {
	stop := OperationTimer("noop", zerolog.Nop())
	assert.NotPanics(t, func() { stop() })
}
