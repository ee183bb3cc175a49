package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedger(t *testing.T) {
	l, closeFn, err := NewLedger(context.Background(), BackendConfig{Type: "memory"})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &MemoryLedger{}, l)

	_, closeFn, err = NewLedger(context.Background(), BackendConfig{Type: "mongodb"})
	assert.Error(t, err)
	assert.NotNil(t, closeFn)

	_, _, err = NewLedger(context.Background(), BackendConfig{Type: "redis"})
	assert.EqualError(t, err, "unsupported quota backend: redis")
}
