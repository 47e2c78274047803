package pglock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockID_Stable(t *testing.T) {
	id := LockID("migrator")
	assert.Equal(t, id, LockID("migrator"))
	assert.NotEqual(t, id, LockID("admin"))
}

func TestTryAdvisoryLock_NilPool(t *testing.T) {
	locked, unlock, err := TryAdvisoryLock(context.Background(), nil, "migrator")
	require.Error(t, err)
	assert.False(t, locked)
	assert.Nil(t, unlock)
}
