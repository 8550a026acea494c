package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)

	require.True(t, CheckPassword(hash, "hunter2"))
	require.False(t, CheckPassword(hash, "hunter3"))
	require.False(t, CheckPassword("not-a-hash", "hunter2"))
}
