package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("PRAXIS_TEST_STRING", "from-env")
	assert.Equal(t, "from-env", GetEnvString("PRAXIS_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", GetEnvString("PRAXIS_TEST_STRING_UNSET", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("PRAXIS_TEST_INT", "42")
	assert.Equal(t, 42, GetEnvInt("PRAXIS_TEST_INT", 7))

	t.Setenv("PRAXIS_TEST_INT", "not-a-number")
	assert.Equal(t, 7, GetEnvInt("PRAXIS_TEST_INT", 7))

	assert.Equal(t, 7, GetEnvInt("PRAXIS_TEST_INT_UNSET", 7))
}
