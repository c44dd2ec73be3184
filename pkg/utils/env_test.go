package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/messari/subgraphs-sub011/pkg/utils"
)

func TestEnv(t *testing.T) {
	require.Equal(t, "fallback", utils.Env("SUB011_TEST_UNSET", "fallback"))

	t.Setenv("SUB011_TEST_SET", "value")
	require.Equal(t, "value", utils.Env("SUB011_TEST_SET", "fallback"))

	t.Setenv("SUB011_TEST_EMPTY", "")
	require.Equal(t, "fallback", utils.Env("SUB011_TEST_EMPTY", "fallback"))
}

func TestEnvInt(t *testing.T) {
	require.Equal(t, 8, utils.EnvInt("SUB011_TEST_UNSET", 8))

	t.Setenv("SUB011_TEST_INT", "18")
	require.Equal(t, 18, utils.EnvInt("SUB011_TEST_INT", 8))

	t.Setenv("SUB011_TEST_INT", "not-a-number")
	require.Equal(t, 8, utils.EnvInt("SUB011_TEST_INT", 8))

	t.Setenv("SUB011_TEST_INT", "-3")
	require.Equal(t, 8, utils.EnvInt("SUB011_TEST_INT", 8))
}
