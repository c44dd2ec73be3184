package onchain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/messari/subgraphs-sub011/pkg/onchain"
)

func TestCallResultValue(t *testing.T) {
	res := onchain.Value(42)
	assert.False(t, res.Reverted())
	assert.Equal(t, 42, res.UnwrapOr(0))

	v, err := res.OrFatal(errors.New("boom"))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestCallResultRevert(t *testing.T) {
	res := onchain.Revert[int]()
	assert.True(t, res.Reverted())
	assert.Equal(t, 7, res.UnwrapOr(7))

	fatal := errors.New("no trustworthy value")
	v, err := res.OrFatal(fatal)
	require.ErrorIs(t, err, fatal)
	assert.Zero(t, v)
}
