//go:build !cef

package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Unavailable(t *testing.T) {
	lib, err := Open(nil)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, lib)
}
