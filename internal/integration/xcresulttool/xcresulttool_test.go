package xcresulttool

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	bundle, err := Tool{}.Open("Run.xcresult")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(bundle.Path()))

	assert.Equal(t,
		[]string{"xcresulttool", "get", "--format", "json", "--path", bundle.Path()},
		bundle.args("get", "--format", "json", "--path", bundle.Path()),
	)

	legacy, err := Tool{Legacy: true}.Open("Run.xcresult")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"xcresulttool", "get", "--id", "0~x", "--legacy"},
		legacy.args("get", "--id", "0~x"),
	)
}
