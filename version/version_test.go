package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInfoString(t *testing.T) {
	require.Equal(t, "v1.2.0", Info{Version: "v1.2.0", Revision: "0123456789abcdef"}.String())
	require.Equal(t, "0123456", Info{Revision: "0123456789abcdef"}.String())
	require.Equal(t, "0123456-dirty", Info{Revision: "0123456789abcdef", Modified: true}.String())
	require.Equal(t, "unknown", Info{}.String())
}
