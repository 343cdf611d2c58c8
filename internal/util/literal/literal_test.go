package literal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeName(t *testing.T) {
	require.Equal(t, "null", TypeName(nil))
	require.Equal(t, "bool", TypeName(true))
	require.Equal(t, "string", TypeName("x"))
	require.Equal(t, "number", TypeName(0.5))
	require.Equal(t, "number", TypeName(3))
	require.Equal(t, "list", TypeName([]any{}))
	require.Equal(t, "mapping", TypeName(map[string]any{}))
}

func TestStringScalars(t *testing.T) {
	require.Equal(t, `"hello"`, String("hello"))
	require.Equal(t, "0.5", String(0.5))
	require.Equal(t, "true", String(true))
	require.Equal(t, "null", String(nil))
}

func TestStringMappingSortedKeys(t *testing.T) {
	v := map[string]any{"suffix": "-small", "size": 0.5, "optimize": true}
	require.Equal(t, `{"optimize": true, "size": 0.5, "suffix": "-small"}`, String(v))
}

func TestStringList(t *testing.T) {
	require.Equal(t, `[1, "two", false]`, String([]any{1, "two", false}))
}
