package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryKind(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{General("boom"), KindGeneral},
		{FileOrDirNotFound("No such directory: '%s'.", "/tmp/x"), KindFileOrDirNotFound},
		{MissingElement("missing"), KindMissingElement},
		{WrongTypeOrFormat("wrong"), KindWrongTypeOrFormat},
		{Template("template"), KindTemplate},
		{YAML("yaml"), KindYAML},
		{JSON("json"), KindJSON},
		{Image("image"), KindImage},
	}
	for _, tc := range cases {
		require.Equal(t, tc.kind, KindOf(tc.err))
		require.True(t, IsKind(tc.err, tc.kind))
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(cause, KindImage, "Cannot write file.")
	require.Equal(t, KindImage, KindOf(err))
	require.ErrorIs(t, err, cause)
}

func TestKindOfUnknownError(t *testing.T) {
	require.Equal(t, KindGeneral, KindOf(fmt.Errorf("plain")))
}

func TestExitCodes(t *testing.T) {
	adapter := NewCLIAdapter(nil)
	require.Equal(t, ExitOK, adapter.ExitCodeFor(nil))
	require.Equal(t, ExitGeneral, adapter.ExitCodeFor(fmt.Errorf("plain")))
	require.Equal(t, ExitFileOrDirNotFound, adapter.ExitCodeFor(FileOrDirNotFound("gone")))
	require.Equal(t, ExitMissingElement, adapter.ExitCodeFor(MissingElement("missing")))
	require.Equal(t, ExitWrongTypeOrFormat, adapter.ExitCodeFor(WrongTypeOrFormat("wrong")))
	require.Equal(t, ExitTemplate, adapter.ExitCodeFor(Template("template")))
	require.Equal(t, ExitYAML, adapter.ExitCodeFor(YAML("yaml")))
	require.Equal(t, ExitJSON, adapter.ExitCodeFor(JSON("json")))
	require.Equal(t, ExitImage, adapter.ExitCodeFor(Image("image")))
}

func TestMessageFormatting(t *testing.T) {
	err := FileOrDirNotFound("No such file: '%s'.", "a.md")
	require.Equal(t, "No such file: 'a.md'.", err.Message)
	require.Contains(t, err.Error(), "No such file: 'a.md'.")
}
