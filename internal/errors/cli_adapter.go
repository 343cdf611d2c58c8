package errors

import (
	stderrors "errors"
	"log/slog"
	"os"
)

// Exit codes, one per kind. 1-2 and 126+ carry POSIX meanings, so specific
// kinds start at 3.
const (
	ExitOK                = 0
	ExitGeneral           = 1
	ExitFileOrDirNotFound = 3
	ExitMissingElement    = 4
	ExitWrongTypeOrFormat = 5
	ExitTemplate          = 6
	ExitYAML              = 7
	ExitJSON              = 8
	ExitImage             = 9
)

var exitCodes = map[Kind]int{
	KindGeneral:           ExitGeneral,
	KindFileOrDirNotFound: ExitFileOrDirNotFound,
	KindMissingElement:    ExitMissingElement,
	KindWrongTypeOrFormat: ExitWrongTypeOrFormat,
	KindTemplate:          ExitTemplate,
	KindYAML:              ExitYAML,
	KindJSON:              ExitJSON,
	KindImage:             ExitImage,
}

// CLIAdapter handles error presentation and exit-code determination for the
// command-line entrypoint. Library callers never use it; they receive the
// SiteError directly.
type CLIAdapter struct {
	logger *slog.Logger
}

// NewCLIAdapter creates a CLI error adapter. A nil logger falls back to the
// process default.
func NewCLIAdapter(logger *slog.Logger) *CLIAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIAdapter{logger: logger}
}

// ExitCodeFor determines the exit code for an error.
func (a *CLIAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if code, ok := exitCodes[KindOf(err)]; ok {
		return code
	}
	return ExitGeneral
}

// HandleError logs an error and exits the process with the matching code.
// A nil error is a no-op.
func (a *CLIAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	a.logger.Error(messageOf(err))
	os.Exit(a.ExitCodeFor(err))
}

func messageOf(err error) string {
	var se *SiteError
	if stderrors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
