// Package clierror centralizes error-to-message-to-exit-code mapping for
// the CLI: every command funnels its terminal error through [Check], which
// never leaks a raw backend string, key, token, ciphertext, or plaintext.
package clierror

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/imadenugraha/chacrab/chacraberrors"
)

// Exit codes from the CLI surface's external contract.
const (
	ExitOK             = 0
	ExitUserError      = 1
	ExitAuthError      = 2
	ExitIntegrityError = 3
	ExitBackendError   = 4
)

var (
	// errHandler is the function used to handle cli errors.
	errHandler = FatalErrHandler

	// errWriter is used to output cli error messages.
	errWriter io.Writer = os.Stderr

	// fprintf is the function used to format and print errors.
	fprintf = fmt.Fprintf

	// diagnosticMode enables printing the underlying error detail
	// alongside the redacted message.
	diagnosticMode bool
)

// SetErrorHandler overrides the default [FatalErrHandler] error handler.
func SetErrorHandler(f func(string, int)) { errHandler = f }

// ResetErrorHandler restores the default error handler.
func ResetErrorHandler() { errHandler = FatalErrHandler }

// SetErrWriter overrides the default error output writer [os.Stderr].
func SetErrWriter(w io.Writer) { errWriter = w }

// ResetErrWriter restores the default error output writer.
func ResetErrWriter() { errWriter = os.Stderr }

// DiagnosticMode enables or disables printing unredacted error detail.
func DiagnosticMode(enabled bool) { diagnosticMode = enabled }

// FatalErrHandler prints msg and exits with code.
func FatalErrHandler(msg string, code int) {
	printError(msg)

	//nolint:revive // intentional exit after a fatal CLI error
	os.Exit(code)
}

// PrintErrHandler prints msg without exiting, for tests.
func PrintErrHandler(msg string, _ int) {
	printError(msg)
}

func printError(msg string) {
	if len(msg) == 0 {
		return
	}

	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	_, _ = fprintf(errWriter, "chacrab: %s", msg)
}

// ErrExit may be passed to Check to exit with [ExitUserError] and print
// nothing.
var ErrExit = errors.New("exit")

// Check reports err through the configured handler and returns it
// unchanged, so callers can still inspect it in tests.
func Check(err error) error {
	check(err, errHandler)
	return err
}

func check(err error, handle func(string, int)) {
	if err == nil {
		return
	}

	if errors.Is(err, ErrExit) {
		handle("", ExitUserError)
		return
	}

	msg := chacraberrors.Redact(err, diagnosticMode)
	handle(msg, exitCodeFor(err))
}

// exitCodeFor maps an error to one of the spec's exit codes by kind.
func exitCodeFor(err error) int {
	switch {
	case isAuthError(err):
		return ExitAuthError
	case isIntegrityError(err):
		return ExitIntegrityError
	case isBackendError(err):
		return ExitBackendError
	default:
		return ExitUserError
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, chacraberrors.ErrNoSession) ||
		errors.Is(err, chacraberrors.ErrBadPassword) ||
		errors.Is(err, chacraberrors.ErrWeakMasterPassword) ||
		errors.Is(err, chacraberrors.ErrAlreadyRegistered) ||
		errors.Is(err, chacraberrors.ErrNotRegistered)
}

func isIntegrityError(err error) bool {
	return errors.Is(err, chacraberrors.ErrKdf) ||
		errors.Is(err, chacraberrors.ErrEncrypt) ||
		errors.Is(err, chacraberrors.ErrDecrypt) ||
		errors.Is(err, chacraberrors.ErrCorruptNonce) ||
		errors.Is(err, chacraberrors.ErrIntegrity) ||
		errors.Is(err, chacraberrors.ErrUnsupportedVersion) ||
		errors.Is(err, chacraberrors.ErrBackupDecrypt)
}

func isBackendError(err error) bool {
	var backendErr *chacraberrors.BackendError

	return errors.As(err, &backendErr) ||
		errors.Is(err, chacraberrors.ErrSchemaNewerThanBinary) ||
		errors.Is(err, chacraberrors.ErrSyncTransport) ||
		errors.Is(err, chacraberrors.ErrSyncBusy)
}
