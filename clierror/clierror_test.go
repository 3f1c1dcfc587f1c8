package clierror_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/clierror"
)

func TestCheck_MapsErrorKindsToExitCodes(t *testing.T) {
	var gotMsg string

	var gotCode int

	clierror.SetErrorHandler(func(msg string, code int) {
		gotMsg, gotCode = msg, code
	})

	defer clierror.ResetErrorHandler()

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"auth", chacraberrors.ErrBadPassword, clierror.ExitAuthError},
		{"integrity", chacraberrors.ErrIntegrity, clierror.ExitIntegrityError},
		{"backend", &chacraberrors.BackendError{Backend: "sqlite", Err: chacraberrors.ErrNotFound}, clierror.ExitBackendError},
		{"user", chacraberrors.ErrAmbiguous, clierror.ExitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = clierror.Check(tt.err)
			require.Equal(t, tt.code, gotCode)
			require.NotEmpty(t, gotMsg)
		})
	}
}

func TestCheck_NilErrorDoesNothing(t *testing.T) {
	called := false

	clierror.SetErrorHandler(func(string, int) { called = true })
	defer clierror.ResetErrorHandler()

	require.NoError(t, clierror.Check(nil))
	require.False(t, called)
}
