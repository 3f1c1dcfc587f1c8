package genericclioptions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imadenugraha/chacrab/genericclioptions"
)

type fakeCmd struct {
	completeErr, validateErr, runErr error
	ran                              bool
}

func (f *fakeCmd) Complete() error { return f.completeErr }
func (f *fakeCmd) Validate() error { return f.validateErr }
func (f *fakeCmd) Run(context.Context, ...string) error {
	f.ran = true
	return f.runErr
}

func TestExecuteCommand_StopsAtFirstError(t *testing.T) {
	f := &fakeCmd{validateErr: errors.New("bad input")}

	err := genericclioptions.ExecuteCommand(t.Context(), f)
	require.ErrorIs(t, err, f.validateErr)
	require.False(t, f.ran)
}

func TestExecuteCommand_RunsWhenCompleteAndValidateSucceed(t *testing.T) {
	f := &fakeCmd{}

	require.NoError(t, genericclioptions.ExecuteCommand(t.Context(), f, "arg1"))
	require.True(t, f.ran)
}
