package mrfsk

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*------------------------------------------------------------------
 *
 * Name:	CaptureOutput
 *
 * Purpose:	Run a command line tool's main function and collect
 *		what it prints.
 *
 * Description:	stdout only.  Log output goes to stderr and isn't seen.
 *		The pipe is drained while the command runs so a chatty
 *		command can't fill it and hang.
 *
 *------------------------------------------------------------------*/

func CaptureOutput(t *testing.T, command func()) string {
	t.Helper()

	var r, w, err = os.Pipe()
	require.NoError(t, err)

	var output bytes.Buffer
	var copied = make(chan error, 1)
	go func() {
		var _, cerr = io.Copy(&output, r)
		copied <- cerr
	}()

	var oldStdout = os.Stdout
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()

	command()

	w.Close() //nolint:gosec
	os.Stdout = oldStdout

	require.NoError(t, <-copied)
	r.Close() //nolint:gosec

	return output.String()
}

func AssertOutputContains(t *testing.T, command func(), expectedOutputContains string) {
	t.Helper()

	assert.Contains(t, CaptureOutput(t, command), expectedOutputContains)
}
