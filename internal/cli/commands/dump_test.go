package commands

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"relascope/internal/scan"
)

const envBrokenPipeChild = "RELASCOPE_TEST_BROKEN_PIPE_CHILD"

// Re-execs itself with stdout on a pipe whose read end is already closed.
// With SIGPIPE ignored (as main does), every write fails with EPIPE and
// writeReport must treat that as a normal end of output.
func TestWriteReportBrokenPipe(t *testing.T) {
	if os.Getenv(envBrokenPipeChild) == "1" {
		signal.Ignore(syscall.SIGPIPE)
		nodes := make([]*scan.Node, 100)
		for i := range nodes {
			n := scan.NewNode(fmt.Sprintf("/data/d%03d", i), "/data", -1)
			n.NumFiles = int64(i)
			nodes[i] = n
		}
		if err := writeReport(nodes); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	r, w, err := os.Pipe()
	require.NoError(t, err)
	require.NoError(t, r.Close())

	cmd := exec.Command(os.Args[0], "-test.run", "^TestWriteReportBrokenPipe$")
	cmd.Env = append(os.Environ(), envBrokenPipeChild+"=1")
	cmd.Stdout = w
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	w.Close()
	require.NoError(t, err, "child failed: %s", stderr.String())
}
