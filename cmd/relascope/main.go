package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"relascope/internal/cli/commands"
)

// Set by goreleaser ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// The runtime re-raises SIGPIPE for EPIPE on stdout, killing the process
	// before the report writer sees the error. Ignore it so writes surface
	// EPIPE and `relascope dump | head` ends cleanly.
	signal.Ignore(syscall.SIGPIPE)

	commands.SetVersion(version, commit, date)
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
