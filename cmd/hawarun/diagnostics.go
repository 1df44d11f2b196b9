package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"hawarun/internal/ipc"
	"hawarun/internal/manifest"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
)

// manifestMessage is the only manifest diagnostic shown to users; the cause
// is logged at debug level.
const manifestMessage = "could not read the game manifest"

type usageError struct {
	err   error
	usage string
}

func newUsageError(cmd *cobra.Command, err error) *usageError {
	return &usageError{err: err, usage: cmd.UsageString()}
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

type configError struct {
	err error
}

func (e *configError) Error() string { return "configuration: " + e.err.Error() }

func (e *configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var (
		usageErr    *usageError
		manifestErr *manifest.Error
		connErr     *ipc.ConnectionError
		timeoutErr  *ipc.TimeoutError
		protoErr    *ipc.ProtocolError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usageErr):
		return exitUsage
	case errors.As(err, &manifestErr):
		return exitManifest
	case errors.As(err, &connErr):
		return exitConnection
	case errors.As(err, &timeoutErr):
		return exitTimeout
	case errors.As(err, &protoErr):
		return exitProtocol
	default:
		return exitFailure
	}
}

// reportError writes the user-facing diagnostic for err to w.
func reportError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	colorize := shouldColorize(w)

	var (
		usageErr    *usageError
		manifestErr *manifest.Error
		connErr     *ipc.ConnectionError
	)
	switch {
	case errors.As(err, &usageErr):
		writeDiagnostic(w, colorize, usageErr.Error(), "")
		fmt.Fprint(w, usageErr.usage)
	case errors.As(err, &manifestErr):
		writeDiagnostic(w, colorize, manifestMessage, "")
	case errors.As(err, &connErr):
		writeDiagnostic(w, colorize, connErr.Error(), connErr.Hint())
	default:
		writeDiagnostic(w, colorize, err.Error(), "")
	}
}

func writeDiagnostic(w io.Writer, colorize bool, message, hint string) {
	label := "Error:"
	if colorize {
		label = ansiRed + label + ansiReset
	}
	fmt.Fprintf(w, "%s %s\n", label, message)
	if hint == "" {
		return
	}
	hintLabel := "Hint:"
	if colorize {
		hintLabel = ansiYellow + hintLabel + ansiReset
	}
	fmt.Fprintf(w, "%s %s\n", hintLabel, hint)
}

func shouldColorize(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
