package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fder is satisfied by *os.File and wrappers that expose the descriptor.
type fder interface{ Fd() uintptr }

// IsTTY reports whether stream, a reader or a writer, is a terminal.
func IsTTY(stream any) bool {
	f, ok := stream.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether a prompt can be shown: both sides of the
// conversation must be terminals. Screen clearing and the fuzzy finder
// depend on this.
func Interactive(in io.Reader, out io.Writer) bool {
	return IsTTY(in) && IsTTY(out)
}

// SupportsColor reports whether ANSI colors should be written to w.
// NO_COLOR and TERM=dumb switch color off even on a terminal.
func SupportsColor(w io.Writer) bool {
	return supportsColor(IsTTY(w))
}

func supportsColor(isTTY bool) bool {
	// https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTTY && os.Getenv("TERM") != "dumb"
}
