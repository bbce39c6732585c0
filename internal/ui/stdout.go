package ui

import (
	"io"
	"os"
)

// NoBellStdout swallows the terminal bell promptui writes on every keystroke
var NoBellStdout io.WriteCloser = &bellSkipper{out: os.Stderr}

type bellSkipper struct {
	out io.Writer
}

// Write implements io.Writer
func (bs *bellSkipper) Write(b []byte) (int, error) {
	const charBell = 7 // c.f. readline.CharBell
	if len(b) == 1 && b[0] == charBell {
		return 0, nil
	}
	return bs.out.Write(b)
}

// Close implements io.Closer. promptui closes its output when a prompt ends,
// stderr must stay open for the log and the summary.
func (bs *bellSkipper) Close() error {
	return nil
}
