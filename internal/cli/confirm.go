package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/emiliopalmerini/echonote/internal/domain"
	"github.com/emiliopalmerini/echonote/internal/util"
)

// confirmFromTerminal asks for a single y/N keypress on in. Without a
// terminal there is nobody to ask, so the answer is no.
func confirmFromTerminal(in *os.File, prompt io.Writer) func(domain.Transcript) bool {
	return func(t domain.Transcript) bool {
		fd := int(in.Fd())
		if !term.IsTerminal(fd) {
			fmt.Fprintln(prompt, "Not a terminal; pass --yes to delete without confirmation")
			return false
		}

		fmt.Fprintf(prompt, "Delete %s (%q)? [y/N] ", t.Filename, util.Preview(t.ExportText(), 40))

		state, err := term.MakeRaw(fd)
		if err != nil {
			return false
		}
		defer func() {
			_ = term.Restore(fd, state)
			fmt.Fprintln(prompt)
		}()

		return readYes(in)
	}
}

func readYes(r io.Reader) bool {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return false
	}
	return buf[0] == 'y' || buf[0] == 'Y'
}
