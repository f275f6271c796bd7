package repl

import (
	"bufio"
	"io"
	"os"

	"github.com/lmorg/readline"
	"github.com/mattn/go-isatty"

	"desmosc/source/text"
)

// Start runs the session until the user quits or the input runs out. When the input is a
// terminal the user gets line editing; otherwise each line is read and handled in turn, so that
// a script can be piped in.
func Start(s *Session, in io.Reader) {
	if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		startInteractive(s)
		return
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if s.Do(scanner.Text()) {
			return
		}
	}
}

func startInteractive(s *Session) {
	rline := readline.NewInstance()
	rline.SetPrompt(text.PROMPT)
	for {
		line, e := rline.Readline()
		if e != nil {
			// Ctrl-C and Ctrl-D both come back as errors.
			return
		}
		if s.Do(line) {
			return
		}
	}
}
