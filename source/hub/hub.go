package hub

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dnephin/pflag"
	"github.com/sirupsen/logrus"

	"desmosc/source/compiler"
	"desmosc/source/err"
	"desmosc/source/loader"
	"desmosc/source/settings"
	"desmosc/source/text"
	"desmosc/source/token"
)

// Exit codes.
const (
	OK = iota
	COMPILE_ERRORS
	FAILURE
)

// The Hub parses the command line and does what it's told.
type Hub struct {
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	cfg     *settings.Config
	sources *loader.Sources
}

func New(in io.Reader, out, errOut io.Writer) *Hub {
	return &Hub{in: in, out: out, errOut: errOut, sources: loader.NewSources()}
}

type command struct {
	usage string
	help  string
	run   func(h *Hub, opts *options, args []string) int
}

var commands map[string]command

// The table refers to methods which refer to the table, so it has to be filled in at init time.
func init() {
	commands = map[string]command{
	"build": {"build [flags] file...", "Compiles each file into a graph state, written to the output directory or, " +
		"if there is none, to standard output. A file called '-' is read from standard input.", (*Hub).build},
	"check": {"check [flags] file...", "Compiles each file and reports any errors, without writing anything.", (*Hub).check},
	"fetch": {"fetch [flags] [name]", "Writes a graph state stored in the database to standard output, or with no name lists the stored graphs.", (*Hub).fetch},
	"help":  {"help [command]", "Says what a command does.", (*Hub).help},
	"lsp":   {"lsp [flags]", "Runs a language server, speaking over standard input and output.", (*Hub).runLSP},
	"publish": {"publish [flags] file name", "Compiles the file and stores the resulting graph state in the " +
		"database under the given name.", (*Hub).publish},
	"repl":  {"repl [flags]", "Starts an interactive session.", (*Hub).runREPL},
	"store": {"store [flags] file [path]", "Stores the file in the database as a module which can be imported, by " +
		"default under its own name without the extension.", (*Hub).store},
	}
}

// Run carries out the command given by the arguments, which don't include the name of the
// program, and returns the exit code.
func (h *Hub) Run(args []string) int {
	if len(args) == 0 {
		args = []string{"repl"}
	}
	verb := args[0]
	cmd, ok := commands[verb]
	if !ok {
		if strings.HasSuffix(verb, loader.EXTENSION) || verb == "-" {
			verb, cmd = "build", commands["build"]
		} else {
			h.WriteError("unknown command '" + verb + "'. Try 'desmosc help'.")
			return FAILURE
		}
	} else {
		args = args[1:]
	}
	opts := newOptions(verb)
	opts.flags.SetOutput(h.errOut)
	if e := opts.flags.Parse(args); e != nil {
		if e == pflag.ErrHelp {
			return OK
		}
		return FAILURE
	}
	cfg, e := settings.LoadConfig(opts.config)
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	opts.apply(cfg)
	h.cfg = cfg
	if e := ConfigureLogging(cfg.Log, h.errOut); e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	logrus.WithFields(logrus.Fields{"command": verb, "args": opts.flags.Args()}).Debug("running")
	return cmd.run(h, opts, opts.flags.Args())
}

func (h *Hub) help(opts *options, args []string) int {
	if len(args) > 0 {
		cmd, ok := commands[args[0]]
		if !ok {
			h.WriteError("there's no command called '" + args[0] + "'.")
			return FAILURE
		}
		h.WriteString("Usage: desmosc " + cmd.usage + "\n\n" + cmd.help + "\n\n")
		h.WriteString(newOptions(args[0]).flags.FlagUsages())
		return OK
	}
	h.WriteString(text.Logo())
	h.WriteString("Usage: desmosc command [flags] [arguments]\n\nThe commands are:\n\n")
	names := []string{}
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.WriteString(fmt.Sprintf("%v%-34v\n", text.BULLET, commands[name].usage))
	}
	h.WriteString("\nWith no command, desmosc starts an interactive session.\n")
	return OK
}

func (h *Hub) WriteString(s string) {
	io.WriteString(h.out, s)
}

func (h *Hub) WriteError(s string) {
	io.WriteString(h.errOut, text.BROKEN+text.ERROR+": "+s+"\n")
}

func (h *Hub) reportErrors(ers err.Errors) {
	io.WriteString(h.errOut, err.GetListFrom(ers, h.lookup))
}

func (h *Hub) lookup(file token.FileID) (string, string, bool) {
	if file == compiler.StdlibFile {
		return "", "the standard library", true
	}
	path, source, ok := h.sources.Get(file)
	return source, path, ok
}

// The loader used for imports, unless the database has been asked for.
func (h *Hub) fileLoader() (compiler.Loader, error) {
	fl := loader.NewFileLoader(h.cfg.Root, h.sources)
	return loader.NewCachingLoader(fl, loader.DEFAULT_CACHE_SIZE)
}

func readSource(in io.Reader, filename string) (string, error) {
	if filename == "-" {
		data, e := io.ReadAll(in)
		return string(data), e
	}
	data, e := os.ReadFile(filename)
	return string(data), e
}
