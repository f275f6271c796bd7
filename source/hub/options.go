package hub

import (
	"github.com/dnephin/pflag"

	"desmosc/source/settings"
)

// Flags override whatever the configuration file says.
type options struct {
	flags     *pflag.FlagSet
	config    string
	root      string
	outDir    string
	isolate   bool
	seed      string
	logLevel  string
	logFile   string
	logJSON   bool
	dbModules bool
}

func newOptions(verb string) *options {
	opts := &options{}
	fs := pflag.NewFlagSet("desmosc "+verb, pflag.ContinueOnError)
	fs.StringVarP(&opts.config, "config", "c", "", "the configuration file (default \""+settings.CONFIG_FILE+"\" if there is one)")
	fs.StringVar(&opts.logLevel, "log-level", "", "how much to log: panic, fatal, error, warning, info, debug or trace")
	fs.StringVar(&opts.logFile, "log-file", "", "where to log, instead of standard error")
	fs.BoolVar(&opts.logJSON, "log-json", false, "log in JSON")
	switch verb {
	case "build", "check", "publish", "repl", "lsp":
		fs.StringVarP(&opts.root, "root", "r", "", "the directory import paths are relative to")
		fs.BoolVar(&opts.dbModules, "db-modules", false, "import modules from the database rather than from files")
	}
	switch verb {
	case "build", "check", "publish":
		fs.BoolVarP(&opts.isolate, "isolate", "i", false, "keep compiling after an error, and report every error")
	}
	switch verb {
	case "build", "publish":
		fs.StringVar(&opts.seed, "seed", "", "how to set the random seed: none, source or random")
	}
	if verb == "build" {
		fs.StringVarP(&opts.outDir, "out", "o", "", "the directory to write graph states to")
	}
	opts.flags = fs
	return opts
}

func (opts *options) changed(name string) bool {
	return opts.flags.Lookup(name) != nil && opts.flags.Changed(name)
}

func (opts *options) apply(cfg *settings.Config) {
	if opts.changed("root") {
		cfg.Root = opts.root
	}
	if opts.changed("out") {
		cfg.OutDir = opts.outDir
	}
	if opts.changed("isolate") {
		cfg.Isolate = opts.isolate
	}
	if opts.changed("seed") {
		cfg.Seed.Mode = opts.seed
	}
	if opts.changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if opts.changed("log-file") {
		cfg.Log.File = opts.logFile
	}
	if opts.changed("log-json") {
		cfg.Log.JSON = opts.logJSON
	}
}
