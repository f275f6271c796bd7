// All this does is contain in one place the constants controlling which bits of the inner workings of the
// lexer/parser/compiler are displayed to me for debugging purposes, and the project configuration read
// from desmosc.toml. In a release the debugging constants must all be set to false.

package settings

const (
	// These do what it sounds like.
	SHOW_LEXER    = false
	SHOW_PARSER   = false
	SHOW_COMPILER = false
	SHOW_LOADER   = false

	SHOW_TESTS = true // Says whether the tests should say what is being tested, useful if one of them crashes and we don't know which.
)

// The prefix of import paths which are served from the standard library compiled into the binary.
const STDLIB_PREFIX = "std/"

// The name of the project file looked for in the working directory.
const CONFIG_FILE = "desmosc.toml"

// How many times a single path may be loaded by one loader. This is what stops an import cycle
// from recursing forever, since the compiler doesn't look for cycles.
const MAX_LOADS_PER_PATH = 64
