package hub

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"desmosc/source/compiler"
	"desmosc/source/database"
	"desmosc/source/err"
	"desmosc/source/graph"
	"desmosc/source/loader"
	"desmosc/source/parser"
	"desmosc/source/settings"
	"desmosc/source/text"
)

// The result of compiling one file.
type result struct {
	filename string
	state    *graph.CalcState
	ers      err.Errors
	data     []byte
}

// compileFile compiles a file in a context of its own and dresses the output up as the
// configuration asks.
func (h *Hub) compileFile(l compiler.Loader, filename string) (*result, error) {
	source, e := readSource(h.in, filename)
	if e != nil {
		return nil, errors.Wrapf(e, "reading %s", filename)
	}
	file := h.sources.Register(filename, source)
	stmts, ers := parser.ParseProgram(file, source)
	res := &result{filename: filename}
	if len(ers) > 0 && !h.cfg.Isolate {
		res.ers = ers
		return res, nil
	}
	state, compileErrs := compiler.StmtsToGraph(compiler.NewContext(l), stmts, h.cfg.Isolate)
	res.ers = append(ers, compileErrs.WithoutKnockOns()...)
	if state == nil {
		return res, nil
	}
	if h.cfg.Viewport != nil {
		state.WithViewport(graph.Viewport(*h.cfg.Viewport))
	}
	switch h.cfg.Seed.Mode {
	case "", "none":
	case "source":
		state.WithSeed(source)
	case "random":
		state.WithRandomSeed()
	default:
		return nil, errors.Errorf("unknown seed mode %q", h.cfg.Seed.Mode)
	}
	res.state = state
	return res, nil
}

// The loader imports are resolved with: files under the root or, if asked, modules stored in
// the database. Either way parsed modules are cached for the duration of the command, since a
// build of many files will tend to import the same modules over and over.
func (h *Hub) importLoader(ctx context.Context, opts *options) (compiler.Loader, func(), error) {
	if !opts.dbModules {
		l, e := h.fileLoader()
		return l, func() {}, e
	}
	db, e := h.openDatabase(ctx)
	if e != nil {
		return nil, nil, e
	}
	l, e := loader.NewCachingLoader(database.NewSQLLoader(db, h.sources), loader.DEFAULT_CACHE_SIZE)
	if e != nil {
		db.Close()
		return nil, nil, e
	}
	return l, func() { db.Close() }, nil
}

func (h *Hub) openDatabase(ctx context.Context) (*database.DB, error) {
	if h.cfg.Database.Driver == "" {
		return nil, errors.Errorf("no database has been configured: add a [database] section to %s. %s",
			settings.CONFIG_FILE, strings.TrimSpace(database.GetDriverOptions()))
	}
	db, e := database.GetdB(ctx, h.cfg.Database)
	if e != nil {
		return nil, e
	}
	if e := db.Migrate(ctx); e != nil {
		db.Close()
		return nil, e
	}
	return db, nil
}

// compileAll compiles the files concurrently and returns the results in the order the files
// were given.
func (h *Hub) compileAll(opts *options, files []string, write bool) ([]*result, error) {
	ctx := context.Background()
	l, done, e := h.importLoader(ctx, opts)
	if e != nil {
		return nil, e
	}
	defer done()
	results := make([]*result, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, filename := range files {
		g.Go(func() error {
			res, e := h.compileFile(l, filename)
			if e != nil {
				return e
			}
			if write && res.state != nil && len(res.ers) == 0 {
				if res.data, e = res.state.Marshal(); e != nil {
					return e
				}
			}
			results[i] = res
			return nil
		})
	}
	if e := g.Wait(); e != nil {
		return nil, e
	}
	return results, nil
}

func (h *Hub) build(opts *options, files []string) int {
	if len(files) == 0 {
		h.WriteError("'build' needs at least one file.")
		return FAILURE
	}
	start := time.Now()
	results, e := h.compileAll(opts, files, true)
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	code, size, expressions := OK, 0, 0
	for _, res := range results {
		if len(res.ers) > 0 || res.state == nil {
			h.reportErrors(res.ers)
			code = COMPILE_ERRORS
			continue
		}
		size = size + len(res.data)
		expressions = expressions + len(res.state.Expressions.List)
		if h.cfg.OutDir == "" {
			h.out.Write(res.data)
			h.WriteString("\n")
			continue
		}
		if e := h.writeState(res); e != nil {
			h.WriteError(e.Error())
			return FAILURE
		}
	}
	if h.cfg.OutDir != "" {
		logrus.WithFields(logrus.Fields{
			"files":       len(files),
			"expressions": humanize.Comma(int64(expressions)),
			"size":        humanize.Bytes(uint64(size)),
			"time":        time.Since(start).Round(time.Millisecond).String(),
		}).Info("build finished")
		h.WriteString(text.GOOD_BULLET + "Built " + humanize.Comma(int64(len(files))) + " file(s), " +
			humanize.Comma(int64(expressions)) + " expression(s), " + humanize.Bytes(uint64(size)) + "\n")
	}
	return code
}

func (h *Hub) writeState(res *result) error {
	if e := os.MkdirAll(h.cfg.OutDir, 0o755); e != nil {
		return errors.Wrapf(e, "creating %s", h.cfg.OutDir)
	}
	name := "stdin"
	if res.filename != "-" {
		name = text.FlattenedFilename(res.filename)
	}
	path := filepath.Join(h.cfg.OutDir, name+".json")
	if e := os.WriteFile(path, res.data, 0o644); e != nil {
		return errors.Wrapf(e, "writing %s", path)
	}
	logrus.WithFields(logrus.Fields{"file": res.filename, "output": path}).Debug("wrote graph state")
	return nil
}

func (h *Hub) check(opts *options, files []string) int {
	if len(files) == 0 {
		h.WriteError("'check' needs at least one file.")
		return FAILURE
	}
	results, e := h.compileAll(opts, files, false)
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	code := OK
	for _, res := range results {
		if len(res.ers) > 0 {
			h.reportErrors(res.ers)
			code = COMPILE_ERRORS
			continue
		}
		h.WriteString(text.GOOD_BULLET + res.filename + ": " + text.OK + "\n")
	}
	return code
}
