package hub

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"desmosc/source/database"
	"desmosc/source/loader"
	"desmosc/source/lsp"
	"desmosc/source/repl"
	"desmosc/source/text"
)

func (h *Hub) publish(opts *options, args []string) int {
	if len(args) != 2 {
		h.WriteError("'publish' needs a file and a name to publish it under.")
		return FAILURE
	}
	results, e := h.compileAll(opts, args[:1], false)
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	res := results[0]
	if len(res.ers) > 0 || res.state == nil {
		h.reportErrors(res.ers)
		return COMPILE_ERRORS
	}
	ctx := context.Background()
	db, e := h.openDatabase(ctx)
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	defer db.Close()
	if e := db.Publish(ctx, args[1], res.state); e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	h.WriteString(text.GOOD_BULLET + "Published " + text.Emph(args[1]) + "\n")
	return OK
}

func (h *Hub) fetch(opts *options, args []string) int {
	ctx := context.Background()
	db, e := h.openDatabase(ctx)
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	defer db.Close()
	if len(args) == 0 {
		names, e := db.Graphs(ctx)
		if e != nil {
			h.WriteError(e.Error())
			return FAILURE
		}
		for _, name := range names {
			h.WriteString(text.BULLET + name + "\n")
		}
		return OK
	}
	published, e := db.Fetch(ctx, args[0])
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	data, e := published.State.Marshal()
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	h.out.Write(data)
	h.WriteString("\n")
	io.WriteString(h.errOut, text.BULLET+"Published "+humanize.Time(published.Created)+"\n")
	return OK
}

func (h *Hub) store(opts *options, args []string) int {
	if len(args) < 1 || len(args) > 2 {
		h.WriteError("'store' needs a file, and optionally the path to store it under.")
		return FAILURE
	}
	source, e := readSource(h.in, args[0])
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	path := strings.TrimSuffix(args[0], loader.EXTENSION)
	if len(args) == 2 {
		path = args[1]
	}
	if _, ok := loader.Parse(h.sources, path, source); !ok {
		h.WriteError("'" + args[0] + "' has syntax errors, so it wasn't stored.")
		return COMPILE_ERRORS
	}
	ctx := context.Background()
	db, e := h.openDatabase(ctx)
	if e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	defer db.Close()
	start := time.Now()
	if e := database.NewSQLLoader(db, h.sources).PutModule(ctx, path, source); e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	h.WriteString(text.GOOD_BULLET + "Stored " + text.Emph(path) + " (" + humanize.Bytes(uint64(len(source))) +
		" in " + time.Since(start).Round(time.Millisecond).String() + ")\n")
	return OK
}

func (h *Hub) runLSP(opts *options, args []string) int {
	server := lsp.NewServer(h.cfg.Root, h.out)
	if e := server.Serve(h.in); e != nil {
		h.WriteError(e.Error())
		return FAILURE
	}
	if !server.CleanExit() {
		return COMPILE_ERRORS
	}
	return OK
}

func (h *Hub) runREPL(opts *options, args []string) int {
	var s *repl.Session
	if opts.dbModules {
		ctx := context.Background()
		db, e := h.openDatabase(ctx)
		if e != nil {
			h.WriteError(e.Error())
			return FAILURE
		}
		defer db.Close()
		s = repl.NewSession(database.NewSQLLoader(db, h.sources), h.sources, h.out)
	} else {
		s = repl.NewSession(loader.NewFileLoader(h.cfg.Root, h.sources), h.sources, h.out)
	}
	if f, ok := h.in.(*os.File); ok && f == os.Stdin {
		h.WriteString(text.Logo())
	}
	repl.Start(s, h.in)
	return OK
}
