package loader

import (
	"os"
	"path/filepath"
	"testing"

	"desmosc/source/ast"
	"desmosc/source/compiler"
	"desmosc/source/err"
	"desmosc/source/parser"
	"desmosc/source/settings"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, text := range files {
		filename := filepath.Join(root, filepath.FromSlash(name))
		if e := os.MkdirAll(filepath.Dir(filename), 0o755); e != nil {
			t.Fatal(e)
		}
		if e := os.WriteFile(filename, []byte(text), 0o644); e != nil {
			t.Fatal(e)
		}
	}
	return root
}

func compileWith(t *testing.T, l compiler.Loader, source string) ([]compiler.TypedLatex, err.Errors) {
	t.Helper()
	stmts, errs := parser.ParseProgram(0, source)
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	return compiler.CompileStmts(compiler.NewContext(l), stmts, false)
}

func TestFileLoader(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"lib/shapes.des": "import \"lib/consts\" as c\narea(r) = c.half * r ^ 2",
		"lib/consts.des": "half = 0.5",
		"bad.des":        "x = (1 +",
	})
	sources := NewSources()
	fl := NewFileLoader(root, sources)
	outputs, errs := compileWith(t, fl, "import \"lib/shapes\" as s\ns.area(2)")
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	if got := outputs[len(outputs)-1].String(); got != `s_{area}\left(2\right)` {
		t.Fatalf("unexpected output %s", got)
	}
	if path, _, ok := sources.Get(1); !ok || path != "lib/consts" {
		t.Fatalf("nested module should have been registered second, got %q", path)
	}
	if _, ok := fl.Load("nothing/here"); ok {
		t.Fatal("loading a missing file should fail")
	}
	if _, ok := fl.Load("bad"); ok {
		t.Fatal("loading a file with syntax errors should fail")
	}
	if _, ok := fl.Load("../outside"); ok {
		t.Fatal("loading from outside the root should fail")
	}
}

func TestImportCycle(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.des": "include \"b\"\nx = 1",
		"b.des": "include \"a\"\ny = 2",
	})
	_, errs := compileWith(t, NewFileLoader(root, NewSources()), "include \"a\"")
	if len(errs) != 1 || errs[0].ErrorId != err.IMPORT_CYCLE {
		t.Fatalf("expected an import cycle, got %v", errs)
	}
}

func TestLoadLimit(t *testing.T) {
	root := writeFiles(t, map[string]string{"a.des": "x = 1"})
	fl := NewFileLoader(root, NewSources())
	for i := 0; i < settings.MAX_LOADS_PER_PATH; i++ {
		if _, ok := fl.Load("a"); !ok {
			t.Fatalf("load %d failed", i)
		}
	}
	if _, ok := fl.Load("a"); ok {
		t.Fatal("the load count should be exhausted")
	}
	fl.Reset()
	if _, ok := fl.Load("a"); !ok {
		t.Fatal("resetting should allow the file to be loaded again")
	}
}

func TestMemoryLoader(t *testing.T) {
	root := writeFiles(t, map[string]string{"disk.des": "d = 1"})
	ml := NewMemoryLoader(NewSources(), map[string]string{"mem": "m = 2"})
	if _, ok := ml.Load("disk"); ok {
		t.Fatal("a memory loader with no fallback shouldn't find files on disk")
	}
	ml.Fallback = NewFileLoader(root, ml.Sources)
	outputs, errs := compileWith(t, ml, "include \"mem\"\ninclude \"disk\"\nm + d")
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	if got := outputs[2].String(); got != "m+d" {
		t.Fatalf("unexpected output %s", got)
	}
	ml.Set("disk", "d = 3")
	if stmts, _ := ml.Load("disk"); stmts.String() != "d = 3" {
		t.Fatalf("memory should shadow the disk, got %s", stmts.String())
	}
	ml.Delete("mem")
	if _, ok := ml.Load("mem"); ok {
		t.Fatal("deleted module still loads")
	}
}

func TestSources(t *testing.T) {
	sources := NewSources()
	a := sources.Register("a", "x = 1")
	b := sources.Register("b", "y = 2")
	if again := sources.Register("a", "x = 3"); again != a {
		t.Fatalf("registering a path again should keep its ID, got %d then %d", a, again)
	}
	if path, text, _ := sources.Get(a); path != "a" || text != "x = 3" {
		t.Fatalf("expected the new text of a, got %s: %q", path, text)
	}
	if sources.Len() != 2 {
		t.Fatalf("expected two sources, got %d", sources.Len())
	}
	anon := sources.Register("", "z")
	if other := sources.Register("", "z"); other == anon || other == b {
		t.Fatalf("anonymous sources should each get a fresh ID, got %d", other)
	}
	sources.Update(anon, "w")
	if _, text, _ := sources.Get(anon); text != "w" {
		t.Fatalf("update didn't take, got %q", text)
	}
	if _, _, ok := sources.Get(99); ok {
		t.Fatal("an unknown ID shouldn't be found")
	}
}

type countingLoader struct {
	*MemoryLoader
	loads, parses int
}

func (cl *countingLoader) Load(path string) (ast.Statements, bool) {
	cl.loads++
	return cl.MemoryLoader.Load(path)
}

func (cl *countingLoader) ParseSource(source string) (ast.Statements, bool) {
	cl.parses++
	return cl.MemoryLoader.ParseSource(source)
}

func TestCachingLoader(t *testing.T) {
	inner := &countingLoader{MemoryLoader: NewMemoryLoader(NewSources(), map[string]string{"m": "x = 1"})}
	cl, e := NewCachingLoader(inner, DEFAULT_CACHE_SIZE)
	if e != nil {
		t.Fatal(e)
	}
	for i := 0; i < 3; i++ {
		if _, ok := cl.Load("m"); !ok {
			t.Fatal("load failed")
		}
		if _, ok := cl.ParseSource("y = 2"); !ok {
			t.Fatal("parse failed")
		}
	}
	if inner.loads != 1 || inner.parses != 1 {
		t.Fatalf("expected one load and one parse, got %d and %d", inner.loads, inner.parses)
	}
	if _, ok := cl.Load("missing"); ok || cl.Len() != 2 {
		t.Fatal("failures shouldn't be cached")
	}
	cl.Forget("m")
	cl.Load("m")
	if inner.loads != 3 {
		t.Fatalf("a forgotten path should be loaded again, got %d loads", inner.loads)
	}
}
