package compiler_test

import (
	"strings"
	"testing"

	"github.com/kr/pretty"

	"desmosc/source/ast"
	"desmosc/source/compiler"
	"desmosc/source/err"
	"desmosc/source/parser"
	"desmosc/source/test_helper"
	"desmosc/source/types"
)

// Modules for the import tests.
type mapLoader map[string]string

func (m mapLoader) Load(path string) (ast.Statements, bool) {
	source, ok := m[path]
	if !ok {
		return nil, false
	}
	return m.ParseSource(source)
}

func (m mapLoader) ParseSource(source string) (ast.Statements, bool) {
	stmts, errs := parser.ParseProgram(1, source)
	return stmts, len(errs) == 0
}

var modules = mapLoader{
	"geo":    "o = 0\nd(a) = a * 2\ninline k = 5",
	"broken": "a = 1\nb = nope",
	"nested": "import \"geo\" as inner",
	"loop":   "x = 1\ninclude \"pool\"",
	"pool":   "include \"loop\"",
	"twice":  "import \"geo\" as a\nimport \"geo\" as b\nq = a.k + b.k",
}

func TestLowering(t *testing.T) {
	tests := []test_helper.TestItem{
		{Input: `2 + 3 * 4`, Want: `2+3\cdot 4`},
		{Input: `(1 + 2) / 3`, Want: `\frac{1+2}{3}`},
		{Input: `-(1 + 2)`, Want: `-\left(1+2\right)`},
		{Input: `3!`, Want: `3!`},
		{Input: `7 % 2`, Want: `\operatorname{mod}\left(7,2\right)`},
		{Input: `[1, 2, 3]`, Want: `\left[1,2,3\right]`},
		{Input: `[1 .. 10]`, Want: `\left[1...10\right]`},
		{Input: `[1 .. 10 by 2]`, Want: `\left[1,1+2...10\right]`},
		{Input: `[4, 5, 6][2]`, Want: `\left[4,5,6\right]\left[2\right]`},
		{Input: `sin(1)`, Want: `\sin\left(1\right)`},
		{Input: `sin([1, 2])`, Want: `\sin\left(\left[1,2\right]\right)`},
		{Input: `total([1, 2])`, Want: `\operatorname{total}\left(\left[1,2\right]\right)`},
		{Input: `sqrt(2)`, Want: `\sqrt{2}`},
		{Input: `log_2(8)`, Want: `\log_{2}\left(8\right)`},
		{Input: `lcm(4, 6, 8)`, Want: `\operatorname{lcm}\left(4,6,8\right)`},
		{Input: `@1 + 1`, Want: `1+1`},
		{Input: `{1 < 2: 1, 2 >= 3: 2, 0}`, Want: `\left\{1<2:1,2\ge 3:2,0\right\}`},
		{Input: `raw Number "\pi" * 2`, Want: `\pi\cdot 2`},
		{Input: "x = 3\ny = [1, 2, x]\nz = y + 1", Want: "x=3\ny=\\left[1,2,x\\right]\nz=y+1"},
		{Input: "f(a) = a + 1\nf(5)", Want: "f\\left(a\\right)=a+1\nf\\left(5\\right)"},
		{Input: "sin(x) = x\nsin(2)", Want: "s_{in}\\left(x\\right)=x\ns_{in}\\left(2\\right)"},
		{Input: "inline k = 2 + 1\nk * 2", Want: `\left(2+1\right)\cdot 2`},
		{Input: "inline sq(a) = a * a\nsq(3)", Want: `3\cdot 3`},
		{Input: "inline sq(a) = a * a\nsq([1, 2])", Want: `\left[1,2\right]\cdot \left[1,2\right]`},
		{Input: "x = 1\ninline twice(a) = a + x\ntwice(2)", Want: "x=1\n2+x"},
		{Input: "a = 1\ninline a = 2\na", Want: "a=1\n2"},
		{Input: "inline f(a): Number = a + 1\nf(2)", Want: `2+1`},
		{Input: "y = 1\ninline g(a) = a + y\nf(b) = g(b)", Want: "y=1\nf\\left(b\\right)=b+y"},
		{Input: `raw Number "1+2" * 3`, Want: `\left(1+2\right)\cdot 3`},
	}
	test_helper.RunTest(t, tests, compileSource)
}

func TestTypes(t *testing.T) {
	tests := []test_helper.TestItem{
		{Input: "x = 3\ny = [1, 2, x]\nz = y + 1", Want: "number, list, list"},
		{Input: "f(a) = a + 1\nf(5)\nf([1, 2, 3])", Want: "number, number, mapped list"},
		{Input: `sin([1, 2])`, Want: "mapped list"},
		{Input: `@1`, Want: "mapped list"},
		{Input: `@[1]`, Want: "list"},
		{Input: `@1 + 1`, Want: "list"},
		{Input: `-[1, 2]`, Want: "list"},
		{Input: `[1, 2]!`, Want: "list"},
		{Input: `[1, 2][1]`, Want: "number"},
		{Input: `[1 .. 3]`, Want: "list"},
		{Input: `{1 < 2: 1, 2 < 3: 2, 3 < 4: [1], 4}`, Want: "list"},
		{Input: `{1 < 2: 1, 2}`, Want: "number"},
		{Input: `raw List "[1]"`, Want: "list"},
		{Input: `sort([2, 1])`, Want: "list"},
		{Input: `quantile([1, 2], [0.5, 0.9])`, Want: "mapped list"},
		{Input: "y = sin([1, 2])\ny", Want: "mapped list, list"},
		{Input: "h(L: List) = sin(L)\nh([1])", Want: "list, list"},
		{Input: "inline sq(a) = a * a\nsq(2)\nsq([2])\nsq(@2)", Want: "number, list, list"},
	}
	test_helper.RunTest(t, tests, compileTypes)
}

func TestCompileErrors(t *testing.T) {
	tests := []test_helper.TestItem{
		{Input: `q + 1`, Want: err.UNKNOWN_VARIABLE},
		{Input: `x = x + 1`, Want: err.UNKNOWN_VARIABLE},
		{Input: `foo(1)`, Want: err.UNKNOWN_FUNCTION},
		{Input: `f(a) = f(a)`, Want: err.UNKNOWN_FUNCTION},
		{Input: `sin(1, 2)`, Want: err.WRONG_ARG_COUNT},
		{Input: "inline sq(a) = a * a\nsq(1, 2)", Want: err.WRONG_ARG_COUNT},
		{Input: `total(1)`, Want: err.TYPE_MISMATCH_ARG},
		{Input: "x = 1\ntotal(@x)", Want: err.TYPE_MISMATCH_ARG},
		{Input: "inline first(L: List) = L[1]\nfirst(5)", Want: err.TYPE_MISMATCH_ARG},
		{Input: "x = 1\nx[1]", Want: err.TYPE_MISMATCH_LIST},
		{Input: `[1, 2][[1]]`, Want: err.TYPE_MISMATCH_INDEX},
		{Input: `[1 .. [2]]`, Want: err.TYPE_MISMATCH_RANGE},
		{Input: `[1 .. 3 by [1]]`, Want: err.TYPE_MISMATCH_RANGE},
		{Input: `{[1] < 2: 1, 0}`, Want: err.TYPE_MISMATCH_COND},
		{Input: `f(a): List = a`, Want: err.INVALID_RETURN_TYPE},
		{Input: `f(a): Number = @a`, Want: err.INVALID_RETURN_TYPE},
		{Input: `g(L: List): Number = sin(L)`, Want: err.INVALID_RETURN_TYPE},
		{Input: `m.x`, Want: err.UNKNOWN_MODULE},
		{Input: `m.f(1)`, Want: err.UNKNOWN_MODULE},
		{Input: `import "geo" as g`, Want: err.NO_LOADER},
		{Input: `1 +`, Want: err.POISONED},
		{Input: `x = (1 + )`, Want: err.POISONED},
		{Input: `1 / 0`, Want: ""},
		{Input: `7 % 0`, Want: ""},
		{Input: "ab = 1\na_b = [1, 2]", Want: err.NAME_CLASH},
		{Input: "x = 1\nx = [1]", Want: err.REDEFINED},
		{Input: "f(a) = a\nf = 2", Want: err.REDEFINED},
		{Input: "inline f(a): Number = a + 1\nz = f([1, 2])", Want: err.INVALID_RETURN_TYPE},
		{Input: "y = 1\ninline g(a) = a + y\nf(y) = g(2)", Want: err.INLINE_CAPTURE},
	}
	test_helper.RunTest(t, tests, compileErrorID)
}

func TestModules(t *testing.T) {
	tests := []test_helper.TestItem{
		{Input: "import \"geo\" as g\ng.d(g.o) + g.k", Want: "g_{o}=0\ng_{d}\\left(a\\right)=a\\cdot 2\ng_{d}\\left(g_{o}\\right)+5"},
		{Input: "include \"geo\"\nd(o) + k", Want: "o=0\nd\\left(a\\right)=a\\cdot 2\nd\\left(o\\right)+5"},
		{Input: "import \"geo\" as g\ng.missing", Want: err.UNKNOWN_VARIABLE},
		{Input: "import \"geo\" as g\ng.nothing(1)", Want: err.UNKNOWN_FUNCTION},
		{Input: "import \"geo\" as g\ng.sin(1)", Want: err.UNKNOWN_FUNCTION},
		{Input: "import \"nested\" as n\nn.inner.o", Want: err.INVALID_MODULE_PATH},
		{Input: "import \"nested\" as n\nn.inner.d(1)", Want: err.INVALID_MODULE_PATH},
		{Input: "import \"nowhere\" as n", Want: err.UNRESOLVED_IMPORT},
		{Input: "import \"broken\" as b", Want: err.UNKNOWN_VARIABLE},
		{Input: "include \"broken\"\na", Want: err.UNKNOWN_VARIABLE},
		{Input: "include \"loop\"", Want: err.IMPORT_CYCLE},
		{Input: "import \"geo\" as g\ngo = [1]", Want: err.NAME_CLASH},
		{Input: "go = [1]\nimport \"geo\" as g", Want: err.NAME_CLASH},
		{Input: "import \"geo\" as g\nimport \"geo\" as h\nh.o + g.o", Want: "g_{o}=0\ng_{d}\\left(a\\right)=a\\cdot 2\nh_{o}=0\nh_{d}\\left(a\\right)=a\\cdot 2\nh_{o}+g_{o}"},
		{Input: "import \"twice\" as t\nt.q", Want: "t_{ao}=0\nt_{ad}\\left(a\\right)=a\\cdot 2\nt_{bo}=0\nt_{bd}\\left(a\\right)=a\\cdot 2\nt_{q}=5+5\nt_{q}"},
	}
	test_helper.RunTest(t, tests, func(s string) (string, error) {
		return compileWith(compiler.NewContext(modules), s)
	})
}

func TestStdlib(t *testing.T) {
	ctx := compiler.NewContext(nil)
	got, e := compileWith(ctx, "include \"std/stats\"\nspread([1, 2, 3])")
	if e != nil {
		t.Fatalf("couldn't include the standard library: %v", e)
	}
	if !strings.HasSuffix(got, `s_{pread}\left(\left[1,2,3\right]\right)`) {
		t.Fatalf("unexpected output %s", got)
	}
	got, e = compileWith(compiler.NewContext(nil), "import \"std/geometry\" as geo\ngeo.dist(0, 0, 3, 4)")
	if e != nil {
		t.Fatalf("couldn't import the standard library: %v", e)
	}
	if !strings.HasSuffix(got, `g_{eodist}\left(0,0,3,4\right)`) {
		t.Fatalf("unexpected output %s", got)
	}
	if got, _ := compileWith(compiler.NewContext(nil), `include "std/nothing"`); got != err.UNRESOLVED_IMPORT {
		t.Fatalf("expected an unresolved import, got %s", got)
	}
	if len(compiler.StdlibModules()) != 2 {
		t.Fatalf("expected two standard modules, got %v", compiler.StdlibModules())
	}
}

func TestMappedCallProvenance(t *testing.T) {
	ctx := compiler.NewContext(nil)
	_, typed, e := ctx.Lower(parseExpression(t, "sin([1, 2])"))
	if e != nil {
		t.Fatal(e)
	}
	info, ok := typed.Info.(types.MappedCall)
	if !ok || typed.Typ != types.MappedList {
		t.Fatalf("expected a mapped call, got %# v", pretty.Formatter(typed))
	}
	if info.Func != "sin" {
		t.Fatalf("wrong function %s", info.Func)
	}
	if _, ok := info.MappedArg.(types.Literal); !ok {
		t.Fatalf("the mapped argument should be the list literal, got %# v", pretty.Formatter(info.MappedArg))
	}
}

func TestBinOpProvenance(t *testing.T) {
	ctx := compiler.NewContext(nil)
	source := "1 + [2, 3]"
	_, typed, e := ctx.Lower(parseExpression(t, source))
	if e != nil {
		t.Fatal(e)
	}
	if typed.Typ != types.List || typed.Span.Text(source) != "[2, 3]" {
		t.Fatalf("a list sum should point at the list, got %# v", pretty.Formatter(typed))
	}
	_, typed, _ = ctx.Lower(parseExpression(t, "[2, 3][1]"))
	if _, ok := typed.Info.(types.BinOp); !ok {
		t.Fatalf("indexing should have binop provenance, got %# v", pretty.Formatter(typed.Info))
	}
}

func TestErrorSpans(t *testing.T) {
	source := "x = 1\ny = 2 + x[1]"
	stmts, _ := parser.ParseProgram(0, source)
	_, errs := compiler.CompileStmts(compiler.NewContext(nil), stmts, false)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
	if errs[0].Span.Text(source) != "x" {
		t.Fatalf("error should point at the thing indexed, got %q", errs[0].Span.Text(source))
	}
	if errs[0].Kind() != err.TypeMismatch {
		t.Fatalf("expected a type mismatch, got %v", errs[0].Kind())
	}
}

func TestIsolation(t *testing.T) {
	source := "x = 1 +\ny = 2\nz = q\nf(a): List = a\nf(1)\nw = y"
	stmts, _ := parser.ParseProgram(0, source)
	outputs, errs := compiler.CompileStmts(compiler.NewContext(nil), stmts, true)
	ids := []string{}
	for _, e := range errs {
		ids = append(ids, e.ErrorId)
	}
	want := []string{err.POISONED, err.UNKNOWN_VARIABLE, err.INVALID_RETURN_TYPE, err.UNKNOWN_FUNCTION}
	if diff := pretty.Diff(ids, want); len(diff) > 0 {
		t.Fatalf("wrong errors: %v", diff)
	}
	if len(errs.WithoutKnockOns()) != 3 {
		t.Fatalf("poisoned statements should be dropped as knock-on errors")
	}
	if got := render(outputs); got != "y=2\nw=y" {
		t.Fatalf("wrong output %q", got)
	}
	outputs, errs = compiler.CompileStmts(compiler.NewContext(nil), stmts, false)
	if len(errs) != 1 || len(outputs) != 0 {
		t.Fatalf("batch compilation should stop at the first error")
	}
}

func TestClone(t *testing.T) {
	ctx := compiler.NewContext(nil)
	if _, e := compileWith(ctx, "x = 1"); e != nil {
		t.Fatal(e)
	}
	clone := ctx.Clone()
	if _, e := compileWith(clone, "y = x + 1"); e != nil {
		t.Fatal(e)
	}
	if got, _ := compileWith(ctx, "y"); got != err.UNKNOWN_VARIABLE {
		t.Fatalf("a clone's definitions leaked into the original: %s", got)
	}
	if got, _ := compileWith(clone, "y"); got != "y" {
		t.Fatalf("the clone lost its own definition: %s", got)
	}
}

func TestSymbols(t *testing.T) {
	ctx := compiler.NewContext(modules)
	if _, e := compileWith(ctx, "x = [1]\ninline k = 2\nf(a) = a\ninline g(a) = a\nimport \"geo\" as geo"); e != nil {
		t.Fatal(e)
	}
	got := []string{}
	for _, s := range ctx.Symbols() {
		got = append(got, s.Name+" "+s.Kind.String())
	}
	want := []string{"f function", "g inline function", "geo module", "k inline value", "x variable"}
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Fatalf("wrong symbols: %v", diff)
	}
	if names := compiler.BuiltinNames(); names[0] != "abs" || len(names) != len(compiler.BUILTINS) {
		t.Fatalf("builtin names should be sorted, got %v", names)
	}
}

func TestStmtsToGraph(t *testing.T) {
	stmts, _ := parser.ParseProgram(0, "x = 1\ninline k = 2\ny = x + k")
	state, errs := compiler.StmtsToGraph(compiler.NewContext(nil), stmts, false)
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	if diff := pretty.Diff(state.Latex(), []string{"x=1", "y=x+2"}); len(diff) > 0 {
		t.Fatalf("wrong graph: %v", diff)
	}
	stmts, _ = parser.ParseProgram(0, "x = q")
	if state, errs := compiler.StmtsToGraph(compiler.NewContext(nil), stmts, false); state != nil || len(errs) != 1 {
		t.Fatal("a program with errors shouldn't make a graph")
	}
}

func parseExpression(t *testing.T, source string) ast.Expression {
	t.Helper()
	stmts, errs := parser.ParseProgram(0, source)
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	return stmts[0].(*ast.ExpressionStatement).Expression
}

func compileWith(ctx *compiler.Context, source string) (string, error) {
	stmts, errs := parser.ParseProgram(0, source)
	outputs, cErrs := compiler.CompileStmts(ctx, stmts, false)
	if len(cErrs) > 0 {
		return cErrs[0].ErrorId, cErrs
	}
	if len(errs) > 0 {
		return errs[0].ErrorId, errs
	}
	return render(outputs), nil
}

func compileSource(source string) (string, error) {
	return compileWith(compiler.NewContext(nil), source)
}

func compileErrorID(source string) (string, error) {
	got, e := compileSource(source)
	if e == nil {
		return "", nil
	}
	return got, e
}

func compileTypes(source string) (string, error) {
	stmts, _ := parser.ParseProgram(0, source)
	outputs, errs := compiler.CompileStmts(compiler.NewContext(nil), stmts, false)
	if len(errs) > 0 {
		return errs[0].ErrorId, errs
	}
	result := []string{}
	for _, out := range outputs {
		result = append(result, out.Typ.String())
	}
	return strings.Join(result, ", "), nil
}

func render(outputs []compiler.TypedLatex) string {
	lines := []string{}
	for _, out := range outputs {
		lines = append(lines, out.String())
	}
	return strings.Join(lines, "\n")
}
