package err

import (
	"strings"
	"testing"

	"desmosc/source/text"
	"desmosc/source/token"
)

func TestCreatorsExist(t *testing.T) {
	for _, id := range []string{IMPORT_CYCLE, INVALID_MODULE_PATH, INVALID_RETURN_TYPE, NO_LOADER, POISONED,
		TYPE_MISMATCH_ARG, TYPE_MISMATCH_COND, TYPE_MISMATCH_INDEX, TYPE_MISMATCH_LIST, TYPE_MISMATCH_RANGE,
		UNKNOWN_FUNCTION, UNKNOWN_MODULE, UNKNOWN_VARIABLE, UNRESOLVED_IMPORT, WRONG_ARG_COUNT,
		INLINE_CAPTURE, NAME_CLASH, REDEFINED} {
		if _, ok := ErrorCreatorMap[id]; !ok {
			t.Errorf("no creator for %s", id)
		}
	}
}

func TestKinds(t *testing.T) {
	tests := map[string]Kind{
		"lex/char":         Syntax,
		"parse/expected":   Syntax,
		TYPE_MISMATCH_ARG:  TypeMismatch,
		TYPE_MISMATCH_LIST: TypeMismatch,
		UNKNOWN_VARIABLE:   UnknownVariable,
		UNKNOWN_FUNCTION:   UnknownFunction,
		UNKNOWN_MODULE:     UnknownModule,
		WRONG_ARG_COUNT:    WrongArgCount,
		NO_LOADER:          UnresolvedImport,
		IMPORT_CYCLE:       UnresolvedImport,
		POISONED:           Poisoned,
	}
	for id, want := range tests {
		if got := (&Error{ErrorId: id}).Kind(); got != want {
			t.Errorf("%s: got %v, want %v", id, got, want)
		}
	}
}

func TestWithoutKnockOns(t *testing.T) {
	var ers Errors
	ers = Throw(UNKNOWN_VARIABLE, ers, token.NewSpan(0, 0, 1), "q")
	ers = Throw(POISONED, ers, token.NewSpan(0, 2, 3))
	ers = Throw(UNKNOWN_VARIABLE, ers, token.NewSpan(0, 4, 5), "r")
	got := ers.WithoutKnockOns()
	if len(got) != 2 || got[0].Args[0] != "q" || got[1].Args[0] != "r" {
		t.Fatalf("unexpected errors %v", got)
	}
	if ers.Error() != "unknown identifier 'q' (and 2 more)" {
		t.Errorf("unexpected message %q", ers.Error())
	}
}

func TestNameClash(t *testing.T) {
	e := CreateErr(NAME_CLASH, token.NewSpan(0, 0, 3), "a_b", "ab", "a_{b}")
	if e.Message != "'a_b' would be written a_{b}, which is already the name of 'ab'" {
		t.Errorf("unexpected message %q", e.Message)
	}
	if e.Kind() != Other {
		t.Errorf("a clash should be reported as %v, got %v", Other, e.Kind())
	}
}

func TestExplain(t *testing.T) {
	ers := Throw(IMPORT_CYCLE, nil, token.NewSpan(0, 0, 1), "loop")
	if !strings.Contains(ers.Explain(0), "circle") {
		t.Errorf("unexpected explanation %q", ers.Explain(0))
	}
	if ers.Explain(1) != "there is no error number 1" {
		t.Errorf("unexpected explanation %q", ers.Explain(1))
	}
}

func TestGetList(t *testing.T) {
	text.Plain()
	source := "a = 1\ny = a + q"
	ers := Throw(UNKNOWN_VARIABLE, nil, token.NewSpan(0, 14, 15), "q")
	list := GetList(ers, source, "main.des")
	if !strings.Contains(list, "[0]") || !strings.Contains(list, "at line 2:9 of 'main.des'") {
		t.Fatalf("unexpected list\n%s", list)
	}
	if !strings.Contains(list, "y = a + q") || !strings.Contains(list, "^") {
		t.Fatalf("the list should underline the source\n%s", list)
	}
	other := GetListFrom(ers, func(token.FileID) (string, string, bool) { return "", "", false })
	if !strings.Contains(other, "in REPL input") {
		t.Fatalf("unexpected list\n%s", other)
	}
}
