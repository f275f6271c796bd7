package lsp

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"pkg.nimblebun.works/go-lsp"

	"desmosc/source/token"
)

type session struct {
	t    *testing.T
	in   bytes.Buffer
	next int
}

func (s *session) request(method string, params any) {
	s.next++
	s.write(map[string]any{"jsonrpc": "2.0", "id": s.next, "method": method, "params": params})
}

func (s *session) notify(method string, params any) {
	s.write(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

func (s *session) write(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.t.Fatal(err)
	}
	if err := writeMessage(&s.in, data); err != nil {
		s.t.Fatal(err)
	}
}

type received struct {
	Id     *int            `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// run feeds the session to a fresh server and returns everything the server sent back.
func (s *session) run(root string) []received {
	var out bytes.Buffer
	server := NewServer(root, &out)
	if err := server.Serve(&s.in); err != nil {
		s.t.Fatal(err)
	}
	result := []received{}
	r := bufio.NewReader(&out)
	for {
		data, err := readMessage(r)
		if err == io.EOF {
			return result
		}
		if err != nil {
			s.t.Fatal(err)
		}
		var msg received
		if err := json.Unmarshal(data, &msg); err != nil {
			s.t.Fatal(err)
		}
		result = append(result, msg)
	}
}

func diagnosticsIn(t *testing.T, msgs []received) [][]lsp.Diagnostic {
	t.Helper()
	result := [][]lsp.Diagnostic{}
	for _, msg := range msgs {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params lsp.PublishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			t.Fatal(err)
		}
		result = append(result, params.Diagnostics)
	}
	return result
}

func newSession(t *testing.T, root string) *session {
	s := &session{t: t}
	s.request("initialize", map[string]any{"rootUri": "file://" + filepath.ToSlash(root)})
	s.notify("initialized", map[string]any{})
	return s
}

func openDoc(uri, text string) map[string]any {
	return map[string]any{"textDocument": map[string]any{"uri": uri, "languageId": "desmos", "version": 1, "text": text}}
}

func TestFraming(t *testing.T) {
	var buf bytes.Buffer
	writeMessage(&buf, []byte(`{"a":1}`))
	writeMessage(&buf, []byte(`{"b":2}`))
	if !strings.HasPrefix(buf.String(), "Content-Length: 7\r\n\r\n{\"a\":1}") {
		t.Fatalf("unexpected framing %q", buf.String())
	}
	r := bufio.NewReader(&buf)
	for _, want := range []string{`{"a":1}`, `{"b":2}`} {
		got, err := readMessage(r)
		if err != nil || string(got) != want {
			t.Fatalf("got %q, %v, want %q", got, err, want)
		}
	}
	if _, err := readMessage(r); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	if _, err := readMessage(bufio.NewReader(strings.NewReader("Content-Type: x\r\n\r\n{}"))); err == nil {
		t.Fatal("expected an error for a message with no length")
	}
}

func TestMethodNames(t *testing.T) {
	tests := map[string]string{
		"initialize":              "Initialize",
		"textDocument/didOpen":    "TextDocument_didOpen",
		"$/cancelRequest":         "S_cancelRequest",
		"textDocument/completion": "TextDocument_completion",
	}
	for method, want := range tests {
		if got := methodName(method); got != want {
			t.Errorf("%s: got %s, want %s", method, got, want)
		}
	}
}

func TestLifecycle(t *testing.T) {
	s := &session{t: t}
	s.request("textDocument/completion", map[string]any{})
	s.request("initialize", map[string]any{})
	s.request("no/suchMethod", map[string]any{})
	s.notify("$/cancelRequest", map[string]any{"id": 1})
	s.request("shutdown", nil)
	s.request("textDocument/completion", map[string]any{})
	s.notify("exit", nil)
	s.request("initialize", map[string]any{})
	msgs := s.run(t.TempDir())
	if len(msgs) != 5 {
		t.Fatalf("expected five responses, got %d", len(msgs))
	}
	if msgs[0].Error == nil || msgs[0].Error.Code != rpcServerNotInitialized {
		t.Errorf("a request before initialization should fail, got %+v", msgs[0])
	}
	var init initializeResult
	if err := json.Unmarshal(msgs[1].Result, &init); err != nil || init.Capabilities.TextDocumentSync != syncFull {
		t.Errorf("bad initialize result %s", msgs[1].Result)
	}
	if msgs[2].Error == nil || msgs[2].Error.Code != rpcMethodNotFound {
		t.Errorf("expected method not found, got %+v", msgs[2])
	}
	if msgs[3].Error != nil || *msgs[3].Id != 4 {
		t.Errorf("shutdown should succeed, got %+v", msgs[3])
	}
	if msgs[4].Error == nil || msgs[4].Error.Code != rpcInvalidRequest {
		t.Errorf("a request after shutdown should fail, got %+v", msgs[4])
	}
}

func TestDiagnostics(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "broken.des"), []byte("b = nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	uri := "file://" + filepath.ToSlash(filepath.Join(root, "main.des"))
	s := newSession(t, root)
	s.notify("textDocument/didOpen", openDoc(uri, "a = 1\ny = a + q\nw = 1 +"))
	s.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": 2},
		"contentChanges": []map[string]any{{"text": "a = 1\ninclude \"broken\""}},
	})
	s.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": 3},
		"contentChanges": []map[string]any{{"text": "a = 1"}},
	})
	s.notify("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": uri}})
	diags := diagnosticsIn(t, s.run(root))
	if len(diags) != 4 {
		t.Fatalf("expected four sets of diagnostics, got %d", len(diags))
	}
	// The last line doesn't parse, and so also fails to compile, but only the syntax error is
	// reported for it.
	byLine := map[int][]lsp.Diagnostic{}
	for _, d := range diags[0] {
		byLine[d.Range.Start.Line] = append(byLine[d.Range.Start.Line], d)
	}
	if len(byLine[0]) != 0 || len(byLine[1]) != 1 || len(byLine[2]) == 0 {
		t.Fatalf("unexpected diagnostics %+v", diags[0])
	}
	if r := byLine[1][0].Range; r.Start.Character != 8 || r.End.Line != 1 || r.End.Character != 9 {
		t.Errorf("unknown identifier reported at %+v", r)
	}
	if byLine[1][0].Severity != lsp.DSError || !strings.Contains(byLine[1][0].Message, "q") {
		t.Errorf("unexpected diagnostic %+v", byLine[1][0])
	}
	// An error in an imported file is reported at the import.
	if len(diags[1]) != 1 || diags[1][0].Range.Start.Line != 1 || diags[1][0].Range.Start.Character != 0 {
		t.Errorf("unexpected diagnostics for a broken include: %+v", diags[1])
	}
	if len(diags[2]) != 0 || len(diags[3]) != 0 {
		t.Errorf("expected diagnostics to be cleared, got %+v and %+v", diags[2], diags[3])
	}
}

func TestOpenDocumentsShadowDisk(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "lib.des"), []byte("k = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newSession(t, root)
	s.notify("textDocument/didOpen", openDoc("file://"+filepath.ToSlash(filepath.Join(root, "lib.des")), "j = 2"))
	s.notify("textDocument/didOpen", openDoc("file://"+filepath.ToSlash(filepath.Join(root, "main.des")), "include \"lib\"\nj + 1"))
	diags := diagnosticsIn(t, s.run(root))
	if len(diags) != 2 || len(diags[1]) != 0 {
		t.Fatalf("the open version of lib should have been used, got %+v", diags)
	}
}

func TestCompletion(t *testing.T) {
	uri := "file:///nowhere/main.des"
	s := newSession(t, t.TempDir())
	s.notify("textDocument/didOpen", openDoc(uri, "import \"std/stats\" as st\nk = 1\ninline half = 0.5\nsq(x) = x ^ 2"))
	s.request("textDocument/completion", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     map[string]any{"line": 3, "character": 0},
	})
	msgs := s.run(t.TempDir())
	var items []completionItem
	if err := json.Unmarshal(msgs[len(msgs)-1].Result, &items); err != nil {
		t.Fatal(err)
	}
	kinds := map[string]completionItemKind{}
	for _, item := range items {
		kinds[item.Label] = item.Kind
	}
	want := map[string]completionItemKind{"st": ckModule, "k": ckVariable, "half": ckConstant, "sq": ckFunction, "sin": ckFunction}
	for label, kind := range want {
		if kinds[label] != kind {
			t.Errorf("%s: got kind %d, want %d", label, kinds[label], kind)
		}
	}
}

func TestEditsReuseSources(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "lib.des"), []byte("k = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	server := NewServer(root, &out)
	uri := lsp.DocumentURI("file://" + filepath.ToSlash(filepath.Join(root, "main.des")))
	open := &didOpenParams{TextDocument: lsp.TextDocumentItem{URI: uri, Text: "import \"lib\" as l\ny = l.k"}}
	if err := server.TextDocument_didOpen(open); err != nil {
		t.Fatal(err)
	}
	before := server.sources.Len()
	for _, text := range []string{"import \"lib\" as l\ny = l.k + 1", "y = 2", "import \"lib\" as m\ny = m.k"} {
		change := &didChangeParams{
			TextDocument:   textDocumentIdentifier{URI: uri},
			ContentChanges: []contentChange{{Text: text}},
		}
		if err := server.TextDocument_didChange(change); err != nil {
			t.Fatal(err)
		}
	}
	if got := server.sources.Len(); got != before {
		t.Fatalf("edits should replace the sources they came from, went from %d to %d", before, got)
	}
	if _, text, _ := server.sources.Get(server.documents[uri].file); text != "import \"lib\" as m\ny = m.k" {
		t.Fatalf("the document's source should be its latest text, got %q", text)
	}
}

func TestUTF16Columns(t *testing.T) {
	source := "// 𝕏é\nab 𝕏 q"
	q := strings.Index(source, "q")
	r := spanToRange(source, token.Span{Start: q, End: q + 1})
	if r.Start.Line != 1 || r.Start.Character != 6 || r.End.Character != 7 {
		t.Fatalf("the astral character should count as two columns, got %+v", r)
	}
	e := strings.Index(source, "é")
	if p := lspPosition(source, e); p.Line != 0 || p.Character != 5 {
		t.Fatalf("expected 0:5, got %+v", p)
	}
}
