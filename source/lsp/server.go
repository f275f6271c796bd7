package lsp

import (
	"bufio"
	"io"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"pkg.nimblebun.works/go-lsp"

	"desmosc/source/compiler"
	"desmosc/source/loader"
	"desmosc/source/text"
	"desmosc/source/token"
)

type document struct {
	uri  lsp.DocumentURI
	path string
	text string
	file token.FileID
	ctx  *compiler.Context
}

// Server is a language server speaking JSON-RPC over a pair of streams. Requests are handled
// one at a time, in the order they arrive.
//
// Each method of the protocol is handled by the exported method whose name is got from the
// protocol's by capitalizing it and replacing '/' with '_' and '$' with 'S'.
type Server struct {
	root        string
	sources     *loader.Sources
	disk        *loader.FileLoader
	files       *loader.MemoryLoader
	documents   map[lsp.DocumentURI]*document
	initialized bool
	shutdown    bool
	exited      bool

	mu  sync.Mutex
	out io.Writer
}

func NewServer(root string, out io.Writer) *Server {
	text.Plain()
	s := &Server{
		sources:   loader.NewSources(),
		documents: map[lsp.DocumentURI]*document{},
		out:       out,
	}
	s.setRoot(root)
	return s
}

func (s *Server) setRoot(root string) {
	s.root = root
	s.disk = loader.NewFileLoader(root, s.sources)
	s.files = loader.NewMemoryLoader(s.sources, nil)
	s.files.Fallback = s.disk
}

// Serve reads and handles messages until the client sends 'exit' or closes the stream.
func (s *Server) Serve(in io.Reader) error {
	r := bufio.NewReader(in)
	for !s.exited {
		msg, err := readMessage(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.handleMessage(msg); err != nil {
			logrus.WithError(err).Warn("language server couldn't handle message")
		}
	}
	return nil
}

func (s *Server) handleMessage(msg []byte) error {
	var call rpcCall
	if err := json.Unmarshal(msg, &call); err != nil {
		s.respond(rpcResponse{Jsonrpc: "2.0", Error: &rpcError{rpcParseError, err.Error()}})
		return errors.Wrap(err, "decoding message")
	}
	logrus.WithField("method", call.Method).Debug("<-")
	isRequest := call.Id != nil
	response := rpcResponse{Jsonrpc: "2.0", Id: call.Id, Result: []byte("null")}

	switch {
	case s.shutdown && call.Method != "exit":
		response.Error = &rpcError{rpcInvalidRequest, "the server has been shut down"}
	case !s.initialized && call.Method != "initialize" && call.Method != "exit":
		response.Error = &rpcError{rpcServerNotInitialized, "the server hasn't been initialized"}
	default:
		fn := reflect.ValueOf(s).MethodByName(methodName(call.Method))
		if !fn.IsValid() {
			response.Error = &rpcError{rpcMethodNotFound, "method " + call.Method + " not implemented"}
			break
		}
		param := reflect.New(fn.Type().In(0).Elem())
		if len(call.Params) > 0 && string(call.Params) != "null" {
			if err := json.Unmarshal(call.Params, param.Interface()); err != nil {
				response.Error = &rpcError{rpcInvalidParams, err.Error()}
				break
			}
		}
		results := fn.Call([]reflect.Value{param})
		if e, _ := results[len(results)-1].Interface().(error); e != nil {
			response.Error = &rpcError{rpcInternalError, e.Error()}
			break
		}
		if len(results) == 2 {
			result, err := json.Marshal(results[0].Interface())
			if err != nil {
				response.Error = &rpcError{rpcInternalError, err.Error()}
				break
			}
			response.Result = result
		}
	}
	if isRequest {
		if response.Error != nil {
			response.Result = nil
		}
		s.respond(response)
	}
	return nil
}

func methodName(method string) string {
	name := strings.ReplaceAll(method, "$", "S")
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[0:1]) + name[1:]
}

func (s *Server) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("can't encode message")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeMessage(s.out, data); err != nil {
		logrus.WithError(err).Error("can't send message")
	}
}

func (s *Server) respond(response rpcResponse) {
	s.send(response)
}

func (s *Server) notify(method string, params any) {
	logrus.WithField("method", method).Debug("->")
	data, err := json.Marshal(params)
	if err != nil {
		logrus.WithError(err).Error("can't encode notification")
		return
	}
	s.send(rpcNotification{Jsonrpc: "2.0", Method: method, Params: data})
}

func (s *Server) Initialize(params *initializeParams) (initializeResult, error) {
	switch {
	case params.RootURI != "":
		s.setRoot(uriToPath(params.RootURI))
	case params.RootPath != "":
		s.setRoot(params.RootPath)
	}
	s.initialized = true
	return initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync:   syncFull,
			CompletionProvider: &completionOptions{TriggerCharacters: []string{"."}},
		},
		ServerInfo: &serverInfo{Name: "desmosc", Version: text.VERSION},
	}, nil
}

func (s *Server) Initialized(_ *nothing) error {
	return nil
}

func (s *Server) Shutdown(_ *nothing) (any, error) {
	s.shutdown = true
	return nil, nil
}

func (s *Server) Exit(_ *nothing) error {
	s.exited = true
	return nil
}

// CleanExit says whether the client asked for a shutdown before it asked the server to exit.
func (s *Server) CleanExit() bool {
	return s.shutdown
}

func (s *Server) S_cancelRequest(_ *nothing) error {
	return nil
}

func (s *Server) TextDocument_didOpen(params *didOpenParams) error {
	uri := params.TextDocument.URI
	doc := &document{uri: uri, path: s.modulePath(uri), text: params.TextDocument.Text}
	s.documents[uri] = doc
	s.compile(doc)
	return nil
}

func (s *Server) TextDocument_didChange(params *didChangeParams) error {
	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		return errors.Errorf("document %s was changed without being opened", params.TextDocument.URI)
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}
	doc.text = params.ContentChanges[len(params.ContentChanges)-1].Text
	s.compile(doc)
	return nil
}

func (s *Server) TextDocument_didClose(params *didCloseParams) error {
	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		return nil
	}
	delete(s.documents, doc.uri)
	s.files.Delete(doc.path)
	s.notify("textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
		URI:         doc.uri,
		Diagnostics: []lsp.Diagnostic{},
	})
	return nil
}

func (s *Server) TextDocument_completion(params *completionParams) ([]completionItem, error) {
	items := []completionItem{}
	if doc, ok := s.documents[params.TextDocument.URI]; ok && doc.ctx != nil {
		for _, sym := range doc.ctx.Symbols() {
			items = append(items, completionItem{Label: sym.Name, Kind: completionKind(sym.Kind), Detail: sym.Detail})
		}
	}
	for _, name := range compiler.BuiltinNames() {
		items = append(items, completionItem{Label: name, Kind: ckFunction, Detail: compiler.BUILTINS[name].String()})
	}
	return items, nil
}

func completionKind(k compiler.SymbolKind) completionItemKind {
	switch k {
	case compiler.VariableSymbol:
		return ckVariable
	case compiler.InlineValueSymbol:
		return ckConstant
	case compiler.ModuleSymbol:
		return ckModule
	}
	return ckFunction
}

// Open documents can import one another, so each is also served to the loader by its path
// relative to the root, shadowing whatever is on disk.
func (s *Server) modulePath(uri lsp.DocumentURI) string {
	path := uriToPath(uri)
	if rel, err := filepath.Rel(s.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = filepath.ToSlash(rel)
	}
	return strings.TrimSuffix(path, loader.EXTENSION)
}

func uriToPath(uri lsp.DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return string(uri)
	}
	return filepath.FromSlash(u.Path)
}
