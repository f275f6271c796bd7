package lsp

import (
	"github.com/goccy/go-json"
	"pkg.nimblebun.works/go-lsp"
)

type rpcCall struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      *lsp.ID         `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      *lsp.ID         `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    rpcErrorCode `json:"code"`
	Message string       `json:"message"`
}

func (r rpcError) Error() string {
	return r.Message
}

type rpcErrorCode int

const (
	rpcParseError           rpcErrorCode = -32700
	rpcMethodNotFound       rpcErrorCode = -32601
	rpcInvalidParams        rpcErrorCode = -32602
	rpcInternalError        rpcErrorCode = -32603
	rpcServerNotInitialized rpcErrorCode = -32002
	rpcInvalidRequest       rpcErrorCode = -32600
)

type rpcNotification struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type nothing struct{}

type initializeParams struct {
	RootURI  lsp.DocumentURI `json:"rootUri"`
	RootPath string          `json:"rootPath"`
}

type textDocumentSyncKind int

const syncFull textDocumentSyncKind = 1

type completionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

type serverCapabilities struct {
	TextDocumentSync   textDocumentSyncKind `json:"textDocumentSync"`
	CompletionProvider *completionOptions   `json:"completionProvider,omitempty"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
	ServerInfo   *serverInfo        `json:"serverInfo,omitempty"`
}

type textDocumentIdentifier struct {
	URI lsp.DocumentURI `json:"uri"`
}

type didOpenParams struct {
	TextDocument lsp.TextDocumentItem `json:"textDocument"`
}

type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   textDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange        `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type completionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     lsp.Position           `json:"position"`
}

type completionItemKind int

const (
	ckFunction completionItemKind = 3
	ckVariable completionItemKind = 6
	ckModule   completionItemKind = 9
	ckConstant completionItemKind = 21
)

type completionItem struct {
	Label  string             `json:"label"`
	Kind   completionItemKind `json:"kind,omitempty"`
	Detail string             `json:"detail,omitempty"`
}
