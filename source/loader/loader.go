package loader

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"desmosc/source/ast"
	"desmosc/source/compiler"
	"desmosc/source/parser"
	"desmosc/source/settings"
)

var (
	_ compiler.Loader = (*FileLoader)(nil)
	_ compiler.Loader = (*MemoryLoader)(nil)
	_ compiler.Loader = (*CachingLoader)(nil)
)

// The extension given to source files when an import path doesn't have one.
const EXTENSION = ".des"

// Parse parses a source and registers it, logging rather than returning any errors, since all a
// Loader may say about failure is that it failed.
func Parse(sources *Sources, path, text string) (ast.Statements, bool) {
	id := sources.Register(path, text)
	stmts, errs := parser.ParseProgram(id, text)
	if len(errs) > 0 {
		logrus.WithFields(logrus.Fields{"path": path, "error": errs.Error()}).Warn("module has syntax errors")
		return nil, false
	}
	if settings.SHOW_LOADER {
		logrus.WithFields(logrus.Fields{"path": path, "statements": len(stmts)}).Debug("parsed module")
	}
	return stmts, true
}

// FileLoader loads modules from files under a root directory.
type FileLoader struct {
	Root    string
	Sources *Sources
	mu      sync.Mutex
	loads   map[string]int
}

func NewFileLoader(root string, sources *Sources) *FileLoader {
	return &FileLoader{Root: root, Sources: sources, loads: map[string]int{}}
}

// Resolve turns an import path into a file name. Paths are relative to the root and may not
// climb out of it.
func (fl *FileLoader) Resolve(path string) (string, error) {
	if filepath.Ext(path) == "" {
		path = path + EXTENSION
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("import path %q is outside the project root", path)
	}
	return filepath.Join(fl.Root, clean), nil
}

// Reset forgets how often each path has been loaded. Long-lived front ends call it before each
// fresh compilation, since the count only guards against cycles within one.
func (fl *FileLoader) Reset() {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.loads = map[string]int{}
}

func (fl *FileLoader) Load(path string) (ast.Statements, bool) {
	fl.mu.Lock()
	fl.loads[path]++
	count := fl.loads[path]
	fl.mu.Unlock()
	if count > settings.MAX_LOADS_PER_PATH {
		logrus.WithFields(logrus.Fields{"path": path, "loads": count}).Warn("module loaded too many times, probably an import cycle")
		return nil, false
	}
	filename, err := fl.Resolve(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{"path": path, "error": err}).Warn("can't resolve import")
		return nil, false
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		logrus.WithFields(logrus.Fields{"path": path, "error": errors.Wrap(err, "reading module")}).Warn("can't load module")
		return nil, false
	}
	return Parse(fl.Sources, path, string(data))
}

func (fl *FileLoader) ParseSource(source string) (ast.Statements, bool) {
	return Parse(fl.Sources, "", source)
}

// MemoryLoader serves modules from a map, falling back to another loader, if it has one, for
// paths it doesn't know. The language server uses it so that open documents shadow the files
// on disk.
type MemoryLoader struct {
	Sources  *Sources
	Fallback compiler.Loader
	mu       sync.RWMutex
	files    map[string]string
}

func NewMemoryLoader(sources *Sources, files map[string]string) *MemoryLoader {
	ml := &MemoryLoader{Sources: sources, files: map[string]string{}}
	for k, v := range files {
		ml.files[k] = v
	}
	return ml
}

func (ml *MemoryLoader) Set(path, source string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.files[path] = source
}

func (ml *MemoryLoader) Delete(path string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.files, path)
}

func (ml *MemoryLoader) Load(path string) (ast.Statements, bool) {
	ml.mu.RLock()
	source, ok := ml.files[path]
	ml.mu.RUnlock()
	if !ok {
		if ml.Fallback != nil {
			return ml.Fallback.Load(path)
		}
		logrus.WithField("path", path).Warn("no such module in memory")
		return nil, false
	}
	return Parse(ml.Sources, path, source)
}

func (ml *MemoryLoader) ParseSource(source string) (ast.Statements, bool) {
	return Parse(ml.Sources, "", source)
}
