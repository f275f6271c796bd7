package loader

import (
	"sync"

	"desmosc/source/token"
)

// Sources remembers the text of everything that has been parsed, by file ID, so that an error
// in an imported module can be shown against the right source. A path keeps its ID for as long
// as the Sources lives, and registering it again replaces its text, so a long-running server
// holds one copy of each file however often it's edited.
type Sources struct {
	mu    sync.Mutex
	paths []string
	texts []string
	ids   map[string]token.FileID
}

func NewSources() *Sources {
	return &Sources{ids: map[string]token.FileID{}}
}

// Register records a source and returns the ID its spans should carry. Sources with no path
// are anonymous, and each gets an ID of its own.
func (s *Sources) Register(path, text string) token.FileID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.ids[path]; ok && path != "" {
		s.texts[id] = text
		return id
	}
	s.paths = append(s.paths, path)
	s.texts = append(s.texts, text)
	id := token.FileID(len(s.paths) - 1)
	if path != "" {
		s.ids[path] = id
	}
	return id
}

// Update replaces the text of a source which has already been registered.
func (s *Sources) Update(id token.FileID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id >= 0 && int(id) < len(s.texts) {
		s.texts[id] = text
	}
}

func (s *Sources) Get(id token.FileID) (path, text string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || int(id) >= len(s.paths) {
		return "", "", false
	}
	return s.paths[id], s.texts[id], true
}

func (s *Sources) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}
