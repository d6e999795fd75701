package source

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

// Index is an in-memory resolver keyed by file base name. It is useful in
// tests and for source trees that do not follow the catalog layout.
type Index struct {
	mu      sync.RWMutex
	headers map[string]string
	docs    map[string]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		headers: make(map[string]string),
		docs:    make(map[string]string),
	}
}

// Add registers path under its base name. The first path seen for a name
// is kept. Files that are neither headers nor manual pages are ignored.
func (x *Index) Add(path string) bool {
	var m map[string]string
	switch {
	case isHeaderFile(path):
		m = x.headers
	case isDocFile(path):
		m = x.docs
	default:
		return false
	}

	name := filepath.Base(path)
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := m[name]; ok {
		return false
	}
	m[name] = path
	return true
}

// LoadDir recursively adds all .h and .rst files below root.
func (x *Index) LoadDir(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		x.Add(path)
		return nil
	})
}

// Len returns the number of indexed headers and manual pages.
func (x *Index) Len() (headers, docs int) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.headers), len(x.docs)
}

func (x *Index) Header(name string) (string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if path, ok := x.headers[name]; ok {
		return path, nil
	}
	return "", notFound("header", name)
}

// Doc ignores lang: an index holds one page per name.
func (x *Index) Doc(name, lang string) (string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if path, ok := x.docs[name]; ok {
		return path, nil
	}
	return "", notFound("doc", name)
}

func isHeaderFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".h"
}

func isDocFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".rst"
}
