// Package source locates the header and manual files named by a catalog.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

// Resolver maps catalog file names to paths on disk.
type Resolver interface {
	Header(name string) (string, error)
	Doc(name, lang string) (string, error)
}

// Tree resolves files against a project root laid out as the catalog
// describes.
type Tree struct {
	Root          string
	HeaderFolders []string
	DocTrees      map[string]string
}

// NewTree builds a Tree for the catalog sources under root.
func NewTree(root string, src catalog.Sources) *Tree {
	return &Tree{Root: root, HeaderFolders: src.HeaderFolders, DocTrees: src.DocTrees}
}

// Header returns the first header folder that holds name.
func (t *Tree) Header(name string) (string, error) {
	for _, folder := range t.HeaderFolders {
		path := t.join(folder, name)
		if isFile(path) {
			return path, nil
		}
	}
	return "", notFound("header", name)
}

// Doc returns name inside the manual tree for lang.
func (t *Tree) Doc(name, lang string) (string, error) {
	dir, ok := t.DocTrees[lang]
	if !ok {
		return "", fmt.Errorf("source: no doc tree for %q: %w", lang, regmodel.ErrSourceUnavailable)
	}
	path := t.join(dir, name)
	if !isFile(path) {
		return "", notFound("doc", name)
	}
	return path, nil
}

// join places relative directories under Root.
func (t *Tree) join(dir, name string) string {
	if filepath.IsAbs(dir) {
		return filepath.Join(dir, name)
	}
	return filepath.Join(t.Root, dir, name)
}

// Chain tries each resolver in turn and returns the first hit.
type Chain []Resolver

func (c Chain) Header(name string) (string, error) {
	return c.first(func(r Resolver) (string, error) { return r.Header(name) }, "header", name)
}

func (c Chain) Doc(name, lang string) (string, error) {
	return c.first(func(r Resolver) (string, error) { return r.Doc(name, lang) }, "doc", name)
}

func (c Chain) first(lookup func(Resolver) (string, error), kind, name string) (string, error) {
	for _, r := range c {
		path, err := lookup(r)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, regmodel.ErrSourceUnavailable) {
			return "", err
		}
	}
	return "", notFound(kind, name)
}

// FindRoot walks up from start to the first directory holding .git.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("source: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("source: no .git above %s: %w", start, regmodel.ErrSourceUnavailable)
		}
		dir = parent
	}
}

func notFound(kind, name string) error {
	return fmt.Errorf("source: %s file %s not found: %w", kind, name, regmodel.ErrSourceUnavailable)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
