package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func newTree(t *testing.T) (*Tree, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sdk", "dsp2_reg", "dsp2_tg_reg.h"))
	writeFile(t, filepath.Join(root, "sdk", "regs", "dsp2_tg_reg.h"))
	writeFile(t, filepath.Join(root, "sdk", "regs", "glb_reg.h"))
	writeFile(t, filepath.Join(root, "docs", "en", "uart_register.rst"))
	writeFile(t, filepath.Join(root, "docs", "zh_CN", "ir_register.rst"))

	src := catalog.Sources{
		HeaderFolders: []string{"sdk/dsp2_reg/", "sdk/regs/"},
		DocTrees:      map[string]string{"en": "docs/en", "zh_CN": "docs/zh_CN"},
	}
	return NewTree(root, src), root
}

func TestTreeHeaderFirstFolderWins(t *testing.T) {
	tree, root := newTree(t)

	path, err := tree.Header("dsp2_tg_reg.h")
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}
	want := filepath.Join(root, "sdk", "dsp2_reg", "dsp2_tg_reg.h")
	if path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}

	path, err = tree.Header("glb_reg.h")
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "regs" {
		t.Errorf("Expected glb_reg.h from regs/, got %s", path)
	}
}

func TestTreeMissingFiles(t *testing.T) {
	tree, _ := newTree(t)

	tests := []struct {
		name   string
		lookup func() (string, error)
	}{
		{"header", func() (string, error) { return tree.Header("nope_reg.h") }},
		{"doc", func() (string, error) { return tree.Doc("nope_register.rst", "en") }},
		{"language", func() (string, error) { return tree.Doc("uart_register.rst", "fr") }},
		{"wrong language", func() (string, error) { return tree.Doc("ir_register.rst", "en") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.lookup()
			if !errors.Is(err, regmodel.ErrSourceUnavailable) {
				t.Errorf("Expected ErrSourceUnavailable, got %v", err)
			}
		})
	}
}

func TestTreeDocLanguages(t *testing.T) {
	tree, root := newTree(t)

	path, err := tree.Doc("ir_register.rst", "zh_CN")
	if err != nil {
		t.Fatalf("Doc failed: %v", err)
	}
	if path != filepath.Join(root, "docs", "zh_CN", "ir_register.rst") {
		t.Errorf("Unexpected path %s", path)
	}
}

func TestIndexLoadDir(t *testing.T) {
	_, root := newTree(t)
	writeFile(t, filepath.Join(root, "README.md"))
	writeFile(t, filepath.Join(root, ".git", "stale_reg.h"))

	idx := NewIndex()
	if err := idx.LoadDir(root); err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	headers, docs := idx.Len()
	if headers != 2 || docs != 2 {
		t.Errorf("Expected 2 headers and 2 docs, got %d and %d", headers, docs)
	}
	if _, err := idx.Header("stale_reg.h"); err == nil {
		t.Error("Expected files under .git to be skipped")
	}
	if _, err := idx.Doc("ir_register.rst", "ignored"); err != nil {
		t.Errorf("Doc failed: %v", err)
	}
}

func TestIndexFirstPathKept(t *testing.T) {
	idx := NewIndex()
	if !idx.Add("/a/uart_reg.h") {
		t.Fatal("Expected first add to succeed")
	}
	if idx.Add("/b/uart_reg.h") {
		t.Error("Expected duplicate add to be refused")
	}
	if idx.Add("/b/notes.txt") {
		t.Error("Expected unrelated file to be ignored")
	}

	path, err := idx.Header("uart_reg.h")
	if err != nil || path != "/a/uart_reg.h" {
		t.Errorf("Expected /a/uart_reg.h, got %s (%v)", path, err)
	}
}

func TestChainFallsThrough(t *testing.T) {
	tree, _ := newTree(t)
	idx := NewIndex()
	idx.Add("/scan/extra_reg.h")

	chain := Chain{idx, tree}

	path, err := chain.Header("extra_reg.h")
	if err != nil || path != "/scan/extra_reg.h" {
		t.Errorf("Expected index hit, got %s (%v)", path, err)
	}
	if _, err := chain.Header("glb_reg.h"); err != nil {
		t.Errorf("Expected tree hit, got %v", err)
	}
	if _, err := chain.Doc("missing.rst", "en"); !errors.Is(err, regmodel.ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("Failed to create .git: %v", err)
	}
	deep := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatalf("Failed to create dirs: %v", err)
	}

	got, err := FindRoot(deep)
	if err != nil {
		t.Fatalf("FindRoot failed: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
