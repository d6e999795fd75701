package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/source"
)

var (
	// Global flags
	verbose     bool
	catalogPath string
	rootDir     string
	headerDirs  []string
	docDir      string
	scanDirs    []string

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "svdgen",
	Short: "Register description extractor for SVD generation",
	Long: `Extract peripheral register descriptions from vendor C headers and
reStructuredText reference manual pages, and write them as a CMSIS-SVD file.

Sources are listed in a catalog. The BL808 catalog is built in.

Examples:
  svdgen generate -o bl808.svd                       # Full run from the git root
  svdgen extents --json                              # Address ranges only
  svdgen parse header dsp2_misc_reg.h --base 0x30010000
  svdgen catalog --list                              # Show catalog entries`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "",
		"catalog YAML file (default: built-in BL808 catalog)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "",
		"project root holding the sources (default: nearest git root)")
	rootCmd.PersistentFlags().StringSliceVar(&headerDirs, "header-dir", nil,
		"extra header folder searched before the catalog's folders")
	rootCmd.PersistentFlags().StringVar(&docDir, "doc-dir", "",
		"manual directory replacing the catalog's default language tree")
	rootCmd.PersistentFlags().StringSliceVar(&scanDirs, "scan", nil,
		"directory searched recursively for any .h or .rst file")
}

func loadCatalog() (*catalog.Catalog, error) {
	if catalogPath == "" {
		return catalog.Builtin()
	}
	return catalog.Load(catalogPath)
}

// resolver builds the source lookup for cat from the global flags.
func resolver(cat *catalog.Catalog) (source.Resolver, error) {
	root := rootDir
	if root == "" {
		found, err := source.FindRoot(".")
		if err != nil {
			return nil, fmt.Errorf("no --root given: %w", err)
		}
		root = found
	}

	tree := source.NewTree(root, cat.Sources)
	tree.HeaderFolders = nil
	for _, dir := range headerDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		tree.HeaderFolders = append(tree.HeaderFolders, abs)
	}
	tree.HeaderFolders = append(tree.HeaderFolders, cat.Sources.HeaderFolders...)

	tree.DocTrees = make(map[string]string, len(cat.Sources.DocTrees)+1)
	for lang, dir := range cat.Sources.DocTrees {
		tree.DocTrees[lang] = dir
	}
	if docDir != "" {
		abs, err := filepath.Abs(docDir)
		if err != nil {
			return nil, err
		}
		tree.DocTrees[cat.Sources.DefaultLang] = abs
	}

	if len(scanDirs) == 0 {
		return tree, nil
	}
	idx := source.NewIndex()
	for _, dir := range scanDirs {
		if err := idx.LoadDir(dir); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
	}
	headers, docs := idx.Len()
	logger.Debug("scanned sources", "headers", headers, "docs", docs)
	return source.Chain{idx, tree}, nil
}
