package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/extract"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/svd"
)

var (
	outputPath string
	jobs       int
	outputJSON bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Extract every catalog peripheral and write an SVD file",
	Long: `Run the catalog: parse each peripheral's source, print its address
range, and write the device as SVD. Entries that fail are logged and left
out; they do not stop the run.

Examples:
  svdgen generate
  svdgen generate -c board.yaml --root ~/src/bl808 -o board.svd
  svdgen generate --scan ./vendor --jobs 1 -v`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var extentsCmd = &cobra.Command{
	Use:   "extents",
	Short: "Print the address range of every catalog peripheral",
	Long: `Run the catalog and print one name,base,highest line per peripheral,
with decimal addresses. --json adds register counts and failures.`,
	Args: cobra.NoArgs,
	RunE: runExtents,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(extentsCmd)

	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "output.svd",
		"SVD output file")
	for _, c := range []*cobra.Command{generateCmd, extentsCmd} {
		c.Flags().IntVarP(&jobs, "jobs", "j", 0,
			"peripherals processed in parallel (default: number of CPUs)")
		c.Flags().BoolVar(&outputJSON, "json", false,
			"print the report as JSON")
	}
}

func runCatalog(cmd *cobra.Command) (*extract.Result, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	res, err := resolver(cat)
	if err != nil {
		return nil, err
	}
	return extract.Run(cmd.Context(), extract.Options{
		Catalog:  cat,
		Resolver: res,
		Jobs:     jobs,
		Logger:   logger,
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	result, err := runCatalog(cmd)
	if err != nil {
		return err
	}
	if err := extract.WriteReport(cmd.OutOrStdout(), result, outputJSON); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := svd.Encode(f, result.Device()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write SVD: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("wrote SVD",
		"file", outputPath,
		"peripherals", len(result.Succeeded()),
		"failed", len(result.Failures()))
	return nil
}

func runExtents(cmd *cobra.Command, args []string) error {
	result, err := runCatalog(cmd)
	if err != nil {
		return err
	}
	return extract.WriteReport(cmd.OutOrStdout(), result, outputJSON)
}
