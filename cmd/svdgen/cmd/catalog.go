package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listEntries bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the effective catalog",
	Long: `Print the catalog in use as YAML, or as a table with --list. Without
--catalog this is the built-in BL808 catalog, which is a good starting
point for a custom one:

  svdgen catalog > board.yaml`,
	Args: cobra.NoArgs,
	RunE: runCatalogCmd,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().BoolVarP(&listEntries, "list", "l", false,
		"list entries as a table")
}

func runCatalogCmd(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	if !listEntries {
		return cat.Write(cmd.OutOrStdout())
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tFILE\tBASE\tEXTENDS")
	for i := range cat.Peripherals {
		e := &cat.Peripherals[i]
		base := "inferred"
		if e.Base != nil {
			base = fmt.Sprintf("0x%08X", uint64(*e.Base))
		}
		if e.Array != nil {
			base += fmt.Sprintf(" [%d x 0x%X]", e.Array.Dim, uint64(e.Array.Increment))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.File, base, strings.Join(e.Extends, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d peripherals for %s\n", len(cat.Peripherals), cat.Device.Name)
	return nil
}
