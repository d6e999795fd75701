package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/assembler"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/cheader"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/rstdoc"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/svd"
)

var (
	baseAddr   string
	periphName string
	showFields bool
	emitSVD    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse header|doc <file>",
	Short: "Parse a single source file and display its registers",
	Long: `Parse one C register header or one manual page and display the
resulting peripheral. Headers carry no address, so --base sets it; for a
manual page --base overrides the address inferred from the first register.

Examples:
  svdgen parse header dsp2_misc_reg.h --base 0x30010000 -f
  svdgen parse doc uart_register.rst --name UART1 --base 0x2000A100
  svdgen parse doc uart_register.rst --svd > uart.svd`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"header", "doc"},
	RunE:      runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&baseAddr, "base", "b", "",
		"base address (hex with 0x, or decimal)")
	parseCmd.Flags().StringVarP(&periphName, "name", "n", "",
		"peripheral name (default: derived from the file)")
	parseCmd.Flags().BoolVarP(&showFields, "fields", "f", false,
		"show register fields")
	parseCmd.Flags().BoolVar(&emitSVD, "svd", false,
		"print the peripheral as an SVD document")
}

func runParse(cmd *cobra.Command, args []string) error {
	kind, filename := args[0], args[1]

	var base *uint64
	if baseAddr != "" {
		v, err := strconv.ParseUint(baseAddr, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid --base %q: %w", baseAddr, err)
		}
		base = &v
	}

	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Parsing %s file: %s\n\n", kind, filename)
	}

	var slot *regmodel.PeripheralSlot
	switch kind {
	case "header":
		s, err := parseHeader(filename, base)
		if err != nil {
			return err
		}
		slot = s
	case "doc":
		s, err := parseDoc(filename, base)
		if err != nil {
			return err
		}
		slot = s
	default:
		return fmt.Errorf("unknown source kind %q (want header or doc)", kind)
	}

	if emitSVD {
		dev := &regmodel.Device{
			Name:            slot.Peripheral().Name,
			Version:         "0.1",
			AddressUnitBits: 8,
			Width:           regmodel.RegisterWidth,
			Peripherals:     []*regmodel.PeripheralSlot{slot},
		}
		return svd.Encode(cmd.OutOrStdout(), dev)
	}
	printPeripheral(cmd.OutOrStdout(), slot.Peripheral())
	return nil
}

func parseHeader(filename string, base *uint64) (*regmodel.PeripheralSlot, error) {
	parser, err := cheader.NewParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}
	file, err := parser.ParseFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	regs, err := file.Registers(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to convert registers: %w", err)
	}

	name := periphName
	if name == "" {
		name = strings.ToUpper(file.Peripheral.Name())
	}
	var addr uint64
	if base != nil {
		addr = *base
	}
	return assembler.Create(name, addr, regs), nil
}

func parseDoc(filename string, base *uint64) (*regmodel.PeripheralSlot, error) {
	parser, err := rstdoc.NewParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}
	frag, err := parser.Fragment(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	name := periphName
	if name == "" {
		name = strings.ToUpper(strings.TrimSuffix(filepath.Base(filename), "_register.rst"))
	}
	return assembler.FromDocument(name, frag, base)
}

func printPeripheral(w io.Writer, p *regmodel.Peripheral) {
	ext := assembler.ComputeExtent(p)
	fmt.Fprintf(w, "Peripheral: %s\n", p.Name)
	fmt.Fprintf(w, "  Base:      0x%08X\n", p.BaseAddress)
	fmt.Fprintf(w, "  Highest:   0x%08X\n", ext.Highest)
	fmt.Fprintf(w, "  Registers: %d\n\n", len(p.Registers))

	for i := range p.Registers {
		r := &p.Registers[i]
		fmt.Fprintf(w, "  0x%04X  %s\n", r.AddressOffset, r.Name)
		if !showFields {
			continue
		}
		for _, f := range r.Fields {
			access := f.Access.String()
			if access == "" {
				access = "-"
			}
			fmt.Fprintf(w, "          %-8s %-32s %s\n", f.Bits, f.Name, access)
		}
		for _, o := range r.Overlaps() {
			fmt.Fprintf(w, "          warning: %s overlaps %s\n", o.First.Name, o.Second.Name)
		}
	}
}
