package extract

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Report is the JSON form of a run.
type Report struct {
	Device      string          `json:"device"`
	Peripherals []PeripheralRow `json:"peripherals"`
	Failures    []FailureRow    `json:"failures,omitempty"`
}

type PeripheralRow struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	File      string   `json:"file"`
	Base      string   `json:"base_address"`
	Highest   string   `json:"highest_address"`
	Registers int      `json:"register_count"`
	Array     bool     `json:"array,omitempty"`
	Skipped   []string `json:"skipped_extensions,omitempty"`
}

type FailureRow struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Error string `json:"error"`
}

// BuildReport summarises a run.
func BuildReport(r *Result) *Report {
	rep := &Report{Device: r.Catalog.Device.Name, Peripherals: []PeripheralRow{}}
	for _, e := range r.Succeeded() {
		row := PeripheralRow{
			Name:      e.Entry.Name,
			Kind:      string(e.Entry.Kind),
			File:      e.Entry.File,
			Base:      fmt.Sprintf("0x%08X", e.Extent.BaseAddress),
			Highest:   fmt.Sprintf("0x%08X", e.Extent.Highest),
			Registers: len(e.Slot.Peripheral().Registers),
			Array:     e.Slot.IsArray(),
		}
		for _, err := range e.Skipped {
			row.Skipped = append(row.Skipped, err.Error())
		}
		rep.Peripherals = append(rep.Peripherals, row)
	}
	for _, e := range r.Failures() {
		rep.Failures = append(rep.Failures, FailureRow{
			Name:  e.Entry.Name,
			File:  e.Entry.File,
			Error: e.Err.Error(),
		})
	}
	return rep
}

// WriteReport prints one name,base,highest line per successful entry, with
// decimal addresses, or the full report as indented JSON.
func WriteReport(w io.Writer, r *Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(BuildReport(r))
	}

	cw := csv.NewWriter(w)
	for _, ext := range r.Extents() {
		record := []string{
			ext.Name,
			strconv.FormatUint(ext.BaseAddress, 10),
			strconv.FormatUint(ext.Highest, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
