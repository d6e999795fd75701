// Package extract runs a catalog: every entry is resolved, parsed and
// assembled into a peripheral. A failing entry is recorded and logged; it
// never stops the others.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/assembler"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/cheader"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/rstdoc"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/source"
)

// Options configures a run.
type Options struct {
	Catalog  *catalog.Catalog
	Resolver source.Resolver
	// Jobs bounds the number of entries processed at once. Zero means
	// GOMAXPROCS.
	Jobs   int
	Logger *slog.Logger
}

// EntryResult is the outcome for one catalog entry. Exactly one of Slot
// and Err is set.
type EntryResult struct {
	Entry  *catalog.Entry
	Path   string
	Slot   *regmodel.PeripheralSlot
	Extent regmodel.Extent
	Err    error
	// Skipped holds extension headers that could not be appended. The
	// peripheral is kept without them.
	Skipped []error
}

// OK reports whether the entry produced a peripheral.
func (r *EntryResult) OK() bool {
	return r.Err == nil && r.Slot != nil
}

// Result holds one EntryResult per catalog entry, in catalog order.
type Result struct {
	Catalog *catalog.Catalog
	Entries []EntryResult
}

type worker struct {
	cat     *catalog.Catalog
	res     source.Resolver
	headers *cheader.Parser
	docs    *rstdoc.Parser
	log     *slog.Logger
}

// Run processes every catalog entry. It fails only for unusable options
// or when ctx is cancelled.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Catalog == nil {
		return nil, errors.New("extract: no catalog")
	}
	if opts.Resolver == nil {
		return nil, errors.New("extract: no resolver")
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	headers, err := cheader.NewParser()
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	docs, err := rstdoc.NewParser()
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	w := &worker{cat: opts.Catalog, res: opts.Resolver, headers: headers, docs: docs, log: logger}

	result := &Result{
		Catalog: opts.Catalog,
		Entries: make([]EntryResult, len(opts.Catalog.Peripherals)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range opts.Catalog.Peripherals {
		entry := &opts.Catalog.Peripherals[i]
		slot := &result.Entries[i]
		slot.Entry = entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				slot.Err = err
				return err
			}
			w.process(entry, slot)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("extract: %w", err)
	}

	logger.Info("extraction finished",
		"device", opts.Catalog.Device.Name,
		"peripherals", len(result.Succeeded()),
		"failed", len(result.Failures()))
	return result, nil
}

func (w *worker) process(e *catalog.Entry, out *EntryResult) {
	log := w.log.With("peripheral", e.Name, "file", e.File)

	var slot *regmodel.PeripheralSlot
	var err error
	switch e.Kind {
	case catalog.Header:
		slot, err = w.fromHeader(e, out)
	case catalog.Doc:
		slot, err = w.fromDoc(e, out)
	default:
		err = fmt.Errorf("unknown kind %q", e.Kind)
	}
	if err != nil {
		out.Err = err
		log.Error("peripheral skipped", "error", err)
		return
	}

	out.Slot = slot
	out.Extent = assembler.ComputeExtent(slot.Peripheral())
	for _, skipped := range out.Skipped {
		log.Warn("extension skipped", "error", skipped)
	}
	log.Debug("peripheral assembled",
		"kind", slot.Kind(),
		"registers", len(slot.Peripheral().Registers),
		"highest", fmt.Sprintf("0x%08X", out.Extent.Highest))
}

func (w *worker) fromHeader(e *catalog.Entry, out *EntryResult) (*regmodel.PeripheralSlot, error) {
	if e.Base == nil {
		return nil, fmt.Errorf("%w: header entry without base address", catalog.ErrInvalid)
	}
	path, err := w.res.Header(e.File)
	if err != nil {
		return nil, err
	}
	out.Path = path
	regs, err := w.headers.Registers(path)
	if err != nil {
		return nil, err
	}

	slot := assembler.Create(e.Name, uint64(*e.Base), regs)
	if e.Array != nil {
		return regmodel.NewArray(slot.Peripheral(), e.Array.Dimension()), nil
	}

	for _, ext := range e.Extends {
		if err := w.extend(slot, ext); err != nil {
			out.Skipped = append(out.Skipped, err)
		}
	}
	return slot, nil
}

func (w *worker) extend(slot *regmodel.PeripheralSlot, file string) error {
	path, err := w.res.Header(file)
	if err != nil {
		return err
	}
	regs, err := w.headers.Registers(path)
	if err != nil {
		return err
	}
	return assembler.Extend(slot, regs)
}

func (w *worker) fromDoc(e *catalog.Entry, out *EntryResult) (*regmodel.PeripheralSlot, error) {
	path, err := w.res.Doc(e.File, w.cat.Language(e))
	if err != nil {
		return nil, err
	}
	out.Path = path
	frag, err := w.docs.Fragment(path)
	if err != nil {
		return nil, err
	}

	var override *uint64
	if e.Base != nil {
		base := uint64(*e.Base)
		override = &base
	}
	slot, err := assembler.FromDocument(e.Name, frag, override)
	if err != nil {
		return nil, err
	}
	if e.Array != nil {
		return regmodel.NewArray(slot.Peripheral(), e.Array.Dimension()), nil
	}
	return slot, nil
}

// Succeeded returns the entries that produced a peripheral.
func (r *Result) Succeeded() []*EntryResult {
	var out []*EntryResult
	for i := range r.Entries {
		if r.Entries[i].OK() {
			out = append(out, &r.Entries[i])
		}
	}
	return out
}

// Failures returns the entries that did not produce a peripheral.
func (r *Result) Failures() []*EntryResult {
	var out []*EntryResult
	for i := range r.Entries {
		if !r.Entries[i].OK() {
			out = append(out, &r.Entries[i])
		}
	}
	return out
}

// Extents returns the address span of each successful entry.
func (r *Result) Extents() []regmodel.Extent {
	var out []regmodel.Extent
	for _, e := range r.Succeeded() {
		out = append(out, e.Extent)
	}
	return out
}

// Device assembles the successful peripherals, in catalog order, under the
// catalog's device metadata.
func (r *Result) Device() *regmodel.Device {
	dev := r.Catalog.Device.Model()
	for _, e := range r.Succeeded() {
		dev.Peripherals = append(dev.Peripherals, e.Slot)
	}
	return dev
}
