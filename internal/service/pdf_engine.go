package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"pdf-extract-api/internal/domain"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

// maxParseWorkers bounds concurrent page-count probes during merge.
const maxParseWorkers = 4

// PDFCPUEngine implements domain.PDFEngine on top of pdfcpu. All operations
// are byte-in, byte-out; page content is copied, never re-rendered.
type PDFCPUEngine struct {
	conf   *model.Configuration
	logger domain.Logger
}

// NewPDFCPUEngine creates a new pdfcpu-backed engine. Validation is relaxed
// so that slightly malformed documents (common with scanned statements)
// still process.
func NewPDFCPUEngine(logger domain.Logger) *PDFCPUEngine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUEngine{
		conf:   conf,
		logger: logger,
	}
}

// PageCount returns the number of pages in a PDF.
func (e *PDFCPUEngine) PageCount(pdf []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(pdf), e.conf)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// Merge concatenates all pages of all inputs, in input order, into one
// document. Merge is best-effort: an unparsable input is skipped with a
// warning rather than failing the whole request. A single valid input is
// returned as-is without re-writing the file.
func (e *PDFCPUEngine) Merge(ctx context.Context, inputs [][]byte) ([]byte, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrNoValidInput
	}

	// Probe every input concurrently; the merge itself preserves input order.
	counts := make([]int, len(inputs))
	probeErrs := make([]error, len(inputs))
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(maxParseWorkers)
	for i := range inputs {
		i := i
		eg.Go(func() error {
			counts[i], probeErrs[i] = e.PageCount(inputs[i])
			return nil
		})
	}
	_ = eg.Wait()

	valid := make([][]byte, 0, len(inputs))
	for i := range inputs {
		if probeErrs[i] != nil || counts[i] < 1 {
			e.logger.Warn("Skipping unparsable input during merge", "input_index", i, "error", probeErrs[i])
			continue
		}
		valid = append(valid, inputs[i])
	}
	if len(valid) == 0 {
		return nil, domain.ErrNoValidInput
	}
	if len(valid) == 1 {
		return valid[0], nil
	}

	rsc := make([]io.ReadSeeker, 0, len(valid))
	for _, in := range valid {
		rsc = append(rsc, bytes.NewReader(in))
	}

	var out bytes.Buffer
	if err := api.MergeRaw(rsc, &out, false, e.conf); err != nil {
		return nil, fmt.Errorf("failed to merge documents: %w", err)
	}
	return out.Bytes(), nil
}

// Slice extracts pages startPage..endPage (1-based, inclusive) into a new
// document.
func (e *PDFCPUEngine) Slice(pdf []byte, startPage, endPage int) ([]byte, error) {
	if startPage < 1 || endPage < startPage {
		return nil, fmt.Errorf("%w: invalid page range %d-%d", domain.ErrInvalidGrouping, startPage, endPage)
	}

	pages := []string{fmt.Sprintf("%d-%d", startPage, endPage)}
	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(pdf), &out, pages, e.conf); err != nil {
		return nil, fmt.Errorf("failed to slice pages %d-%d: %w", startPage, endPage, err)
	}
	return out.Bytes(), nil
}
