package service

import (
	"context"
	"fmt"
	"time"

	"pdf-extract-api/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Tuning holds the pipeline's delay and budget knobs. Production values
// come from config; tests shrink the durations to keep runs fast.
type Tuning struct {
	GroupSize         int
	GroupBackoff      time.Duration
	HeaderBackoffUnit time.Duration
	PageInterval      time.Duration
}

// DefaultTuning returns the production pipeline timings.
func DefaultTuning() Tuning {
	return Tuning{
		GroupSize:         DefaultGroupSize,
		GroupBackoff:      DefaultGroupBackoff,
		HeaderBackoffUnit: DefaultHeaderBackoffUnit,
		PageInterval:      15 * time.Second,
	}
}

// Orchestrator drives the end-to-end extraction workflow: merge inputs,
// count pages, then stream through the group plan strictly sequentially,
// feeding each unit's result into an accumulator and emitting one progress
// event per completed unit. Units are never processed concurrently; the
// inference backend's rate limits are respected by construction.
type Orchestrator struct {
	engine    domain.PDFEngine
	cache     *PageGroupCache
	grouper   *PageGrouper
	client    *ExtractionClient
	transport *RetryingTransport
	tuning    Tuning
	logger    domain.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	engine domain.PDFEngine,
	cache *PageGroupCache,
	grouper *PageGrouper,
	client *ExtractionClient,
	transport *RetryingTransport,
	tuning Tuning,
	logger domain.Logger,
) *Orchestrator {
	if tuning.GroupSize < 1 {
		tuning.GroupSize = DefaultGroupSize
	}
	return &Orchestrator{
		engine:    engine,
		cache:     cache,
		grouper:   grouper,
		client:    client,
		transport: transport,
		tuning:    tuning,
		logger:    logger,
	}
}

// MergePDFs concatenates all pages of all inputs, in input order, into one
// document. Unparsable inputs are skipped.
func (o *Orchestrator) MergePDFs(ctx context.Context, inputs [][]byte) ([]byte, error) {
	return o.engine.Merge(ctx, inputs)
}

// PageCount returns the total page count of a document, loading it through
// the cache.
func (o *Orchestrator) PageCount(ctx context.Context, pdf []byte) (int, error) {
	doc, err := o.cache.GetDocument(pdf)
	if err != nil {
		return 0, err
	}
	return doc.PageCount, nil
}

// SuggestFields derives the extractable field schema from a document's
// first page. A single inference call; the caller confirms a subset before
// group extraction starts.
func (o *Orchestrator) SuggestFields(ctx context.Context, pdf []byte) ([]domain.FieldSpec, error) {
	firstPage, err := o.firstPageSlice(pdf)
	if err != nil {
		return nil, err
	}
	return o.client.SuggestFields(ctx, firstPage)
}

// ExtractGroup extracts the selected fields from one page group, retrying
// per the group policy. The group's byte slice comes from the cache.
func (o *Orchestrator) ExtractGroup(ctx context.Context, pdf []byte, fields []domain.FieldSpec, group domain.PageGroup) ([]domain.ResultPage, error) {
	if len(fields) == 0 {
		return nil, &domain.ValidationError{Field: "selectedFields", Message: "at least one field is required"}
	}

	slice, err := o.cache.GetGroup(pdf, group.GroupIndex)
	if err != nil {
		return nil, err
	}
	resolved := slice.Group

	var pages []domain.ResultPage
	opName := fmt.Sprintf("extract group %d (pages %d-%d)", resolved.GroupIndex, resolved.StartPage, resolved.EndPage)
	err = o.transport.Do(ctx, opName, GroupRetryPolicy(o.tuning.GroupBackoff), func(ctx context.Context) error {
		var opErr error
		pages, opErr = o.client.ExtractFieldGroup(ctx, slice.Bytes, fields, resolved)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// ExtractTable runs the whole table flow against a document and returns the
// final accumulated result.
func (o *Orchestrator) ExtractTable(ctx context.Context, pdf []byte) (*domain.AccumulatedResult, error) {
	return o.runTable(ctx, pdf, uuid.NewString(), nil)
}

// RunField streams the field flow for the given, already-confirmed field
// set: one progress event per completed group, in group order. The flow
// aborts on the first group that exhausts its retries; the terminal event
// carries the error and names the failed group. The channel closes when the
// flow ends.
func (o *Orchestrator) RunField(ctx context.Context, pdf []byte, fields []domain.FieldSpec) (<-chan domain.ProgressEvent, error) {
	doc, err := o.cache.GetDocument(pdf)
	if err != nil {
		return nil, err
	}
	plan, err := o.grouper.Plan(doc.PageCount, o.tuning.GroupSize)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	events := make(chan domain.ProgressEvent)
	go func() {
		defer close(events)
		acc := NewResultAccumulator()
		o.logger.Info("Starting field extraction run",
			"run_id", runID, "total_pages", doc.PageCount, "groups", len(plan), "fields", len(fields))

		for _, group := range plan {
			pages, err := o.ExtractGroup(ctx, pdf, fields, group)
			if err != nil {
				o.logger.Error("Aborting field run: group exhausted retries", err,
					"run_id", runID, "group_index", group.GroupIndex,
					"start_page", group.StartPage, "end_page", group.EndPage)
				o.emit(ctx, events, domain.ProgressEvent{
					RunID:  runID,
					Group:  group,
					Result: acc.Snapshot(),
					Err: fmt.Errorf("group %d (pages %d-%d): %w",
						group.GroupIndex, group.StartPage, group.EndPage, err),
				})
				return
			}
			result := acc.Ingest(pages)
			if !o.emit(ctx, events, domain.ProgressEvent{
				RunID:  runID,
				Group:  group,
				Pages:  pages,
				Result: result,
			}) {
				return
			}
		}
		o.logger.Info("Field extraction run complete", "run_id", runID, "pages", acc.Len())
	}()
	return events, nil
}

// RunTable streams the table flow: one progress event per completed page,
// in page order. A page that exhausts its retries contributes an empty-rows
// entry; the flow never aborts on page failures.
func (o *Orchestrator) RunTable(ctx context.Context, pdf []byte) (<-chan domain.ProgressEvent, error) {
	if _, err := o.cache.GetDocument(pdf); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	events := make(chan domain.ProgressEvent)
	go func() {
		defer close(events)
		if _, err := o.runTable(ctx, pdf, runID, events); err != nil {
			o.emit(ctx, events, domain.ProgressEvent{RunID: runID, Err: err})
		}
	}()
	return events, nil
}

// runTable is the table flow body. events may be nil for callers that only
// want the final result.
func (o *Orchestrator) runTable(ctx context.Context, pdf []byte, runID string, events chan<- domain.ProgressEvent) (*domain.AccumulatedResult, error) {
	doc, err := o.cache.GetDocument(pdf)
	if err != nil {
		return nil, err
	}

	headers := o.detectHeadersWithFallback(ctx, pdf, runID)
	o.logger.Info("Starting table extraction run",
		"run_id", runID, "total_pages", doc.PageCount, "headers", len(headers))

	acc := NewResultAccumulator()
	// One inference call per page, spaced by the inter-page interval to
	// respect the backend's rate limits.
	limiter := rate.NewLimiter(rate.Every(o.tuning.PageInterval), 1)

	for page := 1; page <= doc.PageCount; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		group, err := o.grouper.GroupForPage(page, doc.PageCount, o.tuning.GroupSize)
		if err != nil {
			return nil, err
		}
		slice, err := o.cache.GetGroup(pdf, group.GroupIndex)
		if err != nil {
			return nil, err
		}

		var result domain.ResultPage
		opName := fmt.Sprintf("extract table page %d", page)
		err = o.transport.Do(ctx, opName, GroupRetryPolicy(o.tuning.GroupBackoff), func(ctx context.Context) error {
			var opErr error
			result, opErr = o.client.ExtractTablePage(ctx, slice.Bytes, headers, page, slice.Group)
			return opErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Partial-failure tolerance: the page degrades to an empty-rows
			// placeholder instead of aborting the run.
			o.logger.Warn("Table page exhausted retries, degrading to empty rows",
				"run_id", runID, "page", page, "error", err)
			result = domain.ResultPage{
				PageNumber: page,
				TableData:  &domain.TableData{Headers: headers, Rows: [][]string{}},
			}
		}

		snapshot := acc.Ingest([]domain.ResultPage{result})
		if events != nil {
			if !o.emit(ctx, events, domain.ProgressEvent{
				RunID:  runID,
				Group:  slice.Group,
				Pages:  []domain.ResultPage{result},
				Result: snapshot,
			}) {
				return nil, ctx.Err()
			}
		}
	}

	final := acc.Snapshot()
	o.logger.Info("Table extraction run complete", "run_id", runID, "pages", len(final.Pages))
	return &final, nil
}

// detectHeadersWithFallback tries header detection with the header retry
// policy and falls back to the default schema when every attempt fails.
func (o *Orchestrator) detectHeadersWithFallback(ctx context.Context, pdf []byte, runID string) []string {
	firstPage, err := o.firstPageSlice(pdf)
	if err != nil {
		o.logger.Warn("Could not slice first page for header detection, using default headers",
			"run_id", runID, "error", err)
		return append([]string(nil), domain.DefaultTableHeaders...)
	}

	var headers []string
	err = o.transport.Do(ctx, "detect table headers", HeaderRetryPolicy(o.tuning.HeaderBackoffUnit), func(ctx context.Context) error {
		var opErr error
		headers, opErr = o.client.DetectHeaders(ctx, firstPage)
		return opErr
	})
	if err != nil {
		o.logger.Warn("Header detection exhausted retries, using default headers",
			"run_id", runID, "error", err)
		return append([]string(nil), domain.DefaultTableHeaders...)
	}
	return headers
}

// firstPageSlice returns a single-page document holding page 1.
func (o *Orchestrator) firstPageSlice(pdf []byte) ([]byte, error) {
	doc, err := o.cache.GetDocument(pdf)
	if err != nil {
		return nil, err
	}
	if doc.PageCount == 1 {
		return doc.Bytes, nil
	}
	return o.engine.Slice(doc.Bytes, 1, 1)
}

// emit sends an event unless the context is done. Reports whether the send
// happened.
func (o *Orchestrator) emit(ctx context.Context, events chan<- domain.ProgressEvent, ev domain.ProgressEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
