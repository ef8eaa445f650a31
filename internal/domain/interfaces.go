package domain

import "context"

// Attachment is a binary payload sent alongside a prompt to the inference
// backend.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// InferenceClient defines the interface to the generative AI backend.
// Implementations return the raw model text with no structured-output
// guarantee; callers must treat it as an untrusted text source.
type InferenceClient interface {
	Generate(ctx context.Context, prompt string, attachment Attachment) (string, error)
}

// PDFEngine defines the byte-level PDF operations the pipeline depends on.
// Implementations must preserve page content exactly (no re-rendering).
type PDFEngine interface {
	// PageCount returns the number of pages in a PDF.
	PageCount(pdf []byte) (int, error)
	// Merge concatenates all pages of all inputs, in input order, into one
	// document. Unparsable inputs are skipped; at least one input must
	// survive or ErrNoValidInput is returned.
	Merge(ctx context.Context, inputs [][]byte) ([]byte, error)
	// Slice extracts pages startPage..endPage (1-based, inclusive) into a
	// new document.
	Slice(pdf []byte, startPage, endPage int) ([]byte, error)
}

// ExtractionService defines the operations exposed over HTTP.
type ExtractionService interface {
	MergePDFs(ctx context.Context, inputs [][]byte) ([]byte, error)
	PageCount(ctx context.Context, pdf []byte) (int, error)
	SuggestFields(ctx context.Context, pdf []byte) ([]FieldSpec, error)
	ExtractGroup(ctx context.Context, pdf []byte, fields []FieldSpec, group PageGroup) ([]ResultPage, error)
	ExtractTable(ctx context.Context, pdf []byte) (*AccumulatedResult, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetMaxRequestSize() int64
	GetVertexProjectID() string
	GetVertexLocation() string
	GetModelName() string
}
