package domain

// ExtractionMode selects how a document is processed: a fixed set of named
// fields pulled from every page group, or a transaction-style table
// reconstructed page by page.
type ExtractionMode string

const (
	ModeField ExtractionMode = "field"
	ModeTable ExtractionMode = "table"
)

// Document is an immutable, loaded PDF: the raw bytes plus the derived page
// count and content key. Slicing operations produce new Documents that
// reference the source bytes; nothing mutates a Document in place.
type Document struct {
	Bytes      []byte
	PageCount  int
	ContentKey string
}

// PageGroup is one contiguous unit of work in field mode: a fixed-size range
// of pages (the final group may be shorter). StartPage and EndPage are
// 1-based and inclusive.
type PageGroup struct {
	GroupIndex  int  `json:"groupIndex"`
	StartPage   int  `json:"startPage"`
	EndPage     int  `json:"endPage"`
	TotalPages  int  `json:"totalPages"`
	IsLastGroup bool `json:"isLastGroup"`
}

// PageSpan returns the number of pages covered by the group.
func (g PageGroup) PageSpan() int {
	return g.EndPage - g.StartPage + 1
}

// FieldSpec names one field to extract, with a short description shown to
// the model. FieldName is unique within a document's spec set.
type FieldSpec struct {
	FieldName   string `json:"fieldName"`
	Description string `json:"description"`
}

// FieldValue is one extracted field on one page. Value is nil when the field
// could not be found on the page. Type is "date" when the extracted value
// looks like a date, otherwise "text".
type FieldValue struct {
	Value *string `json:"value"`
	Type  string  `json:"type"`
}

const (
	FieldTypeText = "text"
	FieldTypeDate = "date"
)

// TableData is the per-page slice of a document-wide table: the shared
// header schema plus this page's rows. Rows may be empty but never nil.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ResultPage is one page's extraction output. Exactly one of Fields or
// TableData is set, depending on the extraction mode.
type ResultPage struct {
	PageNumber int                   `json:"pageNumber"`
	Fields     map[string]FieldValue `json:"fields,omitempty"`
	TableData  *TableData            `json:"tableData,omitempty"`
}

// AccumulatedResult is the running, page-number-sorted result set surfaced
// to the caller after every completed unit. It grows monotonically and holds
// at most one entry per page number.
type AccumulatedResult struct {
	Pages []ResultPage `json:"pages"`
}

// ProgressEvent is emitted once per completed unit of work (a group in field
// mode, a page in table mode). Result is a snapshot of the accumulated state
// at the time of emission. Err is set only on the terminal event of an
// aborted field-mode run.
type ProgressEvent struct {
	RunID  string            `json:"runId"`
	Group  PageGroup         `json:"groupInfo"`
	Pages  []ResultPage      `json:"pages,omitempty"`
	Result AccumulatedResult `json:"result"`
	Err    error             `json:"-"`
}

// DefaultTableHeaders is the fallback header schema used when table-mode
// header detection fails all attempts.
var DefaultTableHeaders = []string{"Date", "Description", "Amount", "Balance"}
