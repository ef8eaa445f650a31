package service

import (
	"context"
	"fmt"
	"strings"

	"pdf-extract-api/internal/domain"
)

const pdfMIMEType = "application/pdf"

// ExtractionClient issues one inference request per unit of work (a page
// group in field mode, a single page in table mode) and normalizes the
// free-text model response into structured results. It is stateless across
// calls.
type ExtractionClient struct {
	inference domain.InferenceClient
	logger    domain.Logger
}

// NewExtractionClient creates a new extraction client
func NewExtractionClient(inference domain.InferenceClient, logger domain.Logger) *ExtractionClient {
	return &ExtractionClient{
		inference: inference,
		logger:    logger,
	}
}

// SuggestFields derives the extractable field schema from a document's
// first page.
func (c *ExtractionClient) SuggestFields(ctx context.Context, firstPage []byte) ([]domain.FieldSpec, error) {
	raw, err := c.inference.Generate(ctx, suggestFieldsPrompt, domain.Attachment{MIMEType: pdfMIMEType, Data: firstPage})
	if err != nil {
		return nil, err
	}

	var fields []domain.FieldSpec
	if err := coerceJSON(raw, &fields); err != nil {
		// Some models wrap the array in an envelope object.
		var envelope struct {
			Fields []domain.FieldSpec `json:"fields"`
		}
		if err2 := coerceJSON(raw, &envelope); err2 != nil || len(envelope.Fields) == 0 {
			return nil, err
		}
		fields = envelope.Fields
	}

	seen := make(map[string]bool)
	out := make([]domain.FieldSpec, 0, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f.FieldName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, domain.FieldSpec{FieldName: name, Description: strings.TrimSpace(f.Description)})
	}
	if len(out) == 0 {
		return nil, malformed(raw, "no usable field suggestions")
	}
	return out, nil
}

// ExtractFieldGroup extracts the selected fields from every page of one
// group. The returned slice contains exactly one entry per source page in
// the group's range; pages the model skipped get all-null field values.
func (c *ExtractionClient) ExtractFieldGroup(ctx context.Context, groupSlice []byte, fields []domain.FieldSpec, group domain.PageGroup) ([]domain.ResultPage, error) {
	prompt := fieldGroupPrompt(fields, group)
	raw, err := c.inference.Generate(ctx, prompt, domain.Attachment{MIMEType: pdfMIMEType, Data: groupSlice})
	if err != nil {
		return nil, err
	}

	var entries []struct {
		PageNumber int                    `json:"pageNumber"`
		Fields     map[string]interface{} `json:"fields"`
	}
	if err := coerceJSON(raw, &entries); err != nil {
		return nil, err
	}

	byPage := make(map[int]map[string]interface{}, len(entries))
	span := group.PageSpan()
	for i, entry := range entries {
		page := entry.PageNumber
		switch {
		case page >= group.StartPage && page <= group.EndPage:
			// Absolute numbering, as instructed.
		case page >= 1 && page <= span:
			// The model numbered pages relative to the attachment.
			page = group.StartPage + page - 1
		case page == 0 && i < span:
			// No usable number; fall back to entry order.
			page = group.StartPage + i
		default:
			c.logger.Warn("Dropping field entry with page outside group range",
				"page_number", entry.PageNumber, "start_page", group.StartPage, "end_page", group.EndPage)
			continue
		}
		byPage[page] = entry.Fields
	}

	pages := make([]domain.ResultPage, 0, span)
	for page := group.StartPage; page <= group.EndPage; page++ {
		pages = append(pages, domain.ResultPage{
			PageNumber: page,
			Fields:     normalizeFields(fields, byPage[page]),
		})
	}
	return pages, nil
}

// normalizeFields builds the {value, type} mapping for one page, covering
// every requested field. Missing or unparsable values become null.
func normalizeFields(specs []domain.FieldSpec, values map[string]interface{}) map[string]domain.FieldValue {
	out := make(map[string]domain.FieldValue, len(specs))
	for _, spec := range specs {
		raw, ok := values[spec.FieldName]
		if !ok || raw == nil {
			out[spec.FieldName] = domain.FieldValue{Value: nil, Type: domain.FieldTypeText}
			continue
		}
		s := strings.TrimSpace(cellString(raw))
		if s == "" || strings.EqualFold(s, "null") {
			out[spec.FieldName] = domain.FieldValue{Value: nil, Type: domain.FieldTypeText}
			continue
		}
		fieldType := domain.FieldTypeText
		if looksLikeDate(s) {
			fieldType = domain.FieldTypeDate
		}
		value := s
		out[spec.FieldName] = domain.FieldValue{Value: &value, Type: fieldType}
	}
	return out
}

// DetectHeaders derives the document-wide table header schema from the
// first page.
func (c *ExtractionClient) DetectHeaders(ctx context.Context, firstPage []byte) ([]string, error) {
	raw, err := c.inference.Generate(ctx, detectHeadersPrompt, domain.Attachment{MIMEType: pdfMIMEType, Data: firstPage})
	if err != nil {
		return nil, err
	}

	var headers []interface{}
	if err := coerceJSON(raw, &headers); err != nil {
		var envelope struct {
			Headers []interface{} `json:"headers"`
		}
		if err2 := coerceJSON(raw, &envelope); err2 != nil || len(envelope.Headers) == 0 {
			return nil, err
		}
		headers = envelope.Headers
	}

	out := make([]string, 0, len(headers))
	for _, h := range headers {
		s := strings.TrimSpace(cellString(h))
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, malformed(raw, "no usable table headers")
	}
	return out, nil
}

// ExtractTablePage extracts one page's table rows. The attachment is the
// page's whole group slice; the prompt targets the single page. Row arity
// is not enforced here; mismatches surface downstream.
func (c *ExtractionClient) ExtractTablePage(ctx context.Context, groupSlice []byte, headers []string, pageNumber int, group domain.PageGroup) (domain.ResultPage, error) {
	if pageNumber < group.StartPage || pageNumber > group.EndPage {
		return domain.ResultPage{}, fmt.Errorf("page %d outside group range %d-%d", pageNumber, group.StartPage, group.EndPage)
	}

	prompt := tablePagePrompt(headers, pageNumber, group)
	raw, err := c.inference.Generate(ctx, prompt, domain.Attachment{MIMEType: pdfMIMEType, Data: groupSlice})
	if err != nil {
		return domain.ResultPage{}, err
	}

	var rawRows [][]interface{}
	if err := coerceJSON(raw, &rawRows); err != nil {
		var envelope struct {
			Rows [][]interface{} `json:"rows"`
		}
		if err2 := coerceJSON(raw, &envelope); err2 != nil {
			return domain.ResultPage{}, err
		}
		rawRows = envelope.Rows
	}

	rows := make([][]string, 0, len(rawRows))
	for _, rawRow := range rawRows {
		row := make([]string, 0, len(rawRow))
		for _, cell := range rawRow {
			row = append(row, cellString(cell))
		}
		rows = append(rows, row)
	}

	return domain.ResultPage{
		PageNumber: pageNumber,
		TableData: &domain.TableData{
			Headers: headers,
			Rows:    rows,
		},
	}, nil
}
