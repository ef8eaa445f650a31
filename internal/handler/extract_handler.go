package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"pdf-extract-api/internal/domain"
	"pdf-extract-api/internal/service"
)

// ExtractHandler handles HTTP requests for the extraction pipeline
type ExtractHandler struct {
	extraction domain.ExtractionService
	grouper    *service.PageGrouper
	groupSize  int
	logger     domain.Logger
}

// NewExtractHandler creates a new extraction handler instance
func NewExtractHandler(extraction domain.ExtractionService, groupSize int, logger domain.Logger) *ExtractHandler {
	if groupSize < 1 {
		groupSize = service.DefaultGroupSize
	}
	return &ExtractHandler{
		extraction: extraction,
		grouper:    service.NewPageGrouper(),
		groupSize:  groupSize,
		logger:     logger,
	}
}

type mergeRequest struct {
	PDFs []string `json:"pdfs"`
}

type documentRequest struct {
	Base64Content string `json:"base64Content"`
}

type extractGroupRequest struct {
	Base64Content  string             `json:"base64Content"`
	SelectedFields []domain.FieldSpec `json:"selectedFields"`
	GroupInfo      struct {
		GroupIndex *int `json:"groupIndex"`
	} `json:"groupInfo"`
}

// MergePDFs concatenates the uploaded documents into one PDF.
func (h *ExtractHandler) MergePDFs(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.PDFs) == 0 {
		writeError(w, http.StatusBadRequest, "pdfs: at least one document is required")
		return
	}

	inputs := make([][]byte, 0, len(req.PDFs))
	for _, encoded := range req.PDFs {
		data, err := decodeBase64PDF(encoded)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		inputs = append(inputs, data)
	}

	merged, err := h.extraction.MergePDFs(r.Context(), inputs)
	if err != nil {
		h.logger.Error("Merge failed", err, "inputs", len(inputs))
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"mergedPDF": base64.StdEncoding.EncodeToString(merged),
	})
}

// GetPageCount returns the total page count of a document.
func (h *ExtractHandler) GetPageCount(w http.ResponseWriter, r *http.Request) {
	pdf, ok := h.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	count, err := h.extraction.PageCount(r.Context(), pdf)
	if err != nil {
		h.logger.Error("Page count failed", err)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"pageCount": count,
	})
}

// SuggestFields derives the extractable field schema from a document's
// first page.
func (h *ExtractHandler) SuggestFields(w http.ResponseWriter, r *http.Request) {
	pdf, ok := h.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	fields, err := h.extraction.SuggestFields(r.Context(), pdf)
	if err != nil {
		h.logger.Error("Field suggestion failed", err)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"fields":  fields,
	})
}

// ExtractDataGroup extracts the selected fields from one page group.
func (h *ExtractHandler) ExtractDataGroup(w http.ResponseWriter, r *http.Request) {
	var req extractGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pdf, err := decodeBase64PDF(req.Base64Content)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	if req.GroupInfo.GroupIndex == nil || *req.GroupInfo.GroupIndex < 0 {
		writeError(w, http.StatusBadRequest, "groupInfo.groupIndex: a non-negative group index is required")
		return
	}
	fields := trimFieldSpecs(req.SelectedFields)
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "selectedFields: at least one field is required")
		return
	}

	groupIndex := *req.GroupInfo.GroupIndex
	totalPages, err := h.extraction.PageCount(r.Context(), pdf)
	if err != nil {
		h.logger.Error("Page count failed", err)
		writePipelineError(w, err)
		return
	}
	group, err := h.resolveGroup(groupIndex, totalPages)
	if err != nil {
		h.logger.Error("Group resolution failed", err, "group_index", groupIndex, "total_pages", totalPages)
		writePipelineError(w, err)
		return
	}

	pages, err := h.extraction.ExtractGroup(r.Context(), pdf, fields, group)
	if err != nil {
		h.logger.Error("Group extraction failed", err,
			"group_index", group.GroupIndex, "start_page", group.StartPage, "end_page", group.EndPage)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"data":      map[string]interface{}{"pages": pages},
		"groupInfo": group,
	})
}

// ExtractTableData runs the full table flow against a document.
func (h *ExtractHandler) ExtractTableData(w http.ResponseWriter, r *http.Request) {
	pdf, ok := h.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	result, err := h.extraction.ExtractTable(r.Context(), pdf)
	if err != nil {
		h.logger.Error("Table extraction failed", err)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    map[string]interface{}{"pages": result.Pages},
	})
}

// decodeDocumentRequest parses the common single-document request body.
// Writes the error response itself when the request is invalid.
func (h *ExtractHandler) decodeDocumentRequest(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	pdf, err := decodeBase64PDF(req.Base64Content)
	if err != nil {
		writePipelineError(w, err)
		return nil, false
	}
	return pdf, true
}

// resolveGroup maps a group index onto its page range for the document.
// An index whose start page falls beyond the document is out of range.
func (h *ExtractHandler) resolveGroup(groupIndex, totalPages int) (domain.PageGroup, error) {
	startPage := groupIndex*h.groupSize + 1
	if startPage > totalPages {
		return domain.PageGroup{}, domain.ErrGroupIndexOutOfRange
	}
	return h.grouper.GroupForPage(startPage, totalPages, h.groupSize)
}

func trimFieldSpecs(fields []domain.FieldSpec) []domain.FieldSpec {
	out := make([]domain.FieldSpec, 0, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f.FieldName)
		if name == "" {
			continue
		}
		out = append(out, domain.FieldSpec{FieldName: name, Description: strings.TrimSpace(f.Description)})
	}
	return out
}
