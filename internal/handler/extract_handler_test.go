package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdf-extract-api/internal/domain"
)

// MockExtractionService returns canned results for handler testing.
type MockExtractionService struct {
	pageCount   int
	mergeErr    error
	extractErr  error
	lastFields  []domain.FieldSpec
	lastGroup   domain.PageGroup
	tableResult *domain.AccumulatedResult
}

func NewMockExtractionService(pageCount int) *MockExtractionService {
	return &MockExtractionService{pageCount: pageCount}
}

func (m *MockExtractionService) MergePDFs(ctx context.Context, inputs [][]byte) ([]byte, error) {
	if m.mergeErr != nil {
		return nil, m.mergeErr
	}
	return bytes.Join(inputs, nil), nil
}

func (m *MockExtractionService) PageCount(ctx context.Context, pdf []byte) (int, error) {
	return m.pageCount, nil
}

func (m *MockExtractionService) SuggestFields(ctx context.Context, pdf []byte) ([]domain.FieldSpec, error) {
	return []domain.FieldSpec{{FieldName: "total", Description: "The total amount"}}, nil
}

func (m *MockExtractionService) ExtractGroup(ctx context.Context, pdf []byte, fields []domain.FieldSpec, group domain.PageGroup) ([]domain.ResultPage, error) {
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	m.lastFields = fields
	m.lastGroup = group
	value := "extracted"
	pages := make([]domain.ResultPage, 0, group.PageSpan())
	for p := group.StartPage; p <= group.EndPage; p++ {
		pages = append(pages, domain.ResultPage{
			PageNumber: p,
			Fields:     map[string]domain.FieldValue{"total": {Value: &value, Type: domain.FieldTypeText}},
		})
	}
	return pages, nil
}

func (m *MockExtractionService) ExtractTable(ctx context.Context, pdf []byte) (*domain.AccumulatedResult, error) {
	if m.tableResult != nil {
		return m.tableResult, nil
	}
	return &domain.AccumulatedResult{Pages: []domain.ResultPage{}}, nil
}

func b64PDF(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handlerFunc(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v: %s", err, recorder.Body.String())
	}
	return body
}

func TestMergePDFs_Success(t *testing.T) {
	svc := NewMockExtractionService(5)
	h := NewExtractHandler(svc, 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.MergePDFs, map[string]interface{}{
		"pdfs": []string{b64PDF("doc-a"), b64PDF("doc-b")},
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody(t, recorder)
	if body["success"] != true {
		t.Fatal("expected success true")
	}
	merged, err := base64.StdEncoding.DecodeString(body["mergedPDF"].(string))
	if err != nil {
		t.Fatalf("mergedPDF is not valid base64: %v", err)
	}
	if string(merged) != "doc-adoc-b" {
		t.Errorf("unexpected merged content %q", merged)
	}
}

func TestMergePDFs_RejectsEmptyList(t *testing.T) {
	h := NewExtractHandler(NewMockExtractionService(5), 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.MergePDFs, map[string]interface{}{"pdfs": []string{}})

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["success"] != false {
		t.Fatal("expected success false in error envelope")
	}
}

func TestMergePDFs_RejectsBadBase64(t *testing.T) {
	h := NewExtractHandler(NewMockExtractionService(5), 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.MergePDFs, map[string]interface{}{
		"pdfs": []string{"not base64!!!"},
	})

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestGetPageCount_Success(t *testing.T) {
	h := NewExtractHandler(NewMockExtractionService(25), 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.GetPageCount, map[string]interface{}{
		"base64Content": b64PDF("doc"),
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody(t, recorder)
	if body["pageCount"] != float64(25) {
		t.Errorf("expected pageCount 25, got %v", body["pageCount"])
	}
}

func TestGetPageCount_RejectsMissingContent(t *testing.T) {
	h := NewExtractHandler(NewMockExtractionService(25), 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.GetPageCount, map[string]interface{}{})

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestSuggestFields_Success(t *testing.T) {
	h := NewExtractHandler(NewMockExtractionService(25), 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.SuggestFields, map[string]interface{}{
		"base64Content": b64PDF("doc"),
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody(t, recorder)
	fields, ok := body["fields"].([]interface{})
	if !ok || len(fields) != 1 {
		t.Fatalf("expected 1 suggested field, got %v", body["fields"])
	}
}

func TestExtractDataGroup_ResolvesGroupRange(t *testing.T) {
	svc := NewMockExtractionService(25)
	h := NewExtractHandler(svc, 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.ExtractDataGroup, map[string]interface{}{
		"base64Content":  b64PDF("doc"),
		"selectedFields": []map[string]string{{"fieldName": "total", "description": "The total"}},
		"groupInfo":      map[string]int{"groupIndex": 2},
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	// Group 2 of a 25-page document with group size 10 covers pages 21-25.
	if svc.lastGroup.StartPage != 21 || svc.lastGroup.EndPage != 25 {
		t.Errorf("expected resolved range 21-25, got %d-%d", svc.lastGroup.StartPage, svc.lastGroup.EndPage)
	}
	if !svc.lastGroup.IsLastGroup {
		t.Error("expected final group to be marked last")
	}

	body := decodeBody(t, recorder)
	groupInfo, ok := body["groupInfo"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected groupInfo object, got %v", body["groupInfo"])
	}
	if groupInfo["startPage"] != float64(21) || groupInfo["endPage"] != float64(25) {
		t.Errorf("groupInfo should echo the resolved range, got %v", groupInfo)
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %v", body["data"])
	}
	pages, ok := data["pages"].([]interface{})
	if !ok || len(pages) != 5 {
		t.Fatalf("expected 5 result pages, got %v", data["pages"])
	}
}

func TestExtractDataGroup_GroupIndexBeyondDocument(t *testing.T) {
	h := NewExtractHandler(NewMockExtractionService(20), 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.ExtractDataGroup, map[string]interface{}{
		"base64Content":  b64PDF("doc"),
		"selectedFields": []map[string]string{{"fieldName": "total", "description": "The total"}},
		"groupInfo":      map[string]int{"groupIndex": 2},
	})

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for out-of-range group, got %d", recorder.Code)
	}
}

func TestExtractDataGroup_RequiresFields(t *testing.T) {
	h := NewExtractHandler(NewMockExtractionService(25), 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.ExtractDataGroup, map[string]interface{}{
		"base64Content": b64PDF("doc"),
		"groupInfo":     map[string]int{"groupIndex": 0},
	})

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestExtractDataGroup_RequiresGroupIndex(t *testing.T) {
	h := NewExtractHandler(NewMockExtractionService(25), 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.ExtractDataGroup, map[string]interface{}{
		"base64Content":  b64PDF("doc"),
		"selectedFields": []map[string]string{{"fieldName": "total", "description": "The total"}},
	})

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestExtractDataGroup_RetriesExhaustedBecomesBadGateway(t *testing.T) {
	svc := NewMockExtractionService(25)
	svc.extractErr = fmt.Errorf("group 1 (pages 11-20): %w", domain.ErrRetriesExhausted)
	h := NewExtractHandler(svc, 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.ExtractDataGroup, map[string]interface{}{
		"base64Content":  b64PDF("doc"),
		"selectedFields": []map[string]string{{"fieldName": "total", "description": "The total"}},
		"groupInfo":      map[string]int{"groupIndex": 1},
	})

	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	errMsg, _ := body["error"].(string)
	if !strings.Contains(errMsg, "pages 11-20") {
		t.Errorf("error should name the failed page range, got %q", errMsg)
	}
}

func TestExtractTableData_Success(t *testing.T) {
	svc := NewMockExtractionService(10)
	svc.tableResult = &domain.AccumulatedResult{Pages: []domain.ResultPage{
		{PageNumber: 1, TableData: &domain.TableData{Headers: []string{"Date"}, Rows: [][]string{{"2024-01-02"}}}},
		{PageNumber: 2, TableData: &domain.TableData{Headers: []string{"Date"}, Rows: [][]string{}}},
	}}
	h := NewExtractHandler(svc, 10, NewMockHandlerLogger())

	recorder := postJSON(t, h.ExtractTableData, map[string]interface{}{
		"base64Content": b64PDF("doc"),
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	body := decodeBody(t, recorder)
	data := body["data"].(map[string]interface{})
	pages, ok := data["pages"].([]interface{})
	if !ok || len(pages) != 2 {
		t.Fatalf("expected 2 table pages, got %v", data["pages"])
	}
	second := pages[1].(map[string]interface{})
	tableData := second["tableData"].(map[string]interface{})
	rows, ok := tableData["rows"].([]interface{})
	if !ok {
		t.Fatalf("rows must serialize as an array, got %v", tableData["rows"])
	}
	if len(rows) != 0 {
		t.Errorf("expected empty rows for page 2, got %v", rows)
	}
}
