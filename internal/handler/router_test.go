package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newRouter(NewMockExtractionService(10), 10, 1024*1024, NewMockHandlerLogger())
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", recorder.Body.String())
	}
}

func TestRouter_ExtractionRoutesArePostOnly(t *testing.T) {
	router := newTestRouter(t)
	paths := []string{
		"/merge-pdfs",
		"/get-page-count",
		"/suggest-fields",
		"/extract-data-group",
		"/extract-table-data",
	}

	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: expected 405, got %d", path, recorder.Code)
		}
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/no-such-route", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestRouter_BodySizeLimit(t *testing.T) {
	router := newRouter(NewMockExtractionService(10), 10, 64, NewMockHandlerLogger())

	oversized := bytes.Repeat([]byte("a"), 256)
	req := httptest.NewRequest(http.MethodPost, "/get-page-count", bytes.NewReader(oversized))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d", recorder.Code)
	}
}
