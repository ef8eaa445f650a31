package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pdf-extract-api/internal/domain"
)

// Mock implementations shared by the service package tests.

type MockLogger struct{}

func NewMockLogger() domain.Logger {
	return &MockLogger{}
}

func (l *MockLogger) Info(msg string, fields ...interface{})             {}
func (l *MockLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockLogger) Warn(msg string, fields ...interface{})             {}

// MockPDFEngine treats a document as the textual form "pdf:<n>" where n is
// the page count. Slices are encoded as "slice:<start>-<end>:<parent>".
type MockPDFEngine struct {
	mu         sync.Mutex
	PageCounts int // number of PageCount calls
	Slices     int // number of Slice calls
}

func NewMockPDFEngine() *MockPDFEngine {
	return &MockPDFEngine{}
}

// MockPDF builds a synthetic document with the given page count.
func MockPDF(pages int) []byte {
	return []byte(fmt.Sprintf("pdf:%d", pages))
}

func (e *MockPDFEngine) PageCount(pdf []byte) (int, error) {
	e.mu.Lock()
	e.PageCounts++
	e.mu.Unlock()

	s := string(pdf)
	var pages int
	if _, err := fmt.Sscanf(s, "pdf:%d", &pages); err != nil {
		if strings.HasPrefix(s, "slice:") {
			var start, end int
			if _, err := fmt.Sscanf(s, "slice:%d-%d", &start, &end); err == nil {
				return end - start + 1, nil
			}
		}
		return 0, errors.New("not a parsable document")
	}
	return pages, nil
}

func (e *MockPDFEngine) Merge(ctx context.Context, inputs [][]byte) ([]byte, error) {
	total := 0
	valid := 0
	for _, in := range inputs {
		pages, err := e.PageCount(in)
		if err != nil {
			continue
		}
		total += pages
		valid++
	}
	if valid == 0 {
		return nil, domain.ErrNoValidInput
	}
	return MockPDF(total), nil
}

func (e *MockPDFEngine) Slice(pdf []byte, startPage, endPage int) ([]byte, error) {
	e.mu.Lock()
	e.Slices++
	e.mu.Unlock()

	if startPage < 1 || endPage < startPage {
		return nil, fmt.Errorf("invalid range %d-%d", startPage, endPage)
	}
	return []byte(fmt.Sprintf("slice:%d-%d:%s", startPage, endPage, string(pdf))), nil
}

// MockInferenceClient returns scripted responses in order. Once the script
// is exhausted it keeps returning the final entry.
type MockInferenceClient struct {
	mu        sync.Mutex
	Responses []string
	Errs      []error
	Calls     int
	Prompts   []string
}

func NewMockInferenceClient(responses ...string) *MockInferenceClient {
	return &MockInferenceClient{Responses: responses}
}

func (m *MockInferenceClient) Generate(ctx context.Context, prompt string, attachment domain.Attachment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.Calls
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)

	if len(m.Errs) > 0 {
		i := idx
		if i >= len(m.Errs) {
			i = len(m.Errs) - 1
		}
		if m.Errs[i] != nil {
			return "", m.Errs[i]
		}
	}
	if len(m.Responses) == 0 {
		return "", errors.New("no scripted response")
	}
	i := idx
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}
