package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"pdf-extract-api/internal/domain"
)

// DefaultCacheMaxDocuments bounds how many distinct documents the cache
// retains before evicting the least recently used one.
const DefaultCacheMaxDocuments = 32

// GroupSlice is a cached page-range sub-document: the group metadata plus
// the sliced bytes for that range.
type GroupSlice struct {
	Group domain.PageGroup
	Bytes []byte
}

type docEntry struct {
	doc    *domain.Document
	groups map[int]*GroupSlice
}

// PageGroupCache memoizes whole-document loads and per-group byte slices,
// keyed by content hash, so repeated group requests for the same PDF do not
// re-slice bytes. Safe for concurrent use; documents are evicted LRU once
// maxDocs is exceeded.
type PageGroupCache struct {
	mu        sync.Mutex
	engine    domain.PDFEngine
	grouper   *PageGrouper
	groupSize int
	maxDocs   int
	docs      map[string]*docEntry
	order     []string // least recently used first
	loads     int
	logger    domain.Logger
}

// NewPageGroupCache creates a new cache around the given engine. groupSize
// and maxDocs fall back to defaults when non-positive.
func NewPageGroupCache(engine domain.PDFEngine, grouper *PageGrouper, groupSize, maxDocs int, logger domain.Logger) *PageGroupCache {
	if groupSize < 1 {
		groupSize = DefaultGroupSize
	}
	if maxDocs < 1 {
		maxDocs = DefaultCacheMaxDocuments
	}
	return &PageGroupCache{
		engine:    engine,
		grouper:   grouper,
		groupSize: groupSize,
		maxDocs:   maxDocs,
		docs:      make(map[string]*docEntry),
		logger:    logger,
	}
}

// ContentKey returns the cache key for a document's byte content.
// Equal bytes always produce an equal key.
func ContentKey(pdf []byte) string {
	sum := sha256.Sum256(pdf)
	return hex.EncodeToString(sum[:])
}

// GetDocument loads a document once per distinct content key. Subsequent
// calls with byte-identical input return the previously loaded Document
// without re-parsing.
func (c *PageGroupCache) GetDocument(pdf []byte) (*domain.Document, error) {
	key := ContentKey(pdf)

	c.mu.Lock()
	if entry, ok := c.docs[key]; ok {
		c.touch(key)
		c.mu.Unlock()
		return entry.doc, nil
	}
	c.mu.Unlock()

	// Parse outside the lock; a racing load of the same key is harmless,
	// the second insert just wins.
	pageCount, err := c.engine.PageCount(pdf)
	if err != nil {
		return nil, err
	}
	if pageCount < 1 {
		return nil, domain.ErrEmptyDocument
	}
	doc := &domain.Document{Bytes: pdf, PageCount: pageCount, ContentKey: key}

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.docs[key]; ok {
		c.touch(key)
		return entry.doc, nil
	}
	c.loads++
	c.docs[key] = &docEntry{doc: doc, groups: make(map[int]*GroupSlice)}
	c.order = append(c.order, key)
	c.evictLocked()
	return doc, nil
}

// GetGroup returns the cached slice for (contentKey, groupIndex), computing
// and storing it on first request. The group is derived from the document's
// page count and the configured group size.
func (c *PageGroupCache) GetGroup(pdf []byte, groupIndex int) (*GroupSlice, error) {
	doc, err := c.GetDocument(pdf)
	if err != nil {
		return nil, err
	}

	if groupIndex < 0 {
		return nil, fmt.Errorf("%w: group index %d", domain.ErrGroupIndexOutOfRange, groupIndex)
	}
	startPage := groupIndex*c.groupSize + 1
	if startPage > doc.PageCount {
		return nil, fmt.Errorf("%w: group %d starts at page %d but document has %d pages",
			domain.ErrGroupIndexOutOfRange, groupIndex, startPage, doc.PageCount)
	}

	c.mu.Lock()
	if entry, ok := c.docs[doc.ContentKey]; ok {
		if slice, ok := entry.groups[groupIndex]; ok {
			c.touch(doc.ContentKey)
			c.mu.Unlock()
			return slice, nil
		}
	}
	c.mu.Unlock()

	group, err := c.grouper.GroupForPage(startPage, doc.PageCount, c.groupSize)
	if err != nil {
		return nil, err
	}

	var sliceBytes []byte
	if group.StartPage == 1 && group.EndPage == doc.PageCount {
		// The group covers the whole document; no slicing needed.
		sliceBytes = doc.Bytes
	} else {
		sliceBytes, err = c.engine.Slice(doc.Bytes, group.StartPage, group.EndPage)
		if err != nil {
			return nil, err
		}
	}
	slice := &GroupSlice{Group: group, Bytes: sliceBytes}

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.docs[doc.ContentKey]; ok {
		entry.groups[groupIndex] = slice
	}
	return slice, nil
}

// Clear drops all cached documents and group slices. In-flight operations
// already holding a reference are unaffected.
func (c *PageGroupCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = make(map[string]*docEntry)
	c.order = nil
}

// Loads reports how many document parses the cache has performed. Used by
// tests to verify that byte-identical input never triggers a re-parse.
func (c *PageGroupCache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// touch moves key to the most-recently-used end. Caller holds c.mu.
func (c *PageGroupCache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), key)
			return
		}
	}
}

// evictLocked drops least-recently-used documents beyond maxDocs.
// Caller holds c.mu.
func (c *PageGroupCache) evictLocked() {
	for len(c.order) > c.maxDocs {
		victim := c.order[0]
		c.order = c.order[1:]
		delete(c.docs, victim)
		c.logger.Debug("Evicted cached document", "content_key", victim[:12])
	}
}
