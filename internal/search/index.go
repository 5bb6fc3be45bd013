package search

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/srtwork/srtwork-server/internal/domain"
)

// LineIndex wraps an in-memory Bleve index over one document's lines.
//
// All public methods are safe for concurrent use. The mutex guards the
// index pointer, which Replace swaps for a fresh index.
type LineIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewLineIndex creates an empty index. logger may be nil.
func NewLineIndex(logger *slog.Logger) (*LineIndex, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &LineIndex{index: index, logger: logger}, nil
}

// Close releases the index.
func (s *LineIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Replace drops every indexed line and indexes entries in their place.
func (s *LineIndex) Replace(entries []domain.SubtitleEntry) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := indexBatch(fresh, entries); err != nil {
		_ = fresh.Close()
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close replaced line index", "error", err)
	}
	s.logger.Debug("line index rebuilt", "lines", len(entries))
	return nil
}

// indexBatch indexes entries in chunks.
func indexBatch(index bleve.Index, entries []domain.SubtitleEntry) error {
	const batchSize = 500

	for i := 0; i < len(entries); i += batchSize {
		end := min(i+batchSize, len(entries))

		batch := index.NewBatch()
		for j := i; j < end; j++ {
			doc := LineToDocument(j, entries[j])
			if err := batch.Index(doc.DocID(), doc.ToMap()); err != nil {
				return fmt.Errorf("batch index line %d: %w", j, err)
			}
		}
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// Update reindexes the entry at position index.
func (s *LineIndex) Update(index int, e domain.SubtitleEntry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := LineToDocument(index, e)
	return s.index.Index(doc.DocID(), doc.ToMap())
}

// DocumentCount returns the number of indexed lines.
func (s *LineIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
