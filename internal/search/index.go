package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/blevesearch/bleve/v2"

	domainerrors "github.com/gencat/gencat/internal/errors"
)

// EventIndex is a bleve index holding one document per catalog event.
// Methods are safe for concurrent use; Rebuild swaps the handle under the write lock.
type EventIndex struct {
	index  bleve.Index
	path   string // empty for in-memory indexes
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures an on-disk index.
type Options struct {
	DataPath string
	Logger   *slog.Logger // nil discards
}

// mappingVersion is bumped with every change to buildIndexMapping.
const mappingVersion = "1"

const indexBatchSize = 500

const (
	indexDirName    = "catalog.bleve"
	versionFileName = "catalog.version"
)

// NewEventIndex opens the on-disk index under opts.DataPath, creating it when
// absent. An index written with another mapping version, or one bleve cannot
// open, is discarded and recreated empty; the next run repopulates it.
func NewEventIndex(opts Options) (*EventIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &EventIndex{
		path:   filepath.Join(opts.DataPath, indexDirName),
		logger: logger,
	}
	versionPath := filepath.Join(opts.DataPath, versionFileName)

	if reason := s.staleReason(versionPath); reason == "" {
		index, err := bleve.Open(s.path)
		if err == nil {
			s.index = index
			logger.Info("opened catalog index", "path", s.path)
			return s, nil
		}
		logger.Warn("catalog index unreadable, recreating", "path", s.path, "error", err)
	} else if reason != "missing" {
		logger.Info("catalog index stale, recreating", "path", s.path, "reason", reason)
	}

	if err := os.RemoveAll(s.path); err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeIO, "remove index %s", s.path)
	}
	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeIO, "create index dir %s", opts.DataPath)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeIO, "create index %s", s.path)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		logger.Warn("could not record index mapping version", "error", err)
	}

	s.index = index
	logger.Info("created catalog index", "path", s.path, "mapping_version", mappingVersion)
	return s, nil
}

// staleReason reports why the index at s.path cannot be reused as is, or ""
// when it can.
func (s *EventIndex) staleReason(versionPath string) string {
	if _, err := os.Stat(s.path); err != nil {
		return "missing"
	}
	stored, err := os.ReadFile(versionPath)
	switch {
	case err != nil:
		return "no version file"
	case string(stored) != mappingVersion:
		return "mapping version " + string(stored) + " != " + mappingVersion
	}
	return ""
}

// NewMemOnly creates an index that lives only in memory.
func NewMemOnly(logger *slog.Logger) (*EventIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &EventIndex{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *EventIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexEvents indexes docs, committing a batch every indexBatchSize documents.
func (s *EventIndex) IndexEvents(docs []*EventDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for chunk := range slices.Chunk(docs, indexBatchSize) {
		batch := s.index.NewBatch()
		for _, doc := range chunk {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return domainerrors.Wrapf(err, domainerrors.CodeInternal, "index event %s", doc.ID)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return domainerrors.Wrapf(err, domainerrors.CodeIO, "commit %d events", len(chunk))
		}
	}

	s.logger.Debug("indexed events", "count", len(docs))
	return nil
}

// DocumentCount returns the total number of indexed documents.
func (s *EventIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document by recreating the index. Each run replaces the
// catalog wholesale, so the caller rebuilds before indexing.
func (s *EventIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
