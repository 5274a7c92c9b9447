// Package persistence writes position data to durable sinks.
package persistence

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"crypto-alert-bot/internal/exchange"
)

// Store writes rows to a single CSV file. In append mode rows accumulate
// and the header is written once when the file is empty; otherwise every
// write replaces the whole file.
type Store struct {
	path       string
	header     []string
	appendMode bool
	mu         sync.Mutex
}

// NewStore creates a CSV store, creating parent directories as needed.
func NewStore(path string, header []string, appendMode bool) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("csv store path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &Store{path: path, header: header, appendMode: appendMode}, nil
}

// Append adds rows to the end of the file, writing the header first if the
// file is new or empty.
func (s *Store) Append(rows ...[]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(s.header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Replace truncates the file and writes the header followed by rows.
func (s *Store) Replace(rows ...[]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(s.header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// CSVHistory appends one row per closed position to a trade history file.
type CSVHistory struct {
	store *Store
}

// NewCSVHistory creates a history sink at path.
func NewCSVHistory(path string) (*CSVHistory, error) {
	store, err := NewStore(path, exchange.HistoryHeader, true)
	if err != nil {
		return nil, err
	}
	return &CSVHistory{store: store}, nil
}

func (h *CSVHistory) WriteClosed(p *exchange.Position) error {
	return h.store.Append(p.HistoryRow())
}

// CSVSnapshot rewrites a file with the current set of open positions.
type CSVSnapshot struct {
	store *Store
}

// NewCSVSnapshot creates a snapshot sink at path.
func NewCSVSnapshot(path string) (*CSVSnapshot, error) {
	store, err := NewStore(path, exchange.SnapshotHeader, false)
	if err != nil {
		return nil, err
	}
	return &CSVSnapshot{store: store}, nil
}

func (s *CSVSnapshot) WriteOpen(positions []*exchange.Position) error {
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, p.SnapshotRow())
	}
	return s.store.Replace(rows...)
}

var (
	_ exchange.HistorySink  = (*CSVHistory)(nil)
	_ exchange.SnapshotSink = (*CSVSnapshot)(nil)
)
