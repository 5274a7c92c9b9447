package persistence

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"crypto-alert-bot/internal/exchange"
	"crypto-alert-bot/internal/strategy"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return rows
}

func closedPosition(id int64) *exchange.Position {
	p := exchange.NewPosition("BTCUSDT", "15m", "Hammer Candle", &strategy.Signal{
		Entry: 100, StopLoss: 90, TakeProfit: 110, Direction: strategy.Long,
	})
	p.ID = id
	p.Status = exchange.StatusClosed
	p.ExitPrice = 95
	p.ExitReason = exchange.ExitReasonStopLoss
	return p
}

func TestHistoryAppendsWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	history, err := NewCSVHistory(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := history.WriteClosed(closedPosition(1)); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := history.WriteClosed(closedPosition(2)); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("Header plus two records expected, got %d rows", len(rows))
	}
	if rows[0][0] != "id" || len(rows[0]) != len(exchange.HistoryHeader) {
		t.Errorf("First row should be the header, got %v", rows[0])
	}
	if rows[1][0] != "1" || rows[2][0] != "2" {
		t.Errorf("Records should append in order, got %v %v", rows[1][0], rows[2][0])
	}
}

func TestHistoryHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")

	first, err := NewCSVHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.WriteClosed(closedPosition(1)); err != nil {
		t.Fatal(err)
	}

	// A new store over the same non-empty file must not repeat the header
	second, err := NewCSVHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.WriteClosed(closedPosition(2)); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("Header must appear once across restarts, got %d rows", len(rows))
	}
}

func TestSnapshotReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.csv")
	snapshot, err := NewCSVSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}

	a := closedPosition(1)
	b := closedPosition(2)
	if err := snapshot.WriteOpen([]*exchange.Position{a, b}); err != nil {
		t.Fatal(err)
	}
	if err := snapshot.WriteOpen([]*exchange.Position{b}); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("Snapshot should hold header plus current set only, got %d rows", len(rows))
	}
	if rows[1][0] != "2" {
		t.Errorf("Snapshot should reflect the latest write, got %v", rows[1][0])
	}
}

func TestSnapshotEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.csv")
	snapshot, err := NewCSVSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := snapshot.WriteOpen(nil); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, path)
	if len(rows) != 1 {
		t.Errorf("Empty snapshot should keep just the header, got %d rows", len(rows))
	}
}

func TestStoreCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.csv")
	history, err := NewCSVHistory(path)
	if err != nil {
		t.Fatalf("Store should create parent directories: %v", err)
	}
	if err := history.WriteClosed(closedPosition(1)); err != nil {
		t.Fatalf("Write into created directory failed: %v", err)
	}
}

func TestStoreEmptyPath(t *testing.T) {
	if _, err := NewStore("", exchange.HistoryHeader, true); err == nil {
		t.Error("Empty path should be rejected")
	}
}

type failingSink struct{}

func (failingSink) WriteClosed(p *exchange.Position) error { return os.ErrPermission }
func (failingSink) WriteOpen(p []*exchange.Position) error { return os.ErrPermission }

func TestMultiHistoryAttemptsAllSinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	csvSink, err := NewCSVHistory(path)
	if err != nil {
		t.Fatal(err)
	}

	multi := MultiHistory{failingSink{}, csvSink}
	if err := multi.WriteClosed(closedPosition(1)); err == nil {
		t.Error("A failing sink should surface as the returned error")
	}

	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Errorf("Later sinks must still be attempted, got %d rows", len(rows))
	}
}
