package dataset

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestFrameDropColumns(t *testing.T) {
	f := NewFrame([]string{"id", "price", "predicted_price", "price_diff"})
	if err := f.AppendRow([]string{"1", "1000", "980", "20"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	out := f.DropColumns("predicted_price", "price_diff", "not_there")
	wantCols := []string{"id", "price"}
	gotCols := out.Columns()
	if len(gotCols) != len(wantCols) {
		t.Fatalf("columns: got %v, want %v", gotCols, wantCols)
	}
	for i := range wantCols {
		if gotCols[i] != wantCols[i] {
			t.Errorf("column %d: got %s, want %s", i, gotCols[i], wantCols[i])
		}
	}

	price, _ := out.Value(0, "price")
	if price != "1000" {
		t.Errorf("price cell: got %s, want 1000", price)
	}
}

func TestFrameConcatProjectsSchema(t *testing.T) {
	a := NewFrame([]string{"id", "price", "station"})
	_ = a.AppendRow([]string{"1", "1000", "Hoboken"})

	// other has the columns in a different order and one extra.
	b := NewFrame([]string{"price", "id", "extra"})
	_ = b.AppendRow([]string{"1200", "2", "x"})

	out := a.Concat(b)
	if out.Len() != 2 {
		t.Fatalf("rows: got %d, want 2", out.Len())
	}
	id, _ := out.Value(1, "id")
	price, _ := out.Value(1, "price")
	station, _ := out.Value(1, "station")
	if id != "2" || price != "1200" || station != "" {
		t.Errorf("projected row: id=%s price=%s station=%q", id, price, station)
	}
	if out.HasColumn("extra") {
		t.Error("unknown column leaked through Concat")
	}
}

func TestFrameDedupKeepsLast(t *testing.T) {
	f := NewFrame([]string{"id", "price"})
	_ = f.AppendRow([]string{"1", "1000"})
	_ = f.AppendRow([]string{"2", "1200"})
	_ = f.AppendRow([]string{"1", "1050"})

	out, err := f.DedupLastByColumn("id")
	if err != nil {
		t.Fatalf("dedup: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("rows: got %d, want 2", out.Len())
	}
	price, _ := out.Value(0, "price")
	if price != "1050" {
		t.Errorf("id=1 price: got %s, want 1050 (last occurrence)", price)
	}
}

func TestFrameFloatsSkipsNonNumeric(t *testing.T) {
	f := NewFrame([]string{"price"})
	_ = f.AppendRow([]string{"1000"})
	_ = f.AppendRow([]string{""})
	_ = f.AppendRow([]string{"n/a"})
	_ = f.AppendRow([]string{"1250.5"})

	vals, skipped := f.Floats("price")
	if len(vals) != 2 || skipped != 2 {
		t.Errorf("got %d values %d skipped, want 2/2", len(vals), skipped)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	in := "id,price,station\n1,1000,Hoboken\n2,1200,\"Newark, Penn\"\n"
	f, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("rows: got %d, want 2", f.Len())
	}
	station, _ := f.Value(1, "station")
	if station != "Newark, Penn" {
		t.Errorf("quoted cell: got %q", station)
	}

	var buf bytes.Buffer
	if err := f.WriteCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if back.Len() != f.Len() {
		t.Errorf("round trip rows: got %d, want %d", back.Len(), f.Len())
	}
}

func TestFileStoreNotFoundVsIOError(t *testing.T) {
	store := NewFileStore()
	dir := t.TempDir()

	_, err := store.Read(filepath.Join(dir, "missing.csv"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file: expected ErrNotFound, got %v", err)
	}

	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		t.Error("missing file must not be reported as a StorageError")
	}
}

func TestFileStoreAtomicReplace(t *testing.T) {
	store := NewFileStore()
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "table.csv")

	first := NewFrame([]string{"id"})
	_ = first.AppendRow([]string{"1"})
	if err := store.Write(path, first); err != nil {
		t.Fatalf("first write: %v", err)
	}

	second := NewFrame([]string{"id"})
	_ = second.AppendRow([]string{"1"})
	_ = second.AppendRow([]string{"2"})
	if err := store.Write(path, second); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := store.Read(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("rows after replace: got %d, want 2", got.Len())
	}

	// No temp files may survive a completed write.
	matches, _ := filepath.Glob(filepath.Join(dir, "sub", "*.tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}
