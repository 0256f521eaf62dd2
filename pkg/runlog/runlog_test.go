package runlog

import (
	"path/filepath"
	"testing"
	"time"
)

func record(index int, state ImageState) ImageRecord {
	rec := ImageRecord{
		Index:       index,
		Name:        "image_000000",
		State:       state,
		Verdict:     "SAFE",
		MinDistance: 0.52,
		Attempts:    1,
		RunID:       "run-a",
		CreatedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	if state == StateAccepted {
		rec.OutputPath = "output/image_000000.png"
		rec.SegPath = "output/seg_000000.png"
	}
	if state == StateExhausted {
		rec.Verdict = "VIOLATION"
		rec.ViolatingPair = "hand-gripper"
		rec.MinDistance = 0.1
		rec.Attempts = 10
	}
	return rec
}

func TestLoggerAppendOrder(t *testing.T) {
	l := NewLogger()

	for i := range 5 {
		state := StateAccepted
		if i == 2 {
			state = StateExhausted
		}
		if err := l.Append(record(i, state)); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}

	if l.Count() != 5 {
		t.Errorf("Count = %d, want 5", l.Count())
	}
	recs := l.Records()
	for i, r := range recs {
		if r.Index != i {
			t.Errorf("record %d has index %d", i, r.Index)
		}
	}

	// Exhausted images still hold their slot in the sequence.
	if recs[2].State != StateExhausted {
		t.Errorf("record 2 state = %s", recs[2].State)
	}
	if recs[2].OutputPath != "" {
		t.Error("exhausted record must not carry an output path")
	}
}

func TestLoggerRejectsNonIncreasingIndex(t *testing.T) {
	l := NewLogger()
	if err := l.Append(record(3, StateAccepted)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := l.Append(record(3, StateAccepted)); err == nil {
		t.Error("duplicate index should be rejected")
	}
	if err := l.Append(record(1, StateAccepted)); err == nil {
		t.Error("decreasing index should be rejected")
	}
	if l.Count() != 1 {
		t.Errorf("rejected appends must not grow the log, count = %d", l.Count())
	}
}

func TestLoggerByIndex(t *testing.T) {
	l := NewLogger()
	_ = l.Append(record(0, StateAccepted))
	_ = l.Append(record(1, StateRenderFailed))

	rec, ok := l.ByIndex(1)
	if !ok || rec.State != StateRenderFailed {
		t.Errorf("ByIndex(1) = %+v, %v", rec, ok)
	}
	if _, ok := l.ByIndex(7); ok {
		t.Error("ByIndex(7) should report missing")
	}
}

func TestLoggerRecordsIsACopy(t *testing.T) {
	l := NewLogger()
	_ = l.Append(record(0, StateAccepted))

	recs := l.Records()
	recs[0].Name = "tampered"

	if l.Records()[0].Name == "tampered" {
		t.Error("Records must return a copy")
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendered_data.csv")

	want := []ImageRecord{
		record(0, StateAccepted),
		record(1, StateExhausted),
		record(2, StateRenderFailed),
	}
	if err := AppendCSV(path, want); err != nil {
		t.Fatalf("AppendCSV: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("read %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNextIndexContinuation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendered_data.csv")

	// No file yet: a new dataset starts at zero.
	idx, err := NextIndex(path)
	if err != nil {
		t.Fatalf("NextIndex: %v", err)
	}
	if idx != 0 {
		t.Errorf("NextIndex on missing file = %d, want 0", idx)
	}

	if err := AppendCSV(path, []ImageRecord{record(0, StateAccepted), record(1, StateExhausted)}); err != nil {
		t.Fatalf("AppendCSV: %v", err)
	}

	idx, err = NextIndex(path)
	if err != nil {
		t.Fatalf("NextIndex: %v", err)
	}
	if idx != 2 {
		t.Errorf("NextIndex = %d, want 2", idx)
	}

	// A second run appends from there without rewriting the header.
	if err := AppendCSV(path, []ImageRecord{record(2, StateAccepted)}); err != nil {
		t.Fatalf("AppendCSV: %v", err)
	}
	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("read %d records after two runs, want 3", len(got))
	}
	if got[2].Index != 2 {
		t.Errorf("last record index = %d, want 2", got[2].Index)
	}
}
