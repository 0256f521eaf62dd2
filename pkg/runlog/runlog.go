// Package runlog keeps the append-only record sequence of a generation run.
//
// Every resolved image produces exactly one record, whether it rendered, ran
// out of sampling attempts, or failed at render time. Nothing is dropped or
// reordered; downstream consumers filter on the state column to exclude
// incomplete entries and to quantify rejection rates.
package runlog

import (
	"sync"
	"time"

	"github.com/matzehuels/cobotgen/pkg/errors"
)

// ImageState is the terminal state of one requested image.
type ImageState string

// Image states. Only accepted images carry output paths.
const (
	StateAccepted     ImageState = "accepted"
	StateExhausted    ImageState = "exhausted"
	StateRenderFailed ImageState = "render_failed"
)

// ImageRecord is one row of the run log.
type ImageRecord struct {
	Index         int        `bson:"index" json:"index"`
	Name          string     `bson:"name" json:"name"`
	State         ImageState `bson:"state" json:"state"`
	Verdict       string     `bson:"verdict" json:"verdict"`
	MinDistance   float64    `bson:"min_distance" json:"min_distance"`
	ViolatingPair string     `bson:"violating_pair,omitempty" json:"violating_pair,omitempty"`
	Attempts      int        `bson:"attempts" json:"attempts"`
	OutputPath    string     `bson:"output_path,omitempty" json:"output_path,omitempty"`
	SegPath       string     `bson:"seg_path,omitempty" json:"seg_path,omitempty"`
	RunID         string     `bson:"run_id" json:"run_id"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
}

// Logger accumulates image records in index order. Appends are rejected
// unless the index strictly increases, so the sequence is totally ordered by
// construction. Safe for concurrent readers while a run appends.
type Logger struct {
	mu      sync.RWMutex
	records []ImageRecord
}

// NewLogger returns an empty run logger.
func NewLogger() *Logger {
	return &Logger{}
}

// Append adds one record. The record's index must be strictly greater than
// the last appended index.
func (l *Logger) Append(rec ImageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.records); n > 0 && rec.Index <= l.records[n-1].Index {
		return errors.New(errors.ErrCodeInternal,
			"record index %d does not follow %d", rec.Index, l.records[n-1].Index)
	}
	l.records = append(l.records, rec)
	return nil
}

// Records returns a copy of the full sequence in append order.
func (l *Logger) Records() []ImageRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ImageRecord, len(l.records))
	copy(out, l.records)
	return out
}

// ByIndex returns the record with the given image index.
func (l *Logger) ByIndex(index int) (ImageRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.records {
		if r.Index == index {
			return r, true
		}
	}
	return ImageRecord{}, false
}

// Count returns the number of appended records.
func (l *Logger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
