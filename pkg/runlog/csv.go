package runlog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/matzehuels/cobotgen/pkg/errors"
)

var csvHeader = []string{
	"index", "name", "state", "verdict", "min_distance",
	"violating_pair", "attempts", "output_path", "seg_path", "run_id", "created_at",
}

// NextIndex reads an existing run log and returns the image index a new run
// should continue from: one past the last recorded index, or zero when the
// file does not exist or holds no rows. This lets repeated runs extend one
// dataset without renumbering.
func NextIndex(path string) (int, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeExport, err, "open run log %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	last := -1
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeExport, err, "read run log %s", path)
		}
		if first {
			first = false
			continue // header
		}
		if len(row) == 0 {
			continue
		}
		idx, err := strconv.Atoi(row[0])
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeExport, err, "run log %s: bad index %q", path, row[0])
		}
		last = idx
	}
	return last + 1, nil
}

// AppendCSV writes the records to the run log at path, creating the file
// with a header row first or appending to an existing log.
func AppendCSV(path string, records []ImageRecord) error {
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "open run log %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return errors.Wrap(errors.ErrCodeExport, err, "write run log header")
		}
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Index),
			rec.Name,
			string(rec.State),
			rec.Verdict,
			strconv.FormatFloat(rec.MinDistance, 'g', -1, 64),
			rec.ViolatingPair,
			strconv.Itoa(rec.Attempts),
			rec.OutputPath,
			rec.SegPath,
			rec.RunID,
			rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(errors.ErrCodeExport, err, "write run log row %d", rec.Index)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "flush run log %s", path)
	}
	return nil
}

// ReadCSV loads all records from an existing run log.
func ReadCSV(path string) ([]ImageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "open run log %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "read run log %s", path)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]ImageRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, errors.New(errors.ErrCodeExport, "run log %s: row has %d fields, want %d", path, len(row), len(csvHeader))
		}
		idx, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeExport, err, "run log %s: bad index %q", path, row[0])
		}
		dist, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeExport, err, "run log %s: bad distance %q", path, row[4])
		}
		attempts, err := strconv.Atoi(row[6])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeExport, err, "run log %s: bad attempts %q", path, row[6])
		}
		created, err := time.Parse(time.RFC3339, row[10])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeExport, err, "run log %s: bad timestamp %q", path, row[10])
		}
		records = append(records, ImageRecord{
			Index:         idx,
			Name:          row[1],
			State:         ImageState(row[2]),
			Verdict:       row[3],
			MinDistance:   dist,
			ViolatingPair: row[5],
			Attempts:      attempts,
			OutputPath:    row[7],
			SegPath:       row[8],
			RunID:         row[9],
			CreatedAt:     created,
		})
	}
	return records, nil
}
