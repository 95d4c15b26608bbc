// Package csvstore persists survey entities as delimited flat files, one
// file per entity kind. It is the single-writer, append-only reference
// implementation of the repository contracts in the services package.
package csvstore

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
)

// table is one flat CSV store. Every access opens the file, does its work,
// and releases it before returning; a handle is never held across calls.
type table struct {
	path   string
	header []string
}

// appendRow durably appends one record, creating the file with its header
// row on first use. The writer is flushed and synced before the file is
// closed on every exit path.
func (t *table) appendRow(rec []string) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(t.header); err != nil {
			return err
		}
	}
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

// readRows returns every data row in file order. A missing file is an empty
// store, not an error. Rows whose field count does not match the header
// (a torn tail from an interrupted write) are skipped.
func (t *table) readRows() ([][]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(all))
	for i, rec := range all {
		if i == 0 || len(rec) != len(t.header) {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// maxID scans the store for the highest assigned ID, assuming the ID is the
// first column of every row.
func (t *table) maxID() (int64, error) {
	rows, err := t.readRows()
	if err != nil {
		return 0, err
	}
	var max int64
	for _, rec := range rows {
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			continue
		}
		if id > max {
			max = id
		}
	}
	return max, nil
}
