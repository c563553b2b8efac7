// Package csvout serializes normalized records as CSV. The file writer
// and the console echo share one routine so their quoting can never
// diverge.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/redcanyon-sec/evtflat/internal/record"
)

// Write emits the header row plus one row per record to path. Output
// goes to a temporary file first and is renamed into place only on
// success, so a failed run never leaves a partial or corrupted file.
func Write(path string, records []record.Record) error {
	tmp := path + ".incomplete"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if err := Echo(f, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Echo writes the header row plus one CSV row per record to w.
func Echo(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(record.Columns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EchoKeyValues writes one "column: value" line per field to w, in
// column order.
func EchoKeyValues(w io.Writer, rec record.Record) {
	row := rec.Row()
	for i, col := range record.Columns {
		fmt.Fprintf(w, "%s: %s\n", col, row[i])
	}
}
