package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"

	"attrition/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Values treated as missing when reading the source.
var missingValues = []string{"", "NA", "NaN", "<nil>"}

// Load reads the delimited file at path into a Table. Any failure is a
// core.DataUnavailableError.
func Load(path string) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, core.DataUnavailable(path, err)
	}
	if info.IsDir() {
		return nil, core.DataUnavailable(path, errors.New("is a directory"))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, core.DataUnavailable(path, err)
	}
	// Exports from spreadsheet tools often prefix the header with a BOM,
	// which would otherwise end up in the first column name.
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, core.DataUnavailable(path, errors.New("file is empty"))
	}
	if !hasRecords(raw) {
		return nil, core.DataUnavailable(path, errors.New("no records after the header"))
	}

	frame := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingValues),
	)
	if frame.Err != nil {
		return nil, core.DataUnavailable(path, fmt.Errorf("parse csv: %w", frame.Err))
	}

	t := &Table{
		frame:   frame,
		source:  path,
		modTime: info.ModTime(),
		size:    info.Size(),
	}
	if err := validate(t); err != nil {
		return nil, core.DataUnavailable(path, err)
	}
	return t, nil
}

// hasRecords reports whether anything but blank lines follows the header.
func hasRecords(raw []byte) bool {
	lines := 0
	for _, line := range bytes.Split(raw, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			lines++
		}
		if lines > 1 {
			return true
		}
	}
	return false
}

func validate(t *Table) error {
	for _, col := range core.RequiredColumns {
		if !t.Has(col) {
			return fmt.Errorf("missing required column %q", col)
		}
	}
	if !t.IsNumeric(core.ColAge) {
		return fmt.Errorf("column %q is not numeric", core.ColAge)
	}
	return nil
}
