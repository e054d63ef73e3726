package timeclock

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseSpreadsheet reads the first sheet of a spreadsheet export.
// Cells are read raw so date cells keep their serial form and flow
// through the same decoding as tabular numeric values.
func parseSpreadsheet(data []byte) ([]ScanCandidate, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := resolveColumns(rows[0])
	var candidates []ScanCandidate
	for _, row := range rows[1:] {
		candidates = appendRow(candidates, row, columns)
	}
	return candidates, nil
}
