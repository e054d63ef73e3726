package timeclock

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// columnIndexes maps logical fields to header positions. -1 means the
// column is absent from this export.
type columnIndexes struct {
	code     int
	name     int
	clock    int
	terminal int
	device   int
}

func resolveColumns(header []string) columnIndexes {
	idx := columnIndexes{code: -1, name: -1, clock: -1, terminal: -1, device: -1}
	find := func(aliases []string) int {
		for i, cell := range header {
			cell = strings.TrimSpace(cell)
			for _, alias := range aliases {
				if cell == alias {
					return i
				}
			}
		}
		return -1
	}
	idx.code = find(codeAliases)
	idx.name = find(nameAliases)
	idx.clock = find(timeAliases)
	idx.terminal = find(terminalAliases)
	idx.device = find(deviceUserAliases)
	return idx
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseTabular handles delimited text exports driven by header names.
// A row survives only when employee code, name, and clock time are all
// non-empty after alias resolution.
func parseTabular(data []byte) ([]ScanCandidate, error) {
	header := firstNonBlankLine(data)
	delim := sniffDelimiter(header)
	if delim == 0 {
		return nil, fmt.Errorf("%w: no delimiter in header", ErrUnreadable)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerRow, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	columns := resolveColumns(headerRow)

	var candidates []ScanCandidate
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is that row's problem, not the file's.
			continue
		}
		candidates = appendRow(candidates, row, columns)
	}
	return candidates, nil
}

func appendRow(candidates []ScanCandidate, row []string, columns columnIndexes) []ScanCandidate {
	code := cellAt(row, columns.code)
	name := cellAt(row, columns.name)
	clock := cellAt(row, columns.clock)
	if code == "" || name == "" || clock == "" {
		return candidates
	}
	eventTime := parseClockValue(clock)
	if eventTime.IsZero() {
		return candidates
	}
	sourceUserID := cellAt(row, columns.device)
	if sourceUserID == "" {
		sourceUserID = code
	}
	return append(candidates, ScanCandidate{
		SourceUserID:  sourceUserID,
		EmployeeCode:  code,
		DisplayName:   name,
		EventTime:     eventTime,
		TerminalLabel: cellAt(row, columns.terminal),
	})
}
