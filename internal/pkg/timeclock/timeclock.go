// Package timeclock parses exported time-clock files into normalized
// scan candidates. Three export shapes are handled: fixed-token text,
// delimited tabular text, and spreadsheet binaries. Each variant
// implements the same bytes-in, candidates-out contract so formats can
// be tested independently.
package timeclock

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// ScanCandidate is one punch event as printed by the device, before
// identity resolution.
type ScanCandidate struct {
	SourceUserID  string
	EmployeeCode  string
	DisplayName   string
	EventTime     time.Time
	TerminalLabel string
}

type Format int

const (
	FormatUnknown Format = iota
	FormatFixedToken
	FormatTabular
	FormatSpreadsheet
)

func (f Format) String() string {
	switch f {
	case FormatFixedToken:
		return "fixed-token"
	case FormatTabular:
		return "tabular"
	case FormatSpreadsheet:
		return "spreadsheet"
	default:
		return "unknown"
	}
}

var (
	// ErrUnreadable means the file container itself could not be opened.
	ErrUnreadable = errors.New("time-clock export unreadable")
	// ErrNoRows means every line or row was filtered out.
	ErrNoRows = errors.New("no attendance rows survived filtering")
)

// Header aliases recognized per logical field. Matching is
// case-sensitive: exports print fixed headers and loosening the match
// has misfired on unrelated columns before.
var (
	codeAliases       = []string{"Employee Code", "EmpCode", "employee_code", "AC-No.", "EnNo", "ID"}
	nameAliases       = []string{"Name", "Employee Name", "employee_name", "First Name"}
	timeAliases       = []string{"Time", "DateTime", "Date/Time", "Clock Time", "clock_time", "Punch Time"}
	terminalAliases   = []string{"Terminal", "Terminal Description", "Device", "device_name"}
	deviceUserAliases = []string{"Device User ID", "User ID", "No.", "device_user_id"}
)

// Parse reads the whole source, detects its format, and returns the
// surviving candidates in file order. Rows are evaluated independently;
// only an unreadable container or an empty survivor set is terminal.
func Parse(filename string, r io.Reader) ([]ScanCandidate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var candidates []ScanCandidate
	switch format := DetectFormat(filename, data); format {
	case FormatSpreadsheet:
		candidates, err = parseSpreadsheet(data)
	case FormatTabular:
		candidates, err = parseTabular(data)
	default:
		candidates, err = parseFixedToken(data)
	}
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoRows
	}
	return candidates, nil
}

// DetectFormat inspects the filename and leading bytes. Spreadsheets are
// recognized by container magic, tabular text by a delimited header line
// carrying at least one known alias; everything else falls through to
// the fixed-token parser.
func DetectFormat(filename string, data []byte) Format {
	if isSpreadsheet(filename, data) {
		return FormatSpreadsheet
	}
	line := firstNonBlankLine(data)
	if line == "" {
		return FormatFixedToken
	}
	if delim := sniffDelimiter(line); delim != 0 {
		for _, alias := range headerAliases() {
			for _, cell := range strings.Split(line, string(delim)) {
				if strings.TrimSpace(cell) == alias {
					return FormatTabular
				}
			}
		}
	}
	return FormatFixedToken
}

func headerAliases() []string {
	out := make([]string, 0, len(codeAliases)+len(nameAliases)+len(timeAliases)+len(terminalAliases)+len(deviceUserAliases))
	out = append(out, codeAliases...)
	out = append(out, nameAliases...)
	out = append(out, timeAliases...)
	out = append(out, terminalAliases...)
	out = append(out, deviceUserAliases...)
	return out
}

func isSpreadsheet(filename string, data []byte) bool {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
		return true
	}
	// xlsx is a ZIP container; legacy xls is an OLE compound file.
	if len(data) >= 4 && data[0] == 'P' && data[1] == 'K' && data[2] == 0x03 && data[3] == 0x04 {
		return true
	}
	if len(data) >= 4 && data[0] == 0xD0 && data[1] == 0xCF && data[2] == 0x11 && data[3] == 0xE0 {
		return true
	}
	return false
}

func firstNonBlankLine(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimRight(line, "\r")
		}
	}
	return ""
}

func sniffDelimiter(line string) rune {
	best, bestCount := rune(0), 0
	for _, d := range []rune{',', '\t', ';'} {
		if c := strings.Count(line, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

const (
	// Spreadsheet serials count days since 1899-12-30; 25569 days sit
	// between that epoch and 1970-01-01.
	excelEpochOffsetDays = 25569
	secondsPerDay        = 86400
)

// decodeSerial converts a spreadsheet epoch-day count to an absolute
// instant, rounding to the nearest second.
func decodeSerial(serial float64) time.Time {
	secs := (serial - excelEpochOffsetDays) * secondsPerDay
	return time.Unix(int64(math.Round(secs)), 0).UTC()
}

// reorderTimestamp rewrites "dd-mm-yyyy HH:MM:SS" into an absolute
// instant by literal field reordering. No timezone conversion happens:
// device wall clock in, identical wall clock out.
func reorderTimestamp(date, clock string) (time.Time, bool) {
	t, err := time.ParseInLocation("02-01-2006 15:04:05", date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseClockValue interprets a tabular clock cell. Numeric values are
// spreadsheet serials; strings are tried against the formats the known
// devices emit. A zero return means the row must be discarded.
func parseClockValue(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, ":/") {
		return decodeSerial(serial)
	}
	for _, layout := range []string{
		"02-01-2006 15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"02/01/2006 15:04:05",
		"2006-01-02 15:04",
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
