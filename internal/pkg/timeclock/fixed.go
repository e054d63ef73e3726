package timeclock

import (
	"regexp"
	"strings"
)

// fixedLineRegex anchors a line on its "dd-mm-yyyy HH:MM:SS" timestamp.
// Whatever precedes it is identifier/name tokens; whatever follows is
// the terminal label.
var fixedLineRegex = regexp.MustCompile(`^(.+?)\s+(\d{2}-\d{2}-\d{4})\s+(\d{2}:\d{2}:\d{2})\s*(.*)$`)

// identTokenRegex matches device identifier tokens: short alphanumeric
// strings containing at least one digit. Name tokens never match it.
var identTokenRegex = regexp.MustCompile(`^[A-Za-z0-9_-]*[0-9][A-Za-z0-9_-]*$`)

// parseFixedToken handles plain text exports where each line is either
//
//	identifier  name...  dd-mm-yyyy HH:MM:SS  terminal...
//	deviceUserId  employeeCode  name...  dd-mm-yyyy HH:MM:SS  terminal...
//
// Lines matching neither pattern are dropped silently: these exports
// carry banner and summary lines that are not punch events.
func parseFixedToken(data []byte) ([]ScanCandidate, error) {
	var candidates []ScanCandidate
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			continue
		}
		m := fixedLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		eventTime, ok := reorderTimestamp(m[2], m[3])
		if !ok {
			continue
		}

		fields := strings.Fields(m[1])
		var c ScanCandidate
		switch {
		case len(fields) >= 3 && identTokenRegex.MatchString(fields[0]) && identTokenRegex.MatchString(fields[1]):
			// Dual-identifier form.
			c = ScanCandidate{
				SourceUserID: fields[0],
				EmployeeCode: fields[1],
				DisplayName:  strings.Join(fields[2:], " "),
			}
		case len(fields) >= 2 && identTokenRegex.MatchString(fields[0]):
			// Single-identifier form: the device id doubles as the code.
			c = ScanCandidate{
				SourceUserID: fields[0],
				EmployeeCode: fields[0],
				DisplayName:  strings.Join(fields[1:], " "),
			}
		default:
			continue
		}

		c.EventTime = eventTime
		c.TerminalLabel = strings.TrimSpace(m[4])
		candidates = append(candidates, c)
	}
	return candidates, nil
}
