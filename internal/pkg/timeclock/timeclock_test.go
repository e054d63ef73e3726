package timeclock

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixedToken_SingleIdentifierForm(t *testing.T) {
	t.Parallel()

	input := "E001 John Doe 05-01-2024 08:30:00 Main Gate\n"

	candidates, err := Parse("export.txt", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "E001", c.EmployeeCode)
	assert.Equal(t, "E001", c.SourceUserID)
	assert.Equal(t, "John Doe", c.DisplayName)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), c.EventTime)
	assert.Equal(t, "Main Gate", c.TerminalLabel)
}

func TestParseFixedToken_DualIdentifierForm(t *testing.T) {
	t.Parallel()

	input := "42 E001 John Doe 05-01-2024 08:30:00 Main Gate\n"

	candidates, err := Parse("export.txt", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "42", c.SourceUserID)
	assert.Equal(t, "E001", c.EmployeeCode)
	assert.Equal(t, "John Doe", c.DisplayName)
}

func TestParseFixedToken_DropsNonConformingLinesSilently(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Attendance Report for January",
		"",
		"E001 John Doe 05-01-2024 08:30:00 Main Gate",
		"no timestamp on this line at all",
		"E001 John Doe 05-01-2024 17:10:00 Main Gate",
		"Total records: 2",
	}, "\n")

	candidates, err := Parse("export.txt", strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestParseFixedToken_TimestampIsLiteralReorder(t *testing.T) {
	t.Parallel()

	// dd-mm-yyyy must not be read as mm-dd-yyyy.
	input := "E001 John Doe 02-03-2024 08:00:00 Gate\n"

	candidates, err := Parse("export.txt", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), candidates[0].EventTime)
}

func TestParse_EmptyFileIsTerminal(t *testing.T) {
	t.Parallel()

	_, err := Parse("export.txt", strings.NewReader("header only, nothing conforms\n"))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestParseTabular_HeaderAliasDriven(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Employee Code,Name,Time,Terminal,Device User ID",
		"E001,John Doe,05-01-2024 08:30:00,Main Gate,42",
		",Missing Code,05-01-2024 08:30:00,Main Gate,43",
		"E002,Jane Roe,not a timestamp,Main Gate,44",
		"E003,,05-01-2024 09:00:00,Main Gate,45",
	}, "\n")

	candidates, err := Parse("export.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "E001", c.EmployeeCode)
	assert.Equal(t, "John Doe", c.DisplayName)
	assert.Equal(t, "42", c.SourceUserID)
	assert.Equal(t, "Main Gate", c.TerminalLabel)
}

func TestParseTabular_SemicolonDelimiter(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"EmpCode;Name;DateTime",
		"E001;John Doe;2024-01-05 08:30:00",
	}, "\n")

	candidates, err := Parse("export.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), candidates[0].EventTime)
}

func TestParseTabular_DeviceUserIDFallsBackToCode(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Employee Code,Name,Time",
		"E001,John Doe,05-01-2024 08:30:00",
	}, "\n")

	candidates, err := Parse("export.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "E001", candidates[0].SourceUserID)
}

func TestDecodeSerial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		serial float64
		want   time.Time
	}{
		{
			name:   "unix epoch",
			serial: 25569,
			want:   time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "half day fraction",
			serial: 25569.5,
			want:   time.Date(1970, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:   "modern date with time",
			serial: 45296.354166666664, // 2024-01-05 08:30:00
			want:   time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, decodeSerial(tt.serial))
		})
	}
}

func TestParseClockValue_NumericIsSerial(t *testing.T) {
	t.Parallel()

	got := parseClockValue("25569.5")
	assert.Equal(t, time.Date(1970, 1, 1, 12, 0, 0, 0, time.UTC), got)

	assert.True(t, parseClockValue("definitely not a time").IsZero())
	assert.True(t, parseClockValue("").IsZero())
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		data     string
		want     Format
	}{
		{
			name:     "xlsx magic bytes",
			filename: "upload.bin",
			data:     "PK\x03\x04rest-of-zip",
			want:     FormatSpreadsheet,
		},
		{
			name:     "xlsx extension",
			filename: "january.xlsx",
			data:     "",
			want:     FormatSpreadsheet,
		},
		{
			name:     "delimited header with alias",
			filename: "export.csv",
			data:     "Employee Code,Name,Time\n",
			want:     FormatTabular,
		},
		{
			name:     "plain fixed token lines",
			filename: "export.txt",
			data:     "E001 John Doe 05-01-2024 08:30:00 Main Gate\n",
			want:     FormatFixedToken,
		},
		{
			name:     "delimited but unknown headers",
			filename: "export.csv",
			data:     "foo,bar,baz\n",
			want:     FormatFixedToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectFormat(tt.filename, []byte(tt.data)))
		})
	}
}
