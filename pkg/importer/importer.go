// Package importer parses bulk-import files into (label, value) pairs for
// the vault. Supports CSV (label,password per row) and plain text
// (label:password or whitespace-separated per line).
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Format identifies an input file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatTXT Format = "txt"
)

// ErrUnknownFormat indicates the format could not be determined from the
// file extension and was not specified explicitly.
var ErrUnknownFormat = errors.New("importer: unknown input format")

// Entry is one parsed (label, plaintext) pair.
type Entry struct {
	Label string
	Value []byte
}

// SkippedLine records an input line that could not be parsed, with the
// reason, so the caller can display it. Skipped lines never abort a parse.
type SkippedLine struct {
	Line   int
	Reason string
}

// Result holds the parsed entries and per-line skips of one import file.
type Result struct {
	Entries []Entry
	Skipped []SkippedLine
}

// DetectFormat infers the input format from a file name. Returns
// ErrUnknownFormat for anything but .csv and .txt.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".txt":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Parse parses the input data in the given format.
func Parse(data []byte, format Format) (*Result, error) {
	switch format {
	case FormatCSV:
		return parseCSV(data)
	case FormatTXT:
		return parseTXT(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// parseCSV reads label,password rows. A header row with a first cell of
// "label" (case-insensitive) is skipped. Extra columns beyond the second
// are ignored.
func parseCSV(data []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // validated per row below

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("importer: failed to parse CSV: %w", err)
	}

	result := &Result{}
	for i, row := range rows {
		line := i + 1
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "label") {
			continue
		}
		if len(row) < 2 {
			result.Skipped = append(result.Skipped, SkippedLine{Line: line, Reason: "expected at least 2 columns"})
			continue
		}
		label := normalizeLabel(row[0])
		if label == "" {
			result.Skipped = append(result.Skipped, SkippedLine{Line: line, Reason: "empty label"})
			continue
		}
		result.Entries = append(result.Entries, Entry{Label: label, Value: []byte(row[1])})
	}
	return result, nil
}

// parseTXT reads one pair per line: "label:password" or "label password".
// Blank lines and lines starting with # are ignored. Only the first
// separator splits, so passwords may contain the separator character.
func parseTXT(data []byte) (*Result, error) {
	result := &Result{}

	for i, raw := range strings.Split(string(data), "\n") {
		line := i + 1
		trimmed := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(trimmed) == "" || strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
			continue
		}

		label, value, ok := splitPair(trimmed)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedLine{Line: line, Reason: "no separator found"})
			continue
		}
		label = normalizeLabel(label)
		if label == "" {
			result.Skipped = append(result.Skipped, SkippedLine{Line: line, Reason: "empty label"})
			continue
		}
		if value == "" {
			result.Skipped = append(result.Skipped, SkippedLine{Line: line, Reason: "empty value"})
			continue
		}
		result.Entries = append(result.Entries, Entry{Label: label, Value: []byte(value)})
	}
	return result, nil
}

// splitPair splits a text line at the first ':' or, failing that, the
// first run of whitespace.
func splitPair(line string) (label, value string, ok bool) {
	if idx := strings.IndexByte(line, ':'); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}
	label = fields[0]
	value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), label))
	return label, value, true
}

// normalizeLabel trims whitespace and applies Unicode NFC so visually
// identical labels from different sources compare equal.
func normalizeLabel(label string) string {
	return norm.NFC.String(strings.TrimSpace(label))
}
