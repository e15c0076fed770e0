package journal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
)

// FileSource reads entries from a JSON, JSON lines, CSV or plain text file.
// The file is re-read on every call, so edits are picked up without reopening.
type FileSource struct {
	path   string
	format schema.SourceFormat
}

var _ contract.EntrySource = &FileSource{} // Compile-time check

// NewFileSource creates a file source. AutoFormat detects the format from the extension.
func NewFileSource(path string, format schema.SourceFormat) *FileSource {
	if format == "" || format == schema.AutoFormat {
		format = DetectFormat(path)
	}
	return &FileSource{path: path, format: format}
}

// Entries implements the EntrySource interface.
func (s *FileSource) Entries(_ context.Context) ([]schema.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal file: %w", err)
	}
	return ParseEntries(data, s.format)
}

// Fingerprint implements the EntrySource interface.
func (s *FileSource) Fingerprint(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read journal file: %w", err)
	}
	return hashBytes(data), nil
}

// Describe implements the EntrySource interface.
func (s *FileSource) Describe() string {
	return fmt.Sprintf("file:%s", s.path)
}

// Close implements the EntrySource interface.
func (s *FileSource) Close() error {
	return nil
}

// ParseEntries decodes entries from data in the given file format.
func ParseEntries(data []byte, format schema.SourceFormat) ([]schema.Entry, error) {
	switch format {
	case schema.JSONFormat:
		return parseJSON(data)
	case schema.JSONLinesFormat:
		return parseJSONLines(data)
	case schema.CSVFormat:
		return parseCSV(data)
	case schema.TextFormat, schema.AutoFormat, "":
		return parseText(data)
	default:
		return nil, fmt.Errorf("format %q is not a file format", format)
	}
}

// jsonEntry accepts the field spellings journal exports use.
type jsonEntry struct {
	ID             json.RawMessage `json:"id"`
	CreatedAt      json.RawMessage `json:"created_at"`
	CreatedAtCamel json.RawMessage `json:"createdAt"`
	Timestamp      json.RawMessage `json:"timestamp"`
}

// parseJSON accepts a top-level array or an object with an "entries" array.
func parseJSON(data []byte) ([]schema.Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []schema.Entry{}, nil
	}

	var items []json.RawMessage
	if data[0] == '{' {
		var doc struct {
			Entries []json.RawMessage `json:"entries"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode JSON journal: %w", err)
		}
		items = doc.Entries
	} else if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode JSON journal: %w", err)
	}

	entries := make([]schema.Entry, 0, len(items))
	for i, item := range items {
		entry, err := decodeJSONEntry(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseJSONLines(data []byte) ([]schema.Entry, error) {
	entries := []schema.Entry{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		entry, err := decodeJSONEntry(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan JSON lines: %w", err)
	}
	return entries, nil
}

// decodeJSONEntry decodes either a bare timestamp or an entry object.
func decodeJSONEntry(raw json.RawMessage) (schema.Entry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] != '{' {
		return schema.Entry{CreatedAt: scalarText(raw)}, nil
	}

	var item jsonEntry
	if err := json.Unmarshal(raw, &item); err != nil {
		return schema.Entry{}, fmt.Errorf("invalid entry object: %w", err)
	}

	created := scalarText(item.CreatedAt)
	if created == "" {
		created = scalarText(item.CreatedAtCamel)
	}
	if created == "" {
		created = scalarText(item.Timestamp)
	}
	return schema.Entry{ID: scalarText(item.ID), CreatedAt: created}, nil
}

// scalarText renders a JSON string or number as text. Other values become empty,
// which the normalizer records as a skipped entry.
func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// timestampHeaders are the accepted names of the CSV timestamp column, in priority order.
var timestampHeaders = []string{"created_at", "createdat", "timestamp", "date"}

func parseCSV(data []byte) ([]schema.Entry, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []schema.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	tsCol := -1
	for _, name := range timestampHeaders {
		if i, ok := columns[name]; ok {
			tsCol = i
			break
		}
	}
	if tsCol < 0 {
		return nil, fmt.Errorf("CSV header has no timestamp column (expected one of %s)", strings.Join(timestampHeaders, ", "))
	}
	idCol, hasID := columns["id"]

	entries := []schema.Entry{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		var entry schema.Entry
		if tsCol < len(record) {
			entry.CreatedAt = strings.TrimSpace(record[tsCol])
		}
		if hasID && idCol < len(record) {
			entry.ID = record[idCol]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseText reads one timestamp per line, ignoring blank lines and # comments.
func parseText(data []byte) ([]schema.Entry, error) {
	entries := []schema.Entry{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, schema.Entry{CreatedAt: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan journal text: %w", err)
	}
	return entries, nil
}
