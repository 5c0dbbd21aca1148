package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Record is one loaded input: the trimmed free text to classify plus, in
// named-column mode, the original row so output records can carry every
// source field through unchanged. Records are read-only after loading.
type Record struct {
	Text   string
	Fields map[string]any
	Order  []string
}

// LoadRecords reads the ordered sequence of inputs from a tabular file.
// With a column name it expects a header row (CSV/XLSX) or an array of
// objects (JSON) and fails with a schema error naming the missing column.
// With an empty column name it runs headerless: the first field of each
// non-empty row (or each string in a JSON array) is the text. Rows whose
// text is empty after trimming are skipped; original order is preserved.
func LoadRecords(path, column string) ([]Record, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadCSV(path, column)
	case ".json":
		return loadJSON(path, column)
	case ".xlsx":
		return loadXLSX(path, column)
	default:
		return nil, fmt.Errorf("%w: unsupported input extension %q (want .csv, .json, or .xlsx)", ErrFormat, ext)
	}
}

func loadCSV(path, column string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading csv: %v", ErrFormat, err)
	}
	return recordsFromRows(rows, column)
}

func loadXLSX(path, column string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening xlsx: %v", ErrFormat, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading xlsx sheet %q: %v", ErrFormat, sheet, err)
	}
	return recordsFromRows(rows, column)
}

// recordsFromRows applies the shared header/headerless logic to row data
// from either CSV or XLSX.
func recordsFromRows(rows [][]string, column string) ([]Record, error) {
	if column == "" {
		var records []Record
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			text := strings.TrimSpace(row[0])
			if text == "" {
				continue
			}
			records = append(records, Record{Text: text})
		}
		return records, nil
	}

	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	colIdx := -1
	for i, name := range header {
		if name == column {
			colIdx = i
			break
		}
	}
	if colIdx == -1 {
		return nil, fmt.Errorf("%w: column %q not found in headers: %v", ErrSchema, column, header)
	}

	var records []Record
	for _, row := range rows[1:] {
		fields := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[name] = row[i]
			} else {
				fields[name] = ""
			}
		}
		var text string
		if colIdx < len(row) {
			text = strings.TrimSpace(row[colIdx])
		}
		if text == "" {
			continue
		}
		records = append(records, Record{Text: text, Fields: fields, Order: header})
	}
	return records, nil
}

func loadJSON(path, column string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: JSON input must be an array: %v", ErrFormat, err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	if column == "" {
		var records []Record
		for _, item := range items {
			var text string
			if err := json.Unmarshal(item, &text); err != nil {
				return nil, fmt.Errorf("%w: headerless JSON input must be an array of strings", ErrFormat)
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			records = append(records, Record{Text: text})
		}
		return records, nil
	}

	// Field order comes from the first object's key order in the document,
	// so CSV output columns match the source layout.
	order, err := objectKeys(items[0])
	if err != nil {
		return nil, fmt.Errorf("%w: JSON input must be an array of objects: %v", ErrFormat, err)
	}
	hasColumn := false
	for _, key := range order {
		if key == column {
			hasColumn = true
			break
		}
	}
	if !hasColumn {
		return nil, fmt.Errorf("%w: key %q not found in JSON objects: %v", ErrSchema, column, order)
	}

	var records []Record
	for _, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, fmt.Errorf("%w: JSON input must be an array of objects: %v", ErrFormat, err)
		}
		text, _ := fields[column].(string)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		records = append(records, Record{Text: text, Fields: fields, Order: order})
	}
	return records, nil
}

// objectKeys returns a JSON object's keys in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}
	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", keyTok)
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		depth := 1
		for depth > 0 {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			if d, ok := tok.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}
