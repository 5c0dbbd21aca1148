package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type summaryDocument struct {
	Summary Summary      `json:"summary"`
	Data    []summaryRow `json:"data"`
}

type summaryRow struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	Category string `json:"category"`
}

// WriteOutput writes the finished run in one shot, in the configured mode.
// The extension is validated at config time, before any record is classified.
func WriteOutput(path, mode string, out *RunOutput) error {
	switch mode {
	case ModeSummary:
		return writeSummaryJSON(path, out)
	case ModeRecords:
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".json":
			return writeRecordsJSON(path, out)
		case ".csv":
			return writeRecordsCSV(path, out)
		default:
			return fmt.Errorf("%w: records output must be .json or .csv, got %q", ErrConfig, ext)
		}
	default:
		return fmt.Errorf("%w: unknown output mode %q", ErrConfig, mode)
	}
}

func writeSummaryJSON(path string, out *RunOutput) error {
	doc := summaryDocument{
		Summary: out.Summary,
		Data:    make([]summaryRow, 0, len(out.Results)),
	}
	for _, r := range out.Results {
		// Raw model text when we have it; the diagnostic otherwise, so
		// degraded records stay reviewable.
		output := r.Raw
		if output == "" {
			output = r.Reason
		}
		doc.Data = append(doc.Data, summaryRow{
			Input:    r.Record.Text,
			Output:   output,
			Category: r.Category,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func writeRecordsJSON(path string, out *RunOutput) error {
	rows := make([]map[string]any, 0, len(out.Results))
	for _, r := range out.Results {
		row := make(map[string]any, len(r.Record.Fields)+2)
		for k, v := range r.Record.Fields {
			row[k] = v
		}
		row["category"] = r.Category
		row["reason"] = r.Reason
		rows = append(rows, row)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func writeRecordsCSV(path string, out *RunOutput) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	header := recordsCSVHeader(out)
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range out.Results {
		row := make([]string, 0, len(header))
		for _, col := range header {
			switch col {
			case "category":
				row = append(row, r.Category)
			case "reason":
				row = append(row, r.Reason)
			default:
				row = append(row, fieldString(r.Record.Fields[col]))
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// recordsCSVHeader derives the header from the first record's fields, in
// source order, with the result columns appended.
func recordsCSVHeader(out *RunOutput) []string {
	var header []string
	if len(out.Results) > 0 {
		header = append(header, out.Results[0].Record.Order...)
	}
	for _, col := range []string{"category", "reason"} {
		present := false
		for _, h := range header {
			if h == col {
				present = true
				break
			}
		}
		if !present {
			header = append(header, col)
		}
	}
	return header
}

func fieldString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
