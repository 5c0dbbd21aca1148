package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadRecordsCSVNamedColumn(t *testing.T) {
	path := writeFixture(t, "survey.csv",
		"Name,Response,Grade\n"+
			"alice,  I use AI to study  ,9\n"+
			"bob,\"never, ever used it\",10\n"+
			"carol,   ,11\n")

	records, err := LoadRecords(path, "Response")
	if err != nil {
		t.Fatalf("LoadRecords returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (blank skipped), got %d", len(records))
	}
	if records[0].Text != "I use AI to study" {
		t.Fatalf("expected trimmed text, got %q", records[0].Text)
	}
	if records[1].Text != "never, ever used it" {
		t.Fatalf("unexpected second record: %q", records[1].Text)
	}
	if got := records[0].Fields["Name"]; got != "alice" {
		t.Fatalf("expected original fields kept, got Name=%v", got)
	}
	if len(records[0].Order) != 3 || records[0].Order[0] != "Name" {
		t.Fatalf("expected header order preserved, got %v", records[0].Order)
	}
}

func TestLoadRecordsCSVMissingColumn(t *testing.T) {
	path := writeFixture(t, "survey.csv", "Name,Response\nalice,hi\n")

	_, err := LoadRecords(path, "Answer")
	if err == nil {
		t.Fatal("expected schema error for missing column")
	}
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
	if !strings.Contains(err.Error(), "Answer") || !strings.Contains(err.Error(), "Response") {
		t.Fatalf("expected missing column and actual headers in message, got %q", err.Error())
	}
}

func TestLoadRecordsCSVHeaderless(t *testing.T) {
	path := writeFixture(t, "answers.csv",
		"first answer,extra\n"+
			"\n"+
			"  second answer  \n"+
			"   \n")

	records, err := LoadRecords(path, "")
	if err != nil {
		t.Fatalf("LoadRecords returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Text != "first answer" || records[1].Text != "second answer" {
		t.Fatalf("unexpected records: %q, %q", records[0].Text, records[1].Text)
	}
	if records[0].Fields != nil {
		t.Fatal("headerless records should carry no fields")
	}
}

func TestLoadRecordsJSONObjects(t *testing.T) {
	path := writeFixture(t, "survey.json",
		`[{"name": "alice", "response": " helped me study ", "grade": 9},
		  {"name": "bob", "response": "", "grade": 10},
		  {"name": "carol", "response": "cheating is easy now", "grade": 11}]`)

	records, err := LoadRecords(path, "response")
	if err != nil {
		t.Fatalf("LoadRecords returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (empty skipped), got %d", len(records))
	}
	if records[0].Text != "helped me study" {
		t.Fatalf("expected trimmed text, got %q", records[0].Text)
	}
	if records[1].Text != "cheating is easy now" {
		t.Fatalf("expected input order preserved, got %q", records[1].Text)
	}
	want := []string{"name", "response", "grade"}
	if len(records[0].Order) != len(want) {
		t.Fatalf("unexpected key order: %v", records[0].Order)
	}
	for i, key := range want {
		if records[0].Order[i] != key {
			t.Fatalf("expected document key order %v, got %v", want, records[0].Order)
		}
	}
}

func TestLoadRecordsJSONMissingKey(t *testing.T) {
	path := writeFixture(t, "survey.json", `[{"name": "alice"}]`)

	_, err := LoadRecords(path, "response")
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestLoadRecordsJSONStringArray(t *testing.T) {
	path := writeFixture(t, "answers.json", `[" one ", "", "two"]`)

	records, err := LoadRecords(path, "")
	if err != nil {
		t.Fatalf("LoadRecords returned error: %v", err)
	}
	if len(records) != 2 || records[0].Text != "one" || records[1].Text != "two" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLoadRecordsJSONNotArray(t *testing.T) {
	path := writeFixture(t, "survey.json", `{"response": "hi"}`)

	_, err := LoadRecords(path, "response")
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for non-array JSON, got %v", err)
	}
}

func TestLoadRecordsUnsupportedExtension(t *testing.T) {
	path := writeFixture(t, "survey.txt", "whatever")

	_, err := LoadRecords(path, "response")
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestLoadRecordsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"Name", "Response"},
		{"alice", "  AI helped with homework "},
		{"bob", ""},
		{"carol", "school banned it"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("setting row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving xlsx: %v", err)
	}

	records, err := LoadRecords(path, "Response")
	if err != nil {
		t.Fatalf("LoadRecords returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Text != "AI helped with homework" {
		t.Fatalf("expected trimmed text, got %q", records[0].Text)
	}
	if records[1].Fields["Name"] != "carol" {
		t.Fatalf("expected original fields kept, got %v", records[1].Fields)
	}
}
