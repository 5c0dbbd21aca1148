package main

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		input_path    TEXT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		total_inputs  INTEGER NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		started_at    DATETIME NOT NULL,
		finished_at   DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS classifications (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     INTEGER NOT NULL,
		position   INTEGER NOT NULL,
		input      TEXT NOT NULL,
		category   TEXT NOT NULL,
		reason     TEXT DEFAULT '',
		raw_output TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_classifications_run ON classifications(run_id);
	CREATE INDEX IF NOT EXISTS idx_classifications_category ON classifications(category);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// SaveRun records a completed run and its per-record classifications in one
// transaction. Only whole runs are written; nothing is persisted while a
// run is in flight.
func SaveRun(db *sql.DB, inputPath string, out *RunOutput) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (input_path, provider, model, total_inputs, input_tokens, output_tokens, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inputPath, out.Provider, out.Model, out.Summary.TotalInputs,
		out.Usage.InputTokens, out.Usage.OutputTokens, out.Started, out.Finished,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO classifications (run_id, position, input, category, reason, raw_output)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range out.Results {
		if _, err := stmt.Exec(runID, i, r.Record.Text, r.Category, r.Reason, r.Raw); err != nil {
			return 0, fmt.Errorf("inserting classification %d: %w", i, err)
		}
	}

	return runID, tx.Commit()
}

// CategoryTotals sums counts per category across all stored runs.
func CategoryTotals(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT category, COUNT(*) FROM classifications GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		totals[category] = count
	}
	return totals, rows.Err()
}
