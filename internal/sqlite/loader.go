package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column lists.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{"pages.jsonl", "pages", []string{"id", "path"}},
	{"fields.jsonl", "fields", []string{"id", "name", "formatters"}},
	{"users.jsonl", "users", []string{"id", "name", "email"}},
	{"comments.jsonl", "comments", commentColumns},
}

// Import loads the JSONL files written by Export from dir. Records replace
// rows with the same id. Missing files and malformed lines are skipped.
// Loading is transactional: on error nothing is imported.
func (b *Backend) Import(dir string) (int, error) {
	db, release, err := b.conn()
	if err != nil {
		return 0, err
	}
	defer release()

	n, err := loadAllJSONL(db, dir)
	if err != nil {
		return 0, err
	}
	b.users.Purge()
	b.log.Info().Str("dir", dir).Int("records", n).Msg("imported")
	return n, nil
}

// loadAllJSONL reads each JSONL file from dir and upserts its records
// into the corresponding table. It returns the number of rows written.
func loadAllJSONL(db *sql.DB, dir string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	total := 0
	for _, mapping := range jsonlTableMapping {
		path := filepath.Join(dir, mapping.file)
		records, err := readJSONL(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}

		n, err := insertRecords(tx, mapping.table, mapping.columns, records)
		if err != nil {
			return 0, fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return total, nil
}

// insertRecords upserts parsed JSONL records into a table. Only columns
// listed in the mapping are extracted; unknown fields are ignored and
// missing ones take the column default. Records that violate a
// constraint are skipped.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	stmts := make(map[string]*sql.Stmt)
	defer func() {
		for _, s := range stmts {
			s.Close()
		}
	}()

	n := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		var cols []string
		var args []any
		for _, col := range columns {
			val, ok := obj[col]
			if !ok || val == nil {
				continue
			}
			// json numbers decode as float64; columns are integers
			if f, isFloat := val.(float64); isFloat {
				val = int64(f)
			}
			cols = append(cols, col)
			args = append(args, val)
		}
		if len(cols) == 0 {
			continue
		}

		key := strings.Join(cols, ", ")
		stmt, ok := stmts[key]
		if !ok {
			var err error
			stmt, err = tx.Prepare(fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
				table, key, placeholders(len(cols))))
			if err != nil {
				return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
			}
			stmts[key] = stmt
		}
		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
		n++
	}
	return n, nil
}
