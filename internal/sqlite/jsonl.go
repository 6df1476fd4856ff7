package sqlite

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxRecordBytes bounds one JSONL line. A comment holds at most
// types.MaxCommentBytes of text plus its other columns.
const maxRecordBytes = 1 << 20

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Export writes every table to a JSONL file in dir, one record per line,
// replacing existing files atomically.
func (b *Backend) Export(dir string) error {
	db, release, err := b.conn()
	if err != nil {
		return err
	}
	defer release()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	for _, ef := range jsonlTableMapping {
		records, err := exportTable(db, ef.table)
		if err != nil {
			return fmt.Errorf("exporting %s: %w", ef.table, err)
		}
		if err := writeJSONL(filepath.Join(dir, ef.file), records); err != nil {
			return fmt.Errorf("writing %s: %w", ef.file, err)
		}
		b.log.Debug().Str("table", ef.table).Int("records", len(records)).Msg("exported")
	}
	return nil
}

func exportTable(db *sql.DB, table string) ([]json.RawMessage, error) {
	var query string
	var scan func(rows *sql.Rows) (any, error)

	switch table {
	case "pages":
		query = "SELECT id, path FROM pages ORDER BY id"
		scan = func(rows *sql.Rows) (any, error) {
			var r pageJSON
			return r, rows.Scan(&r.ID, &r.Path)
		}
	case "fields":
		query = "SELECT id, name, formatters FROM fields ORDER BY id"
		scan = func(rows *sql.Rows) (any, error) {
			var r fieldJSON
			return r, rows.Scan(&r.ID, &r.Name, &r.Formatters)
		}
	case "users":
		query = "SELECT id, name, email FROM users ORDER BY id"
		scan = func(rows *sql.Rows) (any, error) {
			var r userJSON
			return r, rows.Scan(&r.ID, &r.Name, &r.Email)
		}
	case "comments":
		query = selectComments + " ORDER BY id"
		scan = func(rows *sql.Rows) (any, error) {
			var r commentJSON
			err := rows.Scan(&r.ID, &r.PageID, &r.FieldID, &r.ParentID, &r.Text, &r.Sort, &r.Status,
				&r.Flags, &r.Created, &r.Email, &r.Cite, &r.Website, &r.IP, &r.UserAgent,
				&r.CreatedUserID, &r.Code, &r.Subcode, &r.Upvotes, &r.Downvotes, &r.Stars)
			return r, err
		}
	default:
		return nil, fmt.Errorf("unknown table %s", table)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		records = append(records, data)
	}
	return records, rows.Err()
}
