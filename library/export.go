package library

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
)

// Snapshot is a point-in-time copy of all three stores.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Books       []Book        `json:"books"`
	Members     []Member      `json:"members"`
	Issues      []IssueRecord `json:"issues"`
}

// ErrExportExists is returned when the export target is already on disk.
var ErrExportExists = errors.New("export file already exists")

// Export writes snap to path. A ".json" extension selects the JSON report,
// anything else produces a SQLite database.
func Export(path string, snap Snapshot) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ExportJSON(path, snap)
	}
	return ExportSQLite(path, snap)
}

// ExportJSON writes snap as indented JSON to a new file at path.
func ExportJSON(path string, snap Snapshot) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s: %w", path, ErrExportExists)
	}
	if err != nil {
		return err
	}
	if err := WriteJSONReport(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteJSONReport encodes snap to w.
func WriteJSONReport(w io.Writer, snap Snapshot) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ---------------------------------------------------------------------------
// SQLite report
// ---------------------------------------------------------------------------

const reportSchemaVersion = 1

// reportDB holds the insert statements prepared for one export transaction.
type reportDB struct {
	addBookStmt   *sql.Stmt
	addMemberStmt *sql.Stmt
	addIssueStmt  *sql.Stmt
}

// ExportSQLite creates a new SQLite database at path holding snap. It
// refuses to touch an existing file.
func ExportSQLite(path string, snap Snapshot) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrExportExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", sqliteDSN(path, "_busy_timeout=5000&_foreign_keys=1"))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	err = applyReportSchema(db)
	if err == nil {
		err = writeSnapshot(db, snap)
	}
	if cerr := db.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// A partial report would block every retry with ErrExportExists.
		os.Remove(path)
		return err
	}
	return nil
}

// sqliteDSN builds a file: URI for path. The path is escaped so '?' and '#'
// stay part of the file name.
func sqliteDSN(path, params string) string {
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath()
	if params != "" {
		dsn += "?" + params
	}
	return dsn
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	return nil
}

func applyReportSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT);`,
		`CREATE TABLE members (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            phone TEXT NOT NULL
        );`,
		`CREATE TABLE books (
            id INTEGER PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            isbn TEXT NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity >= 0)
        );`,
		`CREATE TABLE issues (
            seq INTEGER PRIMARY KEY,
            id TEXT NOT NULL UNIQUE,
            member_id INTEGER NOT NULL REFERENCES members(id),
            book_id INTEGER NOT NULL REFERENCES books(id),
            issue_date TEXT NOT NULL,
            return_date TEXT
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply report schema: %w", err)
		}
	}
	return tx.Commit()
}

func (r *reportDB) prepareStatements(tx *sql.Tx) error {
	var err error
	if r.addBookStmt, err = tx.Prepare(`INSERT INTO books(id,title,author,isbn,quantity) VALUES(?,?,?,?,?)`); err != nil {
		return err
	}
	if r.addMemberStmt, err = tx.Prepare(`INSERT INTO members(id,name,phone) VALUES(?,?,?)`); err != nil {
		return err
	}
	if r.addIssueStmt, err = tx.Prepare(`INSERT INTO issues(seq,id,member_id,book_id,issue_date,return_date) VALUES(?,?,?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

func (r *reportDB) close() {
	for _, s := range []*sql.Stmt{r.addBookStmt, r.addMemberStmt, r.addIssueStmt} {
		if s != nil {
			s.Close()
		}
	}
}

// writeSnapshot inserts every row in one transaction.
func writeSnapshot(db *sql.DB, snap Snapshot) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	r := &reportDB{}
	defer r.close()
	if err := r.prepareStatements(tx); err != nil {
		return fmt.Errorf("prepare report statements: %w", err)
	}

	meta := map[string]string{
		"schema_version": fmt.Sprint(reportSchemaVersion),
		"generated_at":   snap.GeneratedAt.UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES(?,?)`, k, v); err != nil {
			return err
		}
	}

	for _, m := range snap.Members {
		if _, err := r.addMemberStmt.Exec(m.ID, m.Name, m.Phone); err != nil {
			return fmt.Errorf("export member %d: %w", m.ID, err)
		}
	}
	for _, b := range snap.Books {
		if _, err := r.addBookStmt.Exec(b.ID, b.Title, b.Author, b.ISBN, b.Quantity); err != nil {
			return fmt.Errorf("export book %d: %w", b.ID, err)
		}
	}
	for i, rec := range snap.Issues {
		var returned sql.NullString
		if rec.ReturnDate != nil {
			returned = sql.NullString{String: rec.ReturnDate.String(), Valid: true}
		}
		if _, err := r.addIssueStmt.Exec(i+1, rec.ID.String(), rec.MemberID, rec.BookID, rec.IssueDate.String(), returned); err != nil {
			return fmt.Errorf("export issue %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}
