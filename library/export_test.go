package library

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(t *testing.T) Snapshot {
	t.Helper()
	mgr, clock := newManager(t)
	dune, err := mgr.AddBook("Dune", "Herbert", "111", 2)
	require.NoError(t, err)
	emma, err := mgr.AddBook("Emma", "Austen", "222", 1)
	require.NoError(t, err)
	alice, err := mgr.AddMember("Alice", "555-0100")
	require.NoError(t, err)

	_, err = mgr.IssueBook(alice.ID, dune.ID)
	require.NoError(t, err)
	_, err = mgr.IssueBook(alice.ID, emma.ID)
	require.NoError(t, err)
	clock.advance(4)
	_, err = mgr.ReturnBook(alice.ID, dune.ID)
	require.NoError(t, err)

	snap, err := mgr.Snapshot()
	require.NoError(t, err)
	return snap
}

func openReport(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", sqliteDSN(path, "mode=ro"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExportSQLite(t *testing.T) {
	snap := sampleSnapshot(t)
	path := filepath.Join(t.TempDir(), "reports", "library.db")

	require.NoError(t, ExportSQLite(path, snap))
	db := openReport(t, path)

	var books, members, issues int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&books))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&members))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM issues`).Scan(&issues))
	assert.Equal(t, 2, books)
	assert.Equal(t, 1, members)
	assert.Equal(t, 2, issues)

	var outstanding int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM issues WHERE return_date IS NULL`).Scan(&outstanding))
	assert.Equal(t, 1, outstanding)

	var issueDate, returnDate string
	require.NoError(t, db.QueryRow(`SELECT issue_date, return_date FROM issues WHERE seq = 1`).Scan(&issueDate, &returnDate))
	assert.Equal(t, "2024-03-01", issueDate)
	assert.Equal(t, "2024-03-05", returnDate)

	var version string
	require.NoError(t, db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version))
	assert.Equal(t, "1", version)
}

func TestExportSQLite_RefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

	err := ExportSQLite(path, Snapshot{})
	require.ErrorIs(t, err, ErrExportExists)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(b))
}

func TestExportSQLite_OddFileName(t *testing.T) {
	snap := sampleSnapshot(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "march?#1.db")

	require.NoError(t, ExportSQLite(path, snap))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "march?#1.db", entries[0].Name())

	var books int
	require.NoError(t, openReport(t, path).QueryRow(`SELECT COUNT(*) FROM books`).Scan(&books))
	assert.Equal(t, 2, books)
}

func TestExportSQLite_FailureLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	snap := Snapshot{Members: []Member{{ID: 1, Name: "Alice"}, {ID: 1, Name: "Alice again"}}}

	require.Error(t, ExportSQLite(path, snap))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, ExportSQLite(path, sampleSnapshot(t)))
}

func TestWriteJSONReport(t *testing.T) {
	snap := sampleSnapshot(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONReport(&buf, snap))

	var decoded struct {
		Books  []Book `json:"books"`
		Issues []struct {
			ID         string  `json:"id"`
			IssueDate  string  `json:"issue_date"`
			ReturnDate *string `json:"return_date"`
		} `json:"issues"`
	}
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, snap.Books, decoded.Books)
	require.Len(t, decoded.Issues, 2)
	assert.Equal(t, snap.Issues[0].ID.String(), decoded.Issues[0].ID)
	assert.Equal(t, "2024-03-01", decoded.Issues[0].IssueDate)
	require.NotNil(t, decoded.Issues[0].ReturnDate)
	assert.Equal(t, "2024-03-05", *decoded.Issues[0].ReturnDate)
	assert.Nil(t, decoded.Issues[1].ReturnDate)
}

func TestExport_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	snap := Snapshot{GeneratedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}

	jsonPath := filepath.Join(dir, "report.JSON")
	require.NoError(t, Export(jsonPath, snap))
	b, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"generated_at": "2024-03-01T00:00:00Z"`)

	require.ErrorIs(t, Export(jsonPath, snap), ErrExportExists)

	dbPath := filepath.Join(dir, "report.sqlite")
	require.NoError(t, Export(dbPath, snap))
	db := openReport(t, dbPath)
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestLibraryManager_ExportReport(t *testing.T) {
	mgr, _ := newManager(t)
	_, err := mgr.AddBook("Dune", "Herbert", "111", 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, mgr.ExportReport(path))
	assert.FileExists(t, path)
}
