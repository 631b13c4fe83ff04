package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"library-lending/library"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// menu is the line-oriented admin UI. It owns no library state; every
// action goes through the manager.
type menu struct {
	sc  *bufio.Scanner
	out io.Writer
	mgr *library.LibraryManager

	readPassword func(prompt string) (string, error)
	exportDir    string
}

func newMenu(in io.Reader, out io.Writer, mgr *library.LibraryManager) *menu {
	m := &menu{
		sc:  bufio.NewScanner(in),
		out: out,
		mgr: mgr,
	}
	m.readPassword = m.readLinePassword
	return m
}

// run loops until Exit is chosen or input ends.
func (m *menu) run() error {
	for {
		var (
			keepGoing bool
			err       error
		)
		if m.mgr.LoggedIn() {
			keepGoing, err = m.adminMenu()
		} else {
			keepGoing, err = m.loginMenu()
		}
		if err != nil || !keepGoing {
			return err
		}
	}
}

func (m *menu) loginMenu() (bool, error) {
	m.heading("Login Menu")
	m.println("1. Login")
	m.println("2. Exit")
	choice, ok := m.prompt("Choose: ")
	if !ok {
		return false, nil
	}

	switch choice {
	case "1":
		return m.handleLogin()
	case "2":
		m.println("Goodbye!")
		return false, nil
	default:
		m.println("Invalid choice.")
	}
	return true, nil
}

func (m *menu) adminMenu() (bool, error) {
	m.heading("Library Menu (Admin)")
	for i, item := range []string{
		"Add Book",
		"Register Member",
		"Issue Book",
		"Return Book",
		"Display All Books",
		"Search Books",
		"View Issued Records",
		"View Outstanding Issues",
		"List Members",
		"Export Report",
		"Logout",
		"Exit",
	} {
		m.printf("%d. %s\n", i+1, item)
	}
	choice, ok := m.prompt("Choose: ")
	if !ok {
		return false, nil
	}

	switch choice {
	case "1":
		m.handleAddBook()
	case "2":
		m.handleAddMember()
	case "3":
		m.handleIssue()
	case "4":
		m.handleReturn()
	case "5":
		m.handleListBooks()
	case "6":
		m.handleSearchBooks()
	case "7":
		m.handleListIssues(false)
	case "8":
		m.handleListIssues(true)
	case "9":
		m.handleListMembers()
	case "10":
		m.handleExport()
	case "11":
		m.mgr.Logout()
		m.success("Logged out successfully.")
	case "12":
		m.println("Goodbye!")
		return false, nil
	default:
		m.println("Invalid choice.")
	}
	return true, nil
}

// ------------------ Handlers ------------------

func (m *menu) handleLogin() (bool, error) {
	m.heading("Admin Login")
	username, ok := m.prompt("Username: ")
	if !ok {
		return false, nil
	}
	password, err := m.readPassword("Password: ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read password: %w", err)
	}

	if err := m.mgr.Login(username, password); err != nil {
		m.fail("Invalid credentials.")
		return true, nil
	}
	m.success("Login successful.")
	return true, nil
}

func (m *menu) handleAddBook() {
	m.heading("Add Book")
	title, ok := m.prompt("Title: ")
	if !ok {
		return
	}
	author, ok := m.prompt("Author: ")
	if !ok {
		return
	}
	isbn, ok := m.prompt("ISBN: ")
	if !ok {
		return
	}
	qtyStr, ok := m.prompt("Quantity: ")
	if !ok {
		return
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		m.fail(fmt.Sprintf("Invalid quantity: %s", qtyStr))
		return
	}

	b, err := m.mgr.AddBook(title, author, isbn, qty)
	if err != nil {
		m.fail(fmt.Sprintf("Error adding book: %v", err))
		return
	}
	m.success(fmt.Sprintf("Book added successfully (ID %d).", b.ID))
}

func (m *menu) handleAddMember() {
	m.heading("Register Member")
	name, ok := m.prompt("Name: ")
	if !ok {
		return
	}
	phone, ok := m.prompt("Phone: ")
	if !ok {
		return
	}

	mem, err := m.mgr.AddMember(name, phone)
	if err != nil {
		m.fail(fmt.Sprintf("Error: %v", err))
		return
	}
	m.success(fmt.Sprintf("Member registered (ID %d).", mem.ID))
}

func (m *menu) handleIssue() {
	m.heading("Issue Book")
	memberID, bookID, ok := m.promptMemberAndBook()
	if !ok {
		return
	}

	rec, err := m.mgr.IssueBook(memberID, bookID)
	switch {
	case errors.Is(err, library.ErrMemberNotFound):
		m.fail("Member not found.")
	case errors.Is(err, library.ErrBookNotFound):
		m.fail("Book not found.")
	case errors.Is(err, library.ErrNoCopiesAvailable):
		m.fail("No copies available to issue.")
	case err != nil:
		m.fail(fmt.Sprintf("Error issuing book: %v", err))
	default:
		m.success(fmt.Sprintf("Book issued successfully on %s.", rec.IssueDate))
		m.describeLoan(rec)
	}
}

// describeLoan names the member and title behind a record.
func (m *menu) describeLoan(rec library.IssueRecord) {
	mem, err := m.mgr.GetMember(rec.MemberID)
	if err != nil {
		return
	}
	book, err := m.mgr.GetBook(rec.BookID)
	if err != nil {
		return
	}
	m.printf("%s has %q until it is returned.\n", mem.Name, book.Title)
}

func (m *menu) handleReturn() {
	m.heading("Return Book")
	memberID, bookID, ok := m.promptMemberAndBook()
	if !ok {
		return
	}

	rec, err := m.mgr.ReturnBook(memberID, bookID)
	switch {
	case errors.Is(err, library.ErrNoOutstandingIssue):
		m.fail("No matching issue record found.")
	case err != nil:
		m.fail(fmt.Sprintf("Error returning book: %v", err))
	default:
		m.success(fmt.Sprintf("Book returned successfully on %s.", rec.ReturnDate))
	}
}

func (m *menu) handleListBooks() {
	m.heading("All Books")
	books, err := m.mgr.GetAllBooks()
	if err != nil {
		m.fail(fmt.Sprintf("Error: %v", err))
		return
	}
	if len(books) == 0 {
		m.println("No books found.")
		return
	}
	m.printBooks(books)
}

func (m *menu) handleSearchBooks() {
	m.heading("Search Books")
	m.println("1. By Title")
	m.println("2. By Author")
	m.println("3. By ISBN")
	choice, ok := m.prompt("Choose: ")
	if !ok {
		return
	}
	keyword, ok := m.prompt("Enter search keyword: ")
	if !ok {
		return
	}
	// An unknown field matches nothing.
	field, err := library.ParseSearchField(choice)
	if err != nil {
		m.println("No books found.")
		return
	}

	books, err := m.mgr.SearchBooks(field, keyword)
	if err != nil {
		m.fail(fmt.Sprintf("Error: %v", err))
		return
	}
	if len(books) == 0 {
		m.println("No books found.")
		return
	}
	m.println("Search Results:")
	m.printBooks(books)
}

func (m *menu) handleListIssues(outstandingOnly bool) {
	var (
		records []library.IssueRecord
		err     error
	)
	if outstandingOnly {
		m.heading("Outstanding Issues")
		records, err = m.mgr.GetOutstandingIssues()
	} else {
		m.heading("Issued Book Records")
		records, err = m.mgr.GetIssueRecords()
	}
	if err != nil {
		m.fail(fmt.Sprintf("Error: %v", err))
		return
	}
	if len(records) == 0 {
		m.println("No issued books found.")
		return
	}
	for _, r := range records {
		m.println(r.String())
	}
}

func (m *menu) handleListMembers() {
	m.heading("Members")
	members, err := m.mgr.GetAllMembers()
	if err != nil {
		m.fail(fmt.Sprintf("Error: %v", err))
		return
	}
	if len(members) == 0 {
		m.println("No members registered.")
		return
	}
	for _, mem := range members {
		m.println(mem.String())
	}
}

func (m *menu) handleExport() {
	m.heading("Export Report")
	path, ok := m.prompt("Path (.json for JSON, otherwise SQLite): ")
	if !ok {
		return
	}
	if path == "" {
		m.fail("Export path cannot be empty.")
		return
	}
	if m.exportDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(m.exportDir, path)
	}

	if err := m.mgr.ExportReport(path); err != nil {
		m.fail(fmt.Sprintf("Error exporting report: %v", err))
		return
	}
	m.success(fmt.Sprintf("Report written to %s.", path))
}

// ------------------ Input/output helpers ------------------

func (m *menu) printBooks(books []library.Book) {
	for _, b := range books {
		avail, err := m.mgr.Availability(b.ID)
		if err != nil {
			m.println(b.String())
			continue
		}
		m.println(library.PrettyBook(b, avail))
	}
}

func (m *menu) promptMemberAndBook() (memberID, bookID int64, ok bool) {
	memberID, ok = m.promptID("Member ID: ")
	if !ok {
		return 0, 0, false
	}
	bookID, ok = m.promptID("Book ID: ")
	return memberID, bookID, ok
}

func (m *menu) promptID(label string) (int64, bool) {
	s, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		m.fail(fmt.Sprintf("Invalid %s%s", strings.ToLower(label), s))
		return 0, false
	}
	return id, true
}

// prompt prints label and returns the next trimmed line; false on EOF.
func (m *menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.sc.Text()), true
}

func (m *menu) readLinePassword(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.sc.Scan() {
		if err := m.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.sc.Text()), nil
}

func (m *menu) heading(s string) { fmt.Fprintln(m.out, "\n"+headingStyle.Render("--- "+s+" ---")) }
func (m *menu) success(s string) { fmt.Fprintln(m.out, okStyle.Render(s)) }
func (m *menu) fail(s string)    { fmt.Fprintln(m.out, errorStyle.Render(s)) }
func (m *menu) println(s string) { fmt.Fprintln(m.out, s) }

func (m *menu) printf(format string, args ...any) { fmt.Fprintf(m.out, format, args...) }
