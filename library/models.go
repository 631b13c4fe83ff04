package library

import (
	"fmt"

	"github.com/google/uuid"
)

// Book is a catalog entry. Quantity is the number of owned copies; issuing a
// copy never changes it, availability is derived from the ledger instead.
type Book struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
}

func (b Book) String() string {
	return fmt.Sprintf("[%d] %s by %s (ISBN: %s) | Copies: %d", b.ID, b.Title, b.Author, b.ISBN, b.Quantity)
}

// Member represents a registered library member.
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (m Member) String() string {
	return fmt.Sprintf("MemberID: %d | Name: %s | Phone: %s", m.ID, m.Name, m.Phone)
}

// IssueStatus is the lifecycle state of an IssueRecord.
type IssueStatus int

const (
	IssueOutstanding IssueStatus = iota
	IssueReturned
)

func (s IssueStatus) String() string {
	switch s {
	case IssueOutstanding:
		return "outstanding"
	case IssueReturned:
		return "returned"
	default:
		return fmt.Sprintf("IssueStatus(%d)", int(s))
	}
}

// IssueRecord is one lending event. ReturnDate is nil while the copy is out
// and is set exactly once when it comes back.
type IssueRecord struct {
	ID         uuid.UUID `json:"id"`
	MemberID   int64     `json:"member_id"`
	BookID     int64     `json:"book_id"`
	IssueDate  Date      `json:"issue_date"`
	ReturnDate *Date     `json:"return_date,omitempty"`
}

// Status reports whether the record is still outstanding.
func (r IssueRecord) Status() IssueStatus {
	if r.ReturnDate == nil {
		return IssueOutstanding
	}
	return IssueReturned
}

// clone copies the record with its own ReturnDate pointer so callers cannot
// write through to the ledger.
func (r IssueRecord) clone() IssueRecord {
	if r.ReturnDate != nil {
		d := *r.ReturnDate
		r.ReturnDate = &d
	}
	return r
}

func (r IssueRecord) String() string {
	returned := "None"
	if r.ReturnDate != nil {
		returned = r.ReturnDate.String()
	}
	return fmt.Sprintf("MemberID %d -> BookID %d | Issued: %s | Returned: %s", r.MemberID, r.BookID, r.IssueDate, returned)
}
