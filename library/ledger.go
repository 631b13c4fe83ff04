package library

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookFinder resolves book IDs for the ledger.
type BookFinder interface {
	FindByID(id int64) (Book, error)
}

// MemberFinder resolves member IDs for the ledger.
type MemberFinder interface {
	FindByID(id int64) (Member, error)
}

// Ledger is the append-only log of issue records and the single source of
// truth for what is on loan.
type Ledger struct {
	mu      sync.Mutex
	books   BookFinder
	members MemberFinder
	records []IssueRecord
	logger  *zap.Logger
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithLedgerLogger sets the logger used for lending events.
func WithLedgerLogger(l *zap.Logger) LedgerOption {
	return func(led *Ledger) {
		if l != nil {
			led.logger = l
		}
	}
}

// NewLedger returns an empty ledger that validates against books and members.
func NewLedger(books BookFinder, members MemberFinder, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		books:   books,
		members: members,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Issue lends one copy of a book to a member.
//
// Checks run in this order and the first failure wins:
//  1. the member exists (ErrMemberNotFound)
//  2. the book exists (ErrBookNotFound)
//  3. fewer outstanding records than owned copies exist for the book
//     (ErrNoCopiesAvailable)
//
// The availability check and the append happen under one lock, so concurrent
// callers can never push the outstanding count past the book's quantity.
// Nothing is recorded when a check fails.
func (l *Ledger) Issue(memberID, bookID int64, today Date) (IssueRecord, error) {
	if today.IsZero() {
		return IssueRecord{}, fmt.Errorf("issue date is required: %w", ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	log := l.logger.With(zap.Int64("member_id", memberID), zap.Int64("book_id", bookID))

	if _, err := l.members.FindByID(memberID); err != nil {
		log.Info("issue rejected", zap.Error(err))
		return IssueRecord{}, err
	}
	book, err := l.books.FindByID(bookID)
	if err != nil {
		log.Info("issue rejected", zap.Error(err))
		return IssueRecord{}, err
	}

	if out := outstandingCount(l.records, bookID); out >= book.Quantity {
		err := fmt.Errorf("book %d has %d of %d copies out: %w", bookID, out, book.Quantity, ErrNoCopiesAvailable)
		log.Info("issue rejected", zap.Error(err))
		return IssueRecord{}, err
	}

	rec := IssueRecord{
		ID:        uuid.New(),
		MemberID:  memberID,
		BookID:    bookID,
		IssueDate: today,
	}
	l.records = append(l.records, rec)
	log.Debug("book issued", zap.Stringer("record_id", rec.ID), zap.Stringer("issue_date", today))
	return rec, nil
}

// ReturnBook closes the oldest outstanding record for the member/book pair.
//
// Records are scanned in insertion order and the first one that matches both
// IDs and has no return date is stamped with today. When a member holds two
// copies of the same book the earlier issue is closed first. Returns
// ErrNoOutstandingIssue, leaving every record untouched, when no record
// matches.
func (l *Ledger) ReturnBook(memberID, bookID int64, today Date) (IssueRecord, error) {
	if today.IsZero() {
		return IssueRecord{}, fmt.Errorf("return date is required: %w", ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	log := l.logger.With(zap.Int64("member_id", memberID), zap.Int64("book_id", bookID))

	for i := range l.records {
		r := &l.records[i]
		if r.MemberID != memberID || r.BookID != bookID || r.Status() != IssueOutstanding {
			continue
		}
		returned := today
		r.ReturnDate = &returned
		log.Debug("book returned", zap.Stringer("record_id", r.ID), zap.Stringer("return_date", today))
		return r.clone(), nil
	}

	err := fmt.Errorf("member %d, book %d: %w", memberID, bookID, ErrNoOutstandingIssue)
	log.Info("return rejected", zap.Error(err))
	return IssueRecord{}, err
}

// ListAll returns every record in insertion order.
func (l *Ledger) ListAll() []IssueRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]IssueRecord, len(l.records))
	for i, r := range l.records {
		out[i] = r.clone()
	}
	return out
}

// ListOutstanding returns the records with no return date, in insertion order.
func (l *Ledger) ListOutstanding() []IssueRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []IssueRecord{}
	for _, r := range l.records {
		if r.Status() == IssueOutstanding {
			out = append(out, r.clone())
		}
	}
	return out
}

// OutstandingCount is the number of copies of bookID currently on loan.
func (l *Ledger) OutstandingCount(bookID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return outstandingCount(l.records, bookID)
}

// Availability is the book's quantity minus its outstanding count.
func (l *Ledger) Availability(bookID int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	book, err := l.books.FindByID(bookID)
	if err != nil {
		return 0, err
	}
	return book.Quantity - outstandingCount(l.records, bookID), nil
}

// outstandingCount scans the whole log. Nothing caches the result.
func outstandingCount(records []IssueRecord, bookID int64) int {
	n := 0
	for _, r := range records {
		if r.BookID == bookID && r.Status() == IssueOutstanding {
			n++
		}
	}
	return n
}
