package library

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LibraryManager is a thin façade over the catalog, member directory and
// lending ledger, gated by an admin session. It keeps CLI code simple.
type LibraryManager struct {
	catalog *Catalog
	members *Directory
	ledger  *Ledger
	session *Session

	now    func() time.Time
	logger *zap.Logger
}

// Option configures a LibraryManager.
type Option func(*LibraryManager)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(lm *LibraryManager) {
		if now != nil {
			lm.now = now
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(lm *LibraryManager) {
		if l != nil {
			lm.logger = l
		}
	}
}

// NewLibraryManager builds empty stores behind a session checked by auth.
func NewLibraryManager(auth Authenticator, opts ...Option) *LibraryManager {
	lm := &LibraryManager{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(lm)
	}
	lm.catalog = NewCatalog()
	lm.members = NewDirectory()
	lm.ledger = NewLedger(lm.catalog, lm.members, WithLedgerLogger(lm.logger.Named("ledger")))
	lm.session = NewSession(auth)
	return lm
}

// Today is the current calendar day according to the manager's clock.
func (lm *LibraryManager) Today() Date { return DateOf(lm.now()) }

// ------------------ Session ------------------

func (lm *LibraryManager) Login(username, password string) error {
	if err := lm.session.Login(username, password); err != nil {
		lm.logger.Info("login failed", zap.String("username", username))
		return err
	}
	lm.logger.Info("login", zap.String("username", username))
	return nil
}

func (lm *LibraryManager) Logout() {
	lm.session.Logout()
	lm.logger.Info("logout")
}

func (lm *LibraryManager) LoggedIn() bool { return lm.session.LoggedIn() }

// ------------------ Book helpers ------------------

func (lm *LibraryManager) AddBook(title, author, isbn string, quantity int) (Book, error) {
	if err := lm.session.Require(); err != nil {
		return Book{}, err
	}
	return lm.catalog.AddBook(title, author, isbn, quantity)
}

func (lm *LibraryManager) GetBook(id int64) (Book, error) {
	if err := lm.session.Require(); err != nil {
		return Book{}, err
	}
	return lm.catalog.FindByID(id)
}

func (lm *LibraryManager) GetAllBooks() ([]Book, error) {
	if err := lm.session.Require(); err != nil {
		return nil, err
	}
	return lm.catalog.ListAll(), nil
}

func (lm *LibraryManager) SearchBooks(field SearchField, keyword string) ([]Book, error) {
	if err := lm.session.Require(); err != nil {
		return nil, err
	}
	return lm.catalog.Search(field, keyword)
}

// Availability is the number of copies of the book that can still be issued.
func (lm *LibraryManager) Availability(bookID int64) (int, error) {
	if err := lm.session.Require(); err != nil {
		return 0, err
	}
	return lm.ledger.Availability(bookID)
}

// ------------------ Member helpers ------------------

func (lm *LibraryManager) AddMember(name, phone string) (Member, error) {
	if err := lm.session.Require(); err != nil {
		return Member{}, err
	}
	return lm.members.RegisterMember(name, phone), nil
}

func (lm *LibraryManager) GetMember(id int64) (Member, error) {
	if err := lm.session.Require(); err != nil {
		return Member{}, err
	}
	return lm.members.FindByID(id)
}

func (lm *LibraryManager) GetAllMembers() ([]Member, error) {
	if err := lm.session.Require(); err != nil {
		return nil, err
	}
	return lm.members.ListAll(), nil
}

// ------------------ Circulation ------------------

// IssueBook lends a copy to the member, dated today.
func (lm *LibraryManager) IssueBook(memberID, bookID int64) (IssueRecord, error) {
	if err := lm.session.Require(); err != nil {
		return IssueRecord{}, err
	}
	return lm.ledger.Issue(memberID, bookID, lm.Today())
}

// ReturnBook closes the member's oldest outstanding issue of the book, dated today.
func (lm *LibraryManager) ReturnBook(memberID, bookID int64) (IssueRecord, error) {
	if err := lm.session.Require(); err != nil {
		return IssueRecord{}, err
	}
	return lm.ledger.ReturnBook(memberID, bookID, lm.Today())
}

func (lm *LibraryManager) GetIssueRecords() ([]IssueRecord, error) {
	if err := lm.session.Require(); err != nil {
		return nil, err
	}
	return lm.ledger.ListAll(), nil
}

func (lm *LibraryManager) GetOutstandingIssues() ([]IssueRecord, error) {
	if err := lm.session.Require(); err != nil {
		return nil, err
	}
	return lm.ledger.ListOutstanding(), nil
}

// ------------------ Seeding and export ------------------

// ApplySeed loads seed books and members straight into the stores. It runs
// before anyone logs in, so it bypasses the session gate. An invalid seed
// stores nothing.
func (lm *LibraryManager) ApplySeed(s Seed) error {
	if err := s.validate(); err != nil {
		return err
	}
	for _, b := range s.Books {
		if _, err := lm.catalog.AddBook(b.Title, b.Author, b.ISBN, b.Quantity); err != nil {
			return fmt.Errorf("seed book %q: %w", b.Title, err)
		}
	}
	for _, m := range s.Members {
		lm.members.RegisterMember(m.Name, m.Phone)
	}
	lm.logger.Info("seed applied", zap.Int("books", len(s.Books)), zap.Int("members", len(s.Members)))
	return nil
}

// Snapshot copies the current state of every store.
func (lm *LibraryManager) Snapshot() (Snapshot, error) {
	if err := lm.session.Require(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		GeneratedAt: lm.now(),
		Books:       lm.catalog.ListAll(),
		Members:     lm.members.ListAll(),
		Issues:      lm.ledger.ListAll(),
	}, nil
}

// ExportReport writes a snapshot to path; see Export for the formats.
func (lm *LibraryManager) ExportReport(path string) error {
	snap, err := lm.Snapshot()
	if err != nil {
		return err
	}
	if err := Export(path, snap); err != nil {
		return err
	}
	lm.logger.Info("report exported", zap.String("path", path), zap.Int("issues", len(snap.Issues)))
	return nil
}

// ------------------ Utilities ------------------

// PrettyBook formats a book with its availability for lists.
func PrettyBook(b Book, available int) string {
	return fmt.Sprintf("%s | Available: %d", b, available)
}
