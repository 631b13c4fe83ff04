package library

import "errors"

// Lending and catalog failures. All of them leave the stores unchanged and
// are wrapped with context, so match them with errors.Is.
var (
	// ErrInvalidInput indicates malformed arguments, e.g. a negative quantity.
	ErrInvalidInput = errors.New("invalid input")

	ErrMemberNotFound = errors.New("member not found")
	ErrBookNotFound   = errors.New("book not found")

	// ErrNoCopiesAvailable indicates every owned copy is already issued.
	ErrNoCopiesAvailable = errors.New("no copies available to issue")

	// ErrNoOutstandingIssue indicates the member has no unreturned copy of the book.
	ErrNoOutstandingIssue = errors.New("no matching issue record found")

	// Session errors.

	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
