package library

import (
	"fmt"
	"strings"
	"sync"
)

// SearchField selects which book attribute Catalog.Search matches against.
type SearchField string

const (
	SearchByTitle  SearchField = "title"
	SearchByAuthor SearchField = "author"
	SearchByISBN   SearchField = "isbn"
)

// ParseSearchField accepts a field name or its menu number ("1" title,
// "2" author, "3" isbn).
func ParseSearchField(s string) (SearchField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", string(SearchByTitle):
		return SearchByTitle, nil
	case "2", string(SearchByAuthor):
		return SearchByAuthor, nil
	case "3", string(SearchByISBN):
		return SearchByISBN, nil
	}
	return "", fmt.Errorf("search field %q: %w", s, ErrInvalidInput)
}

func (f SearchField) value(b Book) (string, bool) {
	switch f {
	case SearchByTitle:
		return b.Title, true
	case SearchByAuthor:
		return b.Author, true
	case SearchByISBN:
		return b.ISBN, true
	}
	return "", false
}

// Catalog owns the set of books and hands out their identifiers.
type Catalog struct {
	mu     sync.RWMutex
	books  []Book
	byID   map[int64]int
	nextID int64
}

// NewCatalog returns an empty catalog whose first book gets ID 1.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[int64]int),
		nextID: 1,
	}
}

// AddBook stores a new book under the next sequential ID.
func (c *Catalog) AddBook(title, author, isbn string, quantity int) (Book, error) {
	if quantity < 0 {
		return Book{}, fmt.Errorf("quantity %d must not be negative: %w", quantity, ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b := Book{
		ID:       c.nextID,
		Title:    title,
		Author:   author,
		ISBN:     isbn,
		Quantity: quantity,
	}
	c.nextID++
	c.byID[b.ID] = len(c.books)
	c.books = append(c.books, b)
	return b, nil
}

// FindByID looks a book up without side effects.
func (c *Catalog) FindByID(id int64) (Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return Book{}, fmt.Errorf("book %d: %w", id, ErrBookNotFound)
	}
	return c.books[i], nil
}

// ListAll returns every book in insertion order. The slice is a copy.
func (c *Catalog) ListAll() []Book {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Book, len(c.books))
	copy(out, c.books)
	return out
}

// Search returns the books whose field contains keyword, ignoring case, in
// insertion order. An empty keyword matches every book.
func (c *Catalog) Search(field SearchField, keyword string) ([]Book, error) {
	if _, ok := field.value(Book{}); !ok {
		return nil, fmt.Errorf("search field %q: %w", field, ErrInvalidInput)
	}
	needle := strings.ToLower(keyword)

	c.mu.RLock()
	defer c.mu.RUnlock()

	found := []Book{}
	for _, b := range c.books {
		v, _ := field.value(b)
		if strings.Contains(strings.ToLower(v), needle) {
			found = append(found, b)
		}
	}
	return found, nil
}

// Len reports how many books have been added.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}
