package library

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	for _, b := range []Book{
		{Title: "Dune", Author: "Frank Herbert", ISBN: "111", Quantity: 1},
		{Title: "Children of Dune", Author: "Frank Herbert", ISBN: "222", Quantity: 2},
		{Title: "Neuromancer", Author: "William Gibson", ISBN: "978-0441569595", Quantity: 0},
	} {
		_, err := c.AddBook(b.Title, b.Author, b.ISBN, b.Quantity)
		require.NoError(t, err)
	}
	return c
}

func TestCatalog_AddBook_AssignsSequentialIDs(t *testing.T) {
	c := NewCatalog()

	first, err := c.AddBook("Dune", "Herbert", "111", 1)
	require.NoError(t, err)
	second, err := c.AddBook("Emma", "Austen", "222", 3)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 3, second.Quantity)
}

func TestCatalog_AddBook_NegativeQuantity(t *testing.T) {
	c := NewCatalog()

	_, err := c.AddBook("Dune", "Herbert", "111", -1)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, c.Len())

	// A rejected add must not burn an identifier.
	b, err := c.AddBook("Dune", "Herbert", "111", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)
}

func TestCatalog_IDsNeverReused(t *testing.T) {
	c := NewCatalog()
	seen := make(map[int64]bool)
	for i := 0; i < 500; i++ {
		b, err := c.AddBook(fmt.Sprintf("Book %d", i), "Anon", "", 1)
		require.NoError(t, err)
		require.False(t, seen[b.ID], "id %d reused", b.ID)
		seen[b.ID] = true
	}
	assert.Len(t, seen, 500)
}

func TestCatalog_FindByID(t *testing.T) {
	c := seededCatalog(t)

	b, err := c.FindByID(2)
	require.NoError(t, err)
	assert.Equal(t, "Children of Dune", b.Title)

	_, err = c.FindByID(99)
	assert.True(t, errors.Is(err, ErrBookNotFound))
}

func TestCatalog_ListAll_InsertionOrderAndCopy(t *testing.T) {
	c := seededCatalog(t)

	books := c.ListAll()
	require.Len(t, books, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{books[0].ID, books[1].ID, books[2].ID})

	books[0].Title = "changed"
	again := c.ListAll()
	assert.Equal(t, "Dune", again[0].Title)
}

func TestCatalog_Search(t *testing.T) {
	c := seededCatalog(t)

	tests := []struct {
		name    string
		field   SearchField
		keyword string
		want    []int64
	}{
		{name: "title substring", field: SearchByTitle, keyword: "dune", want: []int64{1, 2}},
		{name: "title case insensitive", field: SearchByTitle, keyword: "NEURO", want: []int64{3}},
		{name: "author", field: SearchByAuthor, keyword: "herbert", want: []int64{1, 2}},
		{name: "exact isbn", field: SearchByISBN, keyword: "978-0441569595", want: []int64{3}},
		{name: "isbn substring", field: SearchByISBN, keyword: "1", want: []int64{1, 3}},
		{name: "empty keyword matches all", field: SearchByAuthor, keyword: "", want: []int64{1, 2, 3}},
		{name: "no match", field: SearchByTitle, keyword: "zzz", want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Search(tt.field, tt.keyword)
			require.NoError(t, err)
			ids := make([]int64, 0, len(got))
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCatalog_Search_ByJustAddedISBN(t *testing.T) {
	c := seededCatalog(t)
	added, err := c.AddBook("Snow Crash", "Neal Stephenson", "0553380958", 1)
	require.NoError(t, err)

	got, err := c.Search(SearchByISBN, "0553380958")
	require.NoError(t, err)
	assert.Equal(t, []Book{added}, got)
}

func TestCatalog_Search_UnknownField(t *testing.T) {
	c := seededCatalog(t)
	_, err := c.Search(SearchField("publisher"), "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseSearchField(t *testing.T) {
	tests := []struct {
		input   string
		want    SearchField
		wantErr bool
	}{
		{input: "1", want: SearchByTitle},
		{input: "2", want: SearchByAuthor},
		{input: "3", want: SearchByISBN},
		{input: " Title ", want: SearchByTitle},
		{input: "isbn", want: SearchByISBN},
		{input: "4", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSearchField(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
